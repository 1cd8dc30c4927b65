// Package activity is the operator-facing event stream of the supervisor.
//
// Lifecycle outcomes that do not surface as Go errors (most importantly a kill
// that could not be confirmed) are only visible here. Log is the append-only
// sink; SlogLog forwards to log/slog, SQLiteLog persists entries so the CLI
// can tail them across invocations, Buffer keeps them in memory and Multi
// fans out to several sinks.
package activity
