package zksupervisor

import (
	"log/slog"

	"github.com/giantswarm/zksupervisor/internal/supervisor"
)

// SetLogger replaces the package-level logger used for diagnostic output.
// Operator-facing events go to the activity log instead (WithActivityLog).
//
// If l is nil, the logger resets to slog.Default() with a "component"
// attribute. SetLogger is safe to call concurrently with other operations.
//
// Example:
//
//	zksupervisor.SetLogger(myLogger.With("component", "zksupervisor"))
func SetLogger(l *slog.Logger) {
	supervisor.SetLogger(l)
}
