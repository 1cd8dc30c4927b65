// Package supervisor orchestrates the lifecycle of the local ZooKeeper
// server: materializing its configuration, starting it through the control
// script, killing it with confirmation, and scheduling transaction log
// cleanup.
//
// The supervisor stores no lifecycle state of its own. Whether ZooKeeper is
// running is re-derived from the process table on every call, and paths,
// roles and configuration values are read from their providers at the start
// of each operation.
package supervisor
