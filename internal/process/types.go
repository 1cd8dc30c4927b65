package process

import "github.com/giantswarm/zksupervisor/internal/sentinel"

// ProcessType names a tracked child. At most one child per type is tracked.
type ProcessType string

const (
	// ZooKeeper is the control script invocation that starts the server.
	ZooKeeper ProcessType = "zookeeper"
	// Cleanup is the transaction log purge task.
	Cleanup ProcessType = "cleanup"
)

// Mode controls what happens to a child when the supervisor goes away.
type Mode int

const (
	// ModeLeaveRunning detaches the child from the supervisor's process
	// group so it survives the supervisor exiting or being interrupted.
	ModeLeaveRunning Mode = iota
	// ModeDestroyOnInterrupt kills the child when the supervisor exits or
	// the monitor is closed.
	ModeDestroyOnInterrupt
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeDestroyOnInterrupt {
		return "destroy-on-interrupt"
	}
	return "leave-running"
}

// Streams selects which output streams are forwarded to the activity log.
type Streams int

const (
	StreamsNone   Streams = 0
	StreamsStdout Streams = 1 << 0
	StreamsStderr Streams = 1 << 1
	StreamsBoth           = StreamsStdout | StreamsStderr
)

// Spec describes how a launched child is handled.
type Spec struct {
	// SuccessMarker is logged as INFO when the child exits successfully.
	// Empty logs nothing.
	SuccessMarker string
	Mode          Mode
	Streams       Streams
}

// ErrNilCmd is returned when Launch or Run is called with a nil *exec.Cmd.
const ErrNilCmd = sentinel.Error("cmd must not be nil")

// ErrEmptyCmdPath is returned when Launch or Run is called with an empty cmd.Path.
const ErrEmptyCmdPath = sentinel.Error("cmd.Path must not be empty")
