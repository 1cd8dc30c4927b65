package zksupervisor

import "time"

// Default configuration values for New.
const (
	// DefaultControlScript is the ZooKeeper control script invoked with
	// "start" and "stop".
	DefaultControlScript = "/usr/sbin/zkServer.sh"

	// DefaultListCommand is the JVM process listing used to find the server.
	DefaultListCommand = "jps"

	// DefaultProcessMarker is the main class name of the server in the
	// listing.
	DefaultProcessMarker = "QuorumPeerMain"

	// DefaultJavaBinary runs the transaction log purge tool.
	DefaultJavaBinary = "java"

	// DefaultKillRounds is the number of kill attempts: one graceful stop
	// and then forced kills.
	DefaultKillRounds = 3

	// DefaultKillWaitUnit is multiplied by the round index (0, 1, 2, ...)
	// to get the wait before re-checking the process table.
	DefaultKillWaitUnit = 100 * time.Millisecond

	// DefaultPollInterval is how often WaitRunning re-runs the listing.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultStopTimeout bounds how long the supervisor waits for a child it
	// launched (the purge tool) to exit when closing.
	DefaultStopTimeout = 10 * time.Second
)
