package configstore

import "fmt"

// IntKey names an integer configuration value.
type IntKey int

const (
	// CleanupMaxFiles is the number of snapshots/logs PurgeTxnLog retains.
	CleanupMaxFiles IntKey = iota
	// ClientPort is the port clients connect to.
	ClientPort
	// ConnectPort is the quorum peer-to-peer port.
	ConnectPort
	// ElectionPort is the leader election port.
	ElectionPort
)

// String returns the key as it appears in YAML files and ConfigMaps.
func (k IntKey) String() string {
	switch k {
	case CleanupMaxFiles:
		return "cleanupMaxFiles"
	case ClientPort:
		return "clientPort"
	case ConnectPort:
		return "connectPort"
	case ElectionPort:
		return "electionPort"
	default:
		return fmt.Sprintf("IntKey(%d)", int(k))
	}
}

// StringKey names a text configuration value.
type StringKey int

const (
	// JavaEnvironment is the content of java.env.
	JavaEnvironment StringKey = iota
	// Log4jProperties is the content of log4j.properties.
	Log4jProperties
)

// String returns the key as it appears in YAML files and ConfigMaps.
func (k StringKey) String() string {
	switch k {
	case JavaEnvironment:
		return "javaEnvironment"
	case Log4jProperties:
		return "log4jProperties"
	default:
		return fmt.Sprintf("StringKey(%d)", int(k))
	}
}

// Defaults applied when a store has no value for a key.
const (
	DefaultClientPort      = 2181
	DefaultConnectPort     = 2888
	DefaultElectionPort    = 3888
	DefaultCleanupMaxFiles = 3
)
