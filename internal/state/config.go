package state

import "maps"

// InstanceConfig is an immutable snapshot of the values needed to run one
// ZooKeeper instance. It is read from the configuration store at the start of
// each operation and never written back.
type InstanceConfig struct {
	ClientPort      int
	ConnectPort     int
	ElectionPort    int
	CleanupMaxFiles int

	// JavaEnvironment is the content of java.env. Blank means "leave as is".
	JavaEnvironment string
	// Log4jProperties is the content of log4j.properties. Blank means "leave as is".
	Log4jProperties string

	// Properties are extra zoo.cfg entries. Computed entries win on conflict.
	Properties map[string]string
}

// Clone returns a copy whose Properties map is not shared with c.
func (c InstanceConfig) Clone() InstanceConfig {
	out := c
	out.Properties = maps.Clone(c.Properties)
	return out
}
