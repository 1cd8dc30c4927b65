package configstore

import (
	"errors"
	"fmt"
	"maps"

	"github.com/giantswarm/zksupervisor/internal/state"
)

// Store is the read side of the configuration store.
type Store interface {
	Int(key IntKey) int
	String(key StringKey) string
	// Properties returns extra zoo.cfg entries. Callers must not mutate the map.
	Properties() map[string]string
}

// Values is a plain configuration snapshot. Zero ints fall back to the
// package defaults. It is also the YAML schema of the config file.
type Values struct {
	ClientPort      int               `yaml:"clientPort"`
	ConnectPort     int               `yaml:"connectPort"`
	ElectionPort    int               `yaml:"electionPort"`
	CleanupMaxFiles int               `yaml:"cleanupMaxFiles"`
	JavaEnvironment string            `yaml:"javaEnvironment"`
	Log4jProperties string            `yaml:"log4jProperties"`
	ExtraProperties map[string]string `yaml:"properties"`
}

var _ Store = Values{}

// Int implements Store.
func (v Values) Int(key IntKey) int {
	switch key {
	case ClientPort:
		return orDefault(v.ClientPort, DefaultClientPort)
	case ConnectPort:
		return orDefault(v.ConnectPort, DefaultConnectPort)
	case ElectionPort:
		return orDefault(v.ElectionPort, DefaultElectionPort)
	case CleanupMaxFiles:
		return orDefault(v.CleanupMaxFiles, DefaultCleanupMaxFiles)
	default:
		return 0
	}
}

// String implements Store.
func (v Values) String(key StringKey) string {
	switch key {
	case JavaEnvironment:
		return v.JavaEnvironment
	case Log4jProperties:
		return v.Log4jProperties
	default:
		return ""
	}
}

// Properties implements Store.
func (v Values) Properties() map[string]string {
	return v.ExtraProperties
}

// Validate reports every out-of-range value at once.
func (v Values) Validate() error {
	var errs []error
	for _, key := range []IntKey{ClientPort, ConnectPort, ElectionPort} {
		if p := v.Int(key); p < 1 || p > 65535 {
			errs = append(errs, fmt.Errorf("%s must be between 1 and 65535, got %d", key, p))
		}
	}
	if n := v.Int(CleanupMaxFiles); n < 3 {
		// PurgeTxnLog itself refuses to keep fewer than 3 snapshots.
		errs = append(errs, fmt.Errorf("%s must be at least 3, got %d", CleanupMaxFiles, n))
	}
	return errors.Join(errs...)
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// InstanceConfig takes a snapshot of s.
func InstanceConfig(s Store) state.InstanceConfig {
	return state.InstanceConfig{
		ClientPort:      s.Int(ClientPort),
		ConnectPort:     s.Int(ConnectPort),
		ElectionPort:    s.Int(ElectionPort),
		CleanupMaxFiles: s.Int(CleanupMaxFiles),
		JavaEnvironment: s.String(JavaEnvironment),
		Log4jProperties: s.String(Log4jProperties),
		Properties:      maps.Clone(s.Properties()),
	}
}
