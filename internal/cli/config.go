package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/zksupervisor"
	"github.com/giantswarm/zksupervisor/internal/configstore"
)

// Default locations used when the config file leaves them empty.
const (
	defaultConfigPath = "/etc/zksupervisor/config.yaml"
	defaultLockFile   = "/var/run/zksupervisor.lock"
)

// fileConfig is the schema of the CLI config file.
type fileConfig struct {
	// Hostname selects this host in Servers. Empty uses os.Hostname.
	Hostname string `yaml:"hostname"`
	// Servers is the ensemble in "S:1:zk1,S:2:zk2,O:3:zk3" form. Empty runs
	// standalone.
	Servers string `yaml:"servers"`

	InstallDirectory string `yaml:"installDirectory"`
	DataDirectory    string `yaml:"dataDirectory"`
	LogDirectory     string `yaml:"logDirectory"`
	ConfigDirectory  string `yaml:"configDirectory"`
	ControlScript    string `yaml:"controlScript"`

	ListCommand   string   `yaml:"listCommand"`
	ListArgs      []string `yaml:"listArgs"`
	ProcessMarker string   `yaml:"processMarker"`
	JavaBinary    string   `yaml:"javaBinary"`

	// ActivityDB is the SQLite file the activity log is kept in. Empty keeps
	// the activity log in the process log only.
	ActivityDB string `yaml:"activityDB"`
	LockFile   string `yaml:"lockFile"`

	ZooKeeper configstore.Values `yaml:"zookeeper"`
}

// loadFileConfig reads path. A missing file is only an error when required
// is true; otherwise the defaults are returned.
func loadFileConfig(path string, required bool) (fileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return fileConfig{}.withDefaults(), nil
		}
		return fileConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := parseFileConfig(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func parseFileConfig(data []byte) (fileConfig, error) {
	var cfg fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.ZooKeeper.Validate(); err != nil {
		return fileConfig{}, fmt.Errorf("invalid zookeeper values: %w", err)
	}
	return cfg.withDefaults(), nil
}

func (c fileConfig) withDefaults() fileConfig {
	if c.ControlScript == "" {
		c.ControlScript = zksupervisor.DefaultControlScript
	}
	if c.ListCommand == "" {
		c.ListCommand = zksupervisor.DefaultListCommand
	}
	if c.ProcessMarker == "" {
		c.ProcessMarker = zksupervisor.DefaultProcessMarker
	}
	if c.JavaBinary == "" {
		c.JavaBinary = zksupervisor.DefaultJavaBinary
	}
	if c.LockFile == "" {
		c.LockFile = defaultLockFile
	}
	return c
}

// provider builds the role provider from the file config.
func (c fileConfig) provider() (*zksupervisor.StaticProvider, error) {
	servers, err := zksupervisor.ParseServerList(c.Servers)
	if err != nil {
		return nil, err
	}
	hostname := c.Hostname
	if hostname == "" {
		if hostname, err = os.Hostname(); err != nil {
			return nil, fmt.Errorf("hostname: %w", err)
		}
	}

	p := &zksupervisor.StaticProvider{Hostname: hostname, ServerList: servers}
	if c.InstallDirectory == "" || c.DataDirectory == "" {
		// Left unresolved; operations are no-ops until configured.
		return p, nil
	}
	paths, err := zksupervisor.ResolvePaths(zksupervisor.Locations{
		InstallDirectory: c.InstallDirectory,
		DataDirectory:    c.DataDirectory,
		LogDirectory:     c.LogDirectory,
		ConfigDirectory:  c.ConfigDirectory,
		ControlScript:    c.ControlScript,
	})
	if err != nil {
		return nil, err
	}
	p.Resolved = paths
	return p, nil
}
