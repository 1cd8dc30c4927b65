package materialize

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/zksupervisor/internal/activity"
	"github.com/giantswarm/zksupervisor/internal/fileutil"
	"github.com/giantswarm/zksupervisor/internal/state"
)

// File names ZooKeeper looks for.
const (
	IDFileName          = "myid"
	ConfigFileName      = "zoo.cfg"
	JavaEnvFileName     = "java.env"
	Log4jFileName       = "log4j.properties"
	generatedByComment  = "Auto-generated by zksupervisor"
	observerPeerTypeKey = "peerType"
	dataDirKey          = "dataDir"
	dataLogDirKey       = "dataLogDir"
)

// Materializer writes ZooKeeper's configuration artifacts.
type Materializer struct {
	// Log receives operator-facing events. Nil discards them.
	Log activity.Log
	// Now stamps the zoo.cfg header. Nil uses time.Now.
	Now func() time.Time
}

// Materialize writes the artifacts for one start of the instance. us is this
// host's ensemble entry, nil in standalone mode. Failing to remove a stale
// myid is reported but not returned; every write failure is returned.
func (m *Materializer) Materialize(cfg state.InstanceConfig, us *state.ServerSpec, servers state.ServerList, paths state.Paths) error {
	if err := m.prepIDFile(us, paths.DataDirectory); err != nil {
		return err
	}

	props := Properties(cfg, us, servers, paths)
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	configBytes := renderProperties(props, generatedByComment+" - "+now().Format(time.UnixDate))

	var g errgroup.Group
	g.Go(func() error {
		return writeFile(filepath.Join(paths.ConfigDirectory, ConfigFileName), configBytes)
	})
	if strings.TrimSpace(cfg.JavaEnvironment) != "" {
		g.Go(func() error {
			return writeFile(filepath.Join(paths.ConfigDirectory, JavaEnvFileName), []byte(cfg.JavaEnvironment))
		})
	}
	if strings.TrimSpace(cfg.Log4jProperties) != "" {
		g.Go(func() error {
			return writeFile(filepath.Join(paths.ConfigDirectory, Log4jFileName), []byte(cfg.Log4jProperties))
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("materialize config: %w", err)
	}
	return nil
}

// prepIDFile writes "{id}\n" for ensemble members and removes the file in
// standalone mode, so the file on disk always matches the current role.
func (m *Materializer) prepIDFile(us *state.ServerSpec, dataDir string) error {
	idFile := filepath.Join(dataDir, IDFileName)
	if us != nil {
		if err := fileutil.EnsureDir(dataDir); err != nil {
			return fmt.Errorf("prepare data dir: %w", err)
		}
		if err := fileutil.WriteFile(idFile, []byte(strconv.Itoa(us.ID)+"\n"), nil); err != nil {
			return fmt.Errorf("write id file: %w", err)
		}
		return nil
	}

	m.log().Add(activity.Info, "Starting in standalone mode")
	if err := fileutil.RemoveIfExists(idFile); err != nil {
		m.log().Add(activity.Error, "Could not delete ID file: "+idFile)
	}
	return nil
}

func (m *Materializer) log() activity.Log {
	if m.Log == nil {
		return activity.Discard
	}
	return m.Log
}

// Properties computes the zoo.cfg property set. cfg.Properties is the base;
// dataDir and dataLogDir from paths, clientPort, the server.N lines and
// peerType override it. dataDir always names the directory myid is written
// to.
func Properties(cfg state.InstanceConfig, us *state.ServerSpec, servers state.ServerList, paths state.Paths) map[string]string {
	props := make(map[string]string, len(cfg.Properties)+len(servers)+4)
	for k, v := range cfg.Properties {
		props[k] = v
	}

	if paths.DataDirectory != "" {
		props[dataDirKey] = paths.DataDirectory
	}
	if paths.LogDirectory != "" {
		props[dataLogDirKey] = paths.LogDirectory
	}

	props["clientPort"] = strconv.Itoa(cfg.ClientPort)

	portSpec := fmt.Sprintf(":%d:%d", cfg.ConnectPort, cfg.ElectionPort)
	for _, s := range servers {
		props["server."+strconv.Itoa(s.ID)] = s.Hostname + portSpec + s.Type.ConfigValue()
	}

	if us != nil && us.Type == state.Observer {
		props[observerPeerTypeKey] = "observer"
	}
	return props
}

func writeFile(path string, data []byte) error {
	if err := fileutil.WriteFile(path, data, &fileutil.WriteFileOptions{Atomic: true}); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// renderProperties emits one comment line followed by key=value lines in
// sorted key order.
func renderProperties(props map[string]string, comment string) []byte {
	var buf bytes.Buffer
	buf.WriteString("#" + comment + "\n")
	for _, key := range sortedKeys(props) {
		buf.WriteString(escape(key, true))
		buf.WriteByte('=')
		buf.WriteString(escape(props[key], false))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
