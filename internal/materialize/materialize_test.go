package materialize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/zksupervisor/internal/activity"
	"github.com/giantswarm/zksupervisor/internal/state"
)

func testPaths(t *testing.T) state.Paths {
	t.Helper()
	root := t.TempDir()
	p := state.Paths{
		DataDirectory:   filepath.Join(root, "data"),
		ConfigDirectory: filepath.Join(root, "conf"),
	}
	if err := os.MkdirAll(p.ConfigDirectory, 0o755); err != nil {
		t.Fatalf("mkdir conf: %v", err)
	}
	return p
}

func testConfig() state.InstanceConfig {
	return state.InstanceConfig{
		ClientPort:   2181,
		ConnectPort:  2888,
		ElectionPort: 3888,
		Properties:   map[string]string{"tickTime": "2000"},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

// configLines returns zoo.cfg without its generated comment line.
func configLines(t *testing.T, p state.Paths) []string {
	t.Helper()
	content := readFile(t, filepath.Join(p.ConfigDirectory, ConfigFileName))
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if !strings.HasPrefix(lines[0], "#"+generatedByComment) {
		t.Fatalf("first line = %q, want generated comment", lines[0])
	}
	return lines[1:]
}

func TestMaterialize_EnsembleMember(t *testing.T) {
	t.Parallel()
	p := testPaths(t)
	servers := state.ServerList{
		{ID: 1, Hostname: "zk1", Type: state.Standard},
		{ID: 2, Hostname: "zk2", Type: state.Standard},
		{ID: 3, Hostname: "zk3", Type: state.Observer},
	}
	us := servers.FindByHostname("zk2")

	var log activity.Buffer
	m := &Materializer{Log: &log}
	if err := m.Materialize(testConfig(), us, servers, p); err != nil {
		t.Fatalf("Materialize() error: %v", err)
	}

	if got := readFile(t, filepath.Join(p.DataDirectory, IDFileName)); got != "2\n" {
		t.Errorf("myid = %q, want %q", got, "2\n")
	}

	want := []string{
		"clientPort=2181",
		"dataDir=" + p.DataDirectory,
		"server.1=zk1:2888:3888",
		"server.2=zk2:2888:3888",
		"server.3=zk3:2888:3888:observer",
		"tickTime=2000",
	}
	got := configLines(t, p)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("zoo.cfg lines = %q, want %q", got, want)
	}
	if msgs := log.Messages(activity.Info); len(msgs) != 0 {
		t.Errorf("unexpected activity: %v", msgs)
	}
}

func TestMaterialize_ObserverSetsPeerType(t *testing.T) {
	t.Parallel()
	p := testPaths(t)
	servers := state.ServerList{
		{ID: 1, Hostname: "zk1", Type: state.Standard},
		{ID: 5, Hostname: "zk5", Type: state.Observer},
	}

	m := &Materializer{}
	if err := m.Materialize(testConfig(), servers.FindByHostname("zk5"), servers, p); err != nil {
		t.Fatalf("Materialize() error: %v", err)
	}
	if got := readFile(t, filepath.Join(p.DataDirectory, IDFileName)); got != "5\n" {
		t.Errorf("myid = %q", got)
	}
	found := false
	for _, l := range configLines(t, p) {
		if l == "peerType=observer" {
			found = true
		}
	}
	if !found {
		t.Error("zoo.cfg missing peerType=observer")
	}
}

func TestMaterialize_StandaloneRemovesIDFile(t *testing.T) {
	t.Parallel()
	p := testPaths(t)
	if err := os.MkdirAll(p.DataDirectory, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	idFile := filepath.Join(p.DataDirectory, IDFileName)
	if err := os.WriteFile(idFile, []byte("7\n"), 0o644); err != nil {
		t.Fatalf("seed myid: %v", err)
	}

	var log activity.Buffer
	m := &Materializer{Log: &log}
	if err := m.Materialize(testConfig(), nil, nil, p); err != nil {
		t.Fatalf("Materialize() error: %v", err)
	}

	if _, err := os.Stat(idFile); !os.IsNotExist(err) {
		t.Errorf("myid still present, stat err = %v", err)
	}
	info := log.Messages(activity.Info)
	if len(info) != 1 || info[0] != "Starting in standalone mode" {
		t.Errorf("info activity = %v", info)
	}
	for _, l := range configLines(t, p) {
		if strings.HasPrefix(l, "server.") {
			t.Errorf("standalone zoo.cfg has server line %q", l)
		}
	}
}

func TestMaterialize_StandaloneReportsUndeletableIDFile(t *testing.T) {
	t.Parallel()
	p := testPaths(t)
	// A non-empty directory named myid cannot be removed with os.Remove.
	if err := os.MkdirAll(filepath.Join(p.DataDirectory, IDFileName, "x"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var log activity.Buffer
	m := &Materializer{Log: &log}
	if err := m.Materialize(testConfig(), nil, nil, p); err != nil {
		t.Fatalf("Materialize() error: %v", err)
	}
	errs := log.Messages(activity.Error)
	if len(errs) != 1 || !strings.HasPrefix(errs[0], "Could not delete ID file: ") {
		t.Errorf("error activity = %v", errs)
	}
}

func TestMaterialize_OptionalFiles(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		javaEnv   string
		log4j     string
		wantJava  bool
		wantLog4j bool
	}{
		"both blank": {javaEnv: "", log4j: "  \n", wantJava: false, wantLog4j: false},
		"java env only": {
			javaEnv:  "export JVMFLAGS=\"-Xmx1g\"\n",
			wantJava: true,
		},
		"both set": {
			javaEnv:   "export JVMFLAGS=\"-Xmx1g\"\n",
			log4j:     "log4j.rootLogger=INFO, CONSOLE\n",
			wantJava:  true,
			wantLog4j: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p := testPaths(t)
			cfg := testConfig()
			cfg.JavaEnvironment = tc.javaEnv
			cfg.Log4jProperties = tc.log4j

			m := &Materializer{}
			if err := m.Materialize(cfg, nil, nil, p); err != nil {
				t.Fatalf("Materialize() error: %v", err)
			}

			javaPath := filepath.Join(p.ConfigDirectory, JavaEnvFileName)
			if _, err := os.Stat(javaPath); (err == nil) != tc.wantJava {
				t.Errorf("java.env exists = %v, want %v", err == nil, tc.wantJava)
			}
			if tc.wantJava && readFile(t, javaPath) != tc.javaEnv {
				t.Errorf("java.env content mismatch")
			}
			log4jPath := filepath.Join(p.ConfigDirectory, Log4jFileName)
			if _, err := os.Stat(log4jPath); (err == nil) != tc.wantLog4j {
				t.Errorf("log4j.properties exists = %v, want %v", err == nil, tc.wantLog4j)
			}
		})
	}
}

func TestMaterialize_BlankLeavesExistingFile(t *testing.T) {
	t.Parallel()
	p := testPaths(t)
	javaPath := filepath.Join(p.ConfigDirectory, JavaEnvFileName)
	if err := os.WriteFile(javaPath, []byte("keep me\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	m := &Materializer{}
	if err := m.Materialize(testConfig(), nil, nil, p); err != nil {
		t.Fatalf("Materialize() error: %v", err)
	}
	if got := readFile(t, javaPath); got != "keep me\n" {
		t.Errorf("java.env = %q, want untouched", got)
	}
}

func TestMaterialize_CommentUsesClock(t *testing.T) {
	t.Parallel()
	p := testPaths(t)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	m := &Materializer{Now: func() time.Time { return fixed }}
	if err := m.Materialize(testConfig(), nil, nil, p); err != nil {
		t.Fatalf("Materialize() error: %v", err)
	}
	content := readFile(t, filepath.Join(p.ConfigDirectory, ConfigFileName))
	if !strings.HasPrefix(content, "#"+generatedByComment+" - "+fixed.Format(time.UnixDate)+"\n") {
		t.Errorf("header = %q", strings.SplitN(content, "\n", 2)[0])
	}
}

func TestMaterialize_ConfigWriteFails(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	blocker := filepath.Join(root, "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	p := state.Paths{
		DataDirectory:   t.TempDir(),
		ConfigDirectory: filepath.Join(blocker, "conf"),
	}

	m := &Materializer{}
	err := m.Materialize(testConfig(), nil, nil, p)
	if err == nil {
		t.Fatal("expected error when the config directory cannot be created")
	}
	if !strings.Contains(err.Error(), ConfigFileName) {
		t.Errorf("error = %v, want it to name %s", err, ConfigFileName)
	}
}

func TestProperties_Overrides(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Properties = map[string]string{
		"clientPort": "9999",
		"server.1":   "stale:1:2",
		"dataDir":    "/var/zk",
		"dataLogDir": "/var/zk-log",
		"initLimit":  "10",
	}
	servers := state.ServerList{{ID: 1, Hostname: "zk1"}}
	paths := state.Paths{DataDirectory: "/data/zk", LogDirectory: "/txlog/zk"}

	props := Properties(cfg, servers.FindByHostname("zk1"), servers, paths)
	want := map[string]string{
		"clientPort": "2181",
		"server.1":   "zk1:2888:3888",
		"dataDir":    "/data/zk",
		"dataLogDir": "/txlog/zk",
		"initLimit":  "10",
	}
	for key, v := range want {
		if props[key] != v {
			t.Errorf("%s = %q, want %q", key, props[key], v)
		}
	}
	if _, ok := props[observerPeerTypeKey]; ok {
		t.Error("peerType set for a standard member")
	}
	if cfg.Properties["clientPort"] != "9999" {
		t.Error("Properties mutated its input")
	}
}

func TestProperties_DataDirsFromPaths(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		paths       state.Paths
		base        map[string]string
		wantDataDir string
		wantLogDir  string
	}{
		"both set": {
			paths:       state.Paths{DataDirectory: "/d", LogDirectory: "/l"},
			wantDataDir: "/d",
			wantLogDir:  "/l",
		},
		"log dir unset leaves dataLogDir out": {
			paths:       state.Paths{DataDirectory: "/d"},
			wantDataDir: "/d",
		},
		"empty paths keep the base properties": {
			base:        map[string]string{"dataDir": "/base", "dataLogDir": "/base-log"},
			wantDataDir: "/base",
			wantLogDir:  "/base-log",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			cfg.Properties = tc.base

			props := Properties(cfg, nil, nil, tc.paths)
			if props[dataDirKey] != tc.wantDataDir {
				t.Errorf("dataDir = %q, want %q", props[dataDirKey], tc.wantDataDir)
			}
			got, ok := props[dataLogDirKey]
			if tc.wantLogDir == "" && ok {
				t.Errorf("dataLogDir = %q, want unset", got)
			}
			if tc.wantLogDir != "" && got != tc.wantLogDir {
				t.Errorf("dataLogDir = %q, want %q", got, tc.wantLogDir)
			}
		})
	}
}
