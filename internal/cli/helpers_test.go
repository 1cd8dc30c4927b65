package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/zksupervisor/internal/configstore"
)

// install is a fake ZooKeeper installation plus the files the CLI keeps
// state in.
type install struct {
	root     string
	dir      string
	data     string
	script   string
	jps      string
	listing  string
	calls    string
	lockFile string
	db       string
}

func writeExec(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newInstall(t *testing.T) *install {
	t.Helper()
	root := t.TempDir()
	in := &install{
		root:     root,
		dir:      filepath.Join(root, "zookeeper"),
		data:     filepath.Join(root, "data"),
		jps:      filepath.Join(root, "jps"),
		listing:  filepath.Join(root, "listing"),
		calls:    filepath.Join(root, "calls"),
		lockFile: filepath.Join(root, "run", "zksupervisor.lock"),
		db:       filepath.Join(root, "activity.db"),
	}
	in.script = filepath.Join(in.dir, "bin", "zkServer.sh")
	for _, d := range []string{
		filepath.Join(in.dir, "bin"), filepath.Join(in.dir, "conf"),
		filepath.Join(in.dir, "lib"), in.data,
	} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	for _, f := range []string{"zookeeper-3.4.14.jar", "lib/log4j-1.2.17.jar"} {
		if err := os.WriteFile(filepath.Join(in.dir, f), nil, 0o644); err != nil {
			t.Fatalf("write jar: %v", err)
		}
	}
	writeExec(t, in.script, "echo \"$@\" >> '"+in.calls+"'\necho \"Starting zookeeper ... STARTED\"\n")
	writeExec(t, in.jps, "[ -f '"+in.listing+"' ] && cat '"+in.listing+"'\nexit 0\n")
	return in
}

func (in *install) config() fileConfig {
	return fileConfig{
		Hostname:         "zk1",
		Servers:          "S:1:zk1,S:2:zk2",
		InstallDirectory: in.dir,
		DataDirectory:    in.data,
		ControlScript:    in.script,
		ListCommand:      in.jps,
		ActivityDB:       in.db,
		LockFile:         in.lockFile,
		ZooKeeper:        configstore.Values{ClientPort: 2281},
	}.withDefaults()
}

// writeConfig marshals c to a file and returns its path.
func (in *install) writeConfig(t *testing.T, c fileConfig) string {
	t.Helper()
	data, err := yaml.Marshal(c)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(in.root, "config.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func (in *install) setListing(t *testing.T, content string) {
	t.Helper()
	if err := os.WriteFile(in.listing, []byte(content), 0o644); err != nil {
		t.Fatalf("write listing: %v", err)
	}
}

// run executes the CLI with args. setup, if non-nil, adjusts the env
// before execution.
func run(t *testing.T, setup func(e *env), args ...string) (string, string, error) {
	t.Helper()
	root, e := newRootCommand()
	if setup != nil {
		setup(e)
	}
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
