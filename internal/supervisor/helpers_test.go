package supervisor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/giantswarm/zksupervisor/internal/activity"
	"github.com/giantswarm/zksupervisor/internal/configstore"
	"github.com/giantswarm/zksupervisor/internal/process"
	"github.com/giantswarm/zksupervisor/internal/state"
)

// fixture is a fake ZooKeeper installation with scripts standing in for the
// control script and jps.
type fixture struct {
	paths   state.Paths
	listing string // file the fake jps prints
	calls   string // file the fake control script appends its arguments to
	jps     string
}

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	install := filepath.Join(root, "zookeeper")
	f := &fixture{
		paths: state.Paths{
			DataDirectory:    filepath.Join(root, "data"),
			LogDirectory:     filepath.Join(root, "txlog"),
			ConfigDirectory:  filepath.Join(install, "conf"),
			InstallDirectory: install,
			ControlScript:    filepath.Join(install, "bin", "zkServer.sh"),
			JarPath:          filepath.Join(install, "zookeeper-3.4.14.jar"),
			ClassPath:        []string{filepath.Join(install, "lib", "log4j-1.2.17.jar")},
		},
		listing: filepath.Join(root, "listing"),
		calls:   filepath.Join(root, "calls"),
		jps:     filepath.Join(root, "jps"),
	}
	for _, dir := range []string{
		f.paths.DataDirectory, f.paths.LogDirectory, f.paths.ConfigDirectory,
		filepath.Join(install, "bin"), filepath.Join(install, "lib"),
	} {
		mkdir(t, dir)
	}
	for _, jar := range append([]string{f.paths.JarPath}, f.paths.ClassPath...) {
		if err := os.WriteFile(jar, nil, 0o644); err != nil {
			t.Fatalf("write jar: %v", err)
		}
	}
	writeScript(t, f.paths.ControlScript,
		"echo \"$@\" >> '"+f.calls+"'\necho \"ZooKeeper JMX enabled by default\"\n")
	writeScript(t, f.jps, "[ -f '"+f.listing+"' ] && cat '"+f.listing+"'\nexit 0\n")
	return f
}

// setListing makes the fake jps report content; empty removes the listing.
func (f *fixture) setListing(t *testing.T, content string) {
	t.Helper()
	if content == "" {
		if err := os.Remove(f.listing); err != nil && !os.IsNotExist(err) {
			t.Fatalf("remove listing: %v", err)
		}
		return
	}
	tmp := f.listing + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		t.Fatalf("write listing: %v", err)
	}
	if err := os.Rename(tmp, f.listing); err != nil {
		t.Fatalf("rename listing: %v", err)
	}
}

func (f *fixture) config() Config {
	return Config{
		ListCommand:   f.jps,
		ProcessMarker: "QuorumPeerMain",
		JavaBinary:    "java",
		KillRounds:    3,
		KillWaitUnit:  time.Millisecond,
		PollInterval:  10 * time.Millisecond,
	}
}

type launch struct {
	pt   process.ProcessType
	args []string
	dir  string
	spec process.Spec
}

// recordingMonitor records launches without starting anything.
type recordingMonitor struct {
	mu        sync.Mutex
	launches  []launch
	destroyed []process.ProcessType
	launchErr error
}

func (m *recordingMonitor) Launch(pt process.ProcessType, cmd *exec.Cmd, spec process.Spec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.launchErr != nil {
		return m.launchErr
	}
	m.launches = append(m.launches, launch{pt: pt, args: cmd.Args, dir: cmd.Dir, spec: spec})
	return nil
}

func (m *recordingMonitor) Destroy(pt process.ProcessType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = append(m.destroyed, pt)
	return nil
}

func (m *recordingMonitor) Launches() []launch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]launch(nil), m.launches...)
}

// stubTerminator runs onForce for every forced kill.
type stubTerminator struct {
	mu       sync.Mutex
	graceful int
	forced   []string
	onForce  func(n int)
}

func (s *stubTerminator) Graceful(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graceful++
	return 0, nil
}

func (s *stubTerminator) Force(_ context.Context, pid string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced = append(s.forced, pid)
	if s.onForce != nil {
		s.onForce(len(s.forced))
	}
	return 0, nil
}

type recordingMetrics struct {
	mu    sync.Mutex
	ops   []string
	kills []int
}

func (m *recordingMetrics) ObserveOperation(op, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, op+"/"+result)
}

func (m *recordingMetrics) ObserveKill(attempts int, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kills = append(m.kills, attempts)
}

type testEnv struct {
	sup     *Supervisor
	monitor *recordingMonitor
	log     *activity.Buffer
	metrics *recordingMetrics
}

func newTestEnv(t *testing.T, f *fixture, provider state.Provider, term *stubTerminator) *testEnv {
	t.Helper()
	env := &testEnv{
		monitor: &recordingMonitor{},
		log:     &activity.Buffer{},
		metrics: &recordingMetrics{},
	}
	p := Params{
		Config:  f.config(),
		Store:   configstore.Values{},
		State:   provider,
		Monitor: env.monitor,
		Log:     env.log,
		Metrics: env.metrics,
	}
	if term != nil {
		p.Terminator = term
	}
	sup, err := New(p)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	env.sup = sup
	return env
}
