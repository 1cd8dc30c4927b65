package process

import (
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/zksupervisor/internal/activity"
)

func waitExited(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	if ch == nil {
		t.Fatal("Done() returned nil for a launched child")
	}
	select {
	case <-ch:
	case <-time.After(10 * time.Second):
		t.Fatal("child did not exit in time")
	}
}

func TestMonitor_CapturesStreams(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		streams   Streams
		wantInfo  []string
		wantError []string
	}{
		"both": {
			streams:   StreamsBoth,
			wantInfo:  []string{"zookeeper: Starting zookeeper ... STARTED", "done"},
			wantError: []string{"zookeeper: warning"},
		},
		"stdout only": {
			streams:  StreamsStdout,
			wantInfo: []string{"zookeeper: Starting zookeeper ... STARTED", "done"},
		},
		"stderr only": {
			streams:   StreamsStderr,
			wantInfo:  []string{"done"},
			wantError: []string{"zookeeper: warning"},
		},
		"none": {
			streams:  StreamsNone,
			wantInfo: []string{"done"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var log activity.Buffer
			m := NewMonitor(&log, nil, time.Second)
			defer m.Close()

			cmd := exec.Command("sh", "-c", "echo 'Starting zookeeper ... STARTED'; echo warning >&2")
			err := m.Launch(ZooKeeper, cmd, Spec{SuccessMarker: "done", Streams: tc.streams})
			if err != nil {
				t.Fatalf("Launch() error: %v", err)
			}
			waitExited(t, m.Done(ZooKeeper))

			assertMessages(t, "info", log.Messages(activity.Info), tc.wantInfo)
			assertMessages(t, "error", log.Messages(activity.Error), tc.wantError)
		})
	}
}

func assertMessages(t *testing.T, kind string, got, want []string) {
	t.Helper()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("%s messages = %q, want %q", kind, got, want)
	}
}

func TestMonitor_ReportsFailure(t *testing.T) {
	t.Parallel()
	var log activity.Buffer
	m := NewMonitor(&log, nil, time.Second)

	if err := m.Launch(Cleanup, exec.Command("sh", "-c", "exit 3"), Spec{SuccessMarker: "Cleanup task completed"}); err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	waitExited(t, m.Done(Cleanup))

	errs := log.Messages(activity.Error)
	if len(errs) != 1 || !strings.HasPrefix(errs[0], "cleanup exited: ") {
		t.Errorf("error messages = %q", errs)
	}
	if info := log.Messages(activity.Info); len(info) != 0 {
		t.Errorf("success marker logged for failed child: %q", info)
	}
}

func TestMonitor_LaunchErrors(t *testing.T) {
	t.Parallel()
	m := NewMonitor(nil, nil, 0)

	if err := m.Launch(ZooKeeper, nil, Spec{}); !errors.Is(err, ErrNilCmd) {
		t.Errorf("nil cmd error = %v", err)
	}
	if err := m.Launch(ZooKeeper, &exec.Cmd{}, Spec{}); !errors.Is(err, ErrEmptyCmdPath) {
		t.Errorf("empty path error = %v", err)
	}
	if err := m.Launch(ZooKeeper, exec.Command("/does/not/exist"), Spec{}); err == nil {
		t.Error("expected start error for missing binary")
	}
	if m.Done(ZooKeeper) != nil {
		t.Error("failed launch left a tracked child")
	}
}

func TestMonitor_DestroyStopsChildQuietly(t *testing.T) {
	t.Parallel()
	var log activity.Buffer
	m := NewMonitor(&log, nil, 5*time.Second)

	err := m.Launch(Cleanup, exec.Command("sleep", "60"), Spec{Mode: ModeDestroyOnInterrupt, SuccessMarker: "x"})
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	done := m.Done(Cleanup)

	if err := m.Destroy(Cleanup); err != nil {
		t.Fatalf("Destroy() error: %v", err)
	}
	waitExited(t, done)

	if m.Done(Cleanup) != nil {
		t.Error("destroyed child still tracked")
	}
	if entries := log.Entries(); len(entries) != 0 {
		t.Errorf("destroy produced activity: %+v", entries)
	}
	if err := m.Destroy(Cleanup); err != nil {
		t.Errorf("second Destroy() error: %v", err)
	}
}

func TestMonitor_LaunchReplacesDestroyableChild(t *testing.T) {
	t.Parallel()
	m := NewMonitor(nil, nil, 5*time.Second)
	defer m.Close()

	if err := m.Launch(Cleanup, exec.Command("sleep", "60"), Spec{Mode: ModeDestroyOnInterrupt}); err != nil {
		t.Fatalf("first Launch() error: %v", err)
	}
	first := m.Done(Cleanup)

	if err := m.Launch(Cleanup, exec.Command("true"), Spec{Mode: ModeDestroyOnInterrupt}); err != nil {
		t.Fatalf("second Launch() error: %v", err)
	}
	waitExited(t, first)

	second := m.Done(Cleanup)
	if second == first {
		t.Error("Done() still returns the replaced child")
	}
	waitExited(t, second)
}

func TestMonitor_CloseLeavesRunningChildren(t *testing.T) {
	t.Parallel()
	m := NewMonitor(nil, nil, 5*time.Second)

	cmd := exec.Command("sleep", "60")
	if err := m.Launch(ZooKeeper, cmd, Spec{Mode: ModeLeaveRunning}); err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	done := m.Done(ZooKeeper)
	m.Close()

	select {
	case <-done:
		t.Fatal("leave-running child was stopped by Close")
	case <-time.After(100 * time.Millisecond):
	}
	_ = cmd.Process.Kill()
	waitExited(t, done)
}
