package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giantswarm/zksupervisor/internal/activity"
)

// pipeWaitDelay bounds how long Wait keeps copying output after the child
// exits. The control script backgrounds the JVM, which may inherit the pipes.
const pipeWaitDelay = 2 * time.Second

type child struct {
	cmd       *exec.Cmd
	spec      Spec
	exited    chan struct{} // closed once waitErr is set
	waitErr   error
	destroyed atomic.Bool
}

// Monitor launches and tracks children by ProcessType. It is safe for
// concurrent use.
type Monitor struct {
	log         activity.Log
	logger      *slog.Logger
	stopTimeout time.Duration

	mu       sync.Mutex
	children map[ProcessType]*child
}

// NewMonitor creates a Monitor that forwards child output and exit status to
// log. A nil log discards them; a nil logger uses slog.Default(). stopTimeout
// bounds Destroy; zero uses DefaultStopTimeout.
func NewMonitor(log activity.Log, logger *slog.Logger, stopTimeout time.Duration) *Monitor {
	if log == nil {
		log = activity.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}
	return &Monitor{
		log:         log,
		logger:      logger,
		stopTimeout: stopTimeout,
		children:    make(map[ProcessType]*child),
	}
}

// Launch starts cmd and tracks it under pt. A previously tracked child of the
// same type is forgotten; if it was launched with ModeDestroyOnInterrupt and
// is still running it is stopped first.
//
// Launch sets cmd's Stdout, Stderr, SysProcAttr and WaitDelay. The cmd must
// already have its Path, Args and Dir set.
func (m *Monitor) Launch(pt ProcessType, cmd *exec.Cmd, spec Spec) error {
	if cmd == nil {
		return ErrNilCmd
	}
	if cmd.Path == "" {
		return ErrEmptyCmdPath
	}

	m.mu.Lock()
	prev := m.children[pt]
	delete(m.children, pt)
	m.mu.Unlock()
	if prev != nil && prev.spec.Mode == ModeDestroyOnInterrupt {
		m.stop(pt, prev)
	}

	stdout := m.streamWriter(pt, spec.Streams&StreamsStdout != 0, activity.Info)
	stderr := m.streamWriter(pt, spec.Streams&StreamsStderr != 0, activity.Error)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = pipeWaitDelay
	configureSysProcAttr(cmd, spec.Mode)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", pt, err)
	}

	c := &child{cmd: cmd, spec: spec, exited: make(chan struct{})}

	m.mu.Lock()
	m.children[pt] = c
	m.mu.Unlock()

	// The only cmd.Wait call for this child.
	go func() {
		err := cmd.Wait()
		flushWriter(stdout)
		flushWriter(stderr)
		if errors.Is(err, exec.ErrWaitDelay) {
			err = nil
		}
		m.reportExit(pt, c, err)
		c.waitErr = err
		close(c.exited)
	}()

	m.logger.Debug("process launched", "type", string(pt), "pid", cmd.Process.Pid, "mode", spec.Mode.String())
	return nil
}

func (m *Monitor) streamWriter(pt ProcessType, captured bool, sev activity.Severity) io.Writer {
	if !captured {
		return io.Discard
	}
	return &lineWriter{log: m.log, sev: sev, prefix: string(pt)}
}

func flushWriter(w io.Writer) {
	if lw, ok := w.(*lineWriter); ok {
		lw.flush()
	}
}

func (m *Monitor) reportExit(pt ProcessType, c *child, err error) {
	if c.destroyed.Load() {
		return
	}
	if err != nil {
		m.log.Add(activity.Error, fmt.Sprintf("%s exited: %v", pt, err))
		return
	}
	if c.spec.SuccessMarker != "" {
		m.log.Add(activity.Info, c.spec.SuccessMarker)
	}
}

// Destroy stops the child tracked under pt with SIGTERM, escalating to
// SIGKILL, and stops tracking it. It returns nil when nothing is tracked.
func (m *Monitor) Destroy(pt ProcessType) error {
	m.mu.Lock()
	c := m.children[pt]
	delete(m.children, pt)
	m.mu.Unlock()
	if c == nil {
		return nil
	}
	return m.stop(pt, c)
}

func (m *Monitor) stop(pt ProcessType, c *child) error {
	c.destroyed.Store(true)
	pid := c.cmd.Process.Pid
	if err := c.terminate(m.stopTimeout); err != nil {
		m.logger.Warn("process stop failed; process may be orphaned",
			"type", string(pt), "pid", pid, "error", err)
		return fmt.Errorf("stop %s: %w", pt, err)
	}
	return nil
}

// Done returns a channel closed when the child tracked under pt exits, or
// nil when nothing is tracked. An exited child stays tracked until it is
// replaced or destroyed.
func (m *Monitor) Done(pt ProcessType) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.children[pt]; c != nil {
		return c.exited
	}
	return nil
}

// Close destroys every ModeDestroyOnInterrupt child and forgets the rest,
// which keep running.
func (m *Monitor) Close() {
	m.mu.Lock()
	children := m.children
	m.children = make(map[ProcessType]*child)
	m.mu.Unlock()

	for pt, c := range children {
		if c.spec.Mode != ModeDestroyOnInterrupt {
			continue
		}
		_ = m.stop(pt, c)
	}
}
