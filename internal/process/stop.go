package process

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// DefaultStopTimeout bounds Destroy when the monitor has no explicit timeout.
const DefaultStopTimeout = 10 * time.Second

// termGracePeriod caps the time between SIGTERM and SIGKILL. The stop
// timeout lowers it further when shorter.
const termGracePeriod = 5 * time.Second

// killDrainTimeout bounds the wait for the exit to be observed once the
// child has been sent SIGKILL or could not be signalled.
const killDrainTimeout = 10 * time.Second

// awaitExit reports whether the child's Wait goroutine observed the exit
// within d. After a true result c.waitErr holds the Wait error.
func (c *child) awaitExit(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-c.exited:
		return true
	case <-t.C:
		return false
	}
}

// terminate sends SIGTERM, schedules SIGKILL after the grace period and waits
// up to timeout for the exit. A child still running at the deadline is
// killed and given killDrainTimeout to be reaped.
func (c *child) terminate(timeout time.Duration) error {
	proc := c.cmd.Process
	if proc == nil {
		return nil
	}

	if err := proc.Signal(syscall.SIGTERM); err != nil {
		// Signal only fails once the process is gone.
		if !c.awaitExit(killDrainTimeout) {
			return fmt.Errorf("pid %d: exit not observed after failed SIGTERM", proc.Pid)
		}
		return unexpectedExit(c.waitErr)
	}

	killTimer := time.AfterFunc(min(termGracePeriod, timeout), func() {
		_ = proc.Kill()
	})
	defer killTimer.Stop()

	if c.awaitExit(timeout) {
		return unexpectedExit(c.waitErr)
	}

	_ = proc.Kill()
	if !c.awaitExit(killDrainTimeout) {
		return fmt.Errorf("pid %d: still not reaped %s after SIGKILL", proc.Pid, killDrainTimeout)
	}
	if err := unexpectedExit(c.waitErr); err != nil {
		return fmt.Errorf("after stop timeout: %w", err)
	}
	return nil
}

// unexpectedExit filters a Wait error seen after terminate signalled the
// child. Exits by SIGTERM or SIGKILL, and pipes still held open by a
// grandchild, count as a clean stop and yield nil.
func unexpectedExit(err error) error {
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			if sig := status.Signal(); sig == syscall.SIGTERM || sig == syscall.SIGKILL {
				return nil
			}
		}
	}
	return err
}
