package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Run starts cmd, waits for it and returns its exit code. A non-zero exit is
// reported as a code with a nil error; a process killed by a signal reports
// -1. If ctx is done first the process is killed and ctx's error returned.
func Run(ctx context.Context, cmd *exec.Cmd) (int, error) {
	if cmd == nil {
		return 0, ErrNilCmd
	}
	if cmd.Path == "" {
		return 0, ErrEmptyCmdPath
	}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", cmd.Path, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return 0, ctx.Err()
	}

	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("wait %s: %w", cmd.Path, err)
}
