package supervisor

import (
	"context"
	"os/exec"

	"github.com/giantswarm/zksupervisor/internal/process"
	"github.com/giantswarm/zksupervisor/internal/state"
)

// execTerminator stops the server with "<control script> stop" and kills it
// with "kill -9 <pid>".
type execTerminator struct {
	paths state.Paths
}

func (t execTerminator) Graceful(ctx context.Context) (int, error) {
	cmd := exec.Command(t.paths.ControlScript, "stop") //nolint:gosec // path from operator config
	cmd.Dir = t.paths.InstallDirectory
	return process.Run(ctx, cmd)
}

func (t execTerminator) Force(ctx context.Context, pid string) (int, error) {
	return process.Run(ctx, exec.Command("kill", "-9", pid)) //nolint:gosec // pid parsed from jps
}
