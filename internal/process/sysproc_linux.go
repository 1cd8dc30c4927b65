//go:build linux

package process

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr sets Linux-specific process attributes on cmd.
// Destroy-on-interrupt children get Pdeathsig so they die with the
// supervisor. Leave-running children are moved to their own process group so
// a terminal interrupt aimed at the supervisor does not reach them.
func configureSysProcAttr(cmd *exec.Cmd, mode Mode) {
	if mode == ModeDestroyOnInterrupt {
		cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGKILL}
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
