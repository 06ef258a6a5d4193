//go:build unix

package backend

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcGroup places the subprocess in its own process group so a
// timeout kill reaches any children the backend spawned (git, dolt).
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProc kills the whole process group. Falls back to killing the
// single process if the group signal fails.
func killProc(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL); err == nil {
		return nil
	}
	return cmd.Process.Kill()
}
