//go:build windows

package backend

import "os/exec"

func setProcGroup(cmd *exec.Cmd) {}

func killProc(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
