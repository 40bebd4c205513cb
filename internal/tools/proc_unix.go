//go:build unix

package tools

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

func shellArgs(line string) (string, []string) {
	return "/bin/sh", []string{"-c", line}
}

// configureProcess places the shell in its own process group so that
// cancellation reaches every child it spawned (npx, python, node).
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
