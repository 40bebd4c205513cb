//go:build !unix

package tools

import "os/exec"

func shellArgs(line string) (string, []string) {
	return "cmd", []string{"/C", line}
}

func configureProcess(cmd *exec.Cmd) {}
