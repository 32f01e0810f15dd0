//go:build windows

package monitor

import (
	"os/exec"
)

// setProcessGroup is a no-op on Windows, process groups are a Unix concept
func setProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup terminates the grading action process. Children spawned
// by the action are not tracked on Windows.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}

	_ = cmd.Process.Kill()
}
