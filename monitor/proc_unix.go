//go:build !windows

package monitor

import (
	"os/exec"
	"syscall"
)

// setProcessGroup places the grading action in its own process group so a
// timeout kill reaches every child it spawned
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup forcibly terminates the grading action's process group.
// Scoped to the group on purpose: the old monitor swept unrelated processes
// system-wide by name, which also killed other users' sessions.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}

	pid := cmd.Process.Pid
	if pid <= 0 {
		return
	}

	if pgid, err := syscall.Getpgid(pid); err == nil && pgid > 0 {
		// Negative PGID targets the full process group.
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		return
	}

	_ = cmd.Process.Kill()
}
