//go:build !windows

package process

import "syscall"

// KillGroup sends SIGKILL to the process group led by pid, which takes down
// Chrome together with its renderer and GPU helpers. Non-positive pids are
// ignored: -0 would target our own group.
func KillGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; the launcher's own Kill runs afterwards.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
