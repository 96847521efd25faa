//go:build !windows

package process

import "syscall"

// KillGroup sends SIGKILL to the process group led by pid (negative PID),
// taking the browser's renderer and GPU children with it. Errors are ignored.
func KillGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// Alive reports whether pid names a running process.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}
