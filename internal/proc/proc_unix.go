//go:build !windows

package proc

import "golang.org/x/sys/unix"

// Alive reports whether a process with pid exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)

	return err == nil || err == unix.EPERM
}

// TerminatePID sends SIGTERM so the process can exit cleanly.
func TerminatePID(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}

// KillPID sends SIGKILL.
func KillPID(pid int) error {
	return unix.Kill(pid, unix.SIGKILL)
}
