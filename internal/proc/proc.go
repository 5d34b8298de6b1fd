// Package proc inspects and signals OS processes by PID.
package proc

import (
	"os"
	"time"
)

const pollInterval = 25 * time.Millisecond

// WaitExit polls until pid is gone or timeout elapses and reports whether
// the process exited.
func WaitExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for Alive(pid) {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}

	return true
}

// Terminate asks a child process to exit.
func Terminate(p *os.Process) error {
	return TerminatePID(p.Pid)
}
