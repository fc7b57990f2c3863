//go:build !windows

package supervisor

import (
	"os"
	"syscall"
)

// terminate requests a graceful shutdown. The process may handle
// SIGTERM and exit cleanly, or ignore it; Stop escalates to Kill.
func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
