//go:build windows

package supervisor

import "os"

// terminate kills the process. Windows has no SIGTERM equivalent for
// console children started this way, so graceful and forced stop
// collapse into the same operation.
func terminate(p *os.Process) error {
	return p.Kill()
}
