// Package supervisor manages named long-running child processes for
// mrmd services: it launches them with merged stdout/stderr, drains
// their output into bounded buffers, and tears them down gracefully.
package supervisor

import (
	"bufio"
	"errors"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// StartOptions configures a child process launch.
type StartOptions struct {
	// Dir is the working directory. Empty means inherit.
	Dir string

	// Env is overlaid onto the inherited environment, not a replacement.
	Env map[string]string

	// Venv is a Python virtual environment root. Only used by StartPython.
	Venv string

	// OnOutput is invoked synchronously for each output line, in
	// emission order, before the next line is read. A panicking
	// callback is logged and absorbed; it never stops the drain loop.
	OnOutput func(line string)
}

// ProcessStatus is a point-in-time snapshot of one managed process.
type ProcessStatus struct {
	Running  bool `json:"running"`
	PID      *int `json:"pid"`
	ExitCode *int `json:"exitCode"`
}

// managedProcess is one registry entry. The handle is owned
// exclusively by the supervisor; nothing else signals it.
type managedProcess struct {
	name     string
	cmd      *exec.Cmd
	out      *outputRing
	pipe     *os.File // read end of the merged stdout/stderr pipe
	onOutput func(string)

	exited   chan struct{} // closed by the waiter once the process is reaped
	exitCode int           // valid only after exited is closed
	drained  chan struct{} // closed when the drain loop returns
}

// Supervisor owns the name -> process registry. At most one process
// exists per name; the registry mutex covers check-and-insert in one
// critical section so concurrent Starts for a name cannot both win.
type Supervisor struct {
	mu     sync.Mutex
	procs  map[string]*managedProcess
	logger *log.Logger
}

// New creates a supervisor. A nil logger falls back to the default logger.
func New(logger *log.Logger) *Supervisor {
	if logger == nil {
		logger = log.Default()
	}
	return &Supervisor{
		procs:  make(map[string]*managedProcess),
		logger: logger,
	}
}

// Start launches command under name. It returns false, after logging,
// on a name collision or any spawn failure; it never returns an error.
// On true return the process is running and its drain loop is active.
func (s *Supervisor) Start(name, command string, args []string, opts StartOptions) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.procs[name]; exists {
		s.logger.Printf("Process %s already running", name)
		return false
	}

	// Merge both output streams into one pipe. The parent closes its
	// write end right after spawn so the reader sees EOF at child exit.
	pr, pw, err := os.Pipe()
	if err != nil {
		s.logger.Printf("Failed to start %s: %v", name, err)
		return false
	}

	cmd := exec.Command(command, args...)
	cmd.Dir = opts.Dir
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.Env = overlayEnv(opts.Env)

	s.logger.Printf("Starting %s: %s %s", name, command, strings.Join(args, " "))

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		s.logger.Printf("Failed to start %s: %v", name, err)
		return false
	}
	_ = pw.Close()

	p := &managedProcess{
		name:     name,
		cmd:      cmd,
		out:      newOutputRing(maxOutputLines),
		pipe:     pr,
		onOutput: opts.OnOutput,
		exited:   make(chan struct{}),
		drained:  make(chan struct{}),
	}
	s.procs[name] = p

	go s.wait(p)
	go s.drain(p)

	s.logger.Printf("Started %s (PID %d)", name, cmd.Process.Pid)
	return true
}

// wait reaps the process and records its exit code. The registry entry
// is deliberately left in place on self-exit; only Stop removes it.
func (s *Supervisor) wait(p *managedProcess) {
	err := p.cmd.Wait()
	if p.cmd.ProcessState != nil {
		p.exitCode = p.cmd.ProcessState.ExitCode()
	} else {
		p.exitCode = -1
	}
	if err != nil {
		s.logger.Printf("Process %s exited: %v", p.name, err)
	}
	close(p.exited)
}

// drain reads the merged output stream line by line until EOF or until
// Stop closes the read end. Lines are delivered to the buffer and the
// callback in emission order, never reordered or duplicated.
func (s *Supervisor) drain(p *managedProcess) {
	defer close(p.drained)

	scanner := bufio.NewScanner(p.pipe)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !utf8.ValidString(line) {
			line = strings.ToValidUTF8(line, string(utf8.RuneError))
		}
		line = strings.TrimRight(line, " \t\r\n")

		p.out.Append(line)
		if p.onOutput != nil {
			s.deliver(p, line)
		}
	}
	// A read error here is expected when Stop closes the pipe; absorb it.
	if err := scanner.Err(); err != nil && !isClosedPipe(err) {
		s.logger.Printf("Error reading output from %s: %v", p.name, err)
	}
}

// deliver invokes the output callback, absorbing panics so a bad
// callback cannot kill the drain loop.
func (s *Supervisor) deliver(p *managedProcess, line string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("Output callback for %s panicked: %v", p.name, r)
		}
	}()
	p.onOutput(line)
}

// IsRunning reports whether name maps to a process that has not yet
// exited. This is a point-in-time observation: the process may exit
// immediately after it returns true.
func (s *Supervisor) IsRunning(name string) bool {
	s.mu.Lock()
	p, ok := s.procs[name]
	s.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// Output returns up to n of the most recent output lines for name, in
// emission order. Unknown names yield nil. It never blocks.
func (s *Supervisor) Output(name string, n int) []string {
	s.mu.Lock()
	p, ok := s.procs[name]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return p.out.Tail(n)
}

// Stop terminates the named process: graceful signal first, then a
// forced kill if it has not exited within timeout. Stopping an unknown
// or already-exited name succeeds trivially. On return the name is
// free for reuse and no drain loop for it remains active.
func (s *Supervisor) Stop(name string, timeout time.Duration) bool {
	s.mu.Lock()
	p, ok := s.procs[name]
	s.mu.Unlock()
	if !ok {
		return true
	}

	select {
	case <-p.exited:
		// Already exited on its own; no signals needed.
	default:
		s.logger.Printf("Stopping %s (PID %d)", name, p.cmd.Process.Pid)

		// A signal failure means the process vanished between the
		// check and the signal. That is the terminal state we want.
		if err := terminate(p.cmd.Process); err != nil {
			break
		}

		select {
		case <-p.exited:
		case <-time.After(timeout):
			s.logger.Printf("%s did not stop gracefully, killing", name)
			_ = p.cmd.Process.Kill()
			// Kill cannot be ignored; the wait is unbounded by design.
			<-p.exited
		}
	}

	// Cancel the drain loop and wait for it before freeing the name,
	// so no reader is left against a closed handle.
	_ = p.pipe.Close()
	<-p.drained

	s.mu.Lock()
	delete(s.procs, name)
	s.mu.Unlock()

	s.logger.Printf("Stopped %s", name)
	return true
}

// StopAll stops every registered process sequentially with the same
// per-process timeout. The registry is empty when it returns.
func (s *Supervisor) StopAll(timeout time.Duration) {
	s.mu.Lock()
	names := make([]string, 0, len(s.procs))
	for name := range s.procs {
		names = append(names, name)
	}
	s.mu.Unlock()

	for _, name := range names {
		s.Stop(name, timeout)
	}
}

// Status returns a snapshot of every registry entry. PID is present
// only while running; ExitCode only once the process has been reaped.
func (s *Supervisor) Status() map[string]ProcessStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := make(map[string]ProcessStatus, len(s.procs))
	for name, p := range s.procs {
		var st ProcessStatus
		select {
		case <-p.exited:
			code := p.exitCode
			st.ExitCode = &code
		default:
			st.Running = true
			pid := p.cmd.Process.Pid
			st.PID = &pid
		}
		status[name] = st
	}
	return status
}

// overlayEnv returns the inherited environment with extra overlaid.
func overlayEnv(extra map[string]string) []string {
	env := os.Environ()
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env
}

// isClosedPipe reports whether err came from reading a pipe we closed.
func isClosedPipe(err error) bool {
	return errors.Is(err, os.ErrClosed)
}
