//go:build !windows

package supervisor

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"
	"unicode/utf8"
)

func newTestSupervisor() *Supervisor {
	return New(log.New(io.Discard, "", 0))
}

// shell starts /bin/sh -c script under name and fails the test if the
// launch is rejected.
func shell(t *testing.T, s *Supervisor, name, script string, opts StartOptions) {
	t.Helper()
	if !s.Start(name, "/bin/sh", []string{"-c", script}, opts) {
		t.Fatalf("failed to start %s", name)
	}
}

// waitFor polls cond until it is true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStartDuplicateName(t *testing.T) {
	s := newTestSupervisor()
	defer s.StopAll(time.Second)

	shell(t, s, "svc", "sleep 30", StartOptions{})
	if s.Start("svc", "/bin/sh", []string{"-c", "sleep 30"}, StartOptions{}) {
		t.Error("second start with same name should fail")
	}
	if n := len(s.Status()); n != 1 {
		t.Errorf("expected 1 registry entry, got %d", n)
	}
}

func TestStopUnknownName(t *testing.T) {
	s := newTestSupervisor()

	if !s.Stop("never-started", time.Second) {
		t.Error("stopping an unknown name should succeed")
	}
	if n := len(s.Status()); n != 0 {
		t.Errorf("expected empty registry, got %d entries", n)
	}
}

func TestStartMissingExecutable(t *testing.T) {
	s := newTestSupervisor()

	if s.Start("ghost", "/nonexistent/binary", nil, StartOptions{}) {
		t.Error("start with missing executable should fail")
	}
	if n := len(s.Status()); n != 0 {
		t.Errorf("expected empty registry after failed start, got %d", n)
	}
}

func TestOutputCaptured(t *testing.T) {
	s := newTestSupervisor()
	defer s.StopAll(time.Second)

	shell(t, s, "sync", "echo ready; sleep 30", StartOptions{})

	waitFor(t, 5*time.Second, "ready line", func() bool {
		for _, line := range s.Output("sync", 50) {
			if line == "ready" {
				return true
			}
		}
		return false
	})
}

func TestExitCodeRecorded(t *testing.T) {
	s := newTestSupervisor()

	shell(t, s, "runtime", "exit 0", StartOptions{})

	waitFor(t, 5*time.Second, "process exit", func() bool {
		return !s.IsRunning("runtime")
	})

	// The entry lingers after self-exit until an explicit Stop.
	st, ok := s.Status()["runtime"]
	if !ok {
		t.Fatal("registry entry should linger after self-exit")
	}
	if st.Running {
		t.Error("status should report not running")
	}
	if st.PID != nil {
		t.Error("PID should be absent once exited")
	}
	if st.ExitCode == nil || *st.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %v", st.ExitCode)
	}

	// Stop drops the entry without signaling anything.
	if !s.Stop("runtime", time.Second) {
		t.Error("stop of exited process should succeed")
	}
	if _, ok := s.Status()["runtime"]; ok {
		t.Error("entry should be removed after stop")
	}
}

func TestStopAll(t *testing.T) {
	s := newTestSupervisor()

	shell(t, s, "a", "sleep 30", StartOptions{})
	shell(t, s, "b", "sleep 30", StartOptions{})

	s.StopAll(5 * time.Second)

	if n := len(s.Status()); n != 0 {
		t.Fatalf("expected empty registry after StopAll, got %d entries", n)
	}

	// Both names are reusable.
	shell(t, s, "a", "sleep 30", StartOptions{})
	shell(t, s, "b", "sleep 30", StartOptions{})
	s.StopAll(5 * time.Second)
}

func TestForcefulKill(t *testing.T) {
	s := newTestSupervisor()

	shell(t, s, "stubborn", "trap '' TERM; while :; do sleep 0.1; done", StartOptions{})

	waitFor(t, 5*time.Second, "process running", func() bool {
		return s.IsRunning("stubborn")
	})

	start := time.Now()
	if !s.Stop("stubborn", 100*time.Millisecond) {
		t.Error("stop should succeed even when SIGTERM is ignored")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("stop took too long: %v", elapsed)
	}
	if s.IsRunning("stubborn") {
		t.Error("process should not be running after forced kill")
	}
}

func TestRestartAfterStop(t *testing.T) {
	s := newTestSupervisor()
	defer s.StopAll(time.Second)

	shell(t, s, "svc", "sleep 30", StartOptions{})
	if !s.Stop("svc", time.Second) {
		t.Fatal("stop failed")
	}
	if s.IsRunning("svc") {
		t.Error("IsRunning should be false after stop")
	}
	shell(t, s, "svc", "sleep 30", StartOptions{})
}

func TestOutputBounded(t *testing.T) {
	s := newTestSupervisor()
	defer s.StopAll(time.Second)

	shell(t, s, "chatty", "seq 1 1500", StartOptions{})

	waitFor(t, 10*time.Second, "buffer to fill", func() bool {
		return len(s.Output("chatty", 2000)) == maxOutputLines
	})

	lines := s.Output("chatty", 2000)
	if len(lines) > maxOutputLines {
		t.Fatalf("buffer exceeded capacity: %d lines", len(lines))
	}
	if lines[0] != "501" {
		t.Errorf("expected oldest surviving line 501, got %q", lines[0])
	}
	if lines[len(lines)-1] != "1500" {
		t.Errorf("expected newest line 1500, got %q", lines[len(lines)-1])
	}

	// Emission order is preserved throughout.
	for i, line := range lines {
		if line != strconv.Itoa(501+i) {
			t.Fatalf("line %d out of order: got %q", i, line)
		}
	}

	if got := s.Output("chatty", 10); len(got) != 10 {
		t.Errorf("Output(10) returned %d lines", len(got))
	}
	if got := s.Output("unknown", 10); got != nil {
		t.Errorf("Output for unknown name should be nil, got %v", got)
	}
}

func TestInvalidUTF8Replaced(t *testing.T) {
	s := newTestSupervisor()
	defer s.StopAll(time.Second)

	// \377 is a bare 0xff byte, never valid UTF-8.
	shell(t, s, "binary", `printf 'a\377z\n'; echo clean; sleep 30`, StartOptions{})

	waitFor(t, 5*time.Second, "both lines", func() bool {
		return len(s.Output("binary", 10)) >= 2
	})

	lines := s.Output("binary", 10)
	want := "a" + string(utf8.RuneError) + "z"
	if lines[0] != want {
		t.Errorf("expected invalid byte replaced, got %q want %q", lines[0], want)
	}
	if !utf8.ValidString(lines[0]) {
		t.Errorf("captured line is not valid UTF-8: %q", lines[0])
	}
	// The drain loop keeps going after a malformed line.
	if lines[1] != "clean" {
		t.Errorf("expected subsequent line captured, got %q", lines[1])
	}
}

func TestOutputCallback(t *testing.T) {
	s := newTestSupervisor()
	defer s.StopAll(time.Second)

	var mu sync.Mutex
	var seen []string
	shell(t, s, "cb", "echo one; echo two", StartOptions{
		OnOutput: func(line string) {
			mu.Lock()
			seen = append(seen, line)
			mu.Unlock()
			// A panicking callback must not stop the drain loop.
			panic("callback failure")
		},
	})

	waitFor(t, 5*time.Second, "both lines", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	if seen[0] != "one" || seen[1] != "two" {
		t.Errorf("callback saw %v, want [one two]", seen)
	}
}

func TestEnvOverlay(t *testing.T) {
	s := newTestSupervisor()
	defer s.StopAll(time.Second)

	shell(t, s, "env", `echo "$MRMD_TEST_VALUE"; sleep 30`, StartOptions{
		Env: map[string]string{"MRMD_TEST_VALUE": "overlaid"},
	})

	waitFor(t, 5*time.Second, "env value", func() bool {
		for _, line := range s.Output("env", 10) {
			if line == "overlaid" {
				return true
			}
		}
		return false
	})
}

func TestWorkingDirectory(t *testing.T) {
	s := newTestSupervisor()
	defer s.StopAll(time.Second)

	dir := t.TempDir()
	shell(t, s, "pwd", "pwd; sleep 30", StartOptions{Dir: dir})

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, 5*time.Second, "pwd output", func() bool {
		for _, line := range s.Output("pwd", 10) {
			if got, err := filepath.EvalSymlinks(line); err == nil && got == resolved {
				return true
			}
		}
		return false
	})
}

func TestStatusWhileRunning(t *testing.T) {
	s := newTestSupervisor()
	defer s.StopAll(time.Second)

	shell(t, s, "svc", "sleep 30", StartOptions{})

	st, ok := s.Status()["svc"]
	if !ok {
		t.Fatal("expected status entry for svc")
	}
	if !st.Running {
		t.Error("expected running")
	}
	if st.PID == nil || *st.PID <= 0 {
		t.Errorf("expected a positive PID, got %v", st.PID)
	}
	if st.ExitCode != nil {
		t.Error("exit code should be nil while running")
	}
	if _, err := os.FindProcess(*st.PID); err != nil {
		t.Errorf("finding reported PID: %v", err)
	}
}
