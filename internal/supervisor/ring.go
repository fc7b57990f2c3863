package supervisor

import "sync"

// maxOutputLines is the capacity of each per-process output buffer.
const maxOutputLines = 1000

// outputRing is a bounded line buffer. Once full, appending evicts the
// oldest line. It has its own lock because the drain goroutine appends
// while HTTP handlers and tests read.
type outputRing struct {
	mu    sync.Mutex
	lines []string
	start int
	max   int
}

func newOutputRing(max int) *outputRing {
	return &outputRing{max: max}
}

// Append adds a line, evicting the oldest when the buffer is full.
func (r *outputRing) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.lines) < r.max {
		r.lines = append(r.lines, line)
		return
	}
	r.lines[r.start] = line
	r.start = (r.start + 1) % r.max
}

// Tail returns the most recent n lines in emission order.
// It never returns more than the buffer holds.
func (r *outputRing) Tail(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := len(r.lines)
	if n > total {
		n = total
	}
	if n <= 0 {
		return nil
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		idx := (r.start + total - n + i) % total
		out[i] = r.lines[idx]
	}
	return out
}

// Len returns the number of buffered lines.
func (r *outputRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}
