package web

import (
	"net/http"
	"strconv"
)

// defaultOutputLines is how many lines the output endpoint returns
// when the request does not say otherwise.
const defaultOutputLines = 50

// ProcessOutputResponse is the /api/processes/{name}/output payload.
type ProcessOutputResponse struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

func (s *Server) handleProcesses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.sup.Status())
}

func (s *Server) handleProcessOutput(w http.ResponseWriter, r *http.Request, name string) {
	n := defaultOutputLines
	if v := r.URL.Query().Get("lines"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, "Invalid lines parameter", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	lines := s.sup.Output(name, n)
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, ProcessOutputResponse{Name: name, Lines: lines})
}
