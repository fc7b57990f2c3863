// Package web provides the HTTP API and editor page for mrmd.
package web

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/mrmd/mrmd/internal/supervisor"
)

// Options configures the mrmd HTTP server.
type Options struct {
	ProjectRoot string
	DocsDir     string
	SyncURL     string // e.g. ws://localhost:4444
	SyncPort    int
	RuntimeURL  string // e.g. http://localhost:8765/mrp/v1
	Supervisor  *supervisor.Supervisor
	Logger      *log.Logger
}

// Server serves the editor page and the file/status API. Supervisor
// state is exposed read-only; process lifecycle stays with the CLI.
type Server struct {
	projectRoot string
	docsDir     string
	syncURL     string
	syncPort    int
	runtimeURL  string
	sup         *supervisor.Supervisor
	logger      *log.Logger
	tmpl        *template.Template
}

// NewServer creates a server and parses the embedded templates.
func NewServer(opts Options) (*Server, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		projectRoot: opts.ProjectRoot,
		docsDir:     opts.DocsDir,
		syncURL:     opts.SyncURL,
		syncPort:    opts.SyncPort,
		runtimeURL:  opts.RuntimeURL,
		sup:         opts.Supervisor,
		logger:      logger,
		tmpl:        tmpl,
	}, nil
}

// Handler returns the routed HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/api/", http.HandlerFunc(s.serveAPI))
	mux.HandleFunc("/", s.handleIndex)
	return corsMiddleware(mux)
}

// serveAPI routes /api requests.
func (s *Server) serveAPI(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	switch {
	case path == "/status" && r.Method == http.MethodGet:
		s.handleStatus(w, r)
	case path == "/config" && r.Method == http.MethodGet:
		s.handleConfig(w, r)
	case path == "/files" && r.Method == http.MethodGet:
		s.handleListFiles(w, r)
	case path == "/files" && r.Method == http.MethodPost:
		s.handleCreateFile(w, r)
	case path == "/processes" && r.Method == http.MethodGet:
		s.handleProcesses(w, r)
	case strings.HasPrefix(path, "/processes/") && strings.HasSuffix(path, "/output") && r.Method == http.MethodGet:
		name := strings.TrimSuffix(strings.TrimPrefix(path, "/processes/"), "/output")
		s.handleProcessOutput(w, r, name)
	default:
		writeError(w, "Not found", http.StatusNotFound)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "healthy"})
}

// StatusResponse is the /api/status payload.
type StatusResponse struct {
	Status   string            `json:"status"`
	Project  map[string]string `json:"project"`
	Services map[string]string `json:"services"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, StatusResponse{
		Status: "running",
		Project: map[string]string{
			"root": s.projectRoot,
			"docs": s.docsDir,
		},
		Services: map[string]string{
			"sync":    s.syncURL,
			"runtime": s.runtimeURL,
		},
	})
}

// ConfigResponse is the /api/config payload consumed by the editor.
type ConfigResponse struct {
	SyncURL     string `json:"syncUrl"`
	SyncPort    int    `json:"syncPort"`
	RuntimeURL  string `json:"runtimeUrl"`
	ProjectRoot string `json:"projectRoot"`
	DocsDir     string `json:"docsDir"`
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, ConfigResponse{
		SyncURL:     s.syncURL,
		SyncPort:    s.syncPort,
		RuntimeURL:  s.runtimeURL,
		ProjectRoot: s.projectRoot,
		DocsDir:     s.docsDir,
	})
}

// indexData feeds the embedded editor page template.
type indexData struct {
	ProjectName string
	ProjectRoot string
	SyncURL     string
	RuntimeURL  string
	EditorURL   string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.tmpl.ExecuteTemplate(w, "index.html", indexData{
		ProjectName: filepath.Base(s.projectRoot),
		ProjectRoot: s.projectRoot,
		SyncURL:     s.syncURL,
		RuntimeURL:  s.runtimeURL,
		EditorURL:   EditorCDNURL,
	})
	if err != nil {
		s.logger.Printf("rendering index: %v", err)
	}
}
