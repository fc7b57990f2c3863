package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FileEntry is a file or directory in the docs tree.
type FileEntry struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Type     string   `json:"type"` // "file" or "directory"
	Size     *int64   `json:"size,omitempty"`
	Modified *float64 `json:"modified,omitempty"`
}

// FileListResponse is the /api/files GET payload.
type FileListResponse struct {
	Files []FileEntry `json:"files"`
	Path  string      `json:"path"`
	Root  string      `json:"root"`
}

// CreateFileRequest is the /api/files POST body.
type CreateFileRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// CreateFileResponse is the /api/files POST payload.
type CreateFileResponse struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	relPath := r.URL.Query().Get("path")

	if err := os.MkdirAll(s.docsDir, 0755); err != nil {
		s.logger.Printf("creating docs dir: %v", err)
		writeError(w, "Cannot access docs directory", http.StatusInternalServerError)
		return
	}

	target, ok := resolveUnder(s.docsDir, relPath)
	if !ok {
		writeError(w, "Invalid path", http.StatusBadRequest)
		return
	}

	writeJSON(w, FileListResponse{
		Files: listFiles(s.docsDir, target),
		Path:  relPath,
		Root:  s.docsDir,
	})
}

// listFiles lists directories and markdown files under target,
// skipping hidden entries. Paths are relative to baseDir with forward
// slashes; a missing or unreadable directory yields an empty list.
func listFiles(baseDir, target string) []FileEntry {
	entries, err := os.ReadDir(target)
	if err != nil {
		return []FileEntry{}
	}

	files := make([]FileEntry, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		rel, err := filepath.Rel(baseDir, filepath.Join(target, name))
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			files = append(files, FileEntry{
				Name: name,
				Path: rel,
				Type: "directory",
			})
			continue
		}
		if filepath.Ext(name) != ".md" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		size := info.Size()
		modified := float64(info.ModTime().UnixNano()) / 1e9
		files = append(files, FileEntry{
			Name:     strings.TrimSuffix(name, ".md"),
			Path:     rel,
			Type:     "file",
			Size:     &size,
			Modified: &modified,
		})
	}
	return files
}

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	var req CreateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, "Name is required", http.StatusBadRequest)
		return
	}
	name := sanitizeFilename(req.Name)
	if name == "" {
		writeError(w, "Invalid filename", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(s.docsDir, 0755); err != nil {
		s.logger.Printf("creating docs dir: %v", err)
		writeError(w, "Cannot access docs directory", http.StatusInternalServerError)
		return
	}

	path := filepath.Join(s.docsDir, name+".md")
	if _, err := os.Stat(path); err == nil {
		writeError(w, fmt.Sprintf("File '%s' already exists", name), http.StatusConflict)
		return
	}

	content := req.Content
	if content == "" {
		content = fmt.Sprintf("# %s\n\nStart writing...\n", name)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		s.logger.Printf("writing %s: %v", path, err)
		writeError(w, "Failed to create file", http.StatusInternalServerError)
		return
	}

	writeJSON(w, CreateFileResponse{Name: name, Path: name + ".md"})
}

// sanitizeFilename keeps alphanumerics, dash, underscore, dot, and
// space, and trims surrounding whitespace.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.' || r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// resolveUnder joins rel onto base and rejects paths escaping base.
func resolveUnder(base, rel string) (string, bool) {
	if rel == "" {
		return base, true
	}
	target := filepath.Join(base, filepath.FromSlash(rel))
	if target != base && !strings.HasPrefix(target, base+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}
