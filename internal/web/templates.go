package web

import (
	"embed"
	"html/template"
	"io/fs"
)

// EditorCDNURL is where the index page loads the mrmd editor from.
const EditorCDNURL = "https://unpkg.com/mrmd-editor@0.1.0/dist/mrmd.esm.js"

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates loads and parses all HTML templates.
func LoadTemplates() (*template.Template, error) {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	return template.New("").ParseFS(subFS, "*.html")
}
