package server

import (
	"embed"
	"html/template"

	"github.com/jrsteele09/go-auth-client/internal/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// ParseTemplate parses a named template from the embedded template set
func ParseTemplate(name string) (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, errors.Wrapf(err, "[ParseTemplate] %s", name)
	}
	return tmpl, nil
}
