// Package templates holds the embedded HTML views. Handlers hand them a
// fully assembled view model; no logic beyond iteration lives in here.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

func New() *template.Template {
	return template.Must(template.New("").ParseFS(files, "*.html"))
}
