package templates

import (
	"embed"
	"html/template"
)

// FS holds the page templates.
//
//go:embed *.html
var FS embed.FS

// ParseTemplates parses HTML templates from the embedded filesystem.
// It takes a variadic list of template file names and returns a parsed template
// or an error if parsing fails.
func ParseTemplates(files ...string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
	}

	return template.New("").Funcs(funcMap).ParseFS(FS, files...)
}
