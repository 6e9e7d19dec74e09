package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var funcMap = template.FuncMap{
	"monthName": func(m time.Month) string { return m.String() },
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"datePtr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("January 2, 2006")
	},
	"raw": func(s string) template.HTML { return template.HTML(s) },
}

// Templates holds one parsed set per page, each paired with the shared
// layout.
type Templates struct {
	pages map[string]*template.Template
}

var pageFiles = []string{
	"list.html",
	"detail.html",
	"form.html",
	"drafts.html",
	"search.html",
	"tag.html",
	"archives.html",
	"login.html",
	"error.html",
}

func NewTemplates() (*Templates, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		t, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS,
			"templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		pages[page] = t
	}
	return &Templates{pages: pages}, nil
}

// Render executes the named page inside the layout.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("unknown template %q", page)
	}
	return tmpl.ExecuteTemplate(w, "layout.html", data)
}
