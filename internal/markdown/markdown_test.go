package markdown

import (
	"strings"
	"testing"
)

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer()

	t.Run("basic markdown", func(t *testing.T) {
		html, err := r.Render("# Hello\n\nSome *text*.")
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !strings.Contains(html, "<h1>Hello</h1>") {
			t.Errorf("no heading in %q", html)
		}
		if !strings.Contains(html, "<em>text</em>") {
			t.Errorf("no emphasis in %q", html)
		}
	})

	t.Run("fenced code blocks", func(t *testing.T) {
		html, err := r.Render("```go\nfmt.Println(\"hi\")\n```")
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !strings.Contains(html, "<pre><code class=\"language-go\">") {
			t.Errorf("no fenced code block in %q", html)
		}
	})

	t.Run("raw html is escaped", func(t *testing.T) {
		html, err := r.Render("<script>alert(1)</script>")
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if strings.Contains(html, "<script>") {
			t.Errorf("script tag not escaped: %q", html)
		}
	})
}
