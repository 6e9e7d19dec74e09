package web

import (
	"strings"
	"testing"
)

func TestPostFormValidate(t *testing.T) {
	valid := postForm{Title: "t", Body: "b", Author: "a", Category: "c"}
	if errs := valid.Validate(); len(errs) != 0 {
		t.Fatalf("valid form got errors: %v", errs)
	}

	t.Run("missing fields", func(t *testing.T) {
		errs := postForm{}.Validate()
		for _, field := range []string{"title", "body", "author", "category"} {
			msg, ok := errs[field]
			if !ok {
				t.Errorf("no error for %q", field)
				continue
			}
			if !strings.Contains(msg, "blank") {
				t.Errorf("%s error = %q", field, msg)
			}
		}
	})

	t.Run("title too long", func(t *testing.T) {
		form := valid
		form.Title = strings.Repeat("x", 201)
		errs := form.Validate()
		if _, ok := errs["title"]; !ok {
			t.Errorf("expected a title length error, got %v", errs)
		}
	})
}
