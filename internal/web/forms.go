package web

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/okleinman/scribe/internal/blog"
)

// postForm mirrors the create/edit form fields.
type postForm struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

func postFormFromRequest(r *http.Request) postForm {
	return postForm{
		Title:    r.PostFormValue("title"),
		Body:     r.PostFormValue("body"),
		Author:   r.PostFormValue("author"),
		Category: r.PostFormValue("category"),
	}
}

func postFormFromPost(p *blog.Post) postForm {
	return postForm{
		Title:    p.Title,
		Body:     p.Body,
		Author:   p.Author,
		Category: p.Category,
	}
}

// Validate returns per-field messages, empty when the form is acceptable.
func (f postForm) Validate() map[string]string {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.Body, validation.Required),
		validation.Field(&f.Author, validation.Required, validation.Length(1, 100)),
		validation.Field(&f.Category, validation.Required, validation.Length(1, 50)),
	)
	if err == nil {
		return nil
	}

	fields := map[string]string{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for name, ferr := range verrs {
			fields[name] = ferr.Error()
		}
		return fields
	}
	fields["form"] = err.Error()
	return fields
}

func (f postForm) input() blog.PostInput {
	return blog.PostInput{
		Title:    f.Title,
		Body:     f.Body,
		Author:   f.Author,
		Category: f.Category,
	}
}
