package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/okleinman/scribe/internal/auth"
)

// NewRouter mounts every route. Mutation routes sit behind RequireUser;
// everything else is public.
func NewRouter(h *Handlers, authSvc *auth.Service, health http.HandlerFunc, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(LoadUser(authSvc))

	r.Get("/", h.List())
	r.Get("/post/{id}", h.Detail())
	r.Get("/tag/{tag}", h.Tag())
	r.Get("/archive/{year}/{month}", h.Month())
	r.Get("/archives", h.Archives())
	r.Get("/search", h.Search())
	r.Get("/feed", h.Feed())
	r.Get("/health", health)
	r.Handle("/static/*", http.FileServerFS(staticFS))

	r.Get("/login", h.LoginForm())
	r.Post("/login", h.Login())
	r.Post("/logout", h.Logout())

	r.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Get("/post/new", h.NewForm())
		r.Post("/post/new", h.Create())
		r.Get("/post/{id}/edit", h.EditForm())
		r.Post("/post/{id}/edit", h.Update())
		r.Post("/post/{id}/publish", h.Publish())
		r.Post("/post/{id}/delete", h.Delete())
		r.Get("/drafts", h.Drafts())
	})

	return r
}
