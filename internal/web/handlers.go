package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/okleinman/scribe/internal/auth"
	"github.com/okleinman/scribe/internal/blog"
	"github.com/okleinman/scribe/internal/config"
)

type Handlers struct {
	posts  *blog.Service
	auth   *auth.Service
	site   config.SiteConfig
	tmpl   *Templates
	logger *slog.Logger
}

func NewHandlers(posts *blog.Service, authSvc *auth.Service, site config.SiteConfig, tmpl *Templates, logger *slog.Logger) *Handlers {
	return &Handlers{
		posts:  posts,
		auth:   authSvc,
		site:   site,
		tmpl:   tmpl,
		logger: logger,
	}
}

// basePage carries the data every layout render needs.
type basePage struct {
	Site    config.SiteConfig
	User    *auth.User
	Sidebar *blog.Sidebar
}

func (h *Handlers) base(r *http.Request) basePage {
	sidebar, err := h.posts.Sidebar(r.Context())
	if err != nil {
		h.logger.Error("sidebar aggregation failed", "error", err)
		sidebar = nil
	}
	return basePage{
		Site:    h.site,
		User:    currentUser(r),
		Sidebar: sidebar,
	}
}

func (h *Handlers) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.Render(&buf, page, data); err != nil {
		h.logger.Error("template render failed", "page", page, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorPage struct {
	basePage
	Status  int
	Message string
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, status, "error.html", errorPage{
		basePage: h.base(r),
		Status:   status,
		Message:  message,
	})
}

func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	h.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
}

type listingPage struct {
	basePage
	Listing  *blog.ListPage
	PrevPage int
	NextPage int
}

// List serves the front page. A missing or non-numeric page parameter
// means page 1; out-of-range pages are clamped by the service.
func (h *Handlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				page = n
			}
		}

		listing, err := h.posts.List(r.Context(), page)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		h.render(w, http.StatusOK, "list.html", listingPage{
			basePage: h.base(r),
			Listing:  listing,
			PrevPage: listing.Page - 1,
			NextPage: listing.Page + 1,
		})
	}
}

type detailPage struct {
	basePage
	Detail *blog.PostDetail
}

func (h *Handlers) Detail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			h.renderError(w, r, http.StatusNotFound, "No such post.")
			return
		}

		detail, err := h.posts.Get(r.Context(), id, currentUser(r) != nil)
		if errors.Is(err, blog.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "No such post.")
			return
		}
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		h.render(w, http.StatusOK, "detail.html", detailPage{
			basePage: h.base(r),
			Detail:   detail,
		})
	}
}

type formPage struct {
	basePage
	Heading string
	Action  string
	Form    postForm
	Errors  map[string]string
}

func (h *Handlers) NewForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, http.StatusOK, "form.html", formPage{
			basePage: h.base(r),
			Heading:  "New post",
			Action:   "/post/new",
		})
	}
}

func (h *Handlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.renderError(w, r, http.StatusBadRequest, "Malformed form submission.")
			return
		}
		form := postFormFromRequest(r)
		if fieldErrs := form.Validate(); len(fieldErrs) > 0 {
			h.render(w, http.StatusUnprocessableEntity, "form.html", formPage{
				basePage: h.base(r),
				Heading:  "New post",
				Action:   "/post/new",
				Form:     form,
				Errors:   fieldErrs,
			})
			return
		}

		post, err := h.posts.Create(r.Context(), form.input())
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, "/post/"+post.ID.String(), http.StatusSeeOther)
	}
}

func (h *Handlers) EditForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			h.renderError(w, r, http.StatusNotFound, "No such post.")
			return
		}
		post, err := h.posts.Source(r.Context(), id)
		if errors.Is(err, blog.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "No such post.")
			return
		}
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		h.render(w, http.StatusOK, "form.html", formPage{
			basePage: h.base(r),
			Heading:  "Edit post",
			Action:   "/post/" + post.ID.String() + "/edit",
			Form:     postFormFromPost(post),
		})
	}
}

func (h *Handlers) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			h.renderError(w, r, http.StatusNotFound, "No such post.")
			return
		}
		if err := r.ParseForm(); err != nil {
			h.renderError(w, r, http.StatusBadRequest, "Malformed form submission.")
			return
		}
		form := postFormFromRequest(r)
		if fieldErrs := form.Validate(); len(fieldErrs) > 0 {
			h.render(w, http.StatusUnprocessableEntity, "form.html", formPage{
				basePage: h.base(r),
				Heading:  "Edit post",
				Action:   "/post/" + id.String() + "/edit",
				Form:     form,
				Errors:   fieldErrs,
			})
			return
		}

		post, err := h.posts.Update(r.Context(), id, form.input())
		if errors.Is(err, blog.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "No such post.")
			return
		}
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, "/post/"+post.ID.String(), http.StatusSeeOther)
	}
}

func (h *Handlers) Publish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			h.renderError(w, r, http.StatusNotFound, "No such post.")
			return
		}
		post, err := h.posts.Publish(r.Context(), id)
		if errors.Is(err, blog.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "No such post.")
			return
		}
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, "/post/"+post.ID.String(), http.StatusSeeOther)
	}
}

func (h *Handlers) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			h.renderError(w, r, http.StatusNotFound, "No such post.")
			return
		}
		err = h.posts.Delete(r.Context(), id)
		if errors.Is(err, blog.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "No such post.")
			return
		}
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

type postsPage struct {
	basePage
	Posts []*blog.Post
}

func (h *Handlers) Drafts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drafts, err := h.posts.Drafts(r.Context())
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		h.render(w, http.StatusOK, "drafts.html", postsPage{
			basePage: h.base(r),
			Posts:    drafts,
		})
	}
}

type searchPage struct {
	basePage
	Query    string
	Posts    []*blog.Post
	NoResult bool
}

// Search handles the `s` query parameter: absent redirects to the
// listing, empty shows the unfiltered listing, anything else is a
// case-insensitive title match over published posts.
func (h *Handlers) Search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !r.URL.Query().Has("s") {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		q := r.URL.Query().Get("s")
		if q == "" {
			listing, err := h.posts.List(r.Context(), 1)
			if err != nil {
				h.serverError(w, r, err)
				return
			}
			h.render(w, http.StatusOK, "list.html", listingPage{
				basePage: h.base(r),
				Listing:  listing,
				PrevPage: listing.Page - 1,
				NextPage: listing.Page + 1,
			})
			return
		}

		result, err := h.posts.Search(r.Context(), q)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		h.render(w, http.StatusOK, "search.html", searchPage{
			basePage: h.base(r),
			Query:    result.Query,
			Posts:    result.Posts,
			NoResult: result.NoResult,
		})
	}
}

type tagPage struct {
	basePage
	Tag   string
	Posts []*blog.Post
}

func (h *Handlers) Tag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := chi.URLParam(r, "tag")
		posts, err := h.posts.ByTag(r.Context(), tag)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		h.render(w, http.StatusOK, "tag.html", tagPage{
			basePage: h.base(r),
			Tag:      tag,
			Posts:    posts,
		})
	}
}

type archivePage struct {
	basePage
	Heading string
	Posts   []*blog.Post
}

func (h *Handlers) Month() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, errY := strconv.Atoi(chi.URLParam(r, "year"))
		month, errM := strconv.Atoi(chi.URLParam(r, "month"))
		if errY != nil || errM != nil || month < 1 || month > 12 {
			h.renderError(w, r, http.StatusNotFound, "No such archive page.")
			return
		}

		posts, err := h.posts.ByMonth(r.Context(), year, time.Month(month))
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		h.render(w, http.StatusOK, "archives.html", archivePage{
			basePage: h.base(r),
			Heading:  time.Month(month).String() + " " + strconv.Itoa(year),
			Posts:    posts,
		})
	}
}

func (h *Handlers) Archives() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.Archive(r.Context())
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		h.render(w, http.StatusOK, "archives.html", archivePage{
			basePage: h.base(r),
			Heading:  "Archives",
			Posts:    posts,
		})
	}
}

type loginPage struct {
	basePage
	Username string
	Error    string
}

func (h *Handlers) LoginForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, http.StatusOK, "login.html", loginPage{basePage: h.base(r)})
	}
}

func (h *Handlers) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.renderError(w, r, http.StatusBadRequest, "Malformed form submission.")
			return
		}
		username := r.PostFormValue("username")
		password := r.PostFormValue("password")

		session, err := h.auth.Login(r.Context(), username, password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.render(w, http.StatusUnauthorized, "login.html", loginPage{
				basePage: h.base(r),
				Username: username,
				Error:    "Invalid username or password.",
			})
			return
		}
		if err != nil {
			h.serverError(w, r, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    session.ID,
			Expires:  session.ExpiresAt,
			HttpOnly: true,
			Path:     "/",
		})
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (h *Handlers) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionCookie); err == nil {
			if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
				h.logger.Warn("session delete failed", "error", err)
			}
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    "",
				MaxAge:   -1,
				HttpOnly: true,
				Path:     "/",
			})
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
