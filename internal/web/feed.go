package web

import (
	"net/http"
	"strings"

	"github.com/gorilla/feeds"
)

// Feed serves the RSS document: published posts only, newest first,
// bodies rendered to HTML.
func (h *Handlers) Feed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.posts.Search(r.Context(), "")
		if err != nil {
			h.serverError(w, r, err)
			return
		}

		base := strings.TrimRight(h.site.BaseURL, "/")
		feed := &feeds.Feed{
			Title:       h.site.Title,
			Link:        &feeds.Link{Href: base + "/"},
			Description: h.site.Description,
		}
		for _, p := range result.Posts {
			feed.Items = append(feed.Items, &feeds.Item{
				Id:          p.ID.String(),
				Title:       p.Title,
				Link:        &feeds.Link{Href: base + "/post/" + p.ID.String()},
				Description: p.Body,
				Author:      &feeds.Author{Name: p.Author},
				Created:     *p.PublishedAt,
			})
		}

		rss, err := feed.ToRss()
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		_, _ = w.Write([]byte(rss))
	}
}
