package blog

import (
	"time"

	"github.com/google/uuid"
)

// Post is the single persisted entity. Body holds raw markdown in storage;
// view models returned by the service carry it rendered to HTML.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Author      string     `json:"author"`
	Category    string     `json:"category"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// Draft reports whether the post has not been published yet.
func (p *Post) Draft() bool {
	return p.PublishedAt == nil
}

// PostInput carries the writable fields of a post through create and edit.
type PostInput struct {
	Title    string
	Body     string
	Author   string
	Category string
}

// ArchiveMonth is one (year, month) bucket of the archive sidebar.
type ArchiveMonth struct {
	Year  int
	Month time.Month
	Count int
}

// Sidebar holds the aggregates shown next to every page.
type Sidebar struct {
	Tags    map[string]int
	Archive []ArchiveMonth
}

// ListPage is one page of the public listing.
type ListPage struct {
	Posts      []*Post
	Page       int
	TotalPages int
	HasNewer   bool
	HasOlder   bool
}

// PostDetail is a single post together with its chronological neighbors in
// the descending published order. Both neighbors are nil for drafts and
// when fewer than two posts are published.
type PostDetail struct {
	Post  *Post
	Newer *Post
	Older *Post
}

// SearchResult carries search matches plus an explicit no-results flag so
// the view can distinguish "nothing matched" from an unfiltered listing.
type SearchResult struct {
	Query    string
	Posts    []*Post
	NoResult bool
}
