package blog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okleinman/scribe/internal/events"
)

// PageSize is the fixed number of posts per listing page.
const PageSize = 5

// Renderer converts raw markdown to HTML.
type Renderer interface {
	Render(src string) (string, error)
}

type Service struct {
	repo      Repository
	renderer  Renderer
	publisher events.Publisher
	images    *ImageProcessor
	logger    *slog.Logger
}

// NewService wires the post service. images may be nil when no object
// storage is configured; inline images are then left untouched.
func NewService(repo Repository, renderer Renderer, publisher events.Publisher, images *ImageProcessor, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		renderer:  renderer,
		publisher: publisher,
		images:    images,
		logger:    logger,
	}
}

// List returns one page of the public listing, bodies rendered to HTML.
// Pages outside [1, last] are clamped, never an error.
func (s *Service) List(ctx context.Context, page int) (*ListPage, error) {
	published, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := (len(published) + PageSize - 1) / PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > len(published) {
		start = len(published)
	}
	if end > len(published) {
		end = len(published)
	}

	rendered, err := s.renderAll(published[start:end])
	if err != nil {
		return nil, err
	}

	return &ListPage{
		Posts:      rendered,
		Page:       page,
		TotalPages: totalPages,
		HasNewer:   page > 1,
		HasOlder:   page < totalPages,
	}, nil
}

// Get returns the post with its body rendered and, for published posts,
// its neighbors in the descending published order. Drafts are returned
// only when includeDrafts is set; otherwise they surface as ErrNotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID, includeDrafts bool) (*PostDetail, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Draft() && !includeDrafts {
		return nil, ErrNotFound
	}

	rendered, err := s.render(post)
	if err != nil {
		return nil, err
	}
	detail := &PostDetail{Post: rendered}
	if post.Draft() {
		return detail, nil
	}

	published, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	detail.Newer, detail.Older = neighbors(published, post.ID)
	return detail, nil
}

// neighbors locates id in the newest-first published order and returns the
// adjacent posts. With fewer than two published posts, or when id is not in
// the published set, both neighbors are nil.
func neighbors(published []*Post, id uuid.UUID) (newer, older *Post) {
	if len(published) < 2 {
		return nil, nil
	}
	idx := -1
	for i, p := range published {
		if p.ID == id {
			idx = i
			break
		}
	}
	switch {
	case idx < 0:
		return nil, nil
	case idx == 0:
		return nil, published[1]
	case idx == len(published)-1:
		return published[idx-1], nil
	default:
		return published[idx-1], published[idx+1]
	}
}

// Source returns the post with its raw markdown body, for editing.
func (s *Service) Source(ctx context.Context, id uuid.UUID) (*Post, error) {
	return s.repo.GetByID(ctx, id)
}

// Drafts returns unpublished posts, newest-created first, rendered.
func (s *Service) Drafts(ctx context.Context) ([]*Post, error) {
	drafts, err := s.repo.ListDrafts(ctx)
	if err != nil {
		return nil, err
	}
	return s.renderAll(drafts)
}

// Search matches q case-insensitively against published post titles. An
// empty query returns the whole published set with NoResult unset.
func (s *Service) Search(ctx context.Context, q string) (*SearchResult, error) {
	published, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	matched := published
	if q != "" {
		needle := strings.ToLower(q)
		matched = nil
		for _, p := range published {
			if strings.Contains(strings.ToLower(p.Title), needle) {
				matched = append(matched, p)
			}
		}
	}

	rendered, err := s.renderAll(matched)
	if err != nil {
		return nil, err
	}
	return &SearchResult{
		Query:    q,
		Posts:    rendered,
		NoResult: q != "" && len(rendered) == 0,
	}, nil
}

// ByTag returns published posts whose category equals tag, ignoring case.
func (s *Service) ByTag(ctx context.Context, tag string) ([]*Post, error) {
	published, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	var matched []*Post
	for _, p := range published {
		if strings.EqualFold(p.Category, tag) {
			matched = append(matched, p)
		}
	}
	return s.renderAll(matched)
}

// ByMonth returns published posts from the given year and month.
func (s *Service) ByMonth(ctx context.Context, year int, month time.Month) ([]*Post, error) {
	published, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	var matched []*Post
	for _, p := range published {
		if p.PublishedAt.Year() == year && p.PublishedAt.Month() == month {
			matched = append(matched, p)
		}
	}
	return s.renderAll(matched)
}

// Archive returns every published post newest-first with raw bodies; the
// archive index only shows titles and dates.
func (s *Service) Archive(ctx context.Context) ([]*Post, error) {
	return s.repo.ListPublished(ctx)
}

// Sidebar computes the tag and month aggregates shown on every page.
func (s *Service) Sidebar(ctx context.Context) (*Sidebar, error) {
	published, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	return &Sidebar{
		Tags:    TagCounts(published),
		Archive: MonthCounts(published),
	}, nil
}

// Create persists a new draft. Inline data: images are extracted to object
// storage first when an image processor is configured.
func (s *Service) Create(ctx context.Context, in PostInput) (*Post, error) {
	id := uuid.New()
	in.Body = s.processImages(ctx, id, in.Body)
	return s.repo.Create(ctx, id, in)
}

// Update overwrites the writable fields of an existing post.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in PostInput) (*Post, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	in.Body = s.processImages(ctx, id, in.Body)
	return s.repo.Update(ctx, id, in)
}

// Publish stamps the post with the current time and announces it.
func (s *Service) Publish(ctx context.Context, id uuid.UUID) (*Post, error) {
	post, err := s.repo.Publish(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	e := events.NewPostPublished(post.ID, post.Title, post.Category)
	if err := s.publisher.PublishPostPublished(ctx, e); err != nil {
		s.logger.Warn("publish event failed", "post_id", post.ID, "error", err)
	}
	return post, nil
}

// Delete removes the post permanently, along with any stored images.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.images != nil {
		if err := s.images.Remove(ctx, imagePrefix(id)); err != nil {
			s.logger.Warn("image cleanup failed", "post_id", id, "error", err)
		}
	}
	return nil
}

func (s *Service) processImages(ctx context.Context, id uuid.UUID, body string) string {
	if s.images == nil {
		return body
	}
	return s.images.Process(ctx, imagePrefix(id), body)
}

func imagePrefix(id uuid.UUID) string {
	return "posts/" + id.String() + "/images"
}

// render returns a copy of p with Body converted to HTML. The stored post
// keeps its raw markdown.
func (s *Service) render(p *Post) (*Post, error) {
	html, err := s.renderer.Render(p.Body)
	if err != nil {
		return nil, fmt.Errorf("render post %s: %w", p.ID, err)
	}
	out := *p
	out.Body = html
	return &out, nil
}

func (s *Service) renderAll(posts []*Post) ([]*Post, error) {
	rendered := make([]*Post, len(posts))
	for i, p := range posts {
		out, err := s.render(p)
		if err != nil {
			return nil, err
		}
		rendered[i] = out
	}
	return rendered, nil
}
