package blog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var _ Repository = (*postgresRepository)(nil)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	author TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS posts_published_at_idx ON posts (published_at DESC) WHERE published_at IS NOT NULL;
`

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

// Migrate creates the posts table if it does not exist.
func (r *postgresRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, postgresSchema)
	return err
}

const postgresColumns = "id, title, body, author, category, created_at, published_at"

func (r *postgresRepository) Create(ctx context.Context, id uuid.UUID, in PostInput) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO posts (id, title, body, author, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+postgresColumns,
		id, in.Title, in.Body, in.Author, in.Category,
	)
	return scanPost(row)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+postgresColumns+" FROM posts WHERE id = $1", id)
	return scanPost(row)
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, in PostInput) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE posts SET title = $2, body = $3, author = $4, category = $5
		WHERE id = $1
		RETURNING `+postgresColumns,
		id, in.Title, in.Body, in.Author, in.Category,
	)
	return scanPost(row)
}

func (r *postgresRepository) Publish(ctx context.Context, id uuid.UUID, at time.Time) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE posts SET published_at = $2
		WHERE id = $1
		RETURNING `+postgresColumns,
		id, at,
	)
	return scanPost(row)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) ListPublished(ctx context.Context) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+postgresColumns+" FROM posts WHERE published_at IS NOT NULL ORDER BY published_at DESC")
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func (r *postgresRepository) ListDrafts(ctx context.Context) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+postgresColumns+" FROM posts WHERE published_at IS NULL ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var (
		p         Post
		published sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Title, &p.Body, &p.Author, &p.Category, &p.CreatedAt, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if published.Valid {
		t := published.Time
		p.PublishedAt = &t
	}
	return &p, nil
}

func scanPosts(rows *sql.Rows) ([]*Post, error) {
	defer rows.Close()
	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
