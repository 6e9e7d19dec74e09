package blog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

var _ Repository = (*sqliteRepository)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	author TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	published_at DATETIME
);
CREATE INDEX IF NOT EXISTS posts_published_at_idx ON posts (published_at);
`

// sqliteRepository backs single-binary deployments where running postgres
// is not worth it. Same contract as the postgres repository.
type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, sqliteSchema)
	return err
}

const sqliteColumns = "id, title, body, author, category, created_at, published_at"

func (r *sqliteRepository) Create(ctx context.Context, id uuid.UUID, in PostInput) (*Post, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, body, author, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), in.Title, in.Body, in.Author, in.Category, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *sqliteRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sqliteColumns+" FROM posts WHERE id = ?", id.String())
	return scanPost(row)
}

func (r *sqliteRepository) Update(ctx context.Context, id uuid.UUID, in PostInput) (*Post, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts SET title = ?, body = ?, author = ?, category = ?
		WHERE id = ?`,
		in.Title, in.Body, in.Author, in.Category, id.String(),
	)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *sqliteRepository) Publish(ctx context.Context, id uuid.UUID, at time.Time) (*Post, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE posts SET published_at = ? WHERE id = ?", at, id.String())
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *sqliteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id.String())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqliteRepository) ListPublished(ctx context.Context) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sqliteColumns+" FROM posts WHERE published_at IS NOT NULL ORDER BY published_at DESC")
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func (r *sqliteRepository) ListDrafts(ctx context.Context) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sqliteColumns+" FROM posts WHERE published_at IS NULL ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
