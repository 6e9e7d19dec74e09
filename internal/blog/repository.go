package blog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the storage boundary for posts. ListPublished and
// ListDrafts return posts ordered newest-first; all filtering, pagination
// and aggregation on top of them is the service's job.
type Repository interface {
	Create(ctx context.Context, id uuid.UUID, in PostInput) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	Update(ctx context.Context, id uuid.UUID, in PostInput) (*Post, error)
	Publish(ctx context.Context, id uuid.UUID, at time.Time) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListPublished(ctx context.Context) ([]*Post, error)
	ListDrafts(ctx context.Context) ([]*Post, error)
}

// Migrator is implemented by repositories that can create their own schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}
