package events

import (
	"time"

	"github.com/google/uuid"
)

const TypePostPublished = "post.published"

type PostPublishedPayload struct {
	PostID   uuid.UUID `json:"post_id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
}

type PostPublished struct {
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   PostPublishedPayload `json:"payload"`
}

func NewPostPublished(postID uuid.UUID, title, category string) PostPublished {
	return PostPublished{
		Type:      TypePostPublished,
		Timestamp: time.Now().UTC(),
		Payload: PostPublishedPayload{
			PostID:   postID,
			Title:    title,
			Category: category,
		},
	}
}
