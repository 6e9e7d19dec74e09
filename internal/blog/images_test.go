package blog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type mockStorage struct {
	upload       func(ctx context.Context, key string, body io.Reader, contentType string) error
	deletePrefix func(ctx context.Context, prefix string) error
	exists       func(ctx context.Context, key string) (bool, error)
}

func (m *mockStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	if m.upload != nil {
		return m.upload(ctx, key, body, contentType)
	}
	return nil
}

func (m *mockStorage) DeletePrefix(ctx context.Context, prefix string) error {
	if m.deletePrefix != nil {
		return m.deletePrefix(ctx, prefix)
	}
	return nil
}

func (m *mockStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.exists != nil {
		return m.exists(ctx, key)
	}
	return false, nil
}

const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func TestImageProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces inline image with a public URL", func(t *testing.T) {
		uploaded := map[string][]byte{}
		st := &mockStorage{
			upload: func(_ context.Context, key string, body io.Reader, contentType string) error {
				data, _ := io.ReadAll(body)
				uploaded[key] = data
				if contentType != "image/png" {
					t.Errorf("contentType = %q", contentType)
				}
				return nil
			},
		}
		ip := NewImageProcessor(st, "mybucket", "us-east-1", "", nil)

		out := ip.Process(ctx, "posts/abc/images", "# Post\n\n![alt](data:image/png;base64,"+tinyPNG+")")
		if strings.Contains(out, "data:image") {
			t.Errorf("data URL not replaced: %s", out)
		}
		if !strings.Contains(out, "https://mybucket.s3.us-east-1.amazonaws.com/posts/abc/images/") {
			t.Errorf("no public URL in output: %s", out)
		}
		if len(uploaded) != 1 {
			t.Errorf("got %d uploads", len(uploaded))
		}
		for key := range uploaded {
			if !strings.HasPrefix(key, "posts/abc/images/") || !strings.HasSuffix(key, ".png") {
				t.Errorf("key = %q", key)
			}
		}
	})

	t.Run("cdn base overrides the s3 URL", func(t *testing.T) {
		ip := NewImageProcessor(&mockStorage{}, "b", "r", "https://cdn.example.com/", nil)
		out := ip.Process(ctx, "posts/abc/images", "![x](data:image/png;base64,"+tinyPNG+")")
		if !strings.Contains(out, "https://cdn.example.com/posts/abc/images/") {
			t.Errorf("got %s", out)
		}
	})

	t.Run("disallowed type is left inline", func(t *testing.T) {
		ip := NewImageProcessor(&mockStorage{}, "b", "r", "", nil)
		in := "![x](data:image/svg+xml;base64,PHN2Zy8+)"
		if out := ip.Process(ctx, "p", in); out != in {
			t.Errorf("got %s", out)
		}
	})

	t.Run("broken base64 is left inline", func(t *testing.T) {
		ip := NewImageProcessor(&mockStorage{}, "b", "r", "", nil)
		in := "![x](data:image/png;base64,not-valid-base64!!)"
		if out := ip.Process(ctx, "p", in); out != in {
			t.Errorf("got %s", out)
		}
	})

	t.Run("failed upload is left inline", func(t *testing.T) {
		st := &mockStorage{
			upload: func(context.Context, string, io.Reader, string) error {
				return errors.New("upload failed")
			},
		}
		ip := NewImageProcessor(st, "b", "r", "", nil)
		in := "![x](data:image/png;base64," + tinyPNG + ")"
		if out := ip.Process(ctx, "p", in); out != in {
			t.Errorf("got %s", out)
		}
	})
}

func TestService_CreateProcessesImages(t *testing.T) {
	ctx := context.Background()
	var uploadedKey string
	st := &mockStorage{
		upload: func(_ context.Context, key string, _ io.Reader, _ string) error {
			uploadedKey = key
			return nil
		},
	}
	var storedBody string
	repo := &mockRepo{
		create: func(_ context.Context, id uuid.UUID, in PostInput) (*Post, error) {
			storedBody = in.Body
			return &Post{ID: id, Body: in.Body}, nil
		},
	}
	ip := NewImageProcessor(st, "b", "us-east-1", "", nil)
	svc := NewService(repo, stubRenderer{}, nil, ip, nil)

	post, err := svc.Create(ctx, PostInput{Title: "T", Body: "![x](data:image/png;base64," + tinyPNG + ")", Author: "kim", Category: "go"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	wantPrefix := "posts/" + post.ID.String() + "/images/"
	if !strings.HasPrefix(uploadedKey, wantPrefix) {
		t.Errorf("uploaded key %q, want prefix %q", uploadedKey, wantPrefix)
	}
	if strings.Contains(storedBody, "data:image") {
		t.Errorf("stored body kept the data URL: %s", storedBody)
	}
}
