package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type mockStore struct {
	createUser         func(ctx context.Context, username, passwordHash string) (*User, error)
	userByUsername     func(ctx context.Context, username string) (*User, error)
	userByID           func(ctx context.Context, id int64) (*User, error)
	createSession      func(ctx context.Context, s Session) error
	getSession         func(ctx context.Context, id string) (*Session, error)
	deleteSession      func(ctx context.Context, id string) error
	deleteUserSessions func(ctx context.Context, userID int64) error
}

func (m *mockStore) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	if m.createUser != nil {
		return m.createUser(ctx, username, passwordHash)
	}
	return &User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockStore) UserByUsername(ctx context.Context, username string) (*User, error) {
	if m.userByUsername != nil {
		return m.userByUsername(ctx, username)
	}
	return nil, ErrUserNotFound
}

func (m *mockStore) UserByID(ctx context.Context, id int64) (*User, error) {
	if m.userByID != nil {
		return m.userByID(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockStore) CreateSession(ctx context.Context, s Session) error {
	if m.createSession != nil {
		return m.createSession(ctx, s)
	}
	return nil
}

func (m *mockStore) GetSession(ctx context.Context, id string) (*Session, error) {
	if m.getSession != nil {
		return m.getSession(ctx, id)
	}
	return nil, ErrNoSession
}

func (m *mockStore) DeleteSession(ctx context.Context, id string) error {
	if m.deleteSession != nil {
		return m.deleteSession(ctx, id)
	}
	return nil
}

func (m *mockStore) DeleteUserSessions(ctx context.Context, userID int64) error {
	if m.deleteUserSessions != nil {
		return m.deleteUserSessions(ctx, userID)
	}
	return nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{
		createUser: func(_ context.Context, username, passwordHash string) (*User, error) {
			if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte("hunter22")) != nil {
				t.Error("stored hash does not verify")
			}
			return &User{ID: 7, Username: username, PasswordHash: passwordHash}, nil
		},
	}
	svc := NewService(store, time.Hour)

	user, err := svc.Register(ctx, "kim", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Username != "kim" {
		t.Errorf("got %+v", user)
	}
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	user := &User{ID: 3, Username: "kim", PasswordHash: hashOf(t, "hunter22")}

	t.Run("success opens a fresh session", func(t *testing.T) {
		var created *Session
		droppedFor := int64(0)
		store := &mockStore{
			userByUsername: func(context.Context, string) (*User, error) { return user, nil },
			createSession: func(_ context.Context, s Session) error {
				created = &s
				return nil
			},
			deleteUserSessions: func(_ context.Context, userID int64) error {
				droppedFor = userID
				return nil
			},
		}
		svc := NewService(store, time.Hour)

		session, err := svc.Login(ctx, "kim", "hunter22")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if created == nil || created.ID != session.ID || created.UserID != user.ID {
			t.Errorf("session = %+v, stored = %+v", session, created)
		}
		if droppedFor != user.ID {
			t.Error("old sessions not dropped")
		}
		if session.Expired(time.Now()) {
			t.Error("new session already expired")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		store := &mockStore{
			userByUsername: func(context.Context, string) (*User, error) { return user, nil },
		}
		svc := NewService(store, time.Hour)
		if _, err := svc.Login(ctx, "kim", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("got err %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := NewService(&mockStore{}, time.Hour)
		if _, err := svc.Login(ctx, "nobody", "x"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("got err %v", err)
		}
	})
}

func TestService_UserForSession(t *testing.T) {
	ctx := context.Background()
	user := &User{ID: 3, Username: "kim"}

	t.Run("valid session", func(t *testing.T) {
		store := &mockStore{
			getSession: func(context.Context, string) (*Session, error) {
				return &Session{ID: "s1", UserID: 3, ExpiresAt: time.Now().Add(time.Hour)}, nil
			},
			userByID: func(context.Context, int64) (*User, error) { return user, nil },
		}
		svc := NewService(store, time.Hour)

		got, err := svc.UserForSession(ctx, "s1")
		if err != nil {
			t.Fatalf("UserForSession: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("expired session is dropped", func(t *testing.T) {
		deleted := ""
		store := &mockStore{
			getSession: func(context.Context, string) (*Session, error) {
				return &Session{ID: "s1", UserID: 3, ExpiresAt: time.Now().Add(-time.Minute)}, nil
			},
			deleteSession: func(_ context.Context, id string) error {
				deleted = id
				return nil
			},
		}
		svc := NewService(store, time.Hour)

		if _, err := svc.UserForSession(ctx, "s1"); !errors.Is(err, ErrNoSession) {
			t.Errorf("got err %v", err)
		}
		if deleted != "s1" {
			t.Error("expired session not deleted")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		svc := NewService(&mockStore{}, time.Hour)
		if _, err := svc.UserForSession(ctx, "nope"); !errors.Is(err, ErrNoSession) {
			t.Errorf("got err %v", err)
		}
	})
}
