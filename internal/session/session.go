package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gennadis/projectchat/storage"
)

// Keys under which the session is persisted
const (
	TokenKey             = "token"
	SelectedProjectIDKey = "selectedProjectId"
)

// Session is the client state shared by the login, project and chat screens:
// the bearer token and the id of the selected project. Both live in a Store so
// they survive restarts; each has exactly one writer.
type Session struct {
	store storage.Store
}

// New creates a Session over the given store
func New(store storage.Store) *Session {
	return &Session{store: store}
}

// Token returns the stored bearer token. A store failure is logged and read as absent.
func (s *Session) Token(ctx context.Context) (string, bool) {
	return s.read(ctx, TokenKey)
}

// SetToken persists the bearer token
func (s *Session) SetToken(ctx context.Context, token string) error {
	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// ProjectID returns the id of the selected project. A store failure is logged and read as absent.
func (s *Session) ProjectID(ctx context.Context) (string, bool) {
	return s.read(ctx, SelectedProjectIDKey)
}

// SelectProject persists id as the selected project
func (s *Session) SelectProject(ctx context.Context, id string) error {
	if err := s.store.Set(ctx, SelectedProjectIDKey, id); err != nil {
		return fmt.Errorf("failed to store selected project: %w", err)
	}
	slog.Debug("project selected", slog.String("project_id", id))
	return nil
}

func (s *Session) read(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.store.Get(ctx, key)
	if err != nil {
		slog.Error("Failed to read session value", "key", key, "error", err)
		return "", false
	}
	return value, ok
}
