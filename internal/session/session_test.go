package session

import (
	"context"
	"errors"
	"testing"

	"github.com/gennadis/projectchat/storage"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk on fire")
}

func TestSession_EmptyByDefault(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory())

	_, ok := s.Token(ctx)
	require.False(t, ok)
	_, ok = s.ProjectID(ctx)
	require.False(t, ok)
}

func TestSession_PersistsThroughStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	require.NoError(t, New(store).SetToken(ctx, "abc"))
	require.NoError(t, New(store).SelectProject(ctx, "7"))

	// a second Session over the same store sees the same state
	other := New(store)
	token, ok := other.Token(ctx)
	require.True(t, ok)
	require.Equal(t, "abc", token)

	projectID, ok := other.ProjectID(ctx)
	require.True(t, ok)
	require.Equal(t, "7", projectID)

	raw, ok, err := store.Get(ctx, SelectedProjectIDKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "7", raw)
}

func TestSession_StoreFailures(t *testing.T) {
	ctx := context.Background()
	s := New(failingStore{})

	_, ok := s.Token(ctx)
	require.False(t, ok)
	require.Error(t, s.SetToken(ctx, "abc"))
	require.Error(t, s.SelectProject(ctx, "1"))
}
