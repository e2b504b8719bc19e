package route

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRouter_FollowsNavigation(t *testing.T) {
	r := NewRouter()
	var visited []View

	r.Handle(Login, func(ctx context.Context) error {
		visited = append(visited, r.Current())
		r.Navigate(Projects)
		return nil
	})
	r.Handle(Projects, func(ctx context.Context) error {
		visited = append(visited, r.Current())
		r.Navigate(Chat)
		return nil
	})
	r.Handle(Chat, func(ctx context.Context) error {
		visited = append(visited, r.Current())
		return nil
	})

	require.NoError(t, r.Run(context.Background(), Login))
	require.Equal(t, []View{Login, Projects, Chat}, visited)
}

func TestRouter_StopsOnError(t *testing.T) {
	r := NewRouter()
	boom := errors.New("boom")
	r.Handle(Login, func(ctx context.Context) error {
		r.Navigate(Projects)
		return boom
	})

	err := r.Run(context.Background(), Login)
	require.ErrorIs(t, err, boom)
}

func TestRouter_UnknownView(t *testing.T) {
	require.Error(t, NewRouter().Run(context.Background(), Chat))
}

func TestRouter_Cancelled(t *testing.T) {
	r := NewRouter()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	r.Handle(Projects, func(context.Context) error {
		calls++
		cancel()
		r.Navigate(Projects)
		return nil
	})

	require.ErrorIs(t, r.Run(ctx, Projects), context.Canceled)
	require.Equal(t, 1, calls)
}

func TestNavigatorFunc(t *testing.T) {
	var got View
	var n Navigator = NavigatorFunc(func(v View) { got = v })
	n.Navigate(Chat)
	require.Equal(t, Chat, got)
}
