package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/gennadis/projectchat/internal/client"
	"github.com/gennadis/projectchat/internal/notify"
	"github.com/gennadis/projectchat/internal/pending"
	"github.com/gennadis/projectchat/internal/session"
	"github.com/gennadis/projectchat/storage"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	requests []client.ChatRequest
	tokens   []string
	reply    func(req client.ChatRequest) (*client.ChatResponse, error)
}

func (f *fakeAPI) SendMessage(_ context.Context, token string, req client.ChatRequest) (*client.ChatResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	return f.reply(req)
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func echo(req client.ChatRequest) (*client.ChatResponse, error) {
	return &client.ChatResponse{Response: "re: " + req.Message}, nil
}

func newSession(t *testing.T, token, projectID string) *session.Session {
	t.Helper()
	ctx := context.Background()
	s := session.New(storage.NewMemory())
	if token != "" {
		require.NoError(t, s.SetToken(ctx, token))
	}
	if projectID != "" {
		require.NoError(t, s.SelectProject(ctx, projectID))
	}
	return s
}

func TestSend_Success(t *testing.T) {
	api := &fakeAPI{reply: func(client.ChatRequest) (*client.ChatResponse, error) {
		return &client.ChatResponse{Response: "hi there"}, nil
	}}
	c := New(api, newSession(t, "abc", "1"))

	require.NoError(t, c.Send(context.Background(), "hello"))

	require.Equal(t, []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleBot, Content: "hi there"},
	}, c.Messages())
	require.Equal(t, []client.ChatRequest{{Message: "hello", ProjectID: 1}}, api.requests)
	require.Equal(t, []string{"abc"}, api.tokens)
	require.False(t, c.Pending())
}

func TestSend_Gating(t *testing.T) {
	tests := []struct {
		name      string
		projectID string
		text      string
		want      error
	}{
		{name: "empty", projectID: "1", text: "", want: ErrEmptyMessage},
		{name: "whitespace", projectID: "1", text: " \t\n ", want: ErrEmptyMessage},
		{name: "no project", projectID: "", text: "hello", want: ErrNoProject},
		{name: "non numeric project", projectID: "abc", text: "hello", want: ErrNoProject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{reply: echo}
			c := New(api, newSession(t, "abc", tt.projectID))

			err := c.Send(context.Background(), tt.text)
			require.ErrorIs(t, err, tt.want)
			require.True(t, notify.Silent(err))
			require.Empty(t, c.Messages())
			require.Zero(t, api.callCount())
			require.False(t, c.Pending())
		})
	}
}

func TestSend_KeepsOrder(t *testing.T) {
	c := New(&fakeAPI{reply: echo}, newSession(t, "abc", "3"))
	ctx := context.Background()

	var want []Message
	for i := 1; i <= 5; i++ {
		text := fmt.Sprintf("m%d", i)
		require.NoError(t, c.Send(ctx, text))
		want = append(want,
			Message{Role: RoleUser, Content: text},
			Message{Role: RoleBot, Content: "re: " + text},
		)
	}
	require.Equal(t, want, c.Messages())
}

func TestSend_DuplicatesAreKept(t *testing.T) {
	c := New(&fakeAPI{reply: func(client.ChatRequest) (*client.ChatResponse, error) {
		return &client.ChatResponse{Response: "same"}, nil
	}}, newSession(t, "abc", "1"))

	require.NoError(t, c.Send(context.Background(), "again"))
	require.NoError(t, c.Send(context.Background(), "again"))
	require.Len(t, c.Messages(), 4)
}

func TestSend_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "detail", err: &client.APIError{StatusCode: 404, Detail: "Project not found"}, want: "Project not found"},
		{name: "message", err: &client.APIError{StatusCode: 500, Message: "upstream down"}, want: "upstream down"},
		{name: "fallback", err: &client.APIError{StatusCode: 500}, want: "Failed to get response"},
		{name: "network", err: fmt.Errorf("%w: reset", client.ErrTransport), want: "Error connecting to server"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&fakeAPI{reply: func(client.ChatRequest) (*client.ChatResponse, error) {
				return nil, tt.err
			}}, newSession(t, "abc", "1"))

			err := c.Send(context.Background(), "hello")
			var alert *notify.Alert
			require.ErrorAs(t, err, &alert)
			require.Equal(t, tt.want, alert.Text)

			// the local echo stays, no bot message is added
			require.Equal(t, []Message{{Role: RoleUser, Content: "hello"}}, c.Messages())
			require.False(t, c.Pending())
		})
	}
}

func TestBegin_SerializesSends(t *testing.T) {
	unblock := make(chan struct{})
	api := &fakeAPI{reply: func(req client.ChatRequest) (*client.ChatResponse, error) {
		<-unblock
		return echo(req)
	}}
	c := New(api, newSession(t, "abc", "1"))
	ctx := context.Background()

	exchange, err := c.Begin(ctx, "first")
	require.NoError(t, err)
	require.True(t, c.Pending())
	require.Equal(t, []Message{{Role: RoleUser, Content: "first"}}, c.Messages())

	done := make(chan error)
	go func() { done <- exchange.Complete(ctx) }()

	// a second send while the first is outstanding changes nothing
	err = c.Send(ctx, "second")
	require.ErrorIs(t, err, pending.ErrBusy)
	require.True(t, notify.Silent(err))
	require.True(t, c.Pending())

	close(unblock)
	require.NoError(t, <-done)
	require.False(t, c.Pending())
	require.Equal(t, 1, api.callCount())
	require.Equal(t, []Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleBot, Content: "re: first"},
	}, c.Messages())

	require.Error(t, exchange.Complete(ctx), "an exchange completes once")
	require.Equal(t, 1, api.callCount())
}

func TestSend_WithoutTokenStillSends(t *testing.T) {
	api := &fakeAPI{reply: func(client.ChatRequest) (*client.ChatResponse, error) {
		return nil, &client.APIError{StatusCode: 403, Detail: "Not authenticated"}
	}}
	c := New(api, newSession(t, "", "1"))

	err := c.Send(context.Background(), "hello")
	require.Error(t, err)
	require.Equal(t, []string{""}, api.tokens)
}

func TestTranscript_MessagesIsACopy(t *testing.T) {
	var tr Transcript
	tr.Append(Message{Role: RoleUser, Content: "a"})

	msgs := tr.Messages()
	msgs[0].Content = "changed"
	require.Equal(t, "a", tr.Messages()[0].Content)
	require.Equal(t, 1, tr.Len())
}
