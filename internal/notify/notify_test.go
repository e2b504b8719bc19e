package notify

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gennadis/projectchat/internal/client"
	"github.com/gennadis/projectchat/internal/pending"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	transport := fmt.Errorf("%w: dial tcp: refused", client.ErrTransport)

	tests := []struct {
		name   string
		err    error
		fields Fields
		want   string
	}{
		{name: "transport", err: transport, fields: Detail | Message, want: ConnectionErrorText},
		{name: "detail", err: &client.APIError{StatusCode: 400, Detail: "bad credentials"}, fields: Detail, want: "bad credentials"},
		{name: "message ignored when not enabled", err: &client.APIError{StatusCode: 500, Message: "boom"}, fields: Detail, want: "Login failed"},
		{name: "message used when enabled", err: &client.APIError{StatusCode: 500, Message: "boom"}, fields: Detail | Message, want: "boom"},
		{name: "detail wins over message", err: &client.APIError{StatusCode: 500, Detail: "d", Message: "m"}, fields: Detail | Message, want: "d"},
		{name: "fallback", err: &client.APIError{StatusCode: 500}, fields: Detail | Message, want: "Login failed"},
		{name: "fields disabled", err: &client.APIError{StatusCode: 500, Detail: "d"}, fields: 0, want: "Login failed"},
		{name: "other error", err: errors.New("weird"), fields: Detail, want: "Login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := FromError(tt.err, "Login failed", tt.fields)
			require.Equal(t, tt.want, alert.Text)
			require.ErrorIs(t, alert, tt.err)
		})
	}
}

func TestPresent(t *testing.T) {
	var shown []string
	n := Func(func(text string) { shown = append(shown, text) })

	require.False(t, Present(n, nil))
	require.False(t, Present(n, pending.ErrBusy))
	require.False(t, Present(n, fmt.Errorf("send: %w", &Ignored{Reason: "empty message"})))
	require.True(t, Present(n, &Alert{Text: "Error fetching projects"}))
	require.True(t, Present(n, fmt.Errorf("wrapped: %w", &Alert{Text: "Failed to get response"})))
	require.True(t, Present(n, errors.New("raw")))

	require.Equal(t, []string{"Error fetching projects", "Failed to get response", "raw"}, shown)
}

func TestIgnoredIs(t *testing.T) {
	a := &Ignored{Reason: "empty message"}
	require.ErrorIs(t, fmt.Errorf("x: %w", a), &Ignored{Reason: "empty message"})
	require.NotErrorIs(t, a, &Ignored{Reason: "no project selected"})
}
