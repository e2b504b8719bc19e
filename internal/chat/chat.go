// Package chat implements the conversation with a project's bot.
//
// A Chat is either idle or sending. Sending starts with Begin, which echoes
// the user's message into the transcript straight away, and ends with
// Exchange.Complete, which appends the bot's reply or reports a failure.
// While an exchange is open every further Begin is refused, so at most one
// request per chat is in flight.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gennadis/projectchat/internal/client"
	"github.com/gennadis/projectchat/internal/notify"
	"github.com/gennadis/projectchat/internal/pending"
	"github.com/gennadis/projectchat/internal/session"
)

const failedResponseText = "Failed to get response"

// Sends blocked by these are silently ignored: nothing is appended and no
// request is made.
var (
	ErrEmptyMessage = &notify.Ignored{Reason: "empty message"}
	ErrNoProject    = &notify.Ignored{Reason: "no project selected"}
)

var errCompleted = errors.New("exchange already completed")

// API is the part of the backend the chat needs
type API interface {
	SendMessage(ctx context.Context, token string, request client.ChatRequest) (*client.ChatResponse, error)
}

type Chat struct {
	api        API
	session    *session.Session
	transcript Transcript
	sending    pending.Gate
}

// New creates a chat with an empty transcript
func New(api API, s *session.Session) *Chat {
	return &Chat{api: api, session: s}
}

// Messages returns the transcript in conversation order
func (c *Chat) Messages() []Message {
	return c.transcript.Messages()
}

// Pending reports whether a message is waiting for its reply
func (c *Chat) Pending() bool {
	return c.sending.Busy()
}

// Exchange is a message that has been echoed locally and not yet answered.
type Exchange struct {
	chat     *Chat
	token    string
	request  client.ChatRequest
	release  func()
	finished atomic.Bool
}

// Begin validates text, appends it to the transcript as the user's message
// and marks the chat as sending. It returns pending.ErrBusy while another
// exchange is open, ErrEmptyMessage for blank text and ErrNoProject when no
// usable project is selected.
func (c *Chat) Begin(ctx context.Context, text string) (*Exchange, error) {
	release, err := c.sending.Acquire()
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		release()
		return nil, ErrEmptyMessage
	}

	rawID, ok := c.session.ProjectID(ctx)
	if !ok {
		release()
		return nil, ErrNoProject
	}
	projectID, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		release()
		slog.Warn("Selected project id is not numeric", "project_id", rawID)
		return nil, fmt.Errorf("project id %q: %w", rawID, ErrNoProject)
	}

	token, _ := c.session.Token(ctx)
	c.transcript.Append(Message{Role: RoleUser, Content: text})

	return &Exchange{
		chat:    c,
		token:   token,
		request: client.ChatRequest{Message: text, ProjectID: projectID},
		release: release,
	}, nil
}

// Complete sends the message and appends the reply. Failures append nothing
// and come back as *notify.Alert. The chat is idle again when Complete
// returns, whatever the outcome.
func (e *Exchange) Complete(ctx context.Context) error {
	if !e.finished.CompareAndSwap(false, true) {
		return errCompleted
	}
	defer e.release()

	resp, err := e.chat.api.SendMessage(ctx, e.token, e.request)
	if err != nil {
		slog.Error("Failed to get chat response", "project_id", e.request.ProjectID, "error", err)
		return notify.FromError(err, failedResponseText, notify.Detail|notify.Message)
	}

	e.chat.transcript.Append(Message{Role: RoleBot, Content: resp.Response})
	slog.Debug("chat reply received",
		slog.Int64("project_id", e.request.ProjectID),
		slog.Int("transcript_len", e.chat.transcript.Len()),
	)
	return nil
}

// Send runs a whole exchange: Begin followed by Complete
func (c *Chat) Send(ctx context.Context, text string) error {
	exchange, err := c.Begin(ctx, text)
	if err != nil {
		return err
	}
	return exchange.Complete(ctx)
}
