// Package notify turns operation results into user notifications. Components
// return errors; the screen that started the operation hands them to Present,
// which is the only place user-facing alerts are produced.
package notify

import (
	"errors"
	"log/slog"

	"github.com/gennadis/projectchat/internal/client"
	"github.com/gennadis/projectchat/internal/pending"
)

// ConnectionErrorText is shown whenever the server could not be reached.
const ConnectionErrorText = "Error connecting to server"

// Alert is an error that carries the exact text to show the user.
type Alert struct {
	Text string
	Err  error
}

func (a *Alert) Error() string {
	if a.Err != nil {
		return a.Text + ": " + a.Err.Error()
	}
	return a.Text
}

func (a *Alert) Unwrap() error {
	return a.Err
}

// Fields selects which error body fields may supply the alert text.
type Fields int

const (
	Detail Fields = 1 << iota
	Message
)

// FromError builds the alert for a failed API call. Connection failures get
// ConnectionErrorText; API errors use the enabled body fields in order
// (detail, then message) and fall back to fallback.
func FromError(err error, fallback string, fields Fields) *Alert {
	if errors.Is(err, client.ErrTransport) {
		return &Alert{Text: ConnectionErrorText, Err: err}
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		text := ""
		if fields&Detail != 0 {
			text = apiErr.Detail
		}
		if text == "" && fields&Message != 0 {
			text = apiErr.Message
		}
		if text == "" {
			text = fallback
		}
		return &Alert{Text: text, Err: err}
	}

	return &Alert{Text: fallback, Err: err}
}

// Ignored marks errors for actions that were blocked without anything to report,
// such as an empty chat message.
type Ignored struct {
	Reason string
}

func (e *Ignored) Error() string { return e.Reason }

// Is lets errors.Is match any two Ignored values with the same reason.
func (e *Ignored) Is(target error) bool {
	t, ok := target.(*Ignored)
	return ok && t.Reason == e.Reason
}

// Silent reports whether err needs no notification
func Silent(err error) bool {
	if err == nil || errors.Is(err, pending.ErrBusy) {
		return true
	}
	var ignored *Ignored
	return errors.As(err, &ignored)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Notify(text string)
}

// Func adapts a function to Notifier
type Func func(text string)

func (f Func) Notify(text string) { f(text) }

// Present shows err to the user through n, if it needs showing, and reports
// whether a notification was issued.
func Present(n Notifier, err error) bool {
	if Silent(err) {
		return false
	}

	var alert *Alert
	if errors.As(err, &alert) {
		n.Notify(alert.Text)
		return true
	}

	slog.Error("Unexpected error reached the user", "error", err)
	n.Notify(err.Error())
	return true
}
