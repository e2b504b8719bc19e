package auth

import (
	"context"
	"log/slog"

	"github.com/gennadis/projectchat/internal/client"
	"github.com/gennadis/projectchat/internal/notify"
	"github.com/gennadis/projectchat/internal/pending"
	"github.com/gennadis/projectchat/internal/route"
	"github.com/gennadis/projectchat/internal/session"
)

const (
	loginFailedText    = "Login failed"
	registerFailedText = "Registration failed"
)

// API is the part of the backend the authenticator needs
type API interface {
	Login(ctx context.Context, email, password string) (*client.Token, error)
	Register(ctx context.Context, req client.RegisterRequest) (*client.RegisterResponse, error)
}

// Authenticator runs the login and registration forms.
type Authenticator struct {
	api     API
	session *session.Session
	nav     route.Navigator
	loading pending.Gate
}

func NewAuthenticator(api API, s *session.Session, nav route.Navigator) *Authenticator {
	return &Authenticator{api: api, session: s, nav: nav}
}

// Loading reports whether a login or registration request is in flight
func (a *Authenticator) Loading() bool {
	return a.loading.Busy()
}

// Login exchanges the credentials for a token, stores it and moves to the
// project list. On failure nothing is stored and no navigation happens; the
// returned *notify.Alert carries the text to show.
func (a *Authenticator) Login(ctx context.Context, email, password string) error {
	release, err := a.loading.Acquire()
	if err != nil {
		return err
	}
	defer release()

	token, err := a.api.Login(ctx, email, password)
	if err != nil {
		slog.Error("Failed to log in", "error", err)
		return notify.FromError(err, loginFailedText, notify.Detail)
	}

	if err := a.session.SetToken(ctx, token.AccessToken); err != nil {
		slog.Error("Failed to store access token", "error", err)
		return &notify.Alert{Text: loginFailedText, Err: err}
	}

	slog.Info("Logged in", slog.String("email", email))
	a.nav.Navigate(route.Projects)
	return nil
}

// Register creates an account and moves to the login form
func (a *Authenticator) Register(ctx context.Context, name, email, password string) error {
	release, err := a.loading.Acquire()
	if err != nil {
		return err
	}
	defer release()

	res, err := a.api.Register(ctx, client.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		slog.Error("Failed to register", "error", err)
		return notify.FromError(err, registerFailedText, notify.Detail)
	}

	slog.Info("Registered", slog.String("email", email), slog.Int64("user_id", res.UserID))
	a.nav.Navigate(route.Login)
	return nil
}
