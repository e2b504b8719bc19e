// Package projects lists the signed-in user's projects and records which one
// the chat screen should talk to.
package projects

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
	fetchFailedText  = "Error fetching projects"
	createFailedText = "Error creating project"
	selectFailedText = "Error selecting project"
)

// API is the part of the backend the lister needs
type API interface {
	ListProjects(ctx context.Context, token string) ([]client.Project, error)
	CreateProject(ctx context.Context, token string, req client.ProjectRequest) (*client.Project, error)
}

// Lister backs the project list screen. The list is fetched fresh on every
// Load and never cached between visits.
type Lister struct {
	api     API
	session *session.Session
	nav     route.Navigator
	loading pending.Gate
}

func NewLister(api API, s *session.Session, nav route.Navigator) *Lister {
	return &Lister{api: api, session: s, nav: nav}
}

// Loading reports whether a fetch or create is in flight
func (l *Lister) Loading() bool {
	return l.loading.Busy()
}

// Load fetches the projects. A missing token is not checked here: the request
// goes out without credentials and the server decides. On any failure the
// result is an empty list together with an alert.
func (l *Lister) Load(ctx context.Context) ([]client.Project, error) {
	release, err := l.loading.Acquire()
	if err != nil {
		return []client.Project{}, err
	}
	defer release()

	return l.fetch(ctx)
}

func (l *Lister) fetch(ctx context.Context) ([]client.Project, error) {
	token, _ := l.session.Token(ctx)
	projects, err := l.api.ListProjects(ctx, token)
	if err != nil {
		slog.Error("Failed to fetch projects", "error", err)
		return []client.Project{}, &notify.Alert{Text: fetchFailedText, Err: err}
	}

	slog.Debug("fetched projects", slog.Int("count", len(projects)))
	return projects, nil
}

// Select records id as the active project and moves to the chat screen.
// It makes no network call.
func (l *Lister) Select(ctx context.Context, id client.ProjectID) error {
	if err := l.session.SelectProject(ctx, string(id)); err != nil {
		slog.Error("Failed to store selected project", "error", err)
		return &notify.Alert{Text: selectFailedText, Err: err}
	}
	l.nav.Navigate(route.Chat)
	return nil
}

// Create adds a project and returns the freshly fetched list
func (l *Lister) Create(ctx context.Context, name, description string) ([]client.Project, error) {
	release, err := l.loading.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	req := client.ProjectRequest{Name: name}
	if description != "" {
		req.Description = &description
	}

	token, _ := l.session.Token(ctx)
	project, err := l.api.CreateProject(ctx, token, req)
	if err != nil {
		slog.Error("Failed to create project", "error", err)
		return nil, notify.FromError(err, createFailedText, notify.Detail)
	}
	slog.Info("Project created", slog.String("id", string(project.ID)), slog.String("name", project.Name))

	return l.fetch(ctx)
}
