package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gennadis/projectchat/internal/config"
	"github.com/gennadis/projectchat/internal/devserver"
	"github.com/gennadis/projectchat/internal/route"
	"github.com/gennadis/projectchat/internal/session"
	"github.com/gennadis/projectchat/storage"
)

type harness struct {
	server *devserver.Server
	store  storage.Store
	cfg    *config.Config
	in     string
	out    bytes.Buffer
	errOut bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	server := devserver.New(devserver.Options{})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &harness{
		server: server,
		store:  storage.NewMemory(),
		cfg:    config.NewConfig(ts.URL),
	}
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.out.Reset()
	h.errOut.Reset()

	app := New(Options{
		Config: h.cfg,
		Store:  h.store,
		In:     strings.NewReader(h.in),
		Out:    &h.out,
		Err:    &h.errOut,
	})
	t.Cleanup(func() { _ = app.Close() })

	cmd := app.Command()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func (h *harness) value(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := h.store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func (h *harness) login(t *testing.T) int64 {
	t.Helper()
	userID, err := h.server.AddUser("Ann", "a@b.com", "x")
	require.NoError(t, err)
	require.NoError(t, h.run(t, "login", "--email", "a@b.com", "--password", "x"))
	return userID
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	token, ok := h.value(t, session.TokenKey)
	require.True(t, ok)
	require.NotEmpty(t, token)
	require.Contains(t, h.out.String(), "Logged in as a@b.com")
	require.Contains(t, h.out.String(), "projectchat projects pick")
}

func TestLogin_Prompts(t *testing.T) {
	h := newHarness(t)
	_, err := h.server.AddUser("Ann", "a@b.com", "x")
	require.NoError(t, err)

	h.in = "a@b.com\nx\n"
	require.NoError(t, h.run(t, "login"))

	_, ok := h.value(t, session.TokenKey)
	require.True(t, ok)
	require.Contains(t, h.out.String(), "Email: ")
	require.Contains(t, h.out.String(), "Password: ")
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newHarness(t)
	_, err := h.server.AddUser("Ann", "a@b.com", "x")
	require.NoError(t, err)

	err = h.run(t, "login", "-e", "a@b.com", "-p", "wrong")
	require.ErrorIs(t, err, errNotified)
	require.Contains(t, h.errOut.String(), "Invalid credentials")

	_, ok := h.value(t, session.TokenKey)
	require.False(t, ok)
}

func TestLogin_ConnectionError(t *testing.T) {
	closed := httptest.NewServer(nil)
	closed.Close()

	h := newHarness(t)
	h.cfg = config.NewConfig(closed.URL)

	err := h.run(t, "login", "-e", "a@b.com", "-p", "x")
	require.ErrorIs(t, err, errNotified)
	require.Contains(t, h.errOut.String(), "Error connecting to server")
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "register", "-n", "Ann", "-e", "a@b.com", "-p", "x"))
	require.Contains(t, h.out.String(), "Registered a@b.com")
	require.Contains(t, h.out.String(), "projectchat login")

	err := h.run(t, "register", "-n", "Ann", "-e", "a@b.com", "-p", "y")
	require.ErrorIs(t, err, errNotified)
	require.Contains(t, h.errOut.String(), "Email already exists")
}

func TestProjects(t *testing.T) {
	h := newHarness(t)
	userID := h.login(t)
	h.server.AddProject(userID, "Proj1", "first")

	require.NoError(t, h.run(t, "projects"))
	require.Contains(t, h.out.String(), "Proj1")
	require.Contains(t, h.out.String(), "first")
}

func TestProjects_NotSignedIn(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, "projects")
	require.ErrorIs(t, err, errNotified)
	require.Contains(t, h.errOut.String(), "Error fetching projects")
	require.Contains(t, h.out.String(), "No projects found")
}

func TestProjects_CreateShowDelete(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	require.NoError(t, h.run(t, "projects", "create", "Notes", "-d", "scratch"))
	require.Contains(t, h.out.String(), "Created Notes")
	require.Contains(t, h.out.String(), "scratch")

	require.NoError(t, h.run(t, "projects", "show", "1"))
	require.Contains(t, h.out.String(), "Notes")

	require.NoError(t, h.run(t, "projects", "delete", "1"))
	require.Contains(t, h.out.String(), "Project deleted successfully")

	err := h.run(t, "projects", "show", "1")
	require.ErrorIs(t, err, errNotified)
	require.Contains(t, h.errOut.String(), "Project not found")
}

func TestSelectAndSend(t *testing.T) {
	h := newHarness(t)
	userID := h.login(t)
	h.server.AddProject(userID, "Proj1", "")

	require.NoError(t, h.run(t, "select", "1"))
	id, ok := h.value(t, session.SelectedProjectIDKey)
	require.True(t, ok)
	require.Equal(t, "1", id)
	require.Contains(t, h.out.String(), "projectchat chat")

	require.NoError(t, h.run(t, "send", "hello", "there"))
	require.Equal(t, "[Proj1] hello there\n", h.out.String())
}

func TestSend_NoProjectIsSilent(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	require.NoError(t, h.run(t, "send", "hello"))
	require.Empty(t, h.out.String())
	require.Empty(t, h.errOut.String())
}

func TestSend_ForeignProject(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	require.NoError(t, h.run(t, "select", "42"))

	err := h.run(t, "send", "hello")
	require.ErrorIs(t, err, errNotified)
	require.Contains(t, h.errOut.String(), "Project not found")
}

func TestStatus(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "status"))
	require.Contains(t, h.out.String(), h.cfg.BaseURL)
	require.Contains(t, h.out.String(), "memory")
	require.Regexp(t, `Signed in:\s+no`, h.out.String())
	require.Regexp(t, `Project:\s+none`, h.out.String())

	h.login(t)
	require.NoError(t, h.run(t, "select", "7"))
	require.NoError(t, h.run(t, "status"))
	require.Regexp(t, `Signed in:\s+yes`, h.out.String())
	require.Regexp(t, `Project:\s+7`, h.out.String())
}

func TestStartView(t *testing.T) {
	h := newHarness(t)
	app := New(Options{Config: h.cfg, Store: h.store})
	require.NoError(t, app.setup(app.Command(), nil))

	require.Equal(t, route.Login, app.startView(context.Background()))

	require.NoError(t, app.session.SetToken(context.Background(), "abc"))
	require.Equal(t, route.Projects, app.startView(context.Background()))
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "--version"))
	require.Contains(t, h.out.String(), "dev")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	require.Error(t, h.run(t, "nope"))
}

func TestRun_RetriesFailedLogin(t *testing.T) {
	h := newHarness(t)
	_, err := h.server.AddUser("Ann", "a@b.com", "x")
	require.NoError(t, err)

	// wrong password, right password, then quit the project picker
	h.in = "a@b.com\nwrong\na@b.com\nx\nq"
	require.NoError(t, h.run(t))

	token, ok := h.value(t, session.TokenKey)
	require.True(t, ok)
	require.NotEmpty(t, token)
	require.Equal(t, 1, strings.Count(h.errOut.String(), "! Invalid credentials"))
	require.Equal(t, 2, strings.Count(h.out.String(), "Email (blank to register): "))
}

func TestRun_BlankEmailSwitchesToRegistration(t *testing.T) {
	h := newHarness(t)

	h.in = "\nAnn\nnew@b.com\npw\nnew@b.com\npw\nq"
	require.NoError(t, h.run(t, "run"))

	_, ok := h.value(t, session.TokenKey)
	require.True(t, ok)
	require.Contains(t, h.out.String(), "Name: ")
	require.NotContains(t, h.errOut.String(), "! ")
}

func TestRun_ClosedInputEndsRun(t *testing.T) {
	h := newHarness(t)
	_, err := h.server.AddUser("Ann", "a@b.com", "x")
	require.NoError(t, err)

	h.in = "a@b.com\nwrong\n"
	require.NoError(t, h.run(t))

	_, ok := h.value(t, session.TokenKey)
	require.False(t, ok)
	require.Equal(t, 1, strings.Count(h.errOut.String(), "! Invalid credentials"))
}

func TestRun_StoredTokenSkipsLogin(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.in = "q"
	require.NoError(t, h.run(t))
	require.NotContains(t, h.out.String(), "Email")
}
