// Package cli wires the projectchat components into a cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gennadis/projectchat/internal/client"
	"github.com/gennadis/projectchat/internal/config"
	"github.com/gennadis/projectchat/internal/logging"
	"github.com/gennadis/projectchat/internal/notify"
	"github.com/gennadis/projectchat/internal/session"
	"github.com/gennadis/projectchat/storage"
)

var (
	version = "dev"
	commit  = "unknown"
)

// errNotified is returned once the user has already been shown the failure
var errNotified = errors.New("notified")

// Options replaces the parts of the environment a command would otherwise open
// itself. Zero values mean "use the real thing".
type Options struct {
	Config *config.Config
	Store  storage.Store
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
}

// App holds the dependencies shared by every command. They are built in the
// root command's PersistentPreRunE.
type App struct {
	opts       Options
	configPath string
	verbose    bool

	cfg      *config.Config
	store    storage.Store
	closers  []func() error
	session  *session.Session
	api      *client.Client
	prompt   *prompter
	notifier notify.Notifier
}

func New(opts Options) *App {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	return &App{opts: opts}
}

// Command builds the command tree
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "projectchat",
		Short: "Chat with your projects from the terminal",
		Long: `projectchat signs you in to a project chat backend, lets you pick one of
your projects and exchange messages scoped to it.

Quick Start:
  projectchat                      # sign in, pick a project and chat
  projectchat login                # sign in only
  projectchat projects pick        # choose the active project
  projectchat send "hello"         # one-shot message to the active project`,
		Version:           fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFlow(cmd.Context())
		},
	}
	root.SetIn(a.opts.In)
	root.SetOut(a.opts.Out)
	root.SetErr(a.opts.Err)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		a.runCommand(),
		a.loginCommand(),
		a.registerCommand(),
		a.projectsCommand(),
		a.selectCommand(),
		a.chatCommand(),
		a.sendCommand(),
		a.statusCommand(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg := a.opts.Config
	if cfg == nil {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	a.cfg = cfg
	logging.Setup(cfg.LogLevel, a.verbose, a.opts.Err)

	store := a.opts.Store
	if store == nil {
		opened, closer, err := openStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		store = opened
		a.closers = append(a.closers, closer)
	}
	a.store = store

	a.session = session.New(store)
	a.api = client.NewClient(*cfg)
	a.prompt = newPrompter(a.opts.In, a.opts.Out)
	a.notifier = stderrNotifier{w: a.opts.Err}
	return nil
}

// Close releases whatever setup opened
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// present shows err and converts a shown failure into errNotified
func (a *App) present(err error) error {
	if notify.Present(a.notifier, err) {
		return errNotified
	}
	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (storage.Store, func() error, error) {
	switch cfg.Backend {
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		values, err := storage.OpenValues(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return values, values.Close, nil
	case config.StoreRedis:
		r, err := storage.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	default:
		return storage.NewMemory(), func() error { return nil }, nil
	}
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context) int {
	app := New(Options{})
	defer func() {
		if err := app.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}()

	if err := app.Command().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errNotified) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
