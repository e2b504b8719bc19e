package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gennadis/projectchat/internal/auth"
	"github.com/gennadis/projectchat/internal/chat"
	"github.com/gennadis/projectchat/internal/projects"
	"github.com/gennadis/projectchat/internal/route"
	"github.com/gennadis/projectchat/internal/tui"
)

func (a *App) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Sign in, pick a project and chat (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFlow(cmd.Context())
		},
	}
}

// startView skips the login screen when a token is already stored
func (a *App) startView(ctx context.Context) route.View {
	if _, ok := a.session.Token(ctx); ok {
		return route.Projects
	}
	return route.Login
}

// runFlow drives the screens through the router. Closing the input on a form
// ends the run, as does quitting the project list; leaving the chat screen
// goes back to the project list.
func (a *App) runFlow(ctx context.Context) error {
	router := route.NewRouter()
	authn := auth.NewAuthenticator(a.api, a.session, router)
	lister := projects.NewLister(a.api, a.session, router)

	router.Handle(route.Login, func(ctx context.Context) error {
		return endOnEOF(a.signIn(ctx, authn, func() { router.Navigate(route.Register) }))
	})
	router.Handle(route.Register, func(ctx context.Context) error {
		return endOnEOF(a.signUp(ctx, authn))
	})
	router.Handle(route.Projects, func(ctx context.Context) error {
		_, _, err := tui.PickProject(ctx, a.screenInput(), a.opts.Out, lister)
		return err
	})
	router.Handle(route.Chat, func(ctx context.Context) error {
		if err := tui.RunChat(ctx, a.screenInput(), a.opts.Out, chat.New(a.api, a.session), a.chatTitle(ctx)); err != nil {
			return err
		}
		router.Navigate(route.Projects)
		return nil
	})

	err := router.Run(ctx, a.startView(ctx))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// screenInput is what the full-screen views read from. A terminal is handed
// over as is so it can be put into raw mode; anything else is read through the
// prompter's buffer, which may already hold input meant for the screen.
func (a *App) screenInput() io.Reader {
	if f, ok := a.opts.In.(*os.File); ok {
		return f
	}
	return a.prompt.reader
}

func endOnEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
