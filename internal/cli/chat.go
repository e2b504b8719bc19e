package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gennadis/projectchat/internal/chat"
	"github.com/gennadis/projectchat/internal/tui"
)

func (a *App) chatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the chat screen for the active project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return tui.RunChat(ctx, a.screenInput(), a.opts.Out, chat.New(a.api, a.session), a.chatTitle(ctx))
		},
	}
}

func (a *App) sendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send MESSAGE...",
		Short: "Send one message to the active project and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := chat.New(a.api, a.session)
			if err := c.Send(cmd.Context(), strings.Join(args, " ")); err != nil {
				return a.present(err)
			}

			messages := c.Messages()
			if len(messages) > 0 && messages[len(messages)-1].Role == chat.RoleBot {
				fmt.Fprintln(a.opts.Out, messages[len(messages)-1].Content)
			}
			return nil
		},
	}
}

// chatTitle names the chat screen after the active project, falling back to
// its id when the project cannot be fetched
func (a *App) chatTitle(ctx context.Context) string {
	id, ok := a.session.ProjectID(ctx)
	if !ok {
		return "No project selected"
	}

	token, _ := a.session.Token(ctx)
	project, err := a.api.GetProject(ctx, token, id)
	if err != nil {
		slog.Debug("could not fetch project for title", slog.String("id", id), slog.String("error", err.Error()))
		return "Project " + id
	}
	return project.Name
}
