package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gennadis/projectchat/internal/config"
)

func (a *App) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the server, store and session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			signedIn := "no"
			if _, ok := a.session.Token(ctx); ok {
				signedIn = "yes"
			}
			project := "none"
			if id, ok := a.session.ProjectID(ctx); ok {
				project = id
			}

			tw := tabwriter.NewWriter(a.opts.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Server:\t%s\n", a.cfg.BaseURL)
			fmt.Fprintf(tw, "Store:\t%s\n", storeLabel(a.cfg.Store))
			fmt.Fprintf(tw, "Signed in:\t%s\n", signedIn)
			fmt.Fprintf(tw, "Project:\t%s\n", project)
			return tw.Flush()
		},
	}
}

func storeLabel(cfg config.StoreConfig) string {
	switch cfg.Backend {
	case config.StoreSQLite:
		return cfg.Backend + " (" + cfg.Path + ")"
	case config.StoreRedis:
		return cfg.Backend
	default:
		return cfg.Backend + " (not kept between runs)"
	}
}
