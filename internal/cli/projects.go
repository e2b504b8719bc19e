package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gennadis/projectchat/internal/client"
	"github.com/gennadis/projectchat/internal/notify"
	"github.com/gennadis/projectchat/internal/projects"
	"github.com/gennadis/projectchat/internal/tui"
)

func (a *App) lister() *projects.Lister {
	return projects.NewLister(a.api, a.session, hintNavigator{w: a.opts.Out})
}

func (a *App) projectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List your projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.lister().Load(cmd.Context())
			presented := a.present(err)
			printProjects(a.opts.Out, list)
			return presented
		},
	}

	var description string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.lister().Create(cmd.Context(), args[0], description)
			if err != nil {
				return a.present(err)
			}
			fmt.Fprintln(a.opts.Out, okStyle.Render("Created "+args[0]))
			printProjects(a.opts.Out, list)
			return nil
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "Project description")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token, _ := a.session.Token(ctx)
			project, err := a.api.GetProject(ctx, token, args[0])
			if err != nil {
				return a.present(notify.FromError(err, "Error fetching project", notify.Detail))
			}
			printProjects(a.opts.Out, []client.Project{*project})
			return nil
		},
	}

	remove := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token, _ := a.session.Token(ctx)
			message, err := a.api.DeleteProject(ctx, token, args[0])
			if err != nil {
				return a.present(notify.FromError(err, "Error deleting project", notify.Detail))
			}
			fmt.Fprintln(a.opts.Out, okStyle.Render(message))
			return nil
		},
	}

	pick := &cobra.Command{
		Use:   "pick",
		Short: "Choose the active project interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, ok, err := tui.PickProject(cmd.Context(), a.screenInput(), a.opts.Out, a.lister())
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintln(a.opts.Out, okStyle.Render("Selected "+project.Name))
			}
			return nil
		},
	}

	cmd.AddCommand(create, show, remove, pick)
	return cmd
}

func (a *App) selectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select ID",
		Short: "Make a project the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.lister().Select(cmd.Context(), client.ProjectID(args[0])); err != nil {
				return a.present(err)
			}
			return nil
		},
	}
}

func printProjects(w io.Writer, list []client.Project) {
	if len(list) == 0 {
		fmt.Fprintln(w, hintStyle.Render("No projects found"))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, headerStyle.Render("ID")+"\t"+headerStyle.Render("NAME")+"\t"+headerStyle.Render("DESCRIPTION"))
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Description)
	}
	tw.Flush()
}
