package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/timekeeper/internal/cli/formatter"
	"github.com/alexanderramin/timekeeper/internal/db"
	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage the project catalogue",
	}

	cmd.AddCommand(
		newProjectListCmd(app),
		newProjectAddCmd(app),
		newProjectRemoveCmd(app),
	)

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjects(projects, app.layout()))
			return nil
		},
	}
}

func newProjectAddCmd(app *App) *cobra.Command {
	var protected bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Projects.Add(cmd.Context(), args[0], protected)
			if errors.Is(err, db.ErrConstraintViolation) {
				return fmt.Errorf("project %q already exists", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added project %s\n",
				formatter.StyleGreen.Render("✔"), formatter.Bold(p.Name))
			return nil
		},
	}

	cmd.Flags().BoolVar(&protected, "protected", false, "Prevent the project from being removed")
	return cmd
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a project from the catalogue",
		Long: `Remove a project name from the catalogue. Sessions recorded under the
name are kept. Protected projects cannot be removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.Projects.Remove(cmd.Context(), args[0])
			switch {
			case errors.Is(err, db.ErrNotFound):
				return fmt.Errorf("project %q not found", args[0])
			case errors.Is(err, db.ErrConstraintViolation):
				return fmt.Errorf("project %q is protected", args[0])
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed project %s\n",
				formatter.StyleGreen.Render("✔"), formatter.Bold(args[0]))
			return nil
		},
	}
}
