package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/timekeeper/internal/cli/formatter"
	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/spf13/cobra"
)

func newStartCmd(app *App) *cobra.Command {
	var project, label, at string

	cmd := &cobra.Command{
		Use:   "start [project]",
		Short: "Start a session",
		Long: `Start a new session for a project. The project can be given as an
argument or with --project. With the reject policy a running session must be
stopped first; with auto_close it is stopped at the new start time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if project != "" && project != args[0] {
					return fmt.Errorf("project given twice: %q and --project %q", args[0], project)
				}
				project = args[0]
			}
			if err := domain.ValidateProjectName(domain.NormalizeProjectName(project)); err != nil {
				return err
			}
			when, err := parseTimeArg(at, app.now(), app.layout())
			if err != nil {
				return err
			}

			e, err := app.Entries.StartSession(cmd.Context(), project, label, when)
			if errors.Is(err, domain.ErrSessionAlreadyOpen) {
				return fmt.Errorf("a session is already running; stop it first with 'timekeeper stop': %w", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStarted(*e, app.layout()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name")
	cmd.Flags().StringVarP(&label, "label", "l", "", "Optional label")
	cmd.Flags().StringVar(&at, "at", "", "Start time (HH:MM, \"YYYY-MM-DD HH:MM\", RFC 3339 or -15m); default now")
	_ = cmd.RegisterFlagCompletionFunc("project", completeProjects(app))

	return cmd
}

func newStopCmd(app *App) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := parseTimeArg(at, app.now(), app.layout())
			if err != nil {
				return err
			}

			e, err := app.Entries.StopSession(cmd.Context(), when)
			switch {
			case errors.Is(err, domain.ErrNoOpenSession):
				return fmt.Errorf("no session is running: %w", err)
			case errors.Is(err, domain.ErrInvalidTimeRange):
				return fmt.Errorf("stop time is before the session start: %w", err)
			case err != nil:
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStopped(*e, app.layout()))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Stop time; default now")
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running session, today's total and goal progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printStatus(cmd, app)
		},
	}
}

func printStatus(cmd *cobra.Command, app *App) error {
	now := app.now()
	d, err := app.Reports.Dashboard(cmd.Context(), now)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStatus(*d, now, app.layout()))
	return nil
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := resolveEntry(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Entries.DeleteSession(ctx, e.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s session %s\n",
				formatter.StyleGreen.Render("✔"), formatter.Bold(e.Project), formatter.TruncID(e.ID))
			return nil
		},
	}
}
