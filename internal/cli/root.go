package cli

import (
	"time"

	"github.com/alexanderramin/timekeeper/internal/cli/formatter"
	"github.com/alexanderramin/timekeeper/internal/config"
	"github.com/alexanderramin/timekeeper/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and settings used by CLI commands and the TUI.
type App struct {
	Entries  service.TimeEntryManager
	Reports  service.ReportService
	Projects service.ProjectService

	// Settings are the loaded user preferences. SettingsPath is where
	// 'config set' writes them back; empty disables saving.
	Settings     config.Settings
	SettingsPath string

	// Now defaults to time.Now.
	Now func() time.Time
	// IsInteractive reports whether stdin is a terminal. The bare root
	// command opens the TUI only when it returns true.
	IsInteractive func() bool
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) layout() formatter.Layout {
	l := formatter.Layout{Date: a.Settings.DateFormat, Time: a.Settings.TimeFormat}
	if l.Date == "" {
		l.Date = formatter.DefaultLayout.Date
	}
	if l.Time == "" {
		l.Time = formatter.DefaultLayout.Time
	}
	return l
}

// NewRootCmd creates the top-level "timekeeper" command and registers all
// subcommands against the provided App. Run without arguments it opens the
// live view on a terminal and prints the status otherwise.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "timekeeper",
		Short:         "Track working time by project",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return runTUI(cmd.Context(), app)
			}
			return printStatus(cmd, app)
		},
	}

	root.AddCommand(
		newStartCmd(app),
		newStopCmd(app),
		newStatusCmd(app),
		newEditCmd(app),
		newDeleteCmd(app),
		newListCmd(app),
		newReportCmd(app),
		newWeekCmd(app),
		newGoalsCmd(app),
		newProjectsCmd(app),
		newConfigCmd(app),
		newTUICmd(app),
	)

	return root
}
