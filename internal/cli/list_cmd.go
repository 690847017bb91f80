package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/timekeeper/internal/cli/formatter"
	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/alexanderramin/timekeeper/internal/repository"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// rangeFlags are the --from/--to/--days flags shared by list and report.
type rangeFlags struct {
	from string
	to   string
	days int
}

func (f *rangeFlags) register(fs *pflag.FlagSet, defaultDays int) {
	fs.StringVar(&f.from, "from", "", "First day (inclusive)")
	fs.StringVar(&f.to, "to", "", "Last day (inclusive)")
	fs.IntVar(&f.days, "days", defaultDays, "Number of days ending today, when --from is not set")
}

// timeRange converts the flags into a half-open range of whole local days.
func (f *rangeFlags) timeRange(app *App) (domain.TimeRange, error) {
	now := app.now()
	l := app.layout()

	last, err := parseDateArg(f.to, now, l)
	if err != nil {
		return domain.TimeRange{}, err
	}
	var first time.Time
	if f.from != "" {
		if first, err = parseDateArg(f.from, now, l); err != nil {
			return domain.TimeRange{}, err
		}
	} else {
		if f.days < 1 {
			return domain.TimeRange{}, fmt.Errorf("--days must be at least 1")
		}
		first = last.AddDate(0, 0, -(f.days - 1))
	}
	if last.Before(first) {
		return domain.TimeRange{}, fmt.Errorf("--to %s is before --from %s", l.Day(last), l.Day(first))
	}
	return domain.TimeRange{From: first, To: last.AddDate(0, 0, 1)}, nil
}

func newListCmd(app *App) *cobra.Command {
	var rf rangeFlags
	var project, label string
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sessions",
		Long: `List sessions that start within a range of days, oldest first.
Defaults to today. --all lists every stored session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f domain.EntryFilter
			if !all {
				r, err := rf.timeRange(app)
				if err != nil {
					return err
				}
				f.Range = &r
			}
			if cmd.Flags().Changed("project") {
				p := domain.NormalizeProjectName(project)
				f.Project = &p
			}
			if cmd.Flags().Changed("label") {
				f.Label = &label
			}

			entries, err := repository.Collect(app.Entries.Query(cmd.Context(), f))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEntries(entries, app.now(), app.layout()))
			return nil
		},
	}

	rf.register(cmd.Flags(), 1)
	cmd.Flags().StringVarP(&project, "project", "p", "", "Only this project")
	cmd.Flags().StringVarP(&label, "label", "l", "", "Only this label")
	cmd.Flags().BoolVar(&all, "all", false, "List every session")
	_ = cmd.RegisterFlagCompletionFunc("project", completeProjects(app))

	return cmd
}
