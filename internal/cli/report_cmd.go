package cli

import (
	"fmt"

	"github.com/alexanderramin/timekeeper/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize tracked time",
	}

	cmd.AddCommand(
		newReportDayCmd(app),
		newReportProjectCmd(app),
		newReportWeekCmd(app),
	)

	return cmd
}

func newReportDayCmd(app *App) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Totals per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rf.timeRange(app)
			if err != nil {
				return err
			}
			totals, err := app.Reports.TotalsByDay(cmd.Context(), r)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDayTotals(totals, app.layout()))
			return nil
		},
	}
	rf.register(cmd.Flags(), 7)
	return cmd
}

func newReportProjectCmd(app *App) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Totals per project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rf.timeRange(app)
			if err != nil {
				return err
			}
			totals, err := app.Reports.TotalsByProject(cmd.Context(), r)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectTotals(totals))
			return nil
		},
	}
	rf.register(cmd.Flags(), 7)
	return cmd
}

func newReportWeekCmd(app *App) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Totals per week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rf.timeRange(app)
			if err != nil {
				return err
			}
			totals, err := app.Reports.TotalsByWeek(cmd.Context(), r)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWeekTotals(totals, app.layout()))
			return nil
		},
	}
	rf.register(cmd.Flags(), 28)
	return cmd
}

func newWeekCmd(app *App) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the sessions of a week, day by day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := app.now()
			anchor, err := parseDateArg(date, now, app.layout())
			if err != nil {
				return err
			}
			w, err := app.Reports.Week(cmd.Context(), anchor)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWeek(*w, now, app.layout()))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Any day in the week to show; default today")
	return cmd
}

func newGoalsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "goals",
		Short: "Show progress toward the daily and weekly goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.Reports.Goals(cmd.Context(), app.now())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGoals(*g, app.Settings.DailyGoal, app.Settings.WeeklyGoal))
			return nil
		},
	}
}
