package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/timekeeper/internal/cli/formatter"
	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newEditCmd(app *App) *cobra.Command {
	var start, end, project, label, note string
	var reopen, interactive bool

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a session",
		Long: `Edit a stored session by ID or ID prefix. Only the given flags change.
--open clears the end time so the session runs again; no other session may be
running. With --interactive the fields are edited in a form.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			current, err := resolveEntry(ctx, app, args[0])
			if err != nil {
				return err
			}

			fields := newEditEntryFields(*current, app.layout())
			if interactive {
				if err := editEntryForm(ctx, app, fields).RunWithContext(ctx); err != nil {
					return err
				}
			} else {
				flags := cmd.Flags()
				if flags.Changed("end") && reopen {
					return fmt.Errorf("--end and --open cannot be combined")
				}
				if flags.Changed("start") {
					fields.start = start
				}
				if flags.Changed("end") {
					fields.end = end
				}
				if reopen {
					fields.end = ""
				}
				if flags.Changed("project") {
					fields.project = project
				}
				if flags.Changed("label") {
					fields.label = label
				}
				if flags.Changed("note") {
					fields.note = note
				}
			}

			updated, err := applyEditEntry(ctx, app, current.ID, fields)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Updated session\n\n%s",
				formatter.StyleGreen.Render("✔"),
				formatter.FormatEntry(*updated, app.now(), app.layout()))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "New start time")
	cmd.Flags().StringVar(&end, "end", "", "New end time")
	cmd.Flags().BoolVar(&reopen, "open", false, "Clear the end time and resume the session")
	cmd.Flags().StringVarP(&project, "project", "p", "", "New project")
	cmd.Flags().StringVarP(&label, "label", "l", "", "New label")
	cmd.Flags().StringVar(&note, "note", "", "New note")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Edit in a form")
	_ = cmd.RegisterFlagCompletionFunc("project", completeProjects(app))

	return cmd
}

// editEntryFields holds form-bound values for editing a session. Times are
// text in the user's layout; an empty end means the session stays open.
type editEntryFields struct {
	start   string
	end     string
	project string
	label   string
	note    string

	// orig keeps full precision for times whose text was left unchanged.
	orig domain.TimeEntry
}

func newEditEntryFields(e domain.TimeEntry, l formatter.Layout) *editEntryFields {
	f := &editEntryFields{
		orig:    e,
		start:   l.Stamp(e.Start),
		project: e.Project,
		label:   e.Label,
		note:    e.Note,
	}
	if e.End != nil {
		f.end = l.Stamp(*e.End)
	}
	return f
}

// sessionEdit converts the fields into an edit. Start is required.
func (f *editEntryFields) sessionEdit(now time.Time, l formatter.Layout) (domain.SessionEdit, error) {
	start := f.orig.Start
	if f.start != l.Stamp(f.orig.Start) {
		parsed, err := parseTimeArg(f.start, now, l)
		if err != nil {
			return domain.SessionEdit{}, fmt.Errorf("start: %w", err)
		}
		if parsed.IsZero() {
			return domain.SessionEdit{}, fmt.Errorf("start time is required")
		}
		start = parsed
	}

	edit := domain.SessionEdit{Start: start}
	switch {
	case strings.TrimSpace(f.end) == "":
	case f.orig.End != nil && f.end == l.Stamp(*f.orig.End):
		end := *f.orig.End
		edit.End = &end
	default:
		end, err := parseTimeArg(f.end, now, l)
		if err != nil {
			return domain.SessionEdit{}, fmt.Errorf("end: %w", err)
		}
		edit.End = &end
	}

	project := domain.NormalizeProjectName(f.project)
	if err := validateEditProject(project); err != nil {
		return domain.SessionEdit{}, err
	}
	label, note := f.label, f.note
	edit.Project = &project
	edit.Label = &label
	edit.Note = &note
	return edit, nil
}

// validateEditProject accepts an empty project, which leaves the entry
// unlabeled.
func validateEditProject(name string) error {
	if name == "" {
		return nil
	}
	return domain.ValidateProjectName(name)
}

// applyEditEntry persists edited fields through the manager.
func applyEditEntry(ctx context.Context, app *App, id string, f *editEntryFields) (*domain.TimeEntry, error) {
	edit, err := f.sessionEdit(app.now(), app.layout())
	if err != nil {
		return nil, err
	}
	return app.Entries.EditSession(ctx, id, edit)
}

// editEntryForm builds the themed form for editing a session. Known project
// names are offered as suggestions.
func editEntryForm(ctx context.Context, app *App, f *editEntryFields) *huh.Form {
	l := app.layout()
	var suggestions []string
	if projects, err := app.Projects.List(ctx); err == nil {
		for _, p := range projects {
			suggestions = append(suggestions, p.Name)
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Start").
				Description(l.Date+" "+l.Time).
				Value(&f.start).
				Validate(validateTime(l, app.now)),
			huh.NewInput().
				Title("End (blank keeps the session running)").
				Description(l.Date+" "+l.Time).
				Value(&f.end).
				Validate(validateOptionalTime(l, app.now)),
			huh.NewInput().
				Title("Project").
				Suggestions(suggestions).
				Value(&f.project).
				Validate(func(s string) error {
					return validateEditProject(domain.NormalizeProjectName(s))
				}),
			huh.NewInput().
				Title("Label (optional)").
				Value(&f.label),
			huh.NewText().
				Title("Note (optional)").
				Lines(3).
				Value(&f.note),
		),
	).WithTheme(timekeeperHuhTheme()).WithShowHelp(false)
}
