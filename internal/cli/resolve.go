package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/timekeeper/internal/domain"
	"github.com/spf13/cobra"
)

// resolveEntry finds an entry by full ID or by the short prefix shown in
// listings. A prefix matching more than one entry is an error.
func resolveEntry(ctx context.Context, app *App, input string) (*domain.TimeEntry, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("entry ID is required")
	}

	e, err := app.Entries.Get(ctx, input)
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e, nil
	}

	var match *domain.TimeEntry
	for entry, err := range app.Entries.Query(ctx, domain.EntryFilter{}) {
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(entry.ID, input) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("entry ID %q is ambiguous; use more characters", input)
		}
		found := entry
		match = &found
	}
	if match == nil {
		return nil, fmt.Errorf("entry %q: %w", input, domain.ErrNotFound)
	}
	return match, nil
}

// completeProjects offers catalogued project names for --project flags.
func completeProjects(app *App) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		projects, err := app.Projects.List(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var names []string
		for _, p := range projects {
			if strings.HasPrefix(strings.ToLower(p.Name), strings.ToLower(toComplete)) {
				names = append(names, p.Name)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
