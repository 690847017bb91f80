package cli

import (
	"fmt"

	"github.com/alexanderramin/timekeeper/internal/cli/formatter"
	"github.com/alexanderramin/timekeeper/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show every setting",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSettings(app.Settings))
				return nil
			},
		},
		&cobra.Command{
			Use:       "get <key>",
			Short:     "Print one setting",
			Args:      cobra.ExactArgs(1),
			ValidArgs: configKeys(),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := app.Settings.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		newConfigSetCmd(app),
		&cobra.Command{
			Use:   "path",
			Short: "Print the settings file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), app.SettingsPath)
				return nil
			},
		},
	)

	return cmd
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change a setting and save the settings file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: configKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.SettingsPath == "" {
				return fmt.Errorf("no settings file configured")
			}
			// Environment overrides stay out of the file.
			file, err := config.ReadFile(app.SettingsPath)
			if err != nil {
				return err
			}
			if err := file.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := file.Save(app.SettingsPath); err != nil {
				return err
			}
			if err := app.Settings.Set(args[0], args[1]); err != nil {
				return err
			}

			v, _ := file.Get(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n",
				formatter.StyleGreen.Render("✔"), args[0], formatter.Bold(v))
			return nil
		},
	}
}

func configKeys() []string {
	return append([]string(nil), config.Keys...)
}
