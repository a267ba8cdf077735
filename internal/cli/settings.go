package cli

import (
	"github.com/spf13/cobra"

	"task-manager/internal/model"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change app settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, s)
		},
	})
	cmd.AddCommand(newSettingsSetCmd(app))
	return cmd
}

func newSettingsSetCmd(app *App) *cobra.Command {
	var theme, language string
	var autoSave, dueDate, daily bool
	var delay int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings (only the flags given are applied)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.SettingsPatch
			f := cmd.Flags()
			if f.Changed("theme") {
				t := model.Theme(theme)
				patch.Theme = &t
			}
			if f.Changed("language") {
				l := model.Language(language)
				patch.Language = &l
			}
			if f.Changed("autosave") {
				patch.AutoSave = &autoSave
			}
			if f.Changed("autosave-delay") {
				patch.AutoSaveDelay = &delay
			}
			if f.Changed("due-reminders") {
				patch.DueDate = &dueDate
			}
			if f.Changed("daily-reminder") {
				patch.DailyReminder = &daily
			}
			s, err := app.settings.Update(cmd.Context(), patch)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, s)
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "light|dark|auto")
	cmd.Flags().StringVar(&language, "language", "", "ko|en")
	cmd.Flags().BoolVar(&autoSave, "autosave", true, "Enable autosave")
	cmd.Flags().IntVar(&delay, "autosave-delay", 3000, "Autosave delay in milliseconds")
	cmd.Flags().BoolVar(&dueDate, "due-reminders", true, "Notify about due and overdue tasks")
	cmd.Flags().BoolVar(&daily, "daily-reminder", false, "Send a reminder every day")
	return cmd
}
