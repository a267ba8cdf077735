package cli

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"task-manager/internal/notify"
	"task-manager/internal/service"
)

func newRemindCmd(app *App) *cobra.Command {
	var daemon bool
	var at string
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send the due-task reminder now, or daily with --daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			notifier, err := app.notifier()
			if err != nil {
				return err
			}
			job := &notify.ReminderJob{
				Settings: app.settings,
				Digests:  app.reminders,
				Notifier: notifier,
				Logger:   app.Logger,
			}
			if !daemon {
				sent, err := job.Run(cmd.Context())
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"sent": sent})
			}

			when := at
			if when == "" {
				when = app.Config.ReminderTime
			}
			scheduler := service.NewSchedulerService(time.Local, app.Logger)
			var entry cron.EntryID
			if every > 0 {
				entry, err = scheduler.ScheduleInterval(every, job.Func(30*time.Second))
			} else {
				entry, err = scheduler.ScheduleDaily(when, job.Func(30*time.Second))
			}
			if err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()
			app.Logger.Info("reminder daemon started", "at", when, "every", every, "next", scheduler.Next(entry))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			<-ctx.Done()
			app.Logger.Info("reminder daemon stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&daemon, "daemon", false, "Keep running and send the reminder every day")
	cmd.Flags().StringVar(&at, "at", "", "Daily time HH:MM (default: config reminder_time)")
	cmd.Flags().DurationVar(&every, "every", 0, "Send on a fixed interval instead of daily, e.g. 4h")
	return cmd
}

func (app *App) notifier() (notify.Notifier, error) {
	if app.Config.TelegramToken == "" {
		return notify.LogNotifier{Logger: app.Logger}, nil
	}
	tg, err := notify.NewTelegramNotifier(app.Config.TelegramToken, app.Config.TelegramChatID, app.Logger)
	if err != nil {
		return nil, err
	}
	return tg, nil
}
