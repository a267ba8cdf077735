// Package notify delivers reminder digests produced from the task store.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"task-manager/internal/model"
	"task-manager/internal/service"
)

// Notifier sends one rendered message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogNotifier writes messages to the application log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, text string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("reminder", "text", text)
	return nil
}

// SettingsSource supplies the notification flags.
type SettingsSource interface {
	Get(ctx context.Context) (*model.AppSettings, error)
}

// DigestSource renders the due-task summary.
type DigestSource interface {
	DueSummary(ctx context.Context, now time.Time, includeOpen bool) (string, service.Digest, error)
}

// ReminderJob decides, from the notification flags, whether a reminder goes out.
// dailyReminder sends every run; dueDate alone sends only when something is due.
type ReminderJob struct {
	Settings SettingsSource
	Digests  DigestSource
	Notifier Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

// Run executes one reminder pass and reports whether a message was sent.
func (j *ReminderJob) Run(ctx context.Context) (bool, error) {
	settings, err := j.Settings.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("load settings: %w", err)
	}
	flags := settings.Notifications
	if !flags.DailyReminder && !flags.DueDate {
		return false, nil
	}
	now := time.Now()
	if j.Now != nil {
		now = j.Now()
	}
	text, digest, err := j.Digests.DueSummary(ctx, now, flags.DailyReminder)
	if err != nil {
		return false, fmt.Errorf("build reminder: %w", err)
	}
	if !flags.DailyReminder && digest.Empty() {
		return false, nil
	}
	if err := j.Notifier.Notify(ctx, text); err != nil {
		return false, fmt.Errorf("send reminder: %w", err)
	}
	return true, nil
}

// Func adapts the job to a cron callback with its own timeout.
func (j *ReminderJob) Func(timeout time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sent, err := j.Run(ctx)
		logger := j.Logger
		if logger == nil {
			logger = slog.Default()
		}
		if err != nil {
			logger.Error("reminder failed", "err", err)
			return
		}
		logger.Debug("reminder pass", "sent", sent)
	}
}
