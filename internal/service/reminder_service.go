package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// dueSoonWindow is how far ahead a due date counts as "due soon".
const dueSoonWindow = 48 * time.Hour

// Digest is the reminder content for one point in time.
type Digest struct {
	Overdue []model.Task
	DueSoon []model.Task
	Open    int
}

// Empty reports whether there is nothing due.
func (d Digest) Empty() bool {
	return len(d.Overdue) == 0 && len(d.DueSoon) == 0
}

// ReminderService builds human-readable summaries for notifications.
type ReminderService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewReminderService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *ReminderService {
	return &ReminderService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

// Collect gathers unfinished tasks whose due date has passed or falls within
// the next 48 hours, earliest first.
func (s *ReminderService) Collect(ctx context.Context, now time.Time) (Digest, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return Digest{}, err
	}
	var d Digest
	for _, task := range tasks {
		if task.Status == model.StatusDone {
			continue
		}
		d.Open++
		if task.DueDate == nil {
			continue
		}
		due := task.DueDate.In(now.Location())
		switch {
		case now.After(due):
			d.Overdue = append(d.Overdue, task)
		case due.Sub(now) <= dueSoonWindow:
			d.DueSoon = append(d.DueSoon, task)
		}
	}
	byDue := func(list []model.Task) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].DueDate.Before(*list[j].DueDate)
		})
	}
	byDue(d.Overdue)
	byDue(d.DueSoon)
	return d, nil
}

// DueSummary renders the digest as Telegram-compatible HTML. includeOpen adds
// the open-task count line used by the daily reminder.
func (s *ReminderService) DueSummary(ctx context.Context, now time.Time, includeOpen bool) (string, Digest, error) {
	d, err := s.Collect(ctx, now)
	if err != nil {
		return "", Digest{}, err
	}
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return "", Digest{}, err
	}
	catNames := make(map[string]string, len(categories))
	for _, cat := range categories {
		catNames[cat.ID] = cat.Name
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Task reminder</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n", now.Format("2006-01-02")))
	if includeOpen {
		builder.WriteString(fmt.Sprintf("Open tasks: %d\n", d.Open))
	}

	builder.WriteString("\n⚠️ <b>Overdue</b>\n")
	if len(d.Overdue) == 0 {
		builder.WriteString("· none\n")
	}
	for _, task := range d.Overdue {
		builder.WriteString(formatTask(task, catNames, now))
	}

	builder.WriteString("\n⏳ <b>Due within 48h</b>\n")
	if len(d.DueSoon) == 0 {
		builder.WriteString("· none\n")
	}
	for _, task := range d.DueSoon {
		builder.WriteString(formatTask(task, catNames, now))
	}

	return strings.TrimSpace(builder.String()), d, nil
}

func formatTask(task model.Task, catNames map[string]string, now time.Time) string {
	var sb strings.Builder

	title := html.EscapeString(strings.TrimSpace(task.Title))
	sb.WriteString(fmt.Sprintf("• %s", title))

	if name, ok := catNames[task.CategoryID]; ok {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(trimmed)))
		}
	}
	sb.WriteString(fmt.Sprintf(" [%s, %d%%]", task.Status, task.Progress))

	if task.DueDate != nil {
		d := task.DueDate.In(now.Location())
		if now.After(d) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · <b>overdue</b>", d.Format("2006-01-02")))
		} else {
			hoursLeft := int(d.Sub(now).Hours())
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · ≈%dh left", d.Format("2006-01-02"), hoursLeft))
		}
	}

	sb.WriteByte('\n')
	return sb.String()
}
