package model

import (
	"fmt"
	"math"
	"time"
)

// TaskStatus is the board column a task lives in.
type TaskStatus string

const (
	StatusTodo     TaskStatus = "todo"
	StatusPlan     TaskStatus = "plan"
	StatusProgress TaskStatus = "progress"
	StatusDone     TaskStatus = "done"
)

// Statuses lists every status in board order.
var Statuses = []TaskStatus{StatusTodo, StatusPlan, StatusProgress, StatusDone}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusPlan, StatusProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// Priority of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ParsePriority validates a raw priority string.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", raw)
	}
	return p, nil
}

// Task represents a single unit of work inside a category.
// Order is scoped to the (CategoryID, Status) group.
type Task struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	CategoryID  string     `gorm:"index;index:idx_tasks_category_status,priority:1" json:"categoryId"`
	Title       string     `json:"title"`
	Status      TaskStatus `gorm:"index;index:idx_tasks_category_status,priority:2" json:"status"`
	Progress    int        `json:"progress"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `gorm:"index" json:"dueDate"`
	Order       int        `gorm:"column:order" json:"order"`
	CreatedAt   time.Time  `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime:false" json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// QuantizeProgress rounds p to the nearest multiple of 10 and clamps it to [0,100].
// Halves round away from zero (45 -> 50).
func QuantizeProgress(p int) int {
	q := int(math.Round(float64(p)/10)) * 10
	switch {
	case q < 0:
		return 0
	case q > 100:
		return 100
	}
	return q
}

// TaskPatch carries a partial task update. Nil fields are left untouched;
// ClearDueDate / ClearCompletedAt explicitly null the corresponding field.
type TaskPatch struct {
	Title            *string
	Status           *TaskStatus
	Progress         *int
	Priority         *Priority
	DueDate          *time.Time
	ClearDueDate     bool
	Order            *int
	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Status == nil && p.Progress == nil && p.Priority == nil &&
		p.DueDate == nil && !p.ClearDueDate && p.Order == nil && p.CompletedAt == nil && !p.ClearCompletedAt
}

// Apply merges the patch into t. UpdatedAt is stamped by the caller.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
	if p.ClearCompletedAt {
		t.CompletedAt = nil
	} else if p.CompletedAt != nil {
		c := *p.CompletedAt
		t.CompletedAt = &c
	}
}

// Columns returns the patch as a column map for the persistent store.
func (p TaskPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.Progress != nil {
		cols["progress"] = *p.Progress
	}
	if p.Priority != nil {
		cols["priority"] = *p.Priority
	}
	if p.ClearDueDate {
		cols["due_date"] = nil
	} else if p.DueDate != nil {
		cols["due_date"] = *p.DueDate
	}
	if p.Order != nil {
		cols["order"] = *p.Order
	}
	if p.ClearCompletedAt {
		cols["completed_at"] = nil
	} else if p.CompletedAt != nil {
		cols["completed_at"] = *p.CompletedAt
	}
	return cols
}

// OrderUpdate assigns a new position to one task.
type OrderUpdate struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// StatusTransition builds the patch for an explicit status change. Moving to
// done stamps completedAt and sets progress to 100; other statuses leave
// completedAt as it was.
func StatusTransition(status TaskStatus, now time.Time) TaskPatch {
	patch := TaskPatch{Status: &status}
	if status == StatusDone {
		completed := now
		full := 100
		patch.CompletedAt = &completed
		patch.Progress = &full
	}
	return patch
}
