package model

import (
	"testing"
	"time"
)

func TestQuantizeProgress(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 0},
		{4, 0},
		{5, 10},
		{44, 40},
		{45, 50},
		{97, 100},
		{100, 100},
		{150, 100},
		{-5, 0},
		{-40, 0},
	}
	for _, tc := range cases {
		if got := QuantizeProgress(tc.in); got != tc.want {
			t.Errorf("QuantizeProgress(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseStatusAndPriority(t *testing.T) {
	for _, s := range Statuses {
		if _, err := ParseStatus(string(s)); err != nil {
			t.Fatalf("status %q rejected: %v", s, err)
		}
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Fatal("expected error for unknown priority")
	}
	if p, err := ParsePriority("low"); err != nil || p != PriorityLow {
		t.Fatalf("ParsePriority(low) = %q, %v", p, err)
	}
}

func TestStatusTransition(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	done := StatusTransition(StatusDone, now)
	if done.Status == nil || *done.Status != StatusDone {
		t.Fatalf("status not set: %+v", done)
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(now) {
		t.Fatalf("completedAt = %v, want %v", done.CompletedAt, now)
	}
	if done.Progress == nil || *done.Progress != 100 {
		t.Fatalf("progress = %v, want 100", done.Progress)
	}

	back := StatusTransition(StatusProgress, now)
	if back.CompletedAt != nil || back.ClearCompletedAt || back.Progress != nil {
		t.Fatalf("non-done transition touched more than status: %+v", back)
	}
}

func TestTaskPatchApplyAndColumns(t *testing.T) {
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	task := Task{ID: "t1", Title: "old", Priority: PriorityMedium, DueDate: &due}

	title := "new"
	patch := TaskPatch{Title: &title, ClearDueDate: true}
	if patch.Empty() {
		t.Fatal("patch reported empty")
	}
	patch.Apply(&task)
	if task.Title != "new" || task.DueDate != nil {
		t.Fatalf("unexpected task after apply: %+v", task)
	}
	if task.Priority != PriorityMedium {
		t.Fatalf("priority changed: %q", task.Priority)
	}

	cols := patch.Columns()
	if len(cols) != 2 || cols["title"] != "new" {
		t.Fatalf("unexpected columns: %v", cols)
	}
	if v, ok := cols["due_date"]; !ok || v != nil {
		t.Fatalf("due_date should be explicitly nulled: %v", cols)
	}
	if !(TaskPatch{}).Empty() {
		t.Fatal("zero patch should be empty")
	}
}
