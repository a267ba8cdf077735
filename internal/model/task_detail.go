package model

import (
	"fmt"
	"time"

	"task-manager/internal/ordering"
)

// ChecklistItem is one completable sub-item of a section. Its position in the
// section's checklist is its order.
type ChecklistItem struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Completed  bool   `json:"completed"`
	DetailPlan string `json:"detailPlan,omitempty"`
}

// Section is a free-text block plus an ordered checklist.
type Section struct {
	Text      string          `json:"text"`
	Checklist []ChecklistItem `json:"checklist"`
}

// SectionName identifies one of the three sections of a TaskDetail.
type SectionName string

const (
	SectionDescription SectionName = "description"
	SectionPlan        SectionName = "plan"
	SectionExecution   SectionName = "execution"
)

// ParseSection validates a raw section name.
func ParseSection(raw string) (SectionName, error) {
	switch s := SectionName(raw); s {
	case SectionDescription, SectionPlan, SectionExecution:
		return s, nil
	}
	return "", fmt.Errorf("unknown section %q", raw)
}

// TaskDetail is the extended content of one task. It is keyed by TaskID and
// its own ID always equals TaskID.
type TaskDetail struct {
	TaskID      string    `gorm:"primaryKey" json:"taskId"`
	ID          string    `json:"id"`
	Description Section   `gorm:"serializer:json" json:"description"`
	Plan        Section   `gorm:"serializer:json" json:"plan"`
	Execution   Section   `gorm:"serializer:json" json:"execution"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// EmptySection returns a section with no text and an empty (non-nil) checklist.
func EmptySection() Section {
	return Section{Checklist: []ChecklistItem{}}
}

// NewTaskDetail builds the empty companion detail for a task.
func NewTaskDetail(taskID string, now time.Time) TaskDetail {
	return TaskDetail{
		TaskID:      taskID,
		ID:          taskID,
		Description: EmptySection(),
		Plan:        EmptySection(),
		Execution:   EmptySection(),
		UpdatedAt:   now,
	}
}

// Section returns a pointer to the named section for in-place edits.
func (d *TaskDetail) Section(name SectionName) (*Section, error) {
	switch name {
	case SectionDescription:
		return &d.Description, nil
	case SectionPlan:
		return &d.Plan, nil
	case SectionExecution:
		return &d.Execution, nil
	}
	return nil, fmt.Errorf("unknown section %q", name)
}

// Clone returns a deep copy so callers can snapshot a detail while it keeps changing.
func (d TaskDetail) Clone() TaskDetail {
	out := d
	out.Description = d.Description.clone()
	out.Plan = d.Plan.clone()
	out.Execution = d.Execution.clone()
	return out
}

func (s Section) clone() Section {
	items := make([]ChecklistItem, len(s.Checklist))
	copy(items, s.Checklist)
	return Section{Text: s.Text, Checklist: items}
}

func (s *Section) indexOf(itemID string) (int, error) {
	i := ordering.IndexOf(s.Checklist, func(it ChecklistItem) bool { return it.ID == itemID })
	if i < 0 {
		return -1, fmt.Errorf("checklist item %q not found", itemID)
	}
	return i, nil
}

// SetText replaces the section's free text.
func (s *Section) SetText(text string) {
	s.Text = text
}

// AddItem appends an unchecked item.
func (s *Section) AddItem(id, text string) ChecklistItem {
	it := ChecklistItem{ID: id, Text: text}
	s.Checklist = append(s.Checklist, it)
	return it
}

// UpdateItemText replaces the text of an item.
func (s *Section) UpdateItemText(itemID, text string) error {
	i, err := s.indexOf(itemID)
	if err != nil {
		return err
	}
	s.Checklist[i].Text = text
	return nil
}

// ToggleItem flips the completed flag of an item and returns the new value.
func (s *Section) ToggleItem(itemID string) (bool, error) {
	i, err := s.indexOf(itemID)
	if err != nil {
		return false, err
	}
	s.Checklist[i].Completed = !s.Checklist[i].Completed
	return s.Checklist[i].Completed, nil
}

// SetDetailPlan attaches a longer plan note to an item.
func (s *Section) SetDetailPlan(itemID, plan string) error {
	i, err := s.indexOf(itemID)
	if err != nil {
		return err
	}
	s.Checklist[i].DetailPlan = plan
	return nil
}

// RemoveItem deletes an item; removing an unknown id is a no-op.
func (s *Section) RemoveItem(itemID string) {
	i := ordering.IndexOf(s.Checklist, func(it ChecklistItem) bool { return it.ID == itemID })
	if i < 0 {
		return
	}
	s.Checklist = append(s.Checklist[:i:i], s.Checklist[i+1:]...)
}

// MoveItem relocates the item at from to position to.
func (s *Section) MoveItem(from, to int) error {
	moved, err := ordering.Move(s.Checklist, from, to)
	if err != nil {
		return err
	}
	s.Checklist = moved
	return nil
}

// Progress returns completed/total across all checklists of the detail.
func (d TaskDetail) Progress() (done, total int) {
	for _, s := range []Section{d.Description, d.Plan, d.Execution} {
		for _, it := range s.Checklist {
			total++
			if it.Completed {
				done++
			}
		}
	}
	return done, total
}

// TaskDetailPatch replaces whole sections. Nil sections are left untouched.
type TaskDetailPatch struct {
	Description *Section
	Plan        *Section
	Execution   *Section
}

// Apply merges the patch into d. UpdatedAt is stamped by the caller.
func (p TaskDetailPatch) Apply(d *TaskDetail) {
	if p.Description != nil {
		d.Description = p.Description.clone()
	}
	if p.Plan != nil {
		d.Plan = p.Plan.clone()
	}
	if p.Execution != nil {
		d.Execution = p.Execution.clone()
	}
}
