package autosave

import "task-manager/internal/model"

func (c *Coordinator) editSection(name model.SectionName, fn func(*model.Section) error) error {
	return c.Edit(func(d *model.TaskDetail) error {
		sec, err := d.Section(name)
		if err != nil {
			return err
		}
		return fn(sec)
	})
}

// SetText replaces a section's free text.
func (c *Coordinator) SetText(name model.SectionName, text string) error {
	return c.editSection(name, func(s *model.Section) error {
		s.SetText(text)
		return nil
	})
}

// AddItem appends a checklist item and returns its id.
func (c *Coordinator) AddItem(name model.SectionName, text string) (string, error) {
	id := c.opts.NewID()
	err := c.editSection(name, func(s *model.Section) error {
		s.AddItem(id, text)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *Coordinator) UpdateItemText(name model.SectionName, itemID, text string) error {
	return c.editSection(name, func(s *model.Section) error {
		return s.UpdateItemText(itemID, text)
	})
}

func (c *Coordinator) ToggleItem(name model.SectionName, itemID string) error {
	return c.editSection(name, func(s *model.Section) error {
		_, err := s.ToggleItem(itemID)
		return err
	})
}

func (c *Coordinator) RemoveItem(name model.SectionName, itemID string) error {
	return c.editSection(name, func(s *model.Section) error {
		s.RemoveItem(itemID)
		return nil
	})
}

// MoveItem reorders a checklist by position.
func (c *Coordinator) MoveItem(name model.SectionName, from, to int) error {
	return c.editSection(name, func(s *model.Section) error {
		return s.MoveItem(from, to)
	})
}

func (c *Coordinator) SetDetailPlan(name model.SectionName, itemID, plan string) error {
	return c.editSection(name, func(s *model.Section) error {
		return s.SetDetailPlan(itemID, plan)
	})
}
