package model

import "time"

// Category groups tasks (work, home, study, etc.). Order defines the display sequence.
type Category struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
	Order     int       `gorm:"column:order;index" json:"order"`
}

// CategoryPatch carries a partial category update. Nil fields are left untouched.
type CategoryPatch struct {
	Name  *string
	Order *int
}

// Apply merges the patch into c.
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Order != nil {
		c.Order = *p.Order
	}
}

// Columns returns the patch as a column map for the persistent store.
func (p CategoryPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Order != nil {
		cols["order"] = *p.Order
	}
	return cols
}
