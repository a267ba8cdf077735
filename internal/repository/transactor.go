package repository

import (
	"context"

	"gorm.io/gorm"
)

// Tx holds repositories bound to one open transaction.
type Tx struct {
	Categories *CategoryRepository
	Tasks      *TaskRepository
	Details    *TaskDetailRepository
}

// Transactor runs multi-table writes atomically.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// Do runs fn in a transaction that commits when fn returns nil and rolls
// back otherwise.
func (t *Transactor) Do(ctx context.Context, fn func(tx Tx) error) error {
	return t.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(Tx{
			Categories: NewCategoryRepository(db),
			Tasks:      NewTaskRepository(db),
			Details:    NewTaskDetailRepository(db),
		})
	})
}
