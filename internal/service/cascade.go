package service

import (
	"context"
	"fmt"

	"task-manager/internal/repository"
)

// cascadeStep is one idempotent sub-delete of a cascade.
type cascadeStep struct {
	name string
	run  func(ctx context.Context) error
}

// runCascade executes steps in order and stops at the first failure.
// There is no transaction around the steps.
func runCascade(ctx context.Context, steps []cascadeStep) error {
	done := make([]string, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return &CascadeError{Completed: done, Failed: step.name, Err: err}
		}
		if err := step.run(ctx); err != nil {
			return &CascadeError{Completed: done, Failed: step.name, Err: err}
		}
		done = append(done, step.name)
	}
	return nil
}

// taskCascade lists the steps that delete one task: its detail first, then the task row.
func taskCascade(tasks *repository.TaskRepository, details *repository.TaskDetailRepository, taskID string) []cascadeStep {
	return []cascadeStep{
		{
			name: fmt.Sprintf("task_detail:%s", taskID),
			run:  func(ctx context.Context) error { return details.Delete(ctx, taskID) },
		},
		{
			name: fmt.Sprintf("task:%s", taskID),
			run:  func(ctx context.Context) error { return tasks.Delete(ctx, taskID) },
		},
	}
}
