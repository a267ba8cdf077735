package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"task-manager/internal/model"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksStatusCmd(app))
	cmd.AddCommand(newTasksProgressCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func parseDue(raw string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --due %q (expected YYYY-MM-DD)", raw)
	}
	return d, nil
}

func newTasksListCmd(app *App) *cobra.Command {
	var categoryID string
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks of a category, grouped by status and sorted by order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cid := strings.TrimSpace(categoryID)
			if cid == "" {
				cid = app.categoryStore.SelectedID()
			}
			if cid == "" {
				return errors.New("no categories yet; add one with `taskmanager categories add <name>`")
			}
			statuses := model.Statuses
			if status != "" {
				s, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				statuses = []model.TaskStatus{s}
			}
			out := make(map[string][]model.Task, len(statuses))
			for _, s := range statuses {
				tasks := app.taskStore.TasksByStatus(cid, s)
				if tasks == nil {
					tasks = []model.Task{}
				}
				out[string(s)] = tasks
			}
			return writeOut(cmd, app, map[string]any{"categoryId": cid, "columns": out})
		},
	}
	cmd.Flags().StringVar(&categoryID, "category", "", "Category id (default: first category)")
	cmd.Flags().StringVar(&status, "status", "", "Only this status (todo|plan|progress|done)")
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var priority string
	var due string

	cmd := &cobra.Command{
		Use:   "add <category-id> <title>",
		Short: "Add a todo task at the end of the category's todo column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := model.ParsePriority(priority)
			if err != nil {
				return err
			}
			id, c := app.taskStore.AddTask(args[0], args[1], p)
			if err := wait(cmd, c); err != nil {
				return err
			}
			if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				if err := wait(cmd, app.taskStore.UpdateTask(id, model.TaskPatch{DueDate: &d})); err != nil {
					return err
				}
			}
			task, _ := app.taskStore.TaskByID(id)
			return writeOut(cmd, app, task)
		},
	}
	cmd.Flags().StringVar(&priority, "priority", string(model.PriorityMedium), "Priority (high|medium|low)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newTasksStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id> <todo|plan|progress|done>",
		Short: "Change a task's status (done also completes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := model.ParseStatus(args[1])
			if err != nil {
				return err
			}
			if err := wait(cmd, app.taskStore.UpdateTaskStatus(args[0], s)); err != nil {
				return err
			}
			task, _ := app.taskStore.TaskByID(args[0])
			return writeOut(cmd, app, task)
		},
	}
}

func newTasksProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <task-id> <0-100>",
		Short: "Set progress (rounded to the nearest 10%)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			if err := wait(cmd, app.taskStore.UpdateTaskProgress(args[0], p)); err != nil {
				return err
			}
			task, _ := app.taskStore.TaskByID(args[0])
			return writeOut(cmd, app, task)
		},
	}
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title, priority, due string
	var clearDue bool

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update title, priority or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.TaskPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("priority") {
				p, err := model.ParsePriority(priority)
				if err != nil {
					return err
				}
				patch.Priority = &p
			}
			if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				patch.DueDate = &d
			}
			patch.ClearDueDate = clearDue
			if patch.Empty() {
				return errors.New("nothing to update")
			}
			if err := wait(cmd, app.taskStore.UpdateTask(args[0], patch)); err != nil {
				return err
			}
			task, _ := app.taskStore.TaskByID(args[0])
			return writeOut(cmd, app, task)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority (high|medium|low)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	return cmd
}

func newTasksMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <index>",
		Short: "Move a task to a position within its status column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			task, ok := app.taskStore.TaskByID(args[0])
			if !ok {
				return fmt.Errorf("task %s not found", args[0])
			}
			if err := wait(cmd, app.taskStore.MoveTask(args[0], to)); err != nil {
				return err
			}
			return writeOut(cmd, app, app.taskStore.TasksByStatus(task.CategoryID, task.Status))
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task and its detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wait(cmd, app.taskStore.DeleteTask(args[0])); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"deleted": args[0]})
		},
	}
}
