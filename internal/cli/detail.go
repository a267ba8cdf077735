package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"task-manager/internal/autosave"
	"task-manager/internal/model"
)

func newDetailCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detail",
		Short: "Task detail commands (description, plan, execution sections)",
	}
	cmd.AddCommand(newDetailShowCmd(app))
	cmd.AddCommand(newDetailTextCmd(app))
	cmd.AddCommand(newDetailCheckCmd(app))
	return cmd
}

// editDetail opens the task's detail in an autosave session, applies edit and
// saves before returning the resulting detail.
func editDetail(cmd *cobra.Command, app *App, taskID string, edit func(*autosave.Coordinator) error) error {
	ctx := cmd.Context()
	detail, err := app.details.GetOrCreate(ctx, taskID)
	if err != nil {
		return err
	}
	coord := app.autosave()
	if err := coord.Open(ctx, *detail); err != nil {
		return err
	}
	if err := edit(coord); err != nil {
		_ = coord.Close(ctx)
		return err
	}
	if err := coord.SaveNow(ctx); err != nil {
		_ = coord.Close(ctx)
		return err
	}
	out, _ := coord.Detail()
	if err := coord.Close(ctx); err != nil {
		return err
	}
	return writeOut(cmd, app, out)
}

func newDetailShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task's detail (created empty on first open)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := app.details.GetOrCreate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			done, total := detail.Progress()
			return writeOut(cmd, app, map[string]any{
				"detail":    detail,
				"checklist": map[string]int{"done": done, "total": total},
			})
		},
	}
}

func newDetailTextCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "text <task-id> <description|plan|execution> <text>",
		Short: "Replace a section's free text",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := model.ParseSection(args[1])
			if err != nil {
				return err
			}
			return editDetail(cmd, app, args[0], func(c *autosave.Coordinator) error {
				return c.SetText(sec, args[2])
			})
		},
	}
}

func newDetailCheckCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Checklist commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <task-id> <section> <text>",
		Short: "Append a checklist item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := model.ParseSection(args[1])
			if err != nil {
				return err
			}
			return editDetail(cmd, app, args[0], func(c *autosave.Coordinator) error {
				_, err := c.AddItem(sec, args[2])
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <task-id> <section> <item-id>",
		Short: "Toggle a checklist item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := model.ParseSection(args[1])
			if err != nil {
				return err
			}
			return editDetail(cmd, app, args[0], func(c *autosave.Coordinator) error {
				return c.ToggleItem(sec, args[2])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "edit <task-id> <section> <item-id> <text>",
		Short: "Replace a checklist item's text",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := model.ParseSection(args[1])
			if err != nil {
				return err
			}
			return editDetail(cmd, app, args[0], func(c *autosave.Coordinator) error {
				return c.UpdateItemText(sec, args[2], args[3])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <task-id> <section> <item-id>",
		Short: "Remove a checklist item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := model.ParseSection(args[1])
			if err != nil {
				return err
			}
			return editDetail(cmd, app, args[0], func(c *autosave.Coordinator) error {
				return c.RemoveItem(sec, args[2])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "move <task-id> <section> <from-index> <to-index>",
		Short: "Move a checklist item to another position",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := model.ParseSection(args[1])
			if err != nil {
				return err
			}
			from, err := strconv.Atoi(args[2])
			if err != nil {
				return err
			}
			to, err := strconv.Atoi(args[3])
			if err != nil {
				return err
			}
			return editDetail(cmd, app, args[0], func(c *autosave.Coordinator) error {
				return c.MoveItem(sec, from, to)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "plan <task-id> <section> <item-id> <text>",
		Short: "Attach a detailed plan note to a checklist item",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := model.ParseSection(args[1])
			if err != nil {
				return err
			}
			return editDetail(cmd, app, args[0], func(c *autosave.Coordinator) error {
				return c.SetDetailPlan(sec, args[2], args[3])
			})
		},
	})

	return cmd
}
