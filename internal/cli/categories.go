package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"task-manager/internal/model"
)

func newCategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Category commands",
	}
	cmd.AddCommand(newCategoriesListCmd(app))
	cmd.AddCommand(newCategoriesAddCmd(app))
	cmd.AddCommand(newCategoriesRenameCmd(app))
	cmd.AddCommand(newCategoriesDeleteCmd(app))
	cmd.AddCommand(newCategoriesReorderCmd(app))
	cmd.AddCommand(newCategoriesMoveCmd(app))
	return cmd
}

func newCategoriesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := app.categoryStore.Snapshot()
			return writeOut(cmd, app, map[string]any{
				"categories": snap.Categories,
				"selectedId": snap.SelectedID,
			})
		},
	}
}

func newCategoriesAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category after the existing ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, c := app.categoryStore.AddCategory(args[0])
			if err := wait(cmd, c); err != nil {
				return err
			}
			for _, cat := range app.categoryStore.Categories() {
				if cat.ID == id {
					return writeOut(cmd, app, cat)
				}
			}
			return writeOut(cmd, app, map[string]any{"id": id})
		},
	}
}

func newCategoriesRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <category-id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[1]
			c := app.categoryStore.UpdateCategory(args[0], model.CategoryPatch{Name: &name})
			if err := wait(cmd, c); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "name": name})
		},
	}
}

func newCategoriesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete a category with all of its tasks and task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			removed := len(app.taskStore.TasksByCategory(id))
			c := app.categoryStore.DeleteCategory(id)
			app.taskStore.DropCategory(id)
			if err := wait(cmd, c); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{
				"deleted":      id,
				"tasksRemoved": removed,
				"selectedId":   app.categoryStore.SelectedID(),
			})
		},
	}
}

func newCategoriesReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <category-id>...",
		Short: "Set the category order (listed ids first, in the given order)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.categoryStore.ReorderCategories(args)
			if err := wait(cmd, c); err != nil {
				return err
			}
			return writeOut(cmd, app, app.categoryStore.Categories())
		},
	}
}

func newCategoriesMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from-index> <to-index>",
		Short: "Move a category to another position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			if err := wait(cmd, app.categoryStore.MoveCategory(from, to)); err != nil {
				return err
			}
			return writeOut(cmd, app, app.categoryStore.Categories())
		},
	}
}
