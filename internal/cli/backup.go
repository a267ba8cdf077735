package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"task-manager/internal/service"
)

func newBackupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import a backup file",
	}
	cmd.AddCommand(newBackupExportCmd(app))
	cmd.AddCommand(newBackupImportCmd(app))
	return cmd
}

func newBackupExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write categories, tasks and task details as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" || out == "-" {
				return app.backup.WriteTo(cmd.Context(), cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create backup file: %w", err)
			}
			if err := app.backup.WriteTo(cmd.Context(), f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"path": out})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: stdout)")
	return cmd
}

func newBackupImportCmd(app *App) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := service.ImportMode(mode)
			if m != service.ImportReplace && m != service.ImportMerge {
				return fmt.Errorf("invalid --mode %q (replace|merge)", mode)
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			file, err := service.ReadBackup(f)
			if err != nil {
				return err
			}
			if err := app.backup.Import(cmd.Context(), file, m); err != nil {
				return err
			}
			if err := app.categoryStore.Load(cmd.Context()); err != nil {
				return err
			}
			if err := app.taskStore.Load(cmd.Context()); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{
				"categories":  len(file.Data.Categories),
				"tasks":       len(file.Data.Tasks),
				"taskDetails": len(file.Data.TaskDetails),
				"mode":        m,
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(service.ImportReplace), "replace|merge")
	return cmd
}
