package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"task-manager/internal/autosave"
	"task-manager/internal/config"
	"task-manager/internal/projection"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

// App carries flags and the wired layers for one command invocation.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	DBPath     string
	PrettyJSON bool

	db            *gorm.DB
	categories    *service.CategoryService
	tasks         *service.TaskService
	details       *service.TaskDetailService
	settings      *service.SettingsService
	backup        *service.BackupService
	reminders     *service.ReminderService
	categoryStore *projection.CategoryStore
	taskStore     *projection.TaskStore
}

// Execute runs one invocation of the CLI. The store is flushed and closed
// whatever the outcome, and a failure is printed to stderr once.
func Execute(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string, stdout, stderr io.Writer) error {
	app, cmd := newRootCmd(cfg, logger)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return app.execute(ctx, cmd, stderr)
}

func (app *App) execute(ctx context.Context, cmd *cobra.Command, stderr io.Writer) (err error) {
	defer func() {
		if cerr := app.close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
		if err != nil {
			fmt.Fprintln(stderr, "error:", err)
		}
	}()
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(cfg config.Config, logger *slog.Logger) (*App, *cobra.Command) {
	app := &App{Config: cfg, Logger: logger}

	cmd := &cobra.Command{
		Use:           "taskmanager",
		Short:         "Local-first task manager (categories, tasks, task details)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  taskmanager categories add Work
  taskmanager tasks add <category-id> "Write report" --priority high
  taskmanager tasks status <task-id> done
  taskmanager detail check add <task-id> plan "Collect numbers"
  taskmanager backup export --out backup.json
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.open(cmd.Context())
	}

	cmd.PersistentFlags().StringVar(&app.DBPath, "db", "", "Path to the SQLite database (overrides config)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newDetailCmd(app))
	cmd.AddCommand(newSettingsCmd(app))
	cmd.AddCommand(newBackupCmd(app))
	cmd.AddCommand(newRemindCmd(app))

	return app, cmd
}

func (app *App) open(ctx context.Context) error {
	if app.db != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if app.Logger == nil {
		app.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	dsn := app.Config.DatabaseURL
	if app.DBPath != "" {
		dsn = app.DBPath
	}
	db, err := repository.NewDB(dsn)
	if err != nil {
		return err
	}
	app.db = db

	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	detailRepo := repository.NewTaskDetailRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	app.categories = service.NewCategoryService(categoryRepo, taskRepo, detailRepo, nil)
	app.tasks = service.NewTaskService(taskRepo, detailRepo, nil)
	app.details = service.NewTaskDetailService(detailRepo, taskRepo, nil)
	app.settings = service.NewSettingsService(settingsRepo, nil)
	app.backup = service.NewBackupService(categoryRepo, taskRepo, detailRepo, repository.NewTransactor(db), nil)
	app.reminders = service.NewReminderService(taskRepo, categoryRepo)

	if _, err := app.settings.Initialize(ctx); err != nil {
		return err
	}

	opts := []projection.Option{
		projection.WithLogger(app.Logger),
		projection.WithPolicy(projection.ParsePolicy(app.Config.Reconcile)),
	}
	app.categoryStore = projection.NewCategoryStore(app.categories, opts...)
	app.taskStore = projection.NewTaskStore(app.tasks, opts...)
	if err := app.categoryStore.Load(ctx); err != nil {
		return err
	}
	return app.taskStore.Load(ctx)
}

func (app *App) close() error {
	if app.db == nil {
		return nil
	}
	if app.categoryStore != nil {
		app.categoryStore.Flush()
	}
	if app.taskStore != nil {
		app.taskStore.Flush()
	}
	sqlDB, err := app.db.DB()
	app.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// autosave builds a coordinator for detail edits using the configured timings.
func (app *App) autosave() *autosave.Coordinator {
	policy := autosave.FlushOnSwitch
	if app.Config.SwitchPolicy == "discard" {
		policy = autosave.DiscardOnSwitch
	}
	return autosave.New(app.details, autosave.Options{
		Delay:          app.Config.AutosaveDelay,
		SavedIndicator: app.Config.SavedIndicator,
		Switch:         policy,
		Logger:         app.Logger,
	})
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(map[string]any{"data": v})
}

// wait resolves a projection command against the command's context.
func wait(cmd *cobra.Command, c *projection.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return c.Wait(ctx)
}
