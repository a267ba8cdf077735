package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"task-manager/internal/model"
)

// ErrNotFound is returned when an update targets a missing record.
var ErrNotFound = errors.New("record not found")

const defaultDBFile = "task_manager.db"

// sqlitePragmas are appended to file DSNs that carry no query of their own.
const sqlitePragmas = "_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=off"

// NewDB opens the SQLite store at path and migrates the four collections
// (categories, tasks, task_details, app_settings). SQL warnings go to the
// default slog logger.
func NewDB(path string) (*gorm.DB, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.New(slogWriter{slog.Default()}, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open db %q: %w", path, err)
	}

	if err := db.AutoMigrate(&model.Category{}, &model.Task{}, &model.TaskDetail{}, &model.AppSettings{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return db, nil
}

// sqliteDSN turns a database path into a driver DSN and creates the
// parent directory of on-disk databases.
func sqliteDSN(path string) (string, error) {
	if path == "" {
		path = defaultDBFile
	}
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return path, nil
	}

	file, query, _ := strings.Cut(strings.TrimPrefix(path, "file:"), "?")
	if dir := filepath.Dir(file); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create db dir %q: %w", dir, err)
		}
	}
	if query == "" {
		query = sqlitePragmas
	}
	return "file:" + file + "?" + query, nil
}

// slogWriter adapts gorm's printf-style logger to slog.
type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.log.Log(context.Background(), slog.LevelWarn, strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
