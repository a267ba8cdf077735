package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config keeps runtime settings for the task manager.
type Config struct {
	DatabaseURL    string        `yaml:"database"`
	AutosaveDelay  time.Duration `yaml:"autosave_delay"`
	SavedIndicator time.Duration `yaml:"saved_indicator"`
	// SwitchPolicy is "flush" or "discard" for unsaved detail edits on task switch.
	SwitchPolicy string `yaml:"switch_policy"`
	// Reconcile is the projection failure policy: "ignore", "refetch" or "revert".
	Reconcile      string `yaml:"reconcile"`
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
	ReminderTime   string `yaml:"reminder_time"`
	LogLevel       string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DatabaseURL:    "task_manager.db",
		AutosaveDelay:  time.Second,
		SavedIndicator: 500 * time.Millisecond,
		SwitchPolicy:   "flush",
		Reconcile:      "ignore",
		ReminderTime:   "09:00",
		LogLevel:       "info",
	}
}

// Path returns the config file location: $TASKMANAGER_CONFIG or ~/.taskmanager/config.yaml.
func Path() string {
	if p := strings.TrimSpace(os.Getenv("TASKMANAGER_CONFIG")); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".taskmanager", "config.yaml")
}

// Load layers defaults, the optional YAML file and environment variables,
// in that order of precedence (later wins).
func Load() (Config, error) {
	cfg := Default()

	if path := Path(); path != "" {
		if err := loadFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file struct {
		Config         `yaml:",inline"`
		AutosaveMS     *int `yaml:"autosave_delay_ms"`
		SavedMS    *int `yaml:"saved_indicator_ms"`
	}
	file.Config = *cfg
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return err
	}
	*cfg = file.Config
	if file.AutosaveMS != nil {
		cfg.AutosaveDelay = time.Duration(*file.AutosaveMS) * time.Millisecond
	}
	if file.SavedMS != nil {
		cfg.SavedIndicator = time.Duration(*file.SavedMS) * time.Millisecond
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("TASKMANAGER_DB")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKMANAGER_AUTOSAVE_DELAY_MS")); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return fmt.Errorf("TASKMANAGER_AUTOSAVE_DELAY_MS: invalid value %q", v)
		}
		cfg.AutosaveDelay = time.Duration(ms) * time.Millisecond
	}
	if v := strings.TrimSpace(os.Getenv("TASKMANAGER_SWITCH_POLICY")); v != "" {
		cfg.SwitchPolicy = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKMANAGER_RECONCILE")); v != "" {
		cfg.Reconcile = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")); v != "" {
		cfg.TelegramToken = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: invalid value %q", v)
		}
		cfg.TelegramChatID = id
	}
	if v := strings.TrimSpace(os.Getenv("TASKMANAGER_REMINDER_TIME")); v != "" {
		cfg.ReminderTime = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKMANAGER_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.SwitchPolicy {
	case "flush", "discard":
	default:
		return fmt.Errorf("switch_policy must be flush or discard, got %q", c.SwitchPolicy)
	}
	switch c.Reconcile {
	case "ignore", "refetch", "revert":
	default:
		return fmt.Errorf("reconcile must be ignore, refetch or revert, got %q", c.Reconcile)
	}
	if c.AutosaveDelay <= 0 {
		return fmt.Errorf("autosave delay must be positive")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
