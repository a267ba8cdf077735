package model

import (
	"fmt"
	"time"
)

// SettingsID is the fixed key of the AppSettings singleton.
const SettingsID = "app-settings"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

type Language string

const (
	LanguageKo Language = "ko"
	LanguageEn Language = "en"
)

// Notifications toggles reminder delivery.
type Notifications struct {
	DueDate       bool `json:"dueDate"`
	DailyReminder bool `json:"dailyReminder"`
}

// AppSettings stores user preferences. Created once on first launch, never deleted.
type AppSettings struct {
	ID            string        `gorm:"primaryKey" json:"id"`
	Theme         Theme         `json:"theme"`
	Language      Language      `json:"language"`
	AutoSave      bool          `json:"autoSave"`
	AutoSaveDelay int           `json:"autoSaveDelay"`
	Notifications Notifications `gorm:"serializer:json" json:"notifications"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// DefaultSettings returns the first-launch preferences.
func DefaultSettings(now time.Time) AppSettings {
	return AppSettings{
		ID:            SettingsID,
		Theme:         ThemeAuto,
		Language:      LanguageKo,
		AutoSave:      true,
		AutoSaveDelay: 3000,
		Notifications: Notifications{DueDate: true, DailyReminder: false},
		UpdatedAt:     now,
	}
}

// SettingsPatch carries a partial settings update.
type SettingsPatch struct {
	Theme         *Theme
	Language      *Language
	AutoSave      *bool
	AutoSaveDelay *int
	DueDate       *bool
	DailyReminder *bool
}

// Validate rejects unknown enum values.
func (p SettingsPatch) Validate() error {
	if p.Theme != nil {
		switch *p.Theme {
		case ThemeLight, ThemeDark, ThemeAuto:
		default:
			return fmt.Errorf("unknown theme %q", *p.Theme)
		}
	}
	if p.Language != nil {
		switch *p.Language {
		case LanguageKo, LanguageEn:
		default:
			return fmt.Errorf("unknown language %q", *p.Language)
		}
	}
	if p.AutoSaveDelay != nil && *p.AutoSaveDelay < 0 {
		return fmt.Errorf("autosave delay must not be negative")
	}
	return nil
}

// Apply merges the patch into s.
func (p SettingsPatch) Apply(s *AppSettings) {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.AutoSave != nil {
		s.AutoSave = *p.AutoSave
	}
	if p.AutoSaveDelay != nil {
		s.AutoSaveDelay = *p.AutoSaveDelay
	}
	if p.DueDate != nil {
		s.Notifications.DueDate = *p.DueDate
	}
	if p.DailyReminder != nil {
		s.Notifications.DailyReminder = *p.DailyReminder
	}
}
