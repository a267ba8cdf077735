package model

import "time"

// BackupVersion is the only backup layout this build reads and writes.
const BackupVersion = "1.0"

// BackupData holds the exported collections.
type BackupData struct {
	Categories  []Category   `json:"categories"`
	Tasks       []Task       `json:"tasks"`
	TaskDetails []TaskDetail `json:"taskDetails"`
}

// BackupFile is the import/export document.
type BackupFile struct {
	Version    string     `json:"version"`
	ExportDate time.Time  `json:"exportDate"`
	Data       BackupData `json:"data"`
}
