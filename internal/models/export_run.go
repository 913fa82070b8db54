package models

import (
	"time"
)

type ExportRun struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID      string     `gorm:"column:job_id;size:36;uniqueIndex" json:"job_id"`
	Kind       string     `gorm:"column:kind;size:32;not null" json:"kind"`
	Filters    string     `gorm:"column:filters;type:text" json:"filters"`
	Rows       int        `gorm:"column:rows;default:0" json:"rows"`
	File       string     `gorm:"column:file;size:255" json:"file"`
	Status     int        `gorm:"column:status;default:0" json:"status"` // 0: running, 1: done, 2: failed
	Error      string     `gorm:"column:error;type:text" json:"error"`
	Trigger    string     `gorm:"column:trigger_source;size:32" json:"trigger"`
	StartedAt  time.Time  `gorm:"column:started_at;autoCreateTime" json:"started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at"`
}

func (ExportRun) TableName() string {
	return "export_runs"
}
