package models

import (
	"time"
)

// AdminAction is one mutating console action, kept when the audit database
// is configured.
type AdminAction struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID string    `gorm:"column:request_id;size:36;index" json:"request_id"`
	Action    string    `gorm:"column:action;size:64;not null;index" json:"action"`
	Target    string    `gorm:"column:target;size:255" json:"target"`
	Payload   string    `gorm:"column:payload;type:text" json:"payload"`
	Status    int       `gorm:"column:status;default:0" json:"status"` // 1: success, 2: failed
	Error     string    `gorm:"column:error;type:text" json:"error"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AdminAction) TableName() string {
	return "admin_actions"
}
