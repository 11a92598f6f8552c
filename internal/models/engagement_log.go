package models

import (
	"time"
)

// EngagementLog is an append-only record of user actions. The user reference
// is soft: rows outlive any other state and are only removed by retention
// cleanup. Writes are best-effort and never fail the triggering operation.
type EngagementLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	ActionType string    `gorm:"size:50;index;not null" json:"action_type"`
	Details    string    `gorm:"size:2000" json:"details"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
}

func (EngagementLog) TableName() string { return "engagement_logs" }
