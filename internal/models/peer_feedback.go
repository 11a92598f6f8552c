package models

import (
	"time"
)

// Rating bounds for PeerFeedback.Rating.
const (
	MinRating = 1
	MaxRating = 5
)

// PeerFeedback is a rating exchanged between two members of the same project.
// FromUserID and ToUserID are always distinct and both must be members of the
// project at creation time. Rows are immutable once written.
type PeerFeedback struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProjectID  uint      `gorm:"index;not null" json:"project_id"`
	Project    *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	FromUserID uint      `gorm:"index;not null" json:"from_user_id"`
	FromUser   *User     `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
	ToUserID   uint      `gorm:"index;not null" json:"to_user_id"`
	ToUser     *User     `gorm:"foreignKey:ToUserID" json:"to_user,omitempty"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"size:2000" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PeerFeedback) TableName() string { return "peer_feedbacks" }
