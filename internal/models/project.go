package models

import (
	"time"
)

// Project is owned by exactly one mentor. The owning mentor is always also a
// ProjectMember of the project; both rows are created in the same transaction.
type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	MentorID  uint      `gorm:"index;not null" json:"mentor_id"`
	Mentor    *User     `gorm:"foreignKey:MentorID" json:"mentor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
