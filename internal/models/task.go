package models

import (
	"time"
)

// Task status values. The set is closed but there is no enforced transition
// graph: any status may follow any other, including DONE back to TODO.
const (
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"
)

// IsValidTaskStatus reports whether status is one of the three task states.
func IsValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task belongs to one project. AssignedToID, when set, must reference a
// current member of the same project; removing a member nulls out their
// assignments in the same transaction.
type Task struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Status       string    `gorm:"size:20;not null;default:TODO" json:"status"`
	ProjectID    uint      `gorm:"index;not null" json:"project_id"`
	Project      *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	AssignedToID *uint     `gorm:"index" json:"assigned_to_id"`
	AssignedTo   *User     `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }
