package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses, in board order. No transition restrictions are enforced;
// any status may move to any other.
const (
	TaskStatusToDo       = "To Do"
	TaskStatusInProgress = "In Progress"
	TaskStatusInReview   = "In Review"
	TaskStatusDone       = "Done"
)

var TaskStatuses = []string{
	TaskStatusToDo,
	TaskStatusInProgress,
	TaskStatusInReview,
	TaskStatusDone,
}

func IsValidTaskStatus(status string) bool {
	for _, s := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Task is always owned by exactly one group. The owning group is taken from
// the creator's affiliation at creation time and never changes afterwards,
// even if that group later dissolves.
type Task struct {
	gorm.Model

	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Status      string     `gorm:"default:'To Do'" json:"status"`
	DueDate     *time.Time `json:"due_date"`

	GroupID    uint  `gorm:"not null;index" json:"group_id"`
	CreatedBy  uint  `gorm:"not null" json:"created_by"`
	AssignedTo *uint `json:"assigned_to"`

	// Opaque blob-store references, append-only.
	Attachments []string `gorm:"type:jsonb;serializer:json" json:"attachments"`

	Creator  *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Assignee *User `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
}
