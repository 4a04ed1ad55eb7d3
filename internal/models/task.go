package models

import (
	"time"

	"gorm.io/gorm"
)

// Task status values.
const (
	TaskStatusBacklog    = "BACKLOG"
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"
	TaskStatusCanceled   = "CANCELED"
)

// Task priority values.
const (
	TaskPriorityLow    = "LOW"
	TaskPriorityMedium = "MEDIUM"
	TaskPriorityHigh   = "HIGH"
)

// Task is a unit of work inside a project. Lifecycle is plain CRUD; all
// access is gated by the policy engine.
type Task struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	Project     *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Label       string         `gorm:"size:50" json:"label"`
	Status      string         `gorm:"size:20;default:TODO" json:"status"`
	Priority    string         `gorm:"size:20;default:MEDIUM" json:"priority"`
	Description string         `gorm:"type:text" json:"description"`
	DueDate     *time.Time     `json:"due_date"`
	AssigneeID  *uint          `json:"assignee_id"` // references a Member of the same project
	Assignee    *Member        `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string { return "tasks" }

// IsValidTaskStatus reports whether s is a known task status.
func IsValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusBacklog, TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusCanceled:
		return true
	}
	return false
}

// IsValidTaskPriority reports whether p is a known task priority.
func IsValidTaskPriority(p string) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}
