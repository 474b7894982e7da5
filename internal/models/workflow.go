package models

import (
	"time"

	"gorm.io/gorm"
)

// Workflow is a named, event-scoped ordered group of concrete tasks.
// Deleting a workflow removes the grouping only, never the tasks.
type Workflow struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	EventID   uint64         `gorm:"not null" json:"event_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Event Event              `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Links []WorkflowTaskLink `gorm:"foreignKey:WorkflowID" json:"links,omitempty"`
}

// WorkflowTaskLink binds a task into a workflow at a display position.
// PrerequisiteTaskID, when set, names another task in the same workflow that
// must complete before the linked task is activated. This instance edge is
// independent of the template prerequisite graph. The unique index on task_id
// enforces at the schema level that a task is linked into at most one
// workflow.
type WorkflowTaskLink struct {
	WorkflowID         uint64    `gorm:"primarykey" json:"workflow_id"`
	TaskID             uint64    `gorm:"primarykey;uniqueIndex:idx_links_task_id" json:"task_id"`
	OrderIndex         int       `gorm:"not null" json:"order_index"`
	PrerequisiteTaskID *uint64   `json:"prerequisite_task_id"`
	CreatedAt          time.Time `json:"created_at"`

	// Relations
	Workflow         Workflow `gorm:"foreignKey:WorkflowID" json:"workflow,omitempty"`
	Task             Task     `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	PrerequisiteTask *Task    `gorm:"foreignKey:PrerequisiteTaskID" json:"prerequisite_task,omitempty"`
}
