package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusWaiting    TaskStatus = "waiting"
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusWaiting, TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID                uint64         `gorm:"primarykey" json:"id"`
	EventDepartmentID uint64         `gorm:"not null" json:"event_department_id"`
	TemplateID        *uint64        `json:"template_id"`
	Title             string         `gorm:"type:varchar(255);not null" json:"title"`
	TitleAr           string         `gorm:"type:varchar(255)" json:"title_ar"`
	Description       string         `gorm:"type:text" json:"description"`
	Status            TaskStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	DueDate           *time.Time     `json:"due_date"`
	CompletedAt       *time.Time     `json:"completed_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	EventDepartment EventDepartment `gorm:"foreignKey:EventDepartmentID" json:"event_department,omitempty"`
	Template        *TaskTemplate   `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
}
