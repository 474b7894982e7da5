package dto

import (
	"time"

	"github.com/eventops/taskflow/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                uint64            `json:"id"`
	EventDepartmentID uint64            `json:"event_department_id"`
	TemplateID        *uint64           `json:"template_id,omitempty"`
	Title             string            `json:"title"`
	TitleAr           string            `json:"title_ar,omitempty"`
	Description       string            `json:"description"`
	Status            models.TaskStatus `json:"status"`
	DueDate           *time.Time        `json:"due_date"`
	CompletedAt       *time.Time        `json:"completed_at"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:                task.ID,
		EventDepartmentID: task.EventDepartmentID,
		TemplateID:        task.TemplateID,
		Title:             task.Title,
		TitleAr:           task.TitleAr,
		Description:       task.Description,
		Status:            task.Status,
		DueDate:           task.DueDate,
		CompletedAt:       task.CompletedAt,
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}

// SetStatusResponse is returned by the status endpoint: the updated task plus
// every task the completion unblocked.
type SetStatusResponse struct {
	Task      TaskDTO   `json:"task"`
	Activated []TaskDTO `json:"activated"`
}
