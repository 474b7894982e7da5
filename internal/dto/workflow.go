package dto

import (
	"time"

	"github.com/eventops/taskflow/internal/models"
)

// EventDTO represents an event in API responses
type EventDTO struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	NameAr string `json:"name_ar,omitempty"`
}

// WorkflowDTO represents a workflow in API responses
type WorkflowDTO struct {
	ID        uint64    `json:"id"`
	EventID   uint64    `json:"event_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Event     *EventDTO `json:"event,omitempty"`
}

// WorkflowTaskDTO represents one entry of a workflow's ordered task list,
// including the gate that controls its activation.
type WorkflowTaskDTO struct {
	OrderIndex         int                `json:"order_index"`
	Task               TaskDTO            `json:"task"`
	PrerequisiteTaskID *uint64            `json:"prerequisite_task_id,omitempty"`
	PrerequisiteStatus *models.TaskStatus `json:"prerequisite_status,omitempty"`
}

// WorkflowDetailResponse is the full workflow view for UI consumption
type WorkflowDetailResponse struct {
	Workflow WorkflowDTO       `json:"workflow"`
	Tasks    []WorkflowTaskDTO `json:"tasks"`
}

// ToEventDTO converts an Event model to EventDTO
func ToEventDTO(event models.Event) EventDTO {
	return EventDTO{
		ID:     event.ID,
		Name:   event.Name,
		NameAr: event.NameAr,
	}
}

// ToWorkflowDTO converts a Workflow model to WorkflowDTO
func ToWorkflowDTO(workflow models.Workflow) WorkflowDTO {
	dto := WorkflowDTO{
		ID:        workflow.ID,
		EventID:   workflow.EventID,
		Name:      workflow.Name,
		CreatedAt: workflow.CreatedAt,
	}

	// Include event if preloaded
	if workflow.Event.ID != 0 {
		event := ToEventDTO(workflow.Event)
		dto.Event = &event
	}

	return dto
}

// ToWorkflowDTOs converts a slice of workflows
func ToWorkflowDTOs(workflows []models.Workflow) []WorkflowDTO {
	dtos := make([]WorkflowDTO, len(workflows))
	for i, workflow := range workflows {
		dtos[i] = ToWorkflowDTO(workflow)
	}
	return dtos
}

// ToWorkflowTaskDTO converts a workflow link to its task-list entry
func ToWorkflowTaskDTO(link models.WorkflowTaskLink) WorkflowTaskDTO {
	dto := WorkflowTaskDTO{
		OrderIndex:         link.OrderIndex,
		Task:               ToTaskDTO(link.Task),
		PrerequisiteTaskID: link.PrerequisiteTaskID,
	}

	if link.PrerequisiteTask != nil {
		status := link.PrerequisiteTask.Status
		dto.PrerequisiteStatus = &status
	}

	return dto
}

// ToWorkflowTaskDTOs converts a slice of workflow links
func ToWorkflowTaskDTOs(links []models.WorkflowTaskLink) []WorkflowTaskDTO {
	dtos := make([]WorkflowTaskDTO, len(links))
	for i, link := range links {
		dtos[i] = ToWorkflowTaskDTO(link)
	}
	return dtos
}
