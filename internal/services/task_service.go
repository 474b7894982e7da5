package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/eventops/taskflow/internal/models"
	"github.com/eventops/taskflow/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound             = errors.New("task not found")
	ErrUnknownStatus            = errors.New("unknown task status")
	ErrStatusConflict           = errors.New("task status was changed concurrently")
	ErrPrerequisiteNotCompleted = errors.New("prerequisite task is not completed")
	ErrTaskTitleRequired        = errors.New("title is required")
	ErrEventDepartmentNotFound  = errors.New("event/department pairing not found")
)

// InvalidTransitionError reports a status change that is not reachable from
// the task's current status.
type InvalidTransitionError struct {
	From models.TaskStatus
	To   models.TaskStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition task from %s to %s", e.From, e.To)
}

// allowedTransitions is the task status state machine. Reopening a completed
// task goes back to pending or in_progress, never to waiting: a reopened task
// does not regain its prerequisite gate.
var allowedTransitions = map[models.TaskStatus]map[models.TaskStatus]bool{
	models.TaskStatusWaiting: {
		models.TaskStatusPending: true,
	},
	models.TaskStatusPending: {
		models.TaskStatusInProgress: true,
		models.TaskStatusCompleted:  true,
	},
	models.TaskStatusInProgress: {
		models.TaskStatusPending:   true,
		models.TaskStatusCompleted: true,
	},
	models.TaskStatusCompleted: {
		models.TaskStatusPending:    true,
		models.TaskStatusInProgress: true,
	},
}

// TaskService owns the task status state machine and the cascading activation
// of dependent workflow tasks.
type TaskService struct {
	taskRepo     repository.TaskRepository
	workflowRepo repository.WorkflowRepository
	eventRepo    repository.EventRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, workflowRepo repository.WorkflowRepository, eventRepo repository.EventRepository) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		workflowRepo: workflowRepo,
		eventRepo:    eventRepo,
	}
}

// CreateTaskInput represents input for creating an ad-hoc task
type CreateTaskInput struct {
	EventDepartmentID uint64
	TemplateID        *uint64
	Title             string
	TitleAr           string
	Description       string
	DueDate           *time.Time
}

// CreateTask creates a new concrete task for an event/department pairing
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTaskTitleRequired
	}

	if _, err := s.eventRepo.FindEventDepartment(input.EventDepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to verify event/department pairing: %w", err)
	}

	task := &models.Task{
		EventDepartmentID: input.EventDepartmentID,
		TemplateID:        input.TemplateID,
		Title:             input.Title,
		TitleAr:           input.TitleAr,
		Description:       input.Description,
		Status:            models.TaskStatusPending,
		DueDate:           input.DueDate,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "EventDepartment", "EventDepartment.Event", "Template")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// ListTasks returns a department's tasks
func (s *TaskService) ListTasks(filter repository.TaskFilter) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.ListByDepartment(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// SetStatus moves a task through its status state machine. Requesting the
// task's current status is a no-op. A transition into completed stamps
// CompletedAt and cascades: every task directly gated by this one that is
// still waiting is promoted to pending, and the promoted tasks are returned
// so the caller can notify their owners. The cascade is single-hop; tasks
// further down the chain stay waiting until their own prerequisite completes.
func (s *TaskService) SetStatus(taskID uint64, newStatus models.TaskStatus) (*models.Task, []models.Task, error) {
	if !newStatus.Valid() {
		return nil, nil, ErrUnknownStatus
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.Status == newStatus {
		return task, nil, nil
	}

	if !allowedTransitions[task.Status][newStatus] {
		return nil, nil, &InvalidTransitionError{From: task.Status, To: newStatus}
	}

	// A gated task may only leave waiting once its named prerequisite is done.
	if task.Status == models.TaskStatusWaiting {
		if err := s.ensurePrerequisiteCompleted(taskID); err != nil {
			return nil, nil, err
		}
	}

	var completedAt *time.Time
	if newStatus == models.TaskStatusCompleted {
		now := time.Now()
		completedAt = &now
	}

	updated, err := s.taskRepo.UpdateStatus(taskID, task.Status, newStatus, completedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update task status: %w", err)
	}
	if !updated {
		return nil, nil, ErrStatusConflict
	}

	task.Status = newStatus
	task.CompletedAt = completedAt

	var activated []models.Task
	if newStatus == models.TaskStatusCompleted {
		activated, err = s.onTaskCompleted(taskID)
		if err != nil {
			return task, activated, err
		}
	}

	return task, activated, nil
}

// onTaskCompleted promotes every waiting task whose workflow link names the
// completed task as its direct prerequisite. The prerequisite status is
// re-verified and the promotion itself is a conditional write, so two
// concurrent completions feeding the same dependent cannot promote it twice.
func (s *TaskService) onTaskCompleted(taskID uint64) ([]models.Task, error) {
	links, err := s.workflowRepo.FindDependentLinks(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dependent links: %w", err)
	}

	var activated []models.Task
	for _, link := range links {
		if link.Task.Status != models.TaskStatusWaiting {
			continue
		}

		// Defensive re-check against a concurrent reopen of the prerequisite.
		prereq, err := s.taskRepo.FindByID(taskID)
		if err != nil {
			return activated, fmt.Errorf("failed to re-verify prerequisite: %w", err)
		}
		if prereq.Status != models.TaskStatusCompleted {
			continue
		}

		promoted, err := s.taskRepo.UpdateStatus(link.TaskID, models.TaskStatusWaiting, models.TaskStatusPending, nil)
		if err != nil {
			return activated, fmt.Errorf("failed to activate task %d: %w", link.TaskID, err)
		}
		if !promoted {
			// Someone else already moved it; skip quietly.
			continue
		}

		task, err := s.taskRepo.FindByID(link.TaskID, "EventDepartment")
		if err != nil {
			return activated, fmt.Errorf("failed to load activated task %d: %w", link.TaskID, err)
		}
		activated = append(activated, *task)
	}

	return activated, nil
}

// ensurePrerequisiteCompleted fails unless the task's workflow gate, if any,
// is already completed. Tasks outside a workflow, or linked without a
// prerequisite, are never gated.
func (s *TaskService) ensurePrerequisiteCompleted(taskID uint64) error {
	link, err := s.workflowRepo.FindLinkByTask(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load workflow link: %w", err)
	}
	if link.PrerequisiteTaskID == nil {
		return nil
	}

	prereq, err := s.taskRepo.FindByID(*link.PrerequisiteTaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The gating task row is gone; nothing left to wait for.
			return nil
		}
		return fmt.Errorf("failed to load prerequisite task: %w", err)
	}
	if prereq.Status != models.TaskStatusCompleted {
		return ErrPrerequisiteNotCompleted
	}

	return nil
}
