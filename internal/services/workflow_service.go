package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eventops/taskflow/internal/models"
	"github.com/eventops/taskflow/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrWorkflowNotFound            = errors.New("workflow not found")
	ErrWorkflowNameRequired        = errors.New("workflow name is required")
	ErrEventNotFound               = errors.New("event not found")
	ErrTaskAlreadyLinked           = errors.New("task is already linked into a workflow")
	ErrTaskNotInWorkflow           = errors.New("task is not linked into this workflow")
	ErrPrerequisiteOutsideWorkflow = errors.New("prerequisite task is not linked into the same workflow")
	ErrSelfPrerequisite            = errors.New("a task cannot be its own prerequisite")
)

// WorkflowService binds tasks into event-scoped, ordered workflows. Link
// writes are serialized: the at-most-one-workflow and same-workflow
// prerequisite checks read the current link state before writing, and two
// concurrent writers validated against the same stale state could both pass.
// The checks span workflows through the task, so the lock is process-wide;
// the unique index on task_id backstops the already-linked check at the
// schema level.
type WorkflowService struct {
	workflowRepo repository.WorkflowRepository
	taskRepo     repository.TaskRepository
	eventRepo    repository.EventRepository
	taskService  *TaskService

	linkMu sync.Mutex
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(workflowRepo repository.WorkflowRepository, taskRepo repository.TaskRepository, eventRepo repository.EventRepository, taskService *TaskService) *WorkflowService {
	return &WorkflowService{
		workflowRepo: workflowRepo,
		taskRepo:     taskRepo,
		eventRepo:    eventRepo,
		taskService:  taskService,
	}
}

// CreateWorkflow creates an empty workflow scoped to an event
func (s *WorkflowService) CreateWorkflow(eventID uint64, name string) (*models.Workflow, error) {
	if name == "" {
		return nil, ErrWorkflowNameRequired
	}

	if _, err := s.eventRepo.FindByID(eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to verify event: %w", err)
	}

	workflow := &models.Workflow{
		EventID: eventID,
		Name:    name,
	}

	if err := s.workflowRepo.Create(workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// AddTaskInput represents input for linking a task into a workflow
type AddTaskInput struct {
	WorkflowID         uint64
	TaskID             uint64
	OrderIndex         int
	PrerequisiteTaskID *uint64
}

// AddTask links a task into a workflow at the requested position. A
// prerequisite reference must name a task already linked into the same
// workflow. When the prerequisite is not yet completed the linked task is
// forced into waiting, so a freshly gated task never starts out runnable.
func (s *WorkflowService) AddTask(input AddTaskInput) (*models.WorkflowTaskLink, error) {
	if _, err := s.workflowRepo.FindByID(input.WorkflowID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to find workflow: %w", err)
	}

	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	s.linkMu.Lock()
	defer s.linkMu.Unlock()

	// A task participates in at most one workflow at a time.
	if _, err := s.workflowRepo.FindLinkByTask(input.TaskID); err == nil {
		return nil, ErrTaskAlreadyLinked
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing link: %w", err)
	}

	forceWaiting := false
	var prereq *models.Task
	if input.PrerequisiteTaskID != nil {
		prereqLink, err := s.workflowRepo.FindLinkByTask(*input.PrerequisiteTaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPrerequisiteOutsideWorkflow
			}
			return nil, fmt.Errorf("failed to find prerequisite link: %w", err)
		}
		if prereqLink.WorkflowID != input.WorkflowID {
			return nil, ErrPrerequisiteOutsideWorkflow
		}

		prereq, err = s.taskRepo.FindByID(*input.PrerequisiteTaskID)
		if err != nil {
			return nil, fmt.Errorf("failed to find prerequisite task: %w", err)
		}
		forceWaiting = prereq.Status != models.TaskStatusCompleted
	}

	link := &models.WorkflowTaskLink{
		WorkflowID:         input.WorkflowID,
		TaskID:             input.TaskID,
		OrderIndex:         input.OrderIndex,
		PrerequisiteTaskID: input.PrerequisiteTaskID,
	}

	if err := s.workflowRepo.CreateLink(link, forceWaiting); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTaskAlreadyLinked
		}
		return nil, fmt.Errorf("failed to link task into workflow: %w", err)
	}

	if forceWaiting {
		task.Status = models.TaskStatusWaiting
		task.CompletedAt = nil
	}
	link.Task = *task
	link.PrerequisiteTask = prereq

	return link, nil
}

// RemoveTask unlinks a task from a workflow. The task itself is untouched.
// Links that named the removed task as their prerequisite lose the reference,
// and their tasks are promoted out of waiting per the normal activation rules;
// the promoted tasks are returned for notification.
func (s *WorkflowService) RemoveTask(workflowID, taskID uint64) ([]models.Task, error) {
	s.linkMu.Lock()

	link, err := s.workflowRepo.FindLinkByTask(taskID)
	if err != nil {
		s.linkMu.Unlock()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotInWorkflow
		}
		return nil, fmt.Errorf("failed to find workflow link: %w", err)
	}
	if link.WorkflowID != workflowID {
		s.linkMu.Unlock()
		return nil, ErrTaskNotInWorkflow
	}

	cleared, err := s.workflowRepo.RemoveLink(workflowID, taskID)
	s.linkMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to unlink task: %w", err)
	}

	var promoted []models.Task
	for _, depID := range cleared {
		dep, err := s.taskRepo.FindByID(depID)
		if err != nil {
			return promoted, fmt.Errorf("failed to load dependent task %d: %w", depID, err)
		}
		if dep.Status != models.TaskStatusWaiting {
			continue
		}

		task, _, err := s.taskService.SetStatus(depID, models.TaskStatusPending)
		if err != nil {
			if errors.Is(err, ErrStatusConflict) {
				continue
			}
			return promoted, fmt.Errorf("failed to promote dependent task %d: %w", depID, err)
		}
		promoted = append(promoted, *task)
	}

	return promoted, nil
}

// SetTaskGate replaces or clears the prerequisite gate on a linked task. The
// new prerequisite must be a task linked into the same workflow. Gating on an
// incomplete prerequisite forces the task back to waiting; when the resulting
// gate is absent or already satisfied, a waiting task is promoted per the
// normal activation rules and returned for notification.
func (s *WorkflowService) SetTaskGate(workflowID, taskID uint64, prerequisiteTaskID *uint64) (*models.WorkflowTaskLink, []models.Task, error) {
	s.linkMu.Lock()
	defer s.linkMu.Unlock()

	link, err := s.workflowRepo.FindLinkByTask(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotInWorkflow
		}
		return nil, nil, fmt.Errorf("failed to find workflow link: %w", err)
	}
	if link.WorkflowID != workflowID {
		return nil, nil, ErrTaskNotInWorkflow
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find task: %w", err)
	}

	forceWaiting := false
	var prereq *models.Task
	if prerequisiteTaskID != nil {
		if *prerequisiteTaskID == taskID {
			return nil, nil, ErrSelfPrerequisite
		}

		prereqLink, err := s.workflowRepo.FindLinkByTask(*prerequisiteTaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrPrerequisiteOutsideWorkflow
			}
			return nil, nil, fmt.Errorf("failed to find prerequisite link: %w", err)
		}
		if prereqLink.WorkflowID != workflowID {
			return nil, nil, ErrPrerequisiteOutsideWorkflow
		}

		prereq, err = s.taskRepo.FindByID(*prerequisiteTaskID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to find prerequisite task: %w", err)
		}
		forceWaiting = prereq.Status != models.TaskStatusCompleted
	}

	link.PrerequisiteTaskID = prerequisiteTaskID
	if err := s.workflowRepo.UpdateLink(link); err != nil {
		return nil, nil, fmt.Errorf("failed to update workflow link: %w", err)
	}

	var promoted []models.Task
	switch {
	case forceWaiting && task.Status != models.TaskStatusWaiting:
		task.Status = models.TaskStatusWaiting
		task.CompletedAt = nil
		if err := s.taskRepo.Update(task); err != nil {
			return nil, nil, fmt.Errorf("failed to reset task to waiting: %w", err)
		}
	case !forceWaiting && task.Status == models.TaskStatusWaiting:
		updated, _, err := s.taskService.SetStatus(taskID, models.TaskStatusPending)
		if err != nil {
			if !errors.Is(err, ErrStatusConflict) {
				return nil, nil, fmt.Errorf("failed to promote task %d: %w", taskID, err)
			}
		} else {
			task = updated
			promoted = append(promoted, *updated)
		}
	}

	link.Task = *task
	link.PrerequisiteTask = prereq
	return link, promoted, nil
}

// WorkflowTasks returns a workflow's links ordered by order index, each
// carrying the linked task and, when gated, the prerequisite task with its
// current status.
func (s *WorkflowService) WorkflowTasks(workflowID uint64) ([]models.WorkflowTaskLink, error) {
	if _, err := s.workflowRepo.FindByID(workflowID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to find workflow: %w", err)
	}

	links, err := s.workflowRepo.ListLinks(workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow links: %w", err)
	}

	return links, nil
}

// GetWorkflow returns a workflow with its event loaded
func (s *WorkflowService) GetWorkflow(workflowID uint64) (*models.Workflow, error) {
	workflow, err := s.workflowRepo.FindByID(workflowID, "Event")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to find workflow: %w", err)
	}
	return workflow, nil
}

// FindOwningWorkflow returns the workflow containing the task, or nil when
// the task is not linked anywhere.
func (s *WorkflowService) FindOwningWorkflow(taskID uint64) (*models.Workflow, error) {
	link, err := s.workflowRepo.FindLinkByTask(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find workflow link: %w", err)
	}

	workflow, err := s.workflowRepo.FindByID(link.WorkflowID, "Event")
	if err != nil {
		return nil, fmt.Errorf("failed to find workflow: %w", err)
	}

	return workflow, nil
}

// DeleteWorkflow removes a workflow and its links; the tasks survive
func (s *WorkflowService) DeleteWorkflow(workflowID uint64) error {
	if _, err := s.workflowRepo.FindByID(workflowID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkflowNotFound
		}
		return fmt.Errorf("failed to find workflow: %w", err)
	}

	if err := s.workflowRepo.Delete(workflowID); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}
