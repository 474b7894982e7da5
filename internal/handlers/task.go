package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/eventops/taskflow/internal/dto"
	apierrors "github.com/eventops/taskflow/internal/errors"
	"github.com/eventops/taskflow/internal/middleware"
	"github.com/eventops/taskflow/internal/models"
	"github.com/eventops/taskflow/internal/notifier"
	"github.com/eventops/taskflow/internal/repository"
	"github.com/eventops/taskflow/internal/services"
	"github.com/eventops/taskflow/internal/utils"
	"github.com/gin-gonic/gin"
)

// TaskHandler exposes task CRUD and the status state machine.
type TaskHandler struct {
	taskService *services.TaskService
	eventRepo   repository.EventRepository
	notifier    notifier.Notifier
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *services.TaskService, eventRepo repository.EventRepository, n notifier.Notifier) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		eventRepo:   eventRepo,
		notifier:    n,
	}
}

// ListTasks returns the operator's department tasks, optionally filtered by
// event and status
func (h *TaskHandler) ListTasks(c *gin.Context) {
	departmentID, exists := middleware.GetDepartmentID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.TaskFilter{
		DepartmentID: departmentID,
		Page:         params.Page,
		PageSize:     params.Limit,
	}

	if eventIDStr := c.Query("event_id"); eventIDStr != "" {
		eventID, err := strconv.ParseUint(eventIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid event_id")
			return
		}
		filter.EventID = &eventID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		filter.Status = &status
	}

	tasks, total, err := h.taskService.ListTasks(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			apierrors.NotFound(c, "Task not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch task")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates an ad-hoc task for the operator's department on an event
func (h *TaskHandler) CreateTask(c *gin.Context) {
	departmentID, exists := middleware.GetDepartmentID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		EventID     uint64     `json:"event_id" binding:"required"`
		TemplateID  *uint64    `json:"template_id"`
		Title       string     `json:"title" binding:"required"`
		TitleAr     string     `json:"title_ar"`
		Description string     `json:"description"`
		DueDate     *time.Time `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	pairing, err := h.eventRepo.EnsureEventDepartment(req.EventID, departmentID)
	if err != nil {
		apierrors.BadRequest(c, "Event not found")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		EventDepartmentID: pairing.ID,
		TemplateID:        req.TemplateID,
		Title:             req.Title,
		TitleAr:           req.TitleAr,
		Description:       req.Description,
		DueDate:           req.DueDate,
	})
	if err != nil {
		if errors.Is(err, services.ErrTaskTitleRequired) {
			apierrors.BadRequest(c, "Title is required")
			return
		}
		apierrors.InternalError(c, "Failed to create task")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// SetStatus moves a task through its status state machine. When a completion
// unblocks dependent tasks, they are returned in the response and handed to
// the notifier; notification failures are logged by the notifier and never
// affect the committed transition.
func (h *TaskHandler) SetStatus(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type SetStatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, activated, err := h.taskService.SetStatus(taskID, req.Status)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	if len(activated) > 0 && h.notifier != nil {
		// Fire-and-forget: the transition is already committed.
		if err := h.notifier.TasksActivated(c.Request.Context(), activated); err != nil {
			log.Printf("failed to notify activated tasks: %v", err)
		}
	}

	c.JSON(http.StatusOK, dto.SetStatusResponse{
		Task:      dto.ToTaskDTO(*task),
		Activated: dto.ToTaskDTOs(activated),
	})
}

func respondTaskError(c *gin.Context, err error) {
	var transitionErr *services.InvalidTransitionError
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrUnknownStatus):
		apierrors.BadRequest(c, "Unknown task status")
	case errors.As(err, &transitionErr):
		apierrors.UnprocessableEntity(c, apierrors.ErrCodeInvalidTransition, transitionErr.Error())
	case errors.Is(err, services.ErrPrerequisiteNotCompleted):
		apierrors.UnprocessableEntity(c, apierrors.ErrCodeInvalidTransition, "Prerequisite task is not completed")
	case errors.Is(err, services.ErrStatusConflict):
		apierrors.Conflict(c, "", "Task status was changed concurrently")
	default:
		apierrors.InternalError(c, "Failed to update task status")
	}
}
