package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/eventops/taskflow/internal/constants"
	"github.com/eventops/taskflow/internal/dto"
	apierrors "github.com/eventops/taskflow/internal/errors"
	"github.com/eventops/taskflow/internal/middleware"
	"github.com/eventops/taskflow/internal/notifier"
	"github.com/eventops/taskflow/internal/services"
	"github.com/gin-gonic/gin"
)

// WorkflowHandler exposes workflow authoring and the department workflow views.
type WorkflowHandler struct {
	workflowService   *services.WorkflowService
	visibilityService *services.VisibilityService
	aiService         *services.AIService
	notifier          notifier.Notifier
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(workflowService *services.WorkflowService, visibilityService *services.VisibilityService, aiService *services.AIService, n notifier.Notifier) *WorkflowHandler {
	return &WorkflowHandler{
		workflowService:   workflowService,
		visibilityService: visibilityService,
		aiService:         aiService,
		notifier:          n,
	}
}

// CreateWorkflow creates an empty workflow for an event
func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	type CreateWorkflowRequest struct {
		EventID uint64 `json:"event_id" binding:"required"`
		Name    string `json:"name" binding:"required"`
	}

	var req CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workflow, err := h.workflowService.CreateWorkflow(req.EventID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			apierrors.BadRequest(c, "Event not found")
		case errors.Is(err, services.ErrWorkflowNameRequired):
			apierrors.BadRequest(c, "Workflow name is required")
		default:
			apierrors.InternalError(c, "Failed to create workflow")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkflowDTO(*workflow))
}

// ListMyWorkflows returns every workflow visible to the operator's department
func (h *WorkflowHandler) ListMyWorkflows(c *gin.Context) {
	departmentID, exists := middleware.GetDepartmentID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	workflows, err := h.visibilityService.WorkflowsVisibleTo(departmentID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list workflows")
		return
	}

	c.JSON(http.StatusOK, gin.H{"workflows": dto.ToWorkflowDTOs(workflows)})
}

// GetWorkflow returns the workflow's ordered task list with prerequisite
// status per entry. Access is gated by RequireWorkflowView.
func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	workflowID, ok := workflowIDFromContext(c)
	if !ok {
		return
	}

	workflow, err := h.workflowService.GetWorkflow(workflowID)
	if err != nil {
		if errors.Is(err, services.ErrWorkflowNotFound) {
			apierrors.NotFound(c, "Workflow not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch workflow")
		return
	}

	links, err := h.workflowService.WorkflowTasks(workflowID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch workflow tasks")
		return
	}

	c.JSON(http.StatusOK, dto.WorkflowDetailResponse{
		Workflow: dto.ToWorkflowDTO(*workflow),
		Tasks:    dto.ToWorkflowTaskDTOs(links),
	})
}

// AddTask links a task into a workflow
func (h *WorkflowHandler) AddTask(c *gin.Context) {
	workflowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type AddTaskRequest struct {
		TaskID             uint64  `json:"task_id" binding:"required"`
		OrderIndex         int     `json:"order_index"`
		PrerequisiteTaskID *uint64 `json:"prerequisite_task_id"`
	}

	var req AddTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	link, err := h.workflowService.AddTask(services.AddTaskInput{
		WorkflowID:         workflowID,
		TaskID:             req.TaskID,
		OrderIndex:         req.OrderIndex,
		PrerequisiteTaskID: req.PrerequisiteTaskID,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkflowTaskDTO(*link))
}

// UpdateTaskGate replaces or clears the prerequisite gate on a linked task.
// Tasks promoted out of waiting by the change are reported back.
func (h *WorkflowHandler) UpdateTaskGate(c *gin.Context) {
	workflowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	type UpdateGateRequest struct {
		PrerequisiteTaskID *uint64 `json:"prerequisite_task_id"`
	}

	var req UpdateGateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	link, promoted, err := h.workflowService.SetTaskGate(workflowID, taskID, req.PrerequisiteTaskID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	if len(promoted) > 0 && h.notifier != nil {
		if err := h.notifier.TasksActivated(c.Request.Context(), promoted); err != nil {
			log.Printf("failed to notify promoted tasks: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"link":      dto.ToWorkflowTaskDTO(*link),
		"activated": dto.ToTaskDTOs(promoted),
	})
}

// RemoveTask unlinks a task from a workflow. Dependents whose gate pointed at
// the removed task are promoted and returned.
func (h *WorkflowHandler) RemoveTask(c *gin.Context) {
	workflowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	promoted, err := h.workflowService.RemoveTask(workflowID, taskID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	if len(promoted) > 0 && h.notifier != nil {
		if err := h.notifier.TasksActivated(c.Request.Context(), promoted); err != nil {
			log.Printf("failed to notify promoted tasks: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Task removed from workflow",
		"activated": dto.ToTaskDTOs(promoted),
	})
}

// DeleteWorkflow removes a workflow; its tasks survive
func (h *WorkflowHandler) DeleteWorkflow(c *gin.Context) {
	workflowID, ok := workflowIDFromContext(c)
	if !ok {
		return
	}

	if err := h.workflowService.DeleteWorkflow(workflowID); err != nil {
		if errors.Is(err, services.ErrWorkflowNotFound) {
			apierrors.NotFound(c, "Workflow not found")
			return
		}
		apierrors.InternalError(c, "Failed to delete workflow")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workflow deleted"})
}

// SuggestTasks asks the AI service for a task breakdown of an event brief
func (h *WorkflowHandler) SuggestTasks(c *gin.Context) {
	if h.aiService == nil {
		apierrors.RespondWithError(c, http.StatusServiceUnavailable,
			apierrors.NewAPIError(apierrors.ErrCodeInternalError, "AI suggestions are not configured"))
		return
	}

	type SuggestTasksRequest struct {
		EventName string `json:"event_name" binding:"required"`
		Text      string `json:"text" binding:"required"`
	}

	var req SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	suggestions, err := h.aiService.SuggestTasksFromText(c.Request.Context(), req.EventName, req.Text)
	if err != nil {
		apierrors.InternalError(c, "Failed to generate suggestions")
		return
	}
	if len(suggestions) > constants.MaxSuggestedTasks {
		suggestions = suggestions[:constants.MaxSuggestedTasks]
	}

	c.JSON(http.StatusOK, gin.H{"tasks": suggestions})
}

// workflowIDFromContext reads the workflow ID stored by RequireWorkflowView
func workflowIDFromContext(c *gin.Context) (uint64, bool) {
	value, exists := c.Get("workflow_id")
	if !exists {
		apierrors.InternalError(c, "Workflow not found in context")
		return 0, false
	}
	id, ok := value.(uint64)
	if !ok {
		apierrors.InternalError(c, "Invalid workflow context")
		return 0, false
	}
	return id, true
}

func respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrWorkflowNotFound):
		apierrors.NotFound(c, "Workflow not found")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskAlreadyLinked):
		apierrors.Conflict(c, "", "Task is already linked into a workflow")
	case errors.Is(err, services.ErrTaskNotInWorkflow):
		apierrors.NotFound(c, "Task is not linked into this workflow")
	case errors.Is(err, services.ErrPrerequisiteOutsideWorkflow):
		apierrors.UnprocessableEntity(c, apierrors.ErrCodeInvalidLink, "Prerequisite task is not linked into the same workflow")
	case errors.Is(err, services.ErrSelfPrerequisite):
		apierrors.UnprocessableEntity(c, apierrors.ErrCodeInvalidLink, "A task cannot be its own prerequisite")
	default:
		apierrors.InternalError(c, "Workflow operation failed")
	}
}
