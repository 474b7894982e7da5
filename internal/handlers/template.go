package handlers

import (
	"errors"
	"net/http"
	"strconv"

	apierrors "github.com/eventops/taskflow/internal/errors"
	"github.com/eventops/taskflow/internal/graph"
	"github.com/eventops/taskflow/internal/middleware"
	"github.com/eventops/taskflow/internal/services"
	"github.com/gin-gonic/gin"
)

// TemplateHandler exposes task template CRUD and the prerequisite graph.
type TemplateHandler struct {
	templateService *services.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
	}
}

// CreateTemplate creates a task template owned by the operator's department
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	departmentID, exists := middleware.GetDepartmentID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTemplateRequest struct {
		Title         string `json:"title" binding:"required"`
		TitleAr       string `json:"title_ar"`
		Description   string `json:"description"`
		DescriptionAr string `json:"description_ar"`
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	template, err := h.templateService.CreateTemplate(services.CreateTemplateInput{
		DepartmentID:  departmentID,
		Title:         req.Title,
		TitleAr:       req.TitleAr,
		Description:   req.Description,
		DescriptionAr: req.DescriptionAr,
	})
	if err != nil {
		if errors.Is(err, services.ErrTemplateTitleRequired) {
			apierrors.BadRequest(c, "Title is required")
			return
		}
		apierrors.InternalError(c, "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, template)
}

// ListTemplates lists the operator's department templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	departmentID, exists := middleware.GetDepartmentID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	templates, err := h.templateService.ListTemplates(departmentID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list templates")
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// AddPrerequisite records a prerequisite edge between two templates
func (h *TemplateHandler) AddPrerequisite(c *gin.Context) {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type AddPrerequisiteRequest struct {
		PrerequisiteTemplateID uint64 `json:"prerequisite_template_id" binding:"required"`
	}

	var req AddPrerequisiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.templateService.AddPrerequisite(templateID, req.PrerequisiteTemplateID); err != nil {
		var cycleErr *graph.CycleError
		switch {
		case errors.As(err, &cycleErr):
			apierrors.Conflict(c, apierrors.ErrCodeCycle, cycleErr.Error())
		case errors.Is(err, services.ErrTemplateNotFound):
			apierrors.NotFound(c, "Template not found")
		case errors.Is(err, services.ErrCrossDepartmentTemplate):
			apierrors.BadRequest(c, "Templates belong to different departments")
		default:
			apierrors.InternalError(c, "Failed to add prerequisite")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"task_template_id":         templateID,
		"prerequisite_template_id": req.PrerequisiteTemplateID,
	})
}

// RemovePrerequisite deletes a prerequisite edge
func (h *TemplateHandler) RemovePrerequisite(c *gin.Context) {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	prerequisiteID, err := strconv.ParseUint(c.Param("prerequisite_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid prerequisite ID")
		return
	}

	found, err := h.templateService.RemovePrerequisite(templateID, prerequisiteID)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			apierrors.NotFound(c, "Template not found")
			return
		}
		apierrors.InternalError(c, "Failed to remove prerequisite")
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": found})
}

// PrerequisiteClosure returns every template that must ultimately be
// satisfied before the given template, direct and transitive
func (h *TemplateHandler) PrerequisiteClosure(c *gin.Context) {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	closure, err := h.templateService.TransitiveClosure(templateID)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			apierrors.NotFound(c, "Template not found")
			return
		}
		apierrors.InternalError(c, "Failed to compute prerequisite closure")
		return
	}

	c.JSON(http.StatusOK, gin.H{"template_ids": closure})
}

// AvailablePrerequisites returns the templates that could still be added as a
// prerequisite of the given template without creating a cycle
func (h *TemplateHandler) AvailablePrerequisites(c *gin.Context) {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	candidates, err := h.templateService.AvailablePrerequisites(templateID)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			apierrors.NotFound(c, "Template not found")
			return
		}
		apierrors.InternalError(c, "Failed to compute available prerequisites")
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": candidates})
}

// DeleteTemplate removes a template and its edges
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(templateID); err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			apierrors.NotFound(c, "Template not found")
			return
		}
		apierrors.InternalError(c, "Failed to delete template")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

// parseIDParam parses a numeric URL parameter, responding with 400 on failure
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}
