package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/eventops/taskflow/internal/errors"
	"github.com/eventops/taskflow/internal/models"
	"github.com/eventops/taskflow/internal/repository"
	"github.com/gin-gonic/gin"
)

// DirectoryHandler exposes the minimal department and event endpoints the
// workflow views hang off of.
type DirectoryHandler struct {
	departmentRepo repository.DepartmentRepository
	eventRepo      repository.EventRepository
}

// NewDirectoryHandler creates a new DirectoryHandler
func NewDirectoryHandler(departmentRepo repository.DepartmentRepository, eventRepo repository.EventRepository) *DirectoryHandler {
	return &DirectoryHandler{
		departmentRepo: departmentRepo,
		eventRepo:      eventRepo,
	}
}

// CreateDepartment creates a department
func (h *DirectoryHandler) CreateDepartment(c *gin.Context) {
	type CreateDepartmentRequest struct {
		Name   string `json:"name" binding:"required"`
		NameAr string `json:"name_ar"`
	}

	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	department := &models.Department{
		Name:   req.Name,
		NameAr: req.NameAr,
	}
	if err := h.departmentRepo.Create(department); err != nil {
		apierrors.InternalError(c, "Failed to create department")
		return
	}

	c.JSON(http.StatusCreated, department)
}

// ListDepartments lists all departments
func (h *DirectoryHandler) ListDepartments(c *gin.Context) {
	departments, err := h.departmentRepo.List()
	if err != nil {
		apierrors.InternalError(c, "Failed to list departments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

// CreateEvent creates an event
func (h *DirectoryHandler) CreateEvent(c *gin.Context) {
	type CreateEventRequest struct {
		Name      string     `json:"name" binding:"required"`
		NameAr    string     `json:"name_ar"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	event := &models.Event{
		Name:      req.Name,
		NameAr:    req.NameAr,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := h.eventRepo.Create(event); err != nil {
		apierrors.InternalError(c, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, event)
}
