package middleware

import (
	"strconv"

	apierrors "github.com/eventops/taskflow/internal/errors"
	"github.com/eventops/taskflow/internal/services"
	"github.com/gin-gonic/gin"
)

// RequireWorkflowView gates workflow reads by department: the requesting
// operator's department must own at least one task inside the workflow.
// A 404 is returned either way so workflow existence is not leaked.
func RequireWorkflowView(visibility *services.VisibilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		workflowIDStr := c.Param("id")
		workflowID, err := strconv.ParseUint(workflowIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid workflow ID")
			c.Abort()
			return
		}

		departmentID, exists := GetDepartmentID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		canView, err := visibility.CanView(departmentID, workflowID)
		if err != nil {
			apierrors.InternalError(c, "Failed to check workflow access")
			c.Abort()
			return
		}
		if !canView {
			apierrors.NotFound(c, "Workflow not found")
			c.Abort()
			return
		}

		c.Set("workflow_id", workflowID)
		c.Next()
	}
}
