package middleware

import (
	"github.com/eventops/taskflow/internal/constants"
	apierrors "github.com/eventops/taskflow/internal/errors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// RequireAuth checks if the operator is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		operatorID := session.Get(constants.ContextKeyOperatorID)
		departmentID := session.Get(constants.ContextKeyDepartmentID)

		if operatorID == nil || departmentID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store identity in context for easy access in handlers
		c.Set(constants.ContextKeyOperatorID, operatorID)
		c.Set(constants.ContextKeyDepartmentID, departmentID)
		c.Next()
	}
}

// GetOperatorID retrieves the current operator ID from context
func GetOperatorID(c *gin.Context) (uint64, bool) {
	return uintFromContext(c, constants.ContextKeyOperatorID)
}

// GetDepartmentID retrieves the current operator's department ID from context
func GetDepartmentID(c *gin.Context) (uint64, bool) {
	return uintFromContext(c, constants.ContextKeyDepartmentID)
}

func uintFromContext(c *gin.Context, key string) (uint64, bool) {
	value, exists := c.Get(key)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
