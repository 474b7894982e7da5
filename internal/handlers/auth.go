package handlers

import (
	"errors"
	"net/http"

	"github.com/eventops/taskflow/internal/constants"
	"github.com/eventops/taskflow/internal/dto"
	apierrors "github.com/eventops/taskflow/internal/errors"
	"github.com/eventops/taskflow/internal/middleware"
	"github.com/eventops/taskflow/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup registers a new operator account for a department.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required"`
		DepartmentID uint64 `json:"department_id" binding:"required"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	operator, err := h.authService.Signup(services.SignupInput{
		Email:        req.Email,
		Password:     req.Password,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOperatorDTO(*operator))
}

// Login authenticates an operator and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	operator, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyOperatorID, operator.ID)
	session.Set(constants.ContextKeyDepartmentID, operator.DepartmentID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToOperatorDTO(*operator))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentOperator returns the authenticated operator.
func (h *AuthHandler) GetCurrentOperator(c *gin.Context) {
	operatorID, exists := middleware.GetOperatorID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	operator, err := h.authService.GetOperator(operatorID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOperatorDTO(*operator))
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "", "Email already registered")
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, "Password too short")
	case errors.Is(err, services.ErrDepartmentNotFound):
		apierrors.BadRequest(c, "Department not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, "Invalid email or password")
	case errors.Is(err, services.ErrOperatorNotFound):
		apierrors.NotFound(c, "Operator not found")
	default:
		apierrors.InternalError(c, "")
	}
}
