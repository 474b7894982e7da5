package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eventops/taskflow/internal/constants"
	"github.com/eventops/taskflow/internal/models"
	"github.com/eventops/taskflow/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrOperatorNotFound     = errors.New("operator not found")
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles operator authentication.
type AuthService struct {
	operatorRepo   repository.OperatorRepository
	departmentRepo repository.DepartmentRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(operatorRepo repository.OperatorRepository, departmentRepo repository.DepartmentRepository) *AuthService {
	return &AuthService{
		operatorRepo:   operatorRepo,
		departmentRepo: departmentRepo,
	}
}

// SignupInput represents the required information to create a new operator.
type SignupInput struct {
	Email        string
	Password     string
	DepartmentID uint64
}

// Signup creates a new operator account attached to a department.
func (s *AuthService) Signup(input SignupInput) (*models.Operator, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.departmentRepo.FindByID(input.DepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to verify department: %w", err)
	}

	if _, err := s.operatorRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	operator := &models.Operator{
		Email:        email,
		PasswordHash: string(hashedPassword),
		DepartmentID: input.DepartmentID,
	}

	if err := s.operatorRepo.Create(operator); err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}

	return operator, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated operator.
func (s *AuthService) Login(input LoginInput) (*models.Operator, error) {
	operator, err := s.operatorRepo.FindByEmail(strings.TrimSpace(strings.ToLower(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find operator: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return operator, nil
}

// GetOperator retrieves an operator by ID.
func (s *AuthService) GetOperator(id uint64) (*models.Operator, error) {
	operator, err := s.operatorRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to find operator: %w", err)
	}

	return operator, nil
}
