package services

import (
	"fmt"

	"github.com/eventops/taskflow/internal/models"
	"github.com/eventops/taskflow/internal/repository"
)

// VisibilityService decides which workflows a department may see. A workflow
// is visible to a department iff it contains at least one task owned by one
// of that department's event pairings. This is a read gate only; writes are
// authorized upstream.
type VisibilityService struct {
	workflowRepo repository.WorkflowRepository
}

// NewVisibilityService creates a new VisibilityService
func NewVisibilityService(workflowRepo repository.WorkflowRepository) *VisibilityService {
	return &VisibilityService{workflowRepo: workflowRepo}
}

// CanView reports whether the department may view the workflow. A missing
// workflow is simply not visible.
func (s *VisibilityService) CanView(departmentID, workflowID uint64) (bool, error) {
	count, err := s.workflowRepo.CountDepartmentTasks(workflowID, departmentID)
	if err != nil {
		return false, fmt.Errorf("failed to count department tasks: %w", err)
	}
	return count > 0, nil
}

// WorkflowsVisibleTo returns every workflow containing at least one task
// owned by the department, each with its parent event loaded for display.
func (s *VisibilityService) WorkflowsVisibleTo(departmentID uint64) ([]models.Workflow, error) {
	workflows, err := s.workflowRepo.ListVisibleTo(departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visible workflows: %w", err)
	}
	return workflows, nil
}
