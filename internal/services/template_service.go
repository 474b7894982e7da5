package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/eventops/taskflow/internal/graph"
	"github.com/eventops/taskflow/internal/models"
	"github.com/eventops/taskflow/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound        = errors.New("task template not found")
	ErrTemplateTitleRequired   = errors.New("template title is required")
	ErrCrossDepartmentTemplate = errors.New("templates belong to different departments")
)

// TemplateService maintains department-owned task templates and the acyclic
// prerequisite graph between them. Edge writes are serialized per department:
// two concurrent inserts validated against the same stale graph could jointly
// close a cycle, and edges never cross departments, so a department-wide lock
// is exactly the right width.
type TemplateService struct {
	templateRepo repository.TemplateRepository

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(templateRepo repository.TemplateRepository) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		locks:        make(map[uint64]*sync.Mutex),
	}
}

// CreateTemplateInput represents input for creating a task template
type CreateTemplateInput struct {
	DepartmentID  uint64
	Title         string
	TitleAr       string
	Description   string
	DescriptionAr string
}

// CreateTemplate creates a new task template
func (s *TemplateService) CreateTemplate(input CreateTemplateInput) (*models.TaskTemplate, error) {
	if input.Title == "" {
		return nil, ErrTemplateTitleRequired
	}

	template := &models.TaskTemplate{
		DepartmentID:  input.DepartmentID,
		Title:         input.Title,
		TitleAr:       input.TitleAr,
		Description:   input.Description,
		DescriptionAr: input.DescriptionAr,
	}

	if err := s.templateRepo.Create(template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	return template, nil
}

// ListTemplates lists a department's templates
func (s *TemplateService) ListTemplates(departmentID uint64) ([]models.TaskTemplate, error) {
	templates, err := s.templateRepo.ListByDepartment(departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// AddPrerequisite records that prerequisiteID must be satisfied before
// templateID. Both templates must belong to the same department. Fails with
// *graph.CycleError when the edge would close a dependency cycle; re-adding
// an existing edge is a no-op.
func (s *TemplateService) AddPrerequisite(templateID, prerequisiteID uint64) error {
	template, err := s.findTemplate(templateID)
	if err != nil {
		return err
	}
	prerequisite, err := s.findTemplate(prerequisiteID)
	if err != nil {
		return err
	}
	if template.DepartmentID != prerequisite.DepartmentID {
		return ErrCrossDepartmentTemplate
	}

	lock := s.departmentLock(template.DepartmentID)
	lock.Lock()
	defer lock.Unlock()

	g, err := s.buildGraph(template.DepartmentID)
	if err != nil {
		return err
	}

	if err := g.AddEdge(templateID, prerequisiteID); err != nil {
		return err
	}

	edge := &models.PrerequisiteEdge{
		TaskTemplateID:         templateID,
		PrerequisiteTemplateID: prerequisiteID,
	}
	if err := s.templateRepo.CreateEdge(edge); err != nil {
		return fmt.Errorf("failed to save prerequisite edge: %w", err)
	}

	return nil
}

// RemovePrerequisite deletes the edge if present and reports whether it was
// found. Removing a missing edge is not an error.
func (s *TemplateService) RemovePrerequisite(templateID, prerequisiteID uint64) (bool, error) {
	template, err := s.findTemplate(templateID)
	if err != nil {
		return false, err
	}

	lock := s.departmentLock(template.DepartmentID)
	lock.Lock()
	defer lock.Unlock()

	found, err := s.templateRepo.DeleteEdge(templateID, prerequisiteID)
	if err != nil {
		return false, fmt.Errorf("failed to delete prerequisite edge: %w", err)
	}

	return found, nil
}

// TransitiveClosure returns every template that must ultimately be satisfied
// before templateID, sorted by ID.
func (s *TemplateService) TransitiveClosure(templateID uint64) ([]uint64, error) {
	template, err := s.findTemplate(templateID)
	if err != nil {
		return nil, err
	}

	g, err := s.buildGraph(template.DepartmentID)
	if err != nil {
		return nil, err
	}

	closure := g.TransitiveClosure(templateID)
	ids := make([]uint64, 0, len(closure))
	for id := range closure {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

// AvailablePrerequisites returns the department templates that could safely
// be added as a prerequisite of templateID: everything except the template
// itself and the templates that already depend on it.
func (s *TemplateService) AvailablePrerequisites(templateID uint64) ([]models.TaskTemplate, error) {
	template, err := s.findTemplate(templateID)
	if err != nil {
		return nil, err
	}

	templates, err := s.templateRepo.ListByDepartment(template.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	g, err := s.buildGraph(template.DepartmentID)
	if err != nil {
		return nil, err
	}

	all := make([]uint64, len(templates))
	byID := make(map[uint64]models.TaskTemplate, len(templates))
	for i, t := range templates {
		all[i] = t.ID
		byID[t.ID] = t
	}

	candidates := g.AvailableCandidates(templateID, all)
	result := make([]models.TaskTemplate, len(candidates))
	for i, id := range candidates {
		result[i] = byID[id]
	}

	return result, nil
}

// DeleteTemplate removes a template and every edge touching it
func (s *TemplateService) DeleteTemplate(templateID uint64) error {
	template, err := s.findTemplate(templateID)
	if err != nil {
		return err
	}

	lock := s.departmentLock(template.DepartmentID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.templateRepo.Delete(templateID); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	return nil
}

// buildGraph loads a department's persisted edges into an in-memory graph.
// The stored edge set is acyclic by construction, so loading cannot fail.
func (s *TemplateService) buildGraph(departmentID uint64) (*graph.PrerequisiteGraph, error) {
	edges, err := s.templateRepo.ListEdges(departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prerequisite edges: %w", err)
	}

	g := graph.New()
	for _, edge := range edges {
		if err := g.AddEdge(edge.TaskTemplateID, edge.PrerequisiteTemplateID); err != nil {
			return nil, fmt.Errorf("stored prerequisite edges are inconsistent: %w", err)
		}
	}

	return g, nil
}

func (s *TemplateService) findTemplate(id uint64) (*models.TaskTemplate, error) {
	template, err := s.templateRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to find template: %w", err)
	}
	return template, nil
}

// departmentLock returns the mutex serializing edge writes for a department
func (s *TemplateService) departmentLock(departmentID uint64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[departmentID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[departmentID] = lock
	}
	return lock
}
