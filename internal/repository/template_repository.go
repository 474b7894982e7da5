package repository

import (
	"github.com/eventops/taskflow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTemplateRepository is a GORM implementation of TemplateRepository
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &GormTemplateRepository{db: db}
}

// Create creates a new task template
func (r *GormTemplateRepository) Create(template *models.TaskTemplate) error {
	return r.db.Create(template).Error
}

// FindByID finds a template by ID
func (r *GormTemplateRepository) FindByID(id uint64) (*models.TaskTemplate, error) {
	var template models.TaskTemplate
	if err := r.db.First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// ListByDepartment lists a department's templates
func (r *GormTemplateRepository) ListByDepartment(departmentID uint64) ([]models.TaskTemplate, error) {
	var templates []models.TaskTemplate
	err := r.db.Where("department_id = ?", departmentID).
		Order("created_at ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// Delete removes a template together with every prerequisite edge touching it,
// in either direction.
func (r *GormTemplateRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("task_template_id = ? OR prerequisite_template_id = ?", id, id).
			Delete(&models.PrerequisiteEdge{}).Error
		if err != nil {
			return err
		}

		return tx.Delete(&models.TaskTemplate{}, id).Error
	})
}

// ListEdges returns all prerequisite edges between a department's templates.
// Edges never cross departments, so joining on the owning side is enough.
func (r *GormTemplateRepository) ListEdges(departmentID uint64) ([]models.PrerequisiteEdge, error) {
	var edges []models.PrerequisiteEdge
	err := r.db.Model(&models.PrerequisiteEdge{}).
		Joins("JOIN task_templates ON task_templates.id = prerequisite_edges.task_template_id").
		Where("task_templates.department_id = ?", departmentID).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// CreateEdge inserts a prerequisite edge; re-inserting an existing edge is a
// no-op
func (r *GormTemplateRepository) CreateEdge(edge *models.PrerequisiteEdge) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_template_id"}, {Name: "prerequisite_template_id"}},
			DoNothing: true,
		}).
		Create(edge).Error
}

// DeleteEdge removes an edge and reports whether it existed
func (r *GormTemplateRepository) DeleteEdge(templateID, prerequisiteID uint64) (bool, error) {
	result := r.db.Where("task_template_id = ? AND prerequisite_template_id = ?", templateID, prerequisiteID).
		Delete(&models.PrerequisiteEdge{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
