package repository

import (
	"sort"

	"github.com/eventops/taskflow/internal/models"
	"gorm.io/gorm"
)

// GormWorkflowRepository is a GORM implementation of WorkflowRepository
type GormWorkflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new WorkflowRepository
func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &GormWorkflowRepository{db: db}
}

// Create creates a new workflow
func (r *GormWorkflowRepository) Create(workflow *models.Workflow) error {
	return r.db.Create(workflow).Error
}

// FindByID finds a workflow by ID with optional preloading
func (r *GormWorkflowRepository) FindByID(id uint64, preload ...string) (*models.Workflow, error) {
	var workflow models.Workflow
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&workflow, id).Error; err != nil {
		return nil, err
	}

	return &workflow, nil
}

// Delete removes a workflow and its links. The linked tasks are left alone:
// deleting a workflow only removes the grouping.
func (r *GormWorkflowRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workflow_id = ?", id).Delete(&models.WorkflowTaskLink{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Workflow{}, id).Error
	})
}

// ListLinks returns a workflow's links ordered by order index
func (r *GormWorkflowRepository) ListLinks(workflowID uint64) ([]models.WorkflowTaskLink, error) {
	var links []models.WorkflowTaskLink
	err := r.db.Where("workflow_id = ?", workflowID).
		Order("order_index ASC").
		Preload("Task").
		Preload("PrerequisiteTask").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// CreateLink inserts a link at its requested position and densely reindexes
// the workflow's order indices, so indices stay unique and gap-free no matter
// what position the caller asked for. When forceTaskWaiting is set, the linked
// task is reset to waiting in the same transaction.
func (r *GormWorkflowRepository) CreateLink(link *models.WorkflowTaskLink, forceTaskWaiting bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing []models.WorkflowTaskLink
		if err := tx.Where("workflow_id = ?", link.WorkflowID).
			Order("order_index ASC").
			Find(&existing).Error; err != nil {
			return err
		}

		// Splice the new link in front of the first entry at or past the
		// requested index.
		pos := sort.Search(len(existing), func(i int) bool {
			return existing[i].OrderIndex >= link.OrderIndex
		})
		ordered := make([]models.WorkflowTaskLink, 0, len(existing)+1)
		ordered = append(ordered, existing[:pos]...)
		ordered = append(ordered, *link)
		ordered = append(ordered, existing[pos:]...)

		link.OrderIndex = pos
		if err := tx.Create(link).Error; err != nil {
			return err
		}

		if err := reindexLinks(tx, ordered); err != nil {
			return err
		}

		if forceTaskWaiting {
			err := tx.Model(&models.Task{}).
				Where("id = ?", link.TaskID).
				Updates(map[string]interface{}{
					"status":       models.TaskStatusWaiting,
					"completed_at": nil,
				}).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// UpdateLink saves order or prerequisite changes on an existing link
func (r *GormWorkflowRepository) UpdateLink(link *models.WorkflowTaskLink) error {
	return r.db.Model(&models.WorkflowTaskLink{}).
		Where("workflow_id = ? AND task_id = ?", link.WorkflowID, link.TaskID).
		Updates(map[string]interface{}{
			"order_index":          link.OrderIndex,
			"prerequisite_task_id": link.PrerequisiteTaskID,
		}).Error
}

// RemoveLink unlinks a task from a workflow. Links in the same workflow that
// named the removed task as their prerequisite have the reference cleared so
// no dangling gate is left behind; the cleared task IDs are returned for the
// caller to promote per the normal activation rules.
func (r *GormWorkflowRepository) RemoveLink(workflowID, taskID uint64) ([]uint64, error) {
	var cleared []uint64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var dependents []models.WorkflowTaskLink
		if err := tx.Where("workflow_id = ? AND prerequisite_task_id = ?", workflowID, taskID).
			Find(&dependents).Error; err != nil {
			return err
		}
		for _, dep := range dependents {
			cleared = append(cleared, dep.TaskID)
		}

		if len(dependents) > 0 {
			err := tx.Model(&models.WorkflowTaskLink{}).
				Where("workflow_id = ? AND prerequisite_task_id = ?", workflowID, taskID).
				Update("prerequisite_task_id", nil).Error
			if err != nil {
				return err
			}
		}

		result := tx.Where("workflow_id = ? AND task_id = ?", workflowID, taskID).
			Delete(&models.WorkflowTaskLink{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var remaining []models.WorkflowTaskLink
		if err := tx.Where("workflow_id = ?", workflowID).
			Order("order_index ASC").
			Find(&remaining).Error; err != nil {
			return err
		}

		return reindexLinks(tx, remaining)
	})
	if err != nil {
		return nil, err
	}

	return cleared, nil
}

// FindLinkByTask returns the link binding a task into its workflow
func (r *GormWorkflowRepository) FindLinkByTask(taskID uint64) (*models.WorkflowTaskLink, error) {
	var link models.WorkflowTaskLink
	if err := r.db.Where("task_id = ?", taskID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// FindDependentLinks returns every link gated by the given prerequisite task
func (r *GormWorkflowRepository) FindDependentLinks(prerequisiteTaskID uint64) ([]models.WorkflowTaskLink, error) {
	var links []models.WorkflowTaskLink
	err := r.db.Where("prerequisite_task_id = ?", prerequisiteTaskID).
		Preload("Task").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// CountDepartmentTasks counts the workflow's linked tasks owned by the
// given department
func (r *GormWorkflowRepository) CountDepartmentTasks(workflowID, departmentID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.WorkflowTaskLink{}).
		Joins("JOIN tasks ON tasks.id = workflow_task_links.task_id").
		Joins("JOIN event_departments ON event_departments.id = tasks.event_department_id").
		Where("workflow_task_links.workflow_id = ?", workflowID).
		Where("event_departments.department_id = ?", departmentID).
		Where("tasks.deleted_at IS NULL").
		Count(&count).Error
	return count, err
}

// ListVisibleTo returns every workflow containing at least one task owned by
// the department
func (r *GormWorkflowRepository) ListVisibleTo(departmentID uint64) ([]models.Workflow, error) {
	var workflows []models.Workflow
	err := r.db.Model(&models.Workflow{}).
		Distinct("workflows.*").
		Joins("JOIN workflow_task_links ON workflow_task_links.workflow_id = workflows.id").
		Joins("JOIN tasks ON tasks.id = workflow_task_links.task_id").
		Joins("JOIN event_departments ON event_departments.id = tasks.event_department_id").
		Where("event_departments.department_id = ?", departmentID).
		Where("tasks.deleted_at IS NULL").
		Preload("Event").
		Find(&workflows).Error
	if err != nil {
		return nil, err
	}
	return workflows, nil
}

// reindexLinks rewrites order indices densely (0..n-1) following the given
// order, touching only rows whose index actually changed.
func reindexLinks(tx *gorm.DB, ordered []models.WorkflowTaskLink) error {
	for i, l := range ordered {
		if l.OrderIndex == i {
			continue
		}
		err := tx.Model(&models.WorkflowTaskLink{}).
			Where("workflow_id = ? AND task_id = ?", l.WorkflowID, l.TaskID).
			Update("order_index", i).Error
		if err != nil {
			return err
		}
	}
	return nil
}
