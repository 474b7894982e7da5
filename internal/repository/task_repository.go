package repository

import (
	"time"

	"github.com/eventops/taskflow/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// UpdateStatus performs a compare-and-set write on the status column. The
// WHERE clause on the previous status is what makes concurrent completions
// safe: of two racing writers only one matches the row, the other sees
// zero rows affected.
func (r *GormTaskRepository) UpdateStatus(taskID uint64, from, to models.TaskStatus, completedAt *time.Time) (bool, error) {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND status = ?", taskID, from).
		Updates(map[string]interface{}{
			"status":       to,
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByDepartment retrieves tasks owned by a department with filtering and
// pagination
func (r *GormTaskRepository) ListByDepartment(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).
		Joins("JOIN event_departments ON event_departments.id = tasks.event_department_id").
		Where("event_departments.department_id = ?", filter.DepartmentID)

	// Apply filters
	if filter.EventID != nil {
		query = query.Where("event_departments.event_id = ?", *filter.EventID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Preload("EventDepartment").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}
