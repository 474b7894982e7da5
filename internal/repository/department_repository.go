package repository

import (
	"github.com/eventops/taskflow/internal/models"
	"gorm.io/gorm"
)

// GormDepartmentRepository is a GORM implementation of DepartmentRepository
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository creates a new DepartmentRepository
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

// Create creates a new department
func (r *GormDepartmentRepository) Create(department *models.Department) error {
	return r.db.Create(department).Error
}

// FindByID finds a department by ID
func (r *GormDepartmentRepository) FindByID(id uint64) (*models.Department, error) {
	var department models.Department
	if err := r.db.First(&department, id).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

// List lists all departments
func (r *GormDepartmentRepository) List() ([]models.Department, error) {
	var departments []models.Department
	if err := r.db.Order("name ASC").Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}
