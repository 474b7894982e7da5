package repository

import (
	"github.com/eventops/taskflow/internal/models"
	"gorm.io/gorm"
)

// GormOperatorRepository is a GORM implementation of OperatorRepository
type GormOperatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository creates a new OperatorRepository
func NewOperatorRepository(db *gorm.DB) OperatorRepository {
	return &GormOperatorRepository{db: db}
}

// Create creates a new operator
func (r *GormOperatorRepository) Create(operator *models.Operator) error {
	return r.db.Create(operator).Error
}

// FindByID finds an operator by ID
func (r *GormOperatorRepository) FindByID(id uint64) (*models.Operator, error) {
	var operator models.Operator
	if err := r.db.First(&operator, id).Error; err != nil {
		return nil, err
	}
	return &operator, nil
}

// FindByEmail finds an operator by email
func (r *GormOperatorRepository) FindByEmail(email string) (*models.Operator, error) {
	var operator models.Operator
	if err := r.db.Where("email = ?", email).First(&operator).Error; err != nil {
		return nil, err
	}
	return &operator, nil
}
