package repository

import (
	"github.com/eventops/taskflow/internal/models"
	"gorm.io/gorm"
)

// GormEventRepository is a GORM implementation of EventRepository
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &GormEventRepository{db: db}
}

// Create creates a new event
func (r *GormEventRepository) Create(event *models.Event) error {
	return r.db.Create(event).Error
}

// FindByID finds an event by ID
func (r *GormEventRepository) FindByID(id uint64) (*models.Event, error) {
	var event models.Event
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindEventDepartment finds an event/department pairing by ID
func (r *GormEventRepository) FindEventDepartment(id uint64) (*models.EventDepartment, error) {
	var pairing models.EventDepartment
	if err := r.db.First(&pairing, id).Error; err != nil {
		return nil, err
	}
	return &pairing, nil
}

// EnsureEventDepartment returns the pairing for an event and department,
// creating it when absent. The event must exist; pairings are never created
// against missing events.
func (r *GormEventRepository) EnsureEventDepartment(eventID, departmentID uint64) (*models.EventDepartment, error) {
	if err := r.db.First(&models.Event{}, eventID).Error; err != nil {
		return nil, err
	}

	pairing := models.EventDepartment{
		EventID:      eventID,
		DepartmentID: departmentID,
	}
	err := r.db.Where("event_id = ? AND department_id = ?", eventID, departmentID).
		FirstOrCreate(&pairing).Error
	if err != nil {
		return nil, err
	}
	return &pairing, nil
}
