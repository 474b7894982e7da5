package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	NameAr    string         `gorm:"type:varchar(255)" json:"name_ar"`
	StartDate *time.Time     `json:"start_date"`
	EndDate   *time.Time     `json:"end_date"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Departments []EventDepartment `gorm:"foreignKey:EventID" json:"departments,omitempty"`
	Workflows   []Workflow        `gorm:"foreignKey:EventID" json:"workflows,omitempty"`
}

// EventDepartment pairs an event with a department that owns work inside it.
// Concrete tasks hang off this pairing rather than the event directly.
type EventDepartment struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	EventID      uint64    `gorm:"not null;uniqueIndex:idx_event_department" json:"event_id"`
	DepartmentID uint64    `gorm:"not null;uniqueIndex:idx_event_department" json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Event      Event      `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Tasks      []Task     `gorm:"foreignKey:EventDepartmentID" json:"tasks,omitempty"`
}
