package models

import (
	"time"

	"gorm.io/gorm"
)

type Department struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	NameAr    string         `gorm:"type:varchar(255)" json:"name_ar"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Operators []Operator     `gorm:"foreignKey:DepartmentID" json:"operators,omitempty"`
	Templates []TaskTemplate `gorm:"foreignKey:DepartmentID" json:"templates,omitempty"`
}
