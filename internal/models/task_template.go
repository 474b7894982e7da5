package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskTemplate is a reusable, department-owned requirement definition,
// independent of any specific event.
type TaskTemplate struct {
	ID            uint64         `gorm:"primarykey" json:"id"`
	DepartmentID  uint64         `gorm:"not null" json:"department_id"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`
	TitleAr       string         `gorm:"type:varchar(255)" json:"title_ar"`
	Description   string         `gorm:"type:text" json:"description"`
	DescriptionAr string         `gorm:"type:text" json:"description_ar"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Department    Department         `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Prerequisites []PrerequisiteEdge `gorm:"foreignKey:TaskTemplateID" json:"prerequisites,omitempty"`
}

// PrerequisiteEdge is a directed edge meaning the prerequisite template must
// be satisfied before the owning template. The edge set over a department's
// templates is kept acyclic at write time.
type PrerequisiteEdge struct {
	TaskTemplateID         uint64    `gorm:"primarykey" json:"task_template_id"`
	PrerequisiteTemplateID uint64    `gorm:"primarykey" json:"prerequisite_template_id"`
	CreatedAt              time.Time `json:"created_at"`

	// Relations
	TaskTemplate         TaskTemplate `gorm:"foreignKey:TaskTemplateID" json:"task_template,omitempty"`
	PrerequisiteTemplate TaskTemplate `gorm:"foreignKey:PrerequisiteTemplateID" json:"prerequisite_template,omitempty"`
}
