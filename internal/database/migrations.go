package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
		unique  bool
	}{
		// Task indexes for department listing and cascade lookups
		{"tasks", "idx_tasks_event_department_id", "event_department_id", false},
		{"tasks", "idx_tasks_status", "status", false},
		{"tasks", "idx_tasks_due_date", "due_date", false},

		// Workflow link indexes: cascade fan-out and ordered listing. The
		// task_id index is unique so a task can never be linked into two
		// workflows, whatever path wrote the row.
		{"workflow_task_links", "idx_links_prerequisite_task_id", "prerequisite_task_id", false},
		{"workflow_task_links", "idx_links_task_id", "task_id", true},
		{"workflow_task_links", "idx_links_workflow_order", "workflow_id, order_index", false},

		// Prerequisite edge reverse lookups
		{"prerequisite_edges", "idx_edges_prerequisite_template_id", "prerequisite_template_id", false},

		// Event/department pairing lookups
		{"event_departments", "idx_event_departments_department_id", "department_id", false},

		// Template listing per department
		{"task_templates", "idx_task_templates_department_id", "department_id", false},
	}

	for _, idx := range indexes {
		// Check if index already exists
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		stmt := "CREATE INDEX"
		if idx.unique {
			stmt = "CREATE UNIQUE INDEX"
		}

		sql := fmt.Sprintf("%s %s ON %s (%s)", stmt, idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
