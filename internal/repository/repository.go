package repository

import (
	"time"

	"github.com/eventops/taskflow/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// UpdateStatus performs a conditional status write: the row is updated only
	// if its current status still equals from. completedAt is written alongside
	// (nil clears it). Returns false when the row was not in the expected
	// status, so racing writers lose cleanly instead of clobbering each other.
	UpdateStatus(taskID uint64, from, to models.TaskStatus, completedAt *time.Time) (bool, error)

	// ListByDepartment retrieves tasks owned by a department with filtering
	// and pagination
	ListByDepartment(filter TaskFilter) ([]models.Task, int64, error)
}

// TaskFilter holds filtering options for listing a department's tasks
type TaskFilter struct {
	DepartmentID uint64
	EventID      *uint64
	Status       *models.TaskStatus
	Page         int
	PageSize     int
}

// WorkflowRepository defines the interface for workflow and link data access
type WorkflowRepository interface {
	// Create creates a new workflow
	Create(workflow *models.Workflow) error

	// FindByID finds a workflow by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Workflow, error)

	// Delete removes a workflow and its links; linked tasks are untouched
	Delete(id uint64) error

	// ListLinks returns a workflow's links ordered by order index, with the
	// linked task and its prerequisite task loaded
	ListLinks(workflowID uint64) ([]models.WorkflowTaskLink, error)

	// CreateLink inserts a link at its requested position and densely reindexes
	// the workflow's order indices. When forceTaskWaiting is set, the linked
	// task's status is reset to waiting in the same transaction.
	CreateLink(link *models.WorkflowTaskLink, forceTaskWaiting bool) error

	// UpdateLink saves order or prerequisite changes on an existing link
	UpdateLink(link *models.WorkflowTaskLink) error

	// RemoveLink unlinks a task from a workflow, clears any dangling
	// prerequisite references pointing at it and reindexes the remainder.
	// Returns the task IDs whose links lost their prerequisite.
	RemoveLink(workflowID, taskID uint64) ([]uint64, error)

	// FindLinkByTask returns the link binding a task into its workflow;
	// a task participates in at most one workflow at a time
	FindLinkByTask(taskID uint64) (*models.WorkflowTaskLink, error)

	// FindDependentLinks returns every link gated by the given prerequisite task
	FindDependentLinks(prerequisiteTaskID uint64) ([]models.WorkflowTaskLink, error)

	// CountDepartmentTasks counts the workflow's linked tasks owned by the
	// given department
	CountDepartmentTasks(workflowID, departmentID uint64) (int64, error)

	// ListVisibleTo returns every workflow containing at least one task owned
	// by the department, with the parent event loaded
	ListVisibleTo(departmentID uint64) ([]models.Workflow, error)
}

// TemplateRepository defines the interface for task template and prerequisite
// edge data access
type TemplateRepository interface {
	// Create creates a new task template
	Create(template *models.TaskTemplate) error

	// FindByID finds a template by ID
	FindByID(id uint64) (*models.TaskTemplate, error)

	// ListByDepartment lists a department's templates
	ListByDepartment(departmentID uint64) ([]models.TaskTemplate, error)

	// Delete removes a template and every edge touching it
	Delete(id uint64) error

	// ListEdges returns all prerequisite edges between a department's templates
	ListEdges(departmentID uint64) ([]models.PrerequisiteEdge, error)

	// CreateEdge inserts a prerequisite edge; inserting an existing edge is a
	// no-op
	CreateEdge(edge *models.PrerequisiteEdge) error

	// DeleteEdge removes an edge and reports whether it existed
	DeleteEdge(templateID, prerequisiteID uint64) (bool, error)
}

// OperatorRepository defines the interface for operator account data access
type OperatorRepository interface {
	// Create creates a new operator
	Create(operator *models.Operator) error

	// FindByID finds an operator by ID
	FindByID(id uint64) (*models.Operator, error)

	// FindByEmail finds an operator by email
	FindByEmail(email string) (*models.Operator, error)
}

// DepartmentRepository defines the interface for department data access
type DepartmentRepository interface {
	// Create creates a new department
	Create(department *models.Department) error

	// FindByID finds a department by ID
	FindByID(id uint64) (*models.Department, error)

	// List lists all departments
	List() ([]models.Department, error)
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	// Create creates a new event
	Create(event *models.Event) error

	// FindByID finds an event by ID
	FindByID(id uint64) (*models.Event, error)

	// FindEventDepartment finds an event/department pairing by ID
	FindEventDepartment(id uint64) (*models.EventDepartment, error)

	// EnsureEventDepartment returns the pairing for an event and department,
	// creating it when absent
	EnsureEventDepartment(eventID, departmentID uint64) (*models.EventDepartment, error)
}
