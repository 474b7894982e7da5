package services

import (
	"github.com/eventops/taskflow/internal/models"
	"github.com/eventops/taskflow/internal/repository"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// serviceSuite carries the shared in-memory database fixture and the fully
// wired service graph used by the service-level suites.
type serviceSuite struct {
	suite.Suite
	db *gorm.DB

	taskRepo     repository.TaskRepository
	workflowRepo repository.WorkflowRepository
	templateRepo repository.TemplateRepository
	eventRepo    repository.EventRepository

	taskService     *TaskService
	workflowService *WorkflowService
	templateService *TemplateService
	visibility      *VisibilityService
}

// SetupTest runs before each test
func (s *serviceSuite) SetupTest() {
	var err error

	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)

	err = s.db.AutoMigrate(
		&models.Department{},
		&models.Operator{},
		&models.Event{},
		&models.EventDepartment{},
		&models.TaskTemplate{},
		&models.PrerequisiteEdge{},
		&models.Task{},
		&models.Workflow{},
		&models.WorkflowTaskLink{},
	)
	s.Require().NoError(err)

	s.taskRepo = repository.NewTaskRepository(s.db)
	s.workflowRepo = repository.NewWorkflowRepository(s.db)
	s.templateRepo = repository.NewTemplateRepository(s.db)
	s.eventRepo = repository.NewEventRepository(s.db)

	s.taskService = NewTaskService(s.taskRepo, s.workflowRepo, s.eventRepo)
	s.workflowService = NewWorkflowService(s.workflowRepo, s.taskRepo, s.eventRepo, s.taskService)
	s.templateService = NewTemplateService(s.templateRepo)
	s.visibility = NewVisibilityService(s.workflowRepo)
}

// TearDownTest runs after each test
func (s *serviceSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

// Helpers to create test data

func (s *serviceSuite) createDepartment(name string) *models.Department {
	department := &models.Department{Name: name}
	s.Require().NoError(s.db.Create(department).Error)
	return department
}

func (s *serviceSuite) createEvent(name string) *models.Event {
	event := &models.Event{Name: name}
	s.Require().NoError(s.db.Create(event).Error)
	return event
}

func (s *serviceSuite) createEventDepartment(eventID, departmentID uint64) *models.EventDepartment {
	pairing := &models.EventDepartment{EventID: eventID, DepartmentID: departmentID}
	s.Require().NoError(s.db.Create(pairing).Error)
	return pairing
}

func (s *serviceSuite) createTask(title string, eventDepartmentID uint64, status models.TaskStatus) *models.Task {
	task := &models.Task{
		Title:             title,
		EventDepartmentID: eventDepartmentID,
		Status:            status,
	}
	s.Require().NoError(s.db.Create(task).Error)
	return task
}

func (s *serviceSuite) createTemplate(title string, departmentID uint64) *models.TaskTemplate {
	template := &models.TaskTemplate{Title: title, DepartmentID: departmentID}
	s.Require().NoError(s.db.Create(template).Error)
	return template
}

func (s *serviceSuite) createWorkflow(name string, eventID uint64) *models.Workflow {
	workflow := &models.Workflow{Name: name, EventID: eventID}
	s.Require().NoError(s.db.Create(workflow).Error)
	return workflow
}

func (s *serviceSuite) reloadTask(id uint64) *models.Task {
	var task models.Task
	s.Require().NoError(s.db.First(&task, id).Error)
	return &task
}
