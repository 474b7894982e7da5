package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eventops/taskflow/internal/constants"
	"github.com/eventops/taskflow/internal/models"
	"github.com/eventops/taskflow/internal/repository"
	"github.com/eventops/taskflow/internal/services"
)

// TemplateHandlerTestSuite defines the test suite for TemplateHandler
type TemplateHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TemplateHandler

	templateService *services.TemplateService
}

func TestTemplateHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TemplateHandlerTestSuite))
}

// SetupTest runs before each test
func (suite *TemplateHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Department{},
		&models.TaskTemplate{},
		&models.PrerequisiteEdge{},
	)
	suite.Require().NoError(err)

	suite.templateService = services.NewTemplateService(repository.NewTemplateRepository(suite.db))
	suite.handler = NewTemplateHandler(suite.templateService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TemplateHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TemplateHandlerTestSuite) createTestDepartment(name string) *models.Department {
	department := &models.Department{Name: name}
	suite.db.Create(department)
	return department
}

func (suite *TemplateHandlerTestSuite) createTestTemplate(title string, departmentID uint64) *models.TaskTemplate {
	template := &models.TaskTemplate{Title: title, DepartmentID: departmentID}
	suite.db.Create(template)
	return template
}

func (suite *TemplateHandlerTestSuite) createAuthContext(method, url string, body []byte, departmentID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyOperatorID, uint64(1))
	c.Set(constants.ContextKeyDepartmentID, departmentID)

	return c, w
}

func (suite *TemplateHandlerTestSuite) TestCreateTemplate_Success() {
	department := suite.createTestDepartment("Operations")

	body, _ := json.Marshal(map[string]interface{}{"title": "Book venue"})
	c, w := suite.createAuthContext("POST", "/api/templates", body, department.ID)

	suite.handler.CreateTemplate(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response models.TaskTemplate
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Book venue", response.Title)
	assert.Equal(suite.T(), department.ID, response.DepartmentID)
}

func (suite *TemplateHandlerTestSuite) TestAddPrerequisite_Success() {
	department := suite.createTestDepartment("Operations")
	venue := suite.createTestTemplate("Venue", department.ID)
	catering := suite.createTestTemplate("Catering", department.ID)

	body, _ := json.Marshal(map[string]interface{}{"prerequisite_template_id": venue.ID})
	c, w := suite.createAuthContext("POST", "/api/templates/2/prerequisites", body, department.ID)
	c.Params = gin.Params{{Key: "id", Value: "2"}}

	suite.handler.AddPrerequisite(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var edge models.PrerequisiteEdge
	err := suite.db.Where("task_template_id = ? AND prerequisite_template_id = ?", catering.ID, venue.ID).
		First(&edge).Error
	assert.NoError(suite.T(), err)
}

func (suite *TemplateHandlerTestSuite) TestAddPrerequisite_CycleConflict() {
	department := suite.createTestDepartment("Operations")
	venue := suite.createTestTemplate("Venue", department.ID)
	catering := suite.createTestTemplate("Catering", department.ID)

	suite.Require().NoError(suite.templateService.AddPrerequisite(catering.ID, venue.ID))

	// The reverse edge closes a cycle.
	body, _ := json.Marshal(map[string]interface{}{"prerequisite_template_id": catering.ID})
	c, w := suite.createAuthContext("POST", "/api/templates/1/prerequisites", body, department.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.AddPrerequisite(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "DEPENDENCY_CYCLE", response["code"])
}

func (suite *TemplateHandlerTestSuite) TestAddPrerequisite_CrossDepartment() {
	ops := suite.createTestDepartment("Operations")
	catering := suite.createTestDepartment("Catering")
	suite.createTestTemplate("Venue", ops.ID)
	menu := suite.createTestTemplate("Menu", catering.ID)

	body, _ := json.Marshal(map[string]interface{}{"prerequisite_template_id": menu.ID})
	c, w := suite.createAuthContext("POST", "/api/templates/1/prerequisites", body, ops.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.AddPrerequisite(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TemplateHandlerTestSuite) TestRemovePrerequisite() {
	department := suite.createTestDepartment("Operations")
	venue := suite.createTestTemplate("Venue", department.ID)
	catering := suite.createTestTemplate("Catering", department.ID)

	suite.Require().NoError(suite.templateService.AddPrerequisite(catering.ID, venue.ID))

	c, w := suite.createAuthContext("DELETE", "/api/templates/2/prerequisites/1", nil, department.ID)
	c.Params = gin.Params{
		{Key: "id", Value: "2"},
		{Key: "prerequisite_id", Value: "1"},
	}

	suite.handler.RemovePrerequisite(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), true, response["removed"])
}

func (suite *TemplateHandlerTestSuite) TestAvailablePrerequisites() {
	department := suite.createTestDepartment("Operations")
	venue := suite.createTestTemplate("Venue", department.ID)
	catering := suite.createTestTemplate("Catering", department.ID)

	suite.Require().NoError(suite.templateService.AddPrerequisite(catering.ID, venue.ID))

	// Venue cannot take Catering without closing a cycle.
	c, w := suite.createAuthContext("GET", "/api/templates/1/prerequisites/available", nil, department.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.AvailablePrerequisites(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), response["templates"])
}

func (suite *TemplateHandlerTestSuite) TestPrerequisiteClosure() {
	department := suite.createTestDepartment("Operations")
	venue := suite.createTestTemplate("Venue", department.ID)
	catering := suite.createTestTemplate("Catering", department.ID)
	invites := suite.createTestTemplate("Invites", department.ID)

	suite.Require().NoError(suite.templateService.AddPrerequisite(catering.ID, venue.ID))
	suite.Require().NoError(suite.templateService.AddPrerequisite(invites.ID, catering.ID))

	c, w := suite.createAuthContext("GET", "/api/templates/3/prerequisites/closure", nil, department.ID)
	c.Params = gin.Params{{Key: "id", Value: "3"}}

	suite.handler.PrerequisiteClosure(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string][]uint64
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []uint64{venue.ID, catering.ID}, response["template_ids"])
}

func (suite *TemplateHandlerTestSuite) TestDeleteTemplate_NotFound() {
	department := suite.createTestDepartment("Operations")

	c, w := suite.createAuthContext("DELETE", "/api/templates/9999", nil, department.ID)
	c.Params = gin.Params{{Key: "id", Value: "9999"}}

	suite.handler.DeleteTemplate(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}
