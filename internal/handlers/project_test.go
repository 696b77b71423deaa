package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devhire/project-marketplace-api/internal/constants"
	"github.com/devhire/project-marketplace-api/internal/dto"
	"github.com/devhire/project-marketplace-api/internal/models"
	"github.com/devhire/project-marketplace-api/internal/repository"
	"github.com/devhire/project-marketplace-api/internal/services"
)

type ProjectHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *ProjectHandler
}

// SetupTest runs before each test
func (suite *ProjectHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Payment{},
	)
	suite.Require().NoError(err)

	projectRepo := repository.NewProjectRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	projectService := services.NewProjectService(projectRepo, taskRepo)
	suite.handler = NewProjectHandler(projectService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *ProjectHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ProjectHandlerTestSuite) routerAs(userID uint64) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyUserRole, models.RoleBuyer)
		c.Next()
	})
	r.POST("/api/projects", suite.handler.CreateProject)
	r.GET("/api/projects", suite.handler.ListProjects)
	r.GET("/api/projects/:id/tasks", suite.handler.ListProjectTasks)
	r.DELETE("/api/projects/:id", suite.handler.DeleteProject)
	return r
}

func (suite *ProjectHandlerTestSuite) request(r *gin.Engine, method, url string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		suite.Require().NoError(err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (suite *ProjectHandlerTestSuite) createBuyer(email string) *models.User {
	user := &models.User{Email: email, PasswordHash: "hashedpassword", Role: models.RoleBuyer}
	suite.db.Create(user)
	return user
}

// TestCreateProject_Success tests project creation
func (suite *ProjectHandlerTestSuite) TestCreateProject_Success() {
	buyer := suite.createBuyer("buyer@example.com")

	r := suite.routerAs(buyer.ID)
	w := suite.request(r, "POST", "/api/projects", gin.H{
		"title":       "New Website",
		"description": "Company site rebuild",
	})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.ProjectDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "New Website", response.Title)
	assert.Equal(suite.T(), buyer.ID, response.OwnerID)
}

// TestCreateProject_MissingTitle tests validation
func (suite *ProjectHandlerTestSuite) TestCreateProject_MissingTitle() {
	buyer := suite.createBuyer("buyer@example.com")

	r := suite.routerAs(buyer.ID)
	w := suite.request(r, "POST", "/api/projects", gin.H{
		"description": "No title here",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestListProjects_OwnOnly tests that buyers only see their own projects
func (suite *ProjectHandlerTestSuite) TestListProjects_OwnOnly() {
	buyer := suite.createBuyer("buyer@example.com")
	other := suite.createBuyer("other@example.com")

	suite.db.Create(&models.Project{Title: "Mine", OwnerID: buyer.ID})
	suite.db.Create(&models.Project{Title: "Theirs", OwnerID: other.ID})

	r := suite.routerAs(buyer.ID)
	w := suite.request(r, "GET", "/api/projects", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Projects []dto.ProjectDTO `json:"projects"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Projects, 1)
	assert.Equal(suite.T(), "Mine", response.Projects[0].Title)
}

// TestListProjectTasks_NotOwner tests the ownership check on task listing
func (suite *ProjectHandlerTestSuite) TestListProjectTasks_NotOwner() {
	buyer := suite.createBuyer("buyer@example.com")
	other := suite.createBuyer("other@example.com")

	project := &models.Project{Title: "Private", OwnerID: buyer.ID}
	suite.db.Create(project)

	r := suite.routerAs(other.ID)
	w := suite.request(r, "GET", fmt.Sprintf("/api/projects/%d/tasks", project.ID), nil)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestListProjectTasks_NotFound tests that a missing project reports 404,
// not an ownership error
func (suite *ProjectHandlerTestSuite) TestListProjectTasks_NotFound() {
	buyer := suite.createBuyer("buyer@example.com")

	r := suite.routerAs(buyer.ID)
	w := suite.request(r, "GET", "/api/projects/9999/tasks", nil)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestDeleteProject_CascadesTasksKeepsPayments tests that deleting a
// project removes its tasks but leaves the payment ledger intact
func (suite *ProjectHandlerTestSuite) TestDeleteProject_CascadesTasksKeepsPayments() {
	buyer := suite.createBuyer("buyer@example.com")
	dev := &models.User{Email: "dev@example.com", PasswordHash: "hashedpassword", Role: models.RoleDeveloper}
	suite.db.Create(dev)

	project := &models.Project{Title: "Doomed", OwnerID: buyer.ID}
	suite.db.Create(project)

	hours := decimal.RequireFromString("5")
	task := &models.Task{
		Title:      "Paid work",
		HourlyRate: decimal.RequireFromString("20"),
		Status:     models.TaskStatusPaid,
		TimeSpent:  &hours,
		ProjectID:  project.ID,
		AssigneeID: dev.ID,
	}
	suite.db.Create(task)
	suite.db.Create(&models.Payment{TaskID: task.ID, Amount: decimal.RequireFromString("100")})

	r := suite.routerAs(buyer.ID)
	w := suite.request(r, "DELETE", fmt.Sprintf("/api/projects/%d", project.ID), nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var projectCount, taskCount, paymentCount int64
	suite.db.Model(&models.Project{}).Count(&projectCount)
	suite.db.Model(&models.Task{}).Count(&taskCount)
	suite.db.Model(&models.Payment{}).Count(&paymentCount)
	assert.Equal(suite.T(), int64(0), projectCount)
	assert.Equal(suite.T(), int64(0), taskCount)
	assert.Equal(suite.T(), int64(1), paymentCount)
}

// TestDeleteProject_NotOwner tests the ownership check on deletion
func (suite *ProjectHandlerTestSuite) TestDeleteProject_NotOwner() {
	buyer := suite.createBuyer("buyer@example.com")
	other := suite.createBuyer("other@example.com")

	project := &models.Project{Title: "Private", OwnerID: buyer.ID}
	suite.db.Create(project)

	r := suite.routerAs(other.ID)
	w := suite.request(r, "DELETE", fmt.Sprintf("/api/projects/%d", project.ID), nil)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	var count int64
	suite.db.Model(&models.Project{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

// TestSuite runs the test suite
func TestProjectHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectHandlerTestSuite))
}
