package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/devhire/project-marketplace-api/internal/dto"
	apierrors "github.com/devhire/project-marketplace-api/internal/errors"
	"github.com/devhire/project-marketplace-api/internal/middleware"
	"github.com/devhire/project-marketplace-api/internal/models"
	"github.com/devhire/project-marketplace-api/internal/services"
	"github.com/devhire/project-marketplace-api/internal/utils"
)

// TaskHandler coordinates task lifecycle HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a task in one of the calling buyer's projects.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string          `json:"title" binding:"required"`
		Description string          `json:"description"`
		HourlyRate  decimal.Decimal `json:"hourly_rate" binding:"required"`
		ProjectID   uint64          `json:"project_id" binding:"required"`
		AssigneeID  uint64          `json:"assignee_id" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		HourlyRate:  req.HourlyRate,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		BuyerID:     userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListAssignedTasks returns the calling developer's assigned tasks.
func (h *TaskHandler) ListAssignedTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	tasks, err := h.taskService.ListAssignedTasks(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// ListAllTasks returns tasks across all projects for administrators,
// optionally filtered by status.
func (h *TaskHandler) ListAllTasks(c *gin.Context) {
	var status *models.TaskStatus
	if raw := c.Query("status"); raw != "" {
		s := models.TaskStatus(raw)
		switch s {
		case models.TaskStatusTodo, models.TaskStatusInProgress,
			models.TaskStatusSubmitted, models.TaskStatusPaid:
			status = &s
		default:
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListAllTasks(status, params)
	if err != nil {
		apierrors.InternalError(c, "Failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks:      dto.ToTaskDTOs(tasks),
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: total,
	})
}

// UpdateTask applies a developer progress update: status changes between
// todo and in_progress, and time spent. Submission and payment have
// dedicated endpoints.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type UpdateTaskRequest struct {
		Status    *models.TaskStatus `json:"status"`
		TimeSpent *decimal.Decimal   `json:"time_spent"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateProgress(taskID, userID, services.UpdateProgressInput{
		Status:    req.Status,
		TimeSpent: req.TimeSpent,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// SubmitTask accepts the developer's work as a multipart upload: an hours
// form field and the solution file.
func (h *TaskHandler) SubmitTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	hours, err := decimal.NewFromString(c.PostForm("hours"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid hours value")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "Solution file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apierrors.BadRequest(c, "Failed to read solution file")
		return
	}
	defer file.Close()

	task, err := h.taskService.SubmitTask(c.Request.Context(), taskID, userID, services.SubmitTaskInput{
		Hours:    hours,
		Filename: fileHeader.Filename,
		File:     file,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task submitted successfully",
		"task":    dto.ToTaskDTO(*task),
	})
}

// DownloadSolution streams the stored solution artifact to the owning buyer
// once the task is paid.
func (h *TaskHandler) DownloadSolution(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	rc, filename, err := h.taskService.DownloadSolution(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	defer rc.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": `attachment; filename="` + filename + `"`,
	}
	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", rc, extraHeaders)
}

// GenerateTasks drafts task suggestions from a project brief using AI.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type GenerateTasksRequest struct {
		Brief string `json:"brief" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		Brief:   req.Brief,
		BuyerID: userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": drafts})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTaskAssignee),
		errors.Is(err, services.ErrNotProjectOwner):
		apierrors.InsufficientPermissions(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrTaskNotSubmitted):
		apierrors.InvalidTransition(c, err.Error())
	case errors.Is(err, services.ErrTaskAlreadyPaid):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrPaymentOutstanding):
		apierrors.PaymentRequired(c, err.Error())
	case errors.Is(err, services.ErrTaskTitleMissing),
		errors.Is(err, services.ErrInvalidHourlyRate),
		errors.Is(err, services.ErrInvalidHours),
		errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, services.ErrAssigneeNotDeveloper):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNoSolutionFile):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrStorageFailure):
		apierrors.InternalError(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
