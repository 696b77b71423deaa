package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/devhire/project-marketplace-api/internal/constants"
	"github.com/devhire/project-marketplace-api/internal/models"
	"github.com/devhire/project-marketplace-api/internal/repository"
	"github.com/devhire/project-marketplace-api/internal/storage"
	"github.com/devhire/project-marketplace-api/internal/utils"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrNotTaskAssignee        = errors.New("caller is not assigned to this task")
	ErrAssigneeNotFound       = errors.New("assignee does not exist")
	ErrAssigneeNotDeveloper   = errors.New("assignee must hold the developer role")
	ErrTaskTitleMissing       = errors.New("task title is required")
	ErrInvalidHourlyRate      = errors.New("hourly rate must be positive")
	ErrInvalidHours           = errors.New("hours must be positive")
	ErrInvalidTransition      = errors.New("requested status change violates the task lifecycle")
	ErrTaskNotSubmitted       = errors.New("task has not been submitted")
	ErrTaskAlreadyPaid        = errors.New("task is already paid")
	ErrPaymentOutstanding     = errors.New("payment required before the solution can be downloaded")
	ErrNoSolutionFile         = errors.New("task has no stored solution")
	ErrStorageFailure         = errors.New("failed to store solution artifact")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
)

// TaskService owns the task lifecycle: creation by the buyer, progress and
// submission by the assigned developer, payment by the buyer, and
// payment-gated access to the submitted solution.
//
// Every operation checks in a fixed order: resource existence, then
// ownership or assignment, then the status precondition, then the mutation.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	artifacts   storage.ArtifactStore
	aiService   *AIService
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	artifacts storage.ArtifactStore,
	aiService *AIService,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		artifacts:   artifacts,
		aiService:   aiService,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	HourlyRate  decimal.Decimal
	ProjectID   uint64
	AssigneeID  uint64
	BuyerID     uint64
}

// CreateTask creates a task in the buyer's project, assigned to a developer.
// The assignee is fixed at creation; there is no reassignment operation.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTaskTitleMissing
	}
	if !input.HourlyRate.IsPositive() {
		return nil, ErrInvalidHourlyRate
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project.OwnerID != input.BuyerID {
		return nil, ErrNotProjectOwner
	}

	assignee, err := s.userRepo.FindByID(input.AssigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}
	if assignee.Role != models.RoleDeveloper {
		return nil, ErrAssigneeNotDeveloper
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		HourlyRate:  input.HourlyRate,
		Status:      models.TaskStatusTodo,
		ProjectID:   input.ProjectID,
		AssigneeID:  input.AssigneeID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ListAssignedTasks returns the developer's assigned tasks.
func (s *TaskService) ListAssignedTasks(assigneeID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByAssignee(assigneeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	return tasks, nil
}

// ListAllTasks returns tasks across all projects, optionally filtered by
// status, for administrative review.
func (s *TaskService) ListAllTasks(status *models.TaskStatus, params utils.PaginationParams) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.ListAll(status, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateProgressInput represents a developer's progress update.
type UpdateProgressInput struct {
	Status    *models.TaskStatus
	TimeSpent *decimal.Decimal
}

// UpdateProgress lets the assigned developer move a task between todo and
// in_progress and record time spent. Submission and payment have their own
// operations; requesting either state here is an invalid transition, as is
// touching a task that already left the todo/in_progress states.
func (s *TaskService) UpdateProgress(taskID, callerID uint64, input UpdateProgressInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.AssigneeID != callerID {
		return nil, ErrNotTaskAssignee
	}

	if task.Status != models.TaskStatusTodo && task.Status != models.TaskStatusInProgress {
		return nil, ErrInvalidTransition
	}
	if input.Status != nil {
		switch *input.Status {
		case models.TaskStatusTodo, models.TaskStatusInProgress:
		default:
			return nil, ErrInvalidTransition
		}
	}
	if input.TimeSpent != nil && input.TimeSpent.IsNegative() {
		return nil, ErrInvalidHours
	}

	if err := s.taskRepo.UpdateProgress(taskID, input.Status, input.TimeSpent); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(taskID)
}

// SubmitTaskInput represents a developer's work submission.
type SubmitTaskInput struct {
	Hours    decimal.Decimal
	Filename string
	File     io.Reader
}

// SubmitTask hands in the developer's work: the artifact is durably stored
// first, then time spent, artifact location and the submitted status are
// committed together. A storage failure aborts the whole operation with no
// persisted state change. Resubmitting before payment overwrites the prior
// hours and artifact reference; a paid task can no longer be submitted.
func (s *TaskService) SubmitTask(ctx context.Context, taskID, callerID uint64, input SubmitTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.AssigneeID != callerID {
		return nil, ErrNotTaskAssignee
	}

	if task.Status == models.TaskStatusPaid {
		return nil, ErrTaskAlreadyPaid
	}
	if !input.Hours.IsPositive() {
		return nil, ErrInvalidHours
	}

	location, err := s.artifacts.Store(ctx, taskID, input.Filename, input.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if err := s.taskRepo.SaveSubmission(taskID, input.Hours, location); err != nil {
		if errors.Is(err, repository.ErrAlreadyPaid) {
			return nil, ErrTaskAlreadyPaid
		}
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	return s.taskRepo.FindByID(taskID)
}

// PayTask settles a submitted task on behalf of the owning buyer. The amount
// is hourly_rate x time_spent, fixed at the moment of the transition; the
// payment row it produces is immutable. Paying a task that is not exactly in
// the submitted state fails, including a second payment attempt.
func (s *TaskService) PayTask(taskID, callerID uint64) (*models.Payment, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	project, err := s.projectRepo.FindByID(task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task's project: %w", err)
	}
	if project.OwnerID != callerID {
		return nil, ErrNotProjectOwner
	}

	payment, err := s.taskRepo.MarkPaid(taskID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyPaid):
			return nil, ErrTaskAlreadyPaid
		case errors.Is(err, repository.ErrNotSubmitted):
			return nil, ErrTaskNotSubmitted
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	return payment, nil
}

// DownloadSolution opens the stored solution artifact for the owning buyer.
// Access is granted only once the task is paid; any earlier status is a
// payment-required condition, not a not-found or a plain denial. The
// developer's own read access before payment is likewise denied.
func (s *TaskService) DownloadSolution(taskID, callerID uint64) (io.ReadCloser, string, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrTaskNotFound
		}
		return nil, "", fmt.Errorf("failed to find task: %w", err)
	}

	project, err := s.projectRepo.FindByID(task.ProjectID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find task's project: %w", err)
	}
	if project.OwnerID != callerID {
		return nil, "", ErrNotProjectOwner
	}

	if task.Status != models.TaskStatusPaid {
		return nil, "", ErrPaymentOutstanding
	}
	if task.SolutionFilePath == nil {
		return nil, "", ErrNoSolutionFile
	}

	rc, err := s.artifacts.Open(*task.SolutionFilePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open solution artifact: %w", err)
	}

	return rc, filepath.Base(*task.SolutionFilePath), nil
}

// GenerateTasksInput represents input for AI task drafting.
type GenerateTasksInput struct {
	Brief   string
	BuyerID uint64
}

// GenerateTasks drafts task suggestions from a project brief using the AI
// service. Suggestions are returned to the buyer for review; nothing is
// persisted here.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.aiService.GenerateTasksFromBrief(ctx, input.Brief)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}

	valid := make([]GeneratedTask, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.Title) == "" {
			continue
		}
		valid = append(valid, d)
	}
	if len(valid) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	return valid, nil
}
