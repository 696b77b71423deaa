package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/devhire/project-marketplace-api/internal/models"
	"github.com/devhire/project-marketplace-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// ListByRole lists all users holding the given role
	ListByRole(role models.UserRole) ([]models.User, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// ListByOwner lists a buyer's projects, oldest first
	ListByOwner(ownerID uint64) ([]models.Project, error)

	// Delete removes a project and all of its tasks in one transaction.
	// Payment rows are never deleted.
	Delete(id uint64) error
}

// TaskRepository defines the interface for task and payment data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListByAssignee lists tasks assigned to a developer
	ListByAssignee(assigneeID uint64) ([]models.Task, error)

	// ListByProject lists a project's tasks, oldest first
	ListByProject(projectID uint64) ([]models.Task, error)

	// ListAll lists tasks across all projects with optional status filtering
	// and pagination
	ListAll(status *models.TaskStatus, params utils.PaginationParams) ([]models.Task, int64, error)

	// UpdateProgress applies a developer progress update (status and/or
	// time spent). The write is compare-and-set against the todo and
	// in_progress states; ErrStateConflict is returned when the task moved
	// out of those states concurrently.
	UpdateProgress(taskID uint64, status *models.TaskStatus, timeSpent *decimal.Decimal) error

	// SaveSubmission records a submission: time spent, the stored artifact
	// location and the submitted status. Compare-and-set against any
	// not-yet-paid state; ErrAlreadyPaid is returned when the task was paid
	// concurrently.
	SaveSubmission(taskID uint64, timeSpent decimal.Decimal, solutionFilePath string) error

	// MarkPaid transitions a submitted task to paid and writes the payment
	// ledger entry, all within one transaction. The amount is computed from
	// the task row as read inside the transaction. ErrNotSubmitted and
	// ErrAlreadyPaid report precondition failures; a lost insert race on the
	// payments.task_id unique index also surfaces as ErrAlreadyPaid.
	MarkPaid(taskID uint64, paidAt time.Time) (*models.Payment, error)
}

// StatsRepository defines read-only aggregate queries for admin reporting
type StatsRepository interface {
	CountProjects() (int64, error)
	CountTasks() (int64, error)
	CountTasksByStatus(statuses ...models.TaskStatus) (int64, error)
	SumPayments() (decimal.Decimal, error)
	SumTimeSpent() (decimal.Decimal, error)
	ListTasksByStatus(status models.TaskStatus) ([]models.Task, error)
	CountUsersByRole(role models.UserRole) (int64, error)
}
