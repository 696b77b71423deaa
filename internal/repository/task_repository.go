package repository

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/devhire/project-marketplace-api/internal/database"
	"github.com/devhire/project-marketplace-api/internal/models"
	"github.com/devhire/project-marketplace-api/internal/utils"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListByAssignee lists tasks assigned to a developer
func (r *GormTaskRepository) ListByAssignee(assigneeID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("assignee_id = ?", assigneeID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByProject lists a project's tasks, oldest first
func (r *GormTaskRepository) ListByProject(projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListAll lists tasks across all projects with optional status filtering and
// pagination
func (r *GormTaskRepository) ListAll(status *models.TaskStatus, params utils.PaginationParams) ([]models.Task, int64, error) {
	query := r.db.Model(&models.Task{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// UpdateProgress applies a developer progress update via compare-and-set
// against the todo and in_progress states.
func (r *GormTaskRepository) UpdateProgress(taskID uint64, status *models.TaskStatus, timeSpent *decimal.Decimal) error {
	updates := map[string]interface{}{}
	if status != nil {
		updates["status"] = *status
	}
	if timeSpent != nil {
		updates["time_spent"] = *timeSpent
	}
	if len(updates) == 0 {
		return nil
	}

	res := r.db.Model(&models.Task{}).
		Where("id = ? AND status IN ?", taskID, []models.TaskStatus{
			models.TaskStatusTodo,
			models.TaskStatusInProgress,
		}).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

// SaveSubmission records a submission via compare-and-set against any
// not-yet-paid state. A resubmission overwrites the previous hours and
// artifact reference.
func (r *GormTaskRepository) SaveSubmission(taskID uint64, timeSpent decimal.Decimal, solutionFilePath string) error {
	res := r.db.Model(&models.Task{}).
		Where("id = ? AND status <> ?", taskID, models.TaskStatusPaid).
		Updates(map[string]interface{}{
			"time_spent":         timeSpent,
			"solution_file_path": solutionFilePath,
			"status":             models.TaskStatusSubmitted,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyPaid
	}
	return nil
}

// MarkPaid transitions a submitted task to paid and writes the ledger entry
// within one transaction. The amount is hourly_rate x time_spent evaluated
// from the row as read inside the transaction; it never changes afterwards.
// The unique index on payments.task_id is the authoritative double-payment
// guard, backed by the compare-and-set status update.
func (r *GormTaskRepository) MarkPaid(taskID uint64, paidAt time.Time) (*models.Payment, error) {
	var payment *models.Payment

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			return err
		}

		switch task.Status {
		case models.TaskStatusSubmitted:
			// payable
		case models.TaskStatusPaid:
			return ErrAlreadyPaid
		default:
			return ErrNotSubmitted
		}

		// The state machine guarantees time_spent is set once submitted.
		if task.TimeSpent == nil {
			return ErrNotSubmitted
		}

		p := &models.Payment{
			TaskID: task.ID,
			Amount: task.HourlyRate.Mul(*task.TimeSpent),
			PaidAt: paidAt,
		}
		if err := tx.Create(p).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyPaid
			}
			return err
		}

		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", task.ID, models.TaskStatusSubmitted).
			Update("status", models.TaskStatusPaid)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyPaid
		}

		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}
