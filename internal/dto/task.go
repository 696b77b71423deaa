package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/devhire/project-marketplace-api/internal/models"
)

// TaskDTO represents a task in API responses. The solution file location is
// deliberately absent: artifact access goes through the payment-gated
// download endpoint only.
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	HourlyRate  decimal.Decimal   `json:"hourly_rate"`
	Status      models.TaskStatus `json:"status"`
	TimeSpent   *decimal.Decimal  `json:"time_spent"`
	ProjectID   uint64            `json:"project_id"`
	AssigneeID  uint64            `json:"assignee_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}

// PaymentDTO represents a payment ledger entry in API responses
type PaymentDTO struct {
	ID     uint64          `json:"id"`
	TaskID uint64          `json:"task_id"`
	Amount decimal.Decimal `json:"amount"`
	PaidAt time.Time       `json:"paid_at"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		HourlyRate:  task.HourlyRate,
		Status:      task.Status,
		TimeSpent:   task.TimeSpent,
		ProjectID:   task.ProjectID,
		AssigneeID:  task.AssigneeID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}

// ToPaymentDTO converts a Payment model to PaymentDTO
func ToPaymentDTO(payment models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:     payment.ID,
		TaskID: payment.TaskID,
		Amount: payment.Amount,
		PaidAt: payment.PaidAt,
	}
}
