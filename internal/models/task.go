package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusSubmitted  TaskStatus = "submitted"
	TaskStatusPaid       TaskStatus = "paid"
)

type Task struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	HourlyRate  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"hourly_rate"`
	Status      TaskStatus      `gorm:"type:varchar(20);not null;default:'todo';index" json:"status"`

	// Submission details, set by the assignee when work is handed in.
	TimeSpent        *decimal.Decimal `gorm:"type:decimal(8,2)" json:"time_spent"`
	SolutionFilePath *string          `gorm:"type:varchar(512)" json:"-"`

	ProjectID  uint64    `gorm:"not null;index" json:"project_id"`
	AssigneeID uint64    `gorm:"not null;index" json:"assignee_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Project  Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Assignee User     `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	// No enforced constraint: payments outlive their task when a project is
	// deleted, the ledger is append-only history.
	Payment *Payment `gorm:"foreignKey:TaskID;constraint:-" json:"payment,omitempty"`
}
