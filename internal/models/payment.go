package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the immutable ledger entry for a paid task. The unique index on
// TaskID is what makes double payment impossible even under concurrent
// requests; the status check in the pay path is not sufficient on its own.
type Payment struct {
	ID     uint64          `gorm:"primarykey" json:"id"`
	TaskID uint64          `gorm:"uniqueIndex;not null" json:"task_id"`
	Amount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	PaidAt time.Time       `json:"paid_at"`

	// Relations. No enforced constraint on TaskID: ledger entries survive
	// task deletion.
	Task Task `gorm:"foreignKey:TaskID;constraint:-" json:"task,omitempty"`
}
