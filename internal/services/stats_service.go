package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/devhire/project-marketplace-api/internal/models"
	"github.com/devhire/project-marketplace-api/internal/repository"
)

// AdminStats is the aggregate report for administrators.
type AdminStats struct {
	TotalProjects         int64           `json:"total_projects"`
	TotalTasks            int64           `json:"total_tasks"`
	CompletedTasks        int64           `json:"completed_tasks"`
	TotalPaymentsReceived decimal.Decimal `json:"total_payments_received"`
	PendingPayments       int64           `json:"pending_payments"`
	PendingAmount         decimal.Decimal `json:"pending_amount"`
	TotalDeveloperHours   decimal.Decimal `json:"total_developer_hours"`
	RevenueGenerated      decimal.Decimal `json:"revenue_generated"`
	TotalBuyers           int64           `json:"total_buyers"`
	TotalDevelopers       int64           `json:"total_developers"`
}

// StatsService provides read-only rollups over users, projects, tasks and
// the payment ledger.
type StatsService struct {
	statsRepo repository.StatsRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(statsRepo repository.StatsRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo}
}

// GetAdminStats assembles the admin report. The expected payout of
// submitted-but-unpaid tasks is recomputed from hourly_rate x time_spent per
// task rather than read from any stored value: the ledger only ever reflects
// realized payments.
func (s *StatsService) GetAdminStats() (*AdminStats, error) {
	totalProjects, err := s.statsRepo.CountProjects()
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	totalTasks, err := s.statsRepo.CountTasks()
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	completedTasks, err := s.statsRepo.CountTasksByStatus(models.TaskStatusSubmitted, models.TaskStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	totalPayments, err := s.statsRepo.SumPayments()
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}

	pendingTasks, err := s.statsRepo.ListTasksByStatus(models.TaskStatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	pendingAmount := decimal.Zero
	for _, t := range pendingTasks {
		if t.TimeSpent == nil {
			continue
		}
		pendingAmount = pendingAmount.Add(t.HourlyRate.Mul(*t.TimeSpent))
	}

	totalHours, err := s.statsRepo.SumTimeSpent()
	if err != nil {
		return nil, fmt.Errorf("failed to sum developer hours: %w", err)
	}

	totalBuyers, err := s.statsRepo.CountUsersByRole(models.RoleBuyer)
	if err != nil {
		return nil, fmt.Errorf("failed to count buyers: %w", err)
	}

	totalDevelopers, err := s.statsRepo.CountUsersByRole(models.RoleDeveloper)
	if err != nil {
		return nil, fmt.Errorf("failed to count developers: %w", err)
	}

	return &AdminStats{
		TotalProjects:         totalProjects,
		TotalTasks:            totalTasks,
		CompletedTasks:        completedTasks,
		TotalPaymentsReceived: totalPayments,
		PendingPayments:       int64(len(pendingTasks)),
		PendingAmount:         pendingAmount,
		TotalDeveloperHours:   totalHours,
		RevenueGenerated:      totalPayments,
		TotalBuyers:           totalBuyers,
		TotalDevelopers:       totalDevelopers,
	}, nil
}
