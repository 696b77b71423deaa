package repository

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/devhire/project-marketplace-api/internal/models"
)

// GormStatsRepository is a GORM implementation of StatsRepository
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

func (r *GormStatsRepository) CountProjects() (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Count(&count).Error
	return count, err
}

func (r *GormStatsRepository) CountTasks() (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Count(&count).Error
	return count, err
}

func (r *GormStatsRepository) CountTasksByStatus(statuses ...models.TaskStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

func (r *GormStatsRepository) SumPayments() (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *GormStatsRepository) SumTimeSpent() (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&models.Task{}).
		Select("COALESCE(SUM(time_spent), 0)").
		Scan(&total).Error
	return total, err
}

// ListTasksByStatus returns full task rows so callers can recompute derived
// values such as the expected payout of submitted-but-unpaid work.
func (r *GormStatsRepository) ListTasksByStatus(status models.TaskStatus) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("status = ?", status).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormStatsRepository) CountUsersByRole(role models.UserRole) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}
