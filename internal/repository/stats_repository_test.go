package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/devhire/project-marketplace-api/internal/models"
)

func setupMockStatsRepo(t *testing.T) (StatsRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewStatsRepository(db), mock
}

func TestCountProjects(t *testing.T) {
	repo, mock := setupMockStatsRepo(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `projects`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountProjects()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountTasksByStatus(t *testing.T) {
	repo, mock := setupMockStatsRepo(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks` WHERE status IN \\(\\?,\\?\\)").
		WithArgs("submitted", "paid").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountTasksByStatus(models.TaskStatusSubmitted, models.TaskStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumPayments(t *testing.T) {
	repo, mock := setupMockStatsRepo(t)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `payments`").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("150.50"))

	total, err := repo.SumPayments()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("150.50").Equal(total), "total: %s", total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumPayments_EmptyLedger(t *testing.T) {
	repo, mock := setupMockStatsRepo(t)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `payments`").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("0"))

	total, err := repo.SumPayments()
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumTimeSpent(t *testing.T) {
	repo, mock := setupMockStatsRepo(t)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(time_spent\\), 0\\) FROM `tasks`").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("42.5"))

	total, err := repo.SumTimeSpent()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("42.5").Equal(total))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountUsersByRole(t *testing.T) {
	repo, mock := setupMockStatsRepo(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users` WHERE role = \\?").
		WithArgs("developer").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.CountUsersByRole(models.RoleDeveloper)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
