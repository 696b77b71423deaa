package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devhire/project-marketplace-api/internal/models"
	"github.com/devhire/project-marketplace-api/internal/utils"
)

func setupTaskRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Payment{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.Close()
	})

	return db
}

func seedTask(t *testing.T, db *gorm.DB, status models.TaskStatus, rate string, hours *string) *models.Task {
	t.Helper()

	buyer := models.User{Email: "buyer-" + string(status) + "@example.com", PasswordHash: "x", Role: models.RoleBuyer}
	require.NoError(t, db.Create(&buyer).Error)
	dev := models.User{Email: "dev-" + string(status) + "@example.com", PasswordHash: "x", Role: models.RoleDeveloper}
	require.NoError(t, db.Create(&dev).Error)
	project := models.Project{Title: "P", OwnerID: buyer.ID}
	require.NoError(t, db.Create(&project).Error)

	task := models.Task{
		Title:      "T",
		HourlyRate: decimal.RequireFromString(rate),
		Status:     status,
		ProjectID:  project.ID,
		AssigneeID: dev.ID,
	}
	if hours != nil {
		h := decimal.RequireFromString(*hours)
		task.TimeSpent = &h
	}
	require.NoError(t, db.Create(&task).Error)
	return &task
}

func strPtr(s string) *string { return &s }

func paginationParams(page, limit int) utils.PaginationParams {
	return utils.PaginationParams{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

func TestUpdateProgress_StateConflict(t *testing.T) {
	db := setupTaskRepoDB(t)
	repo := NewTaskRepository(db)

	task := seedTask(t, db, models.TaskStatusSubmitted, "20", strPtr("5"))

	status := models.TaskStatusInProgress
	err := repo.UpdateProgress(task.ID, &status, nil)
	assert.ErrorIs(t, err, ErrStateConflict)

	var stored models.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, models.TaskStatusSubmitted, stored.Status)
}

func TestUpdateProgress_FromTodo(t *testing.T) {
	db := setupTaskRepoDB(t)
	repo := NewTaskRepository(db)

	task := seedTask(t, db, models.TaskStatusTodo, "20", nil)

	status := models.TaskStatusInProgress
	hours := decimal.RequireFromString("2.5")
	require.NoError(t, repo.UpdateProgress(task.ID, &status, &hours))

	var stored models.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, models.TaskStatusInProgress, stored.Status)
	require.NotNil(t, stored.TimeSpent)
	assert.True(t, hours.Equal(*stored.TimeSpent))
}

func TestSaveSubmission_PaidTaskRejected(t *testing.T) {
	db := setupTaskRepoDB(t)
	repo := NewTaskRepository(db)

	task := seedTask(t, db, models.TaskStatusPaid, "20", strPtr("5"))

	err := repo.SaveSubmission(task.ID, decimal.RequireFromString("8"), "/tmp/late.zip")
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	var stored models.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.True(t, decimal.RequireFromString("5").Equal(*stored.TimeSpent))
}

func TestMarkPaid_ComputesAmount(t *testing.T) {
	db := setupTaskRepoDB(t)
	repo := NewTaskRepository(db)

	task := seedTask(t, db, models.TaskStatusSubmitted, "20", strPtr("5"))

	payment, err := repo.MarkPaid(task.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100").Equal(payment.Amount),
		"amount: %s", payment.Amount)

	var stored models.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, models.TaskStatusPaid, stored.Status)
}

func TestMarkPaid_FractionalAmount(t *testing.T) {
	db := setupTaskRepoDB(t)
	repo := NewTaskRepository(db)

	// 33.33 x 2.5 must come out exactly 83.325, no float drift
	task := seedTask(t, db, models.TaskStatusSubmitted, "33.33", strPtr("2.5"))

	payment, err := repo.MarkPaid(task.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("83.325").Equal(payment.Amount),
		"amount: %s", payment.Amount)
}

func TestMarkPaid_SecondAttempt(t *testing.T) {
	db := setupTaskRepoDB(t)
	repo := NewTaskRepository(db)

	task := seedTask(t, db, models.TaskStatusSubmitted, "20", strPtr("5"))

	_, err := repo.MarkPaid(task.ID, time.Now())
	require.NoError(t, err)

	_, err = repo.MarkPaid(task.ID, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	var count int64
	db.Model(&models.Payment{}).Where("task_id = ?", task.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMarkPaid_NotSubmitted(t *testing.T) {
	db := setupTaskRepoDB(t)
	repo := NewTaskRepository(db)

	for _, status := range []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusInProgress} {
		task := seedTask(t, db, status, "20", nil)

		_, err := repo.MarkPaid(task.ID, time.Now())
		assert.ErrorIs(t, err, ErrNotSubmitted)
	}
}

// TestMarkPaid_LedgerRowWins covers the race where a concurrent payment
// already inserted the ledger row: the unique index turns the insert into
// an already-paid result even though the status read said submitted.
func TestMarkPaid_LedgerRowWins(t *testing.T) {
	db := setupTaskRepoDB(t)
	repo := NewTaskRepository(db)

	task := seedTask(t, db, models.TaskStatusSubmitted, "20", strPtr("5"))
	require.NoError(t, db.Create(&models.Payment{
		TaskID: task.ID,
		Amount: decimal.RequireFromString("100"),
		PaidAt: time.Now(),
	}).Error)

	_, err := repo.MarkPaid(task.ID, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	var count int64
	db.Model(&models.Payment{}).Where("task_id = ?", task.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestListAll_StatusFilterAndCount(t *testing.T) {
	db := setupTaskRepoDB(t)
	repo := NewTaskRepository(db)

	buyer := models.User{Email: "buyer@example.com", PasswordHash: "x", Role: models.RoleBuyer}
	require.NoError(t, db.Create(&buyer).Error)
	dev := models.User{Email: "dev@example.com", PasswordHash: "x", Role: models.RoleDeveloper}
	require.NoError(t, db.Create(&dev).Error)
	project := models.Project{Title: "P", OwnerID: buyer.ID}
	require.NoError(t, db.Create(&project).Error)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Task{
			Title: "Todo", HourlyRate: decimal.RequireFromString("20"),
			Status: models.TaskStatusTodo, ProjectID: project.ID, AssigneeID: dev.ID,
		}).Error)
	}
	require.NoError(t, db.Create(&models.Task{
		Title: "Paid", HourlyRate: decimal.RequireFromString("20"),
		Status: models.TaskStatusPaid, ProjectID: project.ID, AssigneeID: dev.ID,
	}).Error)

	status := models.TaskStatusTodo
	tasks, total, err := repo.ListAll(&status, paginationParams(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, tasks, 2)

	tasks, total, err = repo.ListAll(nil, paginationParams(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, tasks, 4)
}
