package repository_test

import (
	"context"
	"testing"

	"todotrack/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProductivityScore(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		completed int64
		overdue   int64
		want      int
	}{
		{"NoTodos", 0, 0, 0, 0},
		{"HalfDoneNoOverdue", 10, 5, 0, 35},
		{"AllDone", 10, 10, 0, 70},
		{"AllOverdueNothingDone", 10, 0, 10, 0},
		{"AllDoneAllOverdue", 10, 10, 10, 40},
		{"QuarterDoneHalfOverdue", 8, 2, 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.ProductivityScore(tt.total, tt.completed, tt.overdue)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyticsRepository_Dashboard(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	analyticsRepo := repository.NewAnalyticsRepository(gormDB)

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\) AS total_todos`).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_todos", "completed_todos", "pending_todos",
			"high_priority", "medium_priority", "low_priority", "overdue",
		}).AddRow(10, 5, 5, 2, 3, 5, 0))

	// Act
	overview, err := analyticsRepo.Dashboard(context.Background(), uuid.New())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(10), overview.TotalTodos)
	assert.Equal(t, 50, overview.CompletionRate)
	assert.Equal(t, 35, overview.ProductivityScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_Dashboard_Empty(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	analyticsRepo := repository.NewAnalyticsRepository(gormDB)

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\) AS total_todos`).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_todos", "completed_todos", "pending_todos",
			"high_priority", "medium_priority", "low_priority", "overdue",
		}).AddRow(0, 0, 0, 0, 0, 0, 0))

	// Act
	overview, err := analyticsRepo.Dashboard(context.Background(), uuid.New())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 0, overview.CompletionRate)
	assert.Equal(t, 0, overview.ProductivityScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}
