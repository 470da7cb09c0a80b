package repository_test

import (
	"context"
	"testing"

	"todotrack/internal/model"
	"todotrack/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLogRepository_Create(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	logRepo := repository.NewLogRepository(gormDB)

	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectCommit()

	// Act
	entry, err := logRepo.Create(context.Background(), &userID, model.ActionTodoCreate, model.LogDetails{"todo_id": "x"})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, model.ActionTodoCreate, entry.Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogRepository_Record_SwallowsWriteFailure(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	logRepo := repository.NewLogRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "logs"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	// Act: must not panic or surface the error to the caller
	logRepo.Record(context.Background(), uuid.New(), model.ActionUserLogin, nil)

	// Assert
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogRepository_Cleanup(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	logRepo := repository.NewLogRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "logs"`).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectCommit()

	// Act
	deleted, err := logRepo.Cleanup(context.Background(), uuid.New(), 90)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
