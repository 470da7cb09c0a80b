package repository_test

import (
	"context"
	"testing"

	"todotrack/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func expectOwnershipChecks(mock sqlmock.Sqlmock, tagName string) {
	mock.ExpectQuery(`SELECT count\(\*\) FROM "todos"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT "id","name" FROM "tags"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(uuid.New().String(), tagName))
}

func TestTodoTagRepository_Assign(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTodoTagRepository(gormDB)

	todoID := uuid.New()
	tagID := uuid.New()

	expectOwnershipChecks(mock, "work")
	mock.ExpectExec(`INSERT INTO todo_tags`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Act
	result, err := repo.Assign(context.Background(), uuid.New(), todoID, tagID)

	// Assert
	assert.NoError(t, err)
	assert.True(t, result.Assigned)
	assert.Equal(t, "work", result.TagName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoTagRepository_Assign_AlreadyLinked(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTodoTagRepository(gormDB)

	expectOwnershipChecks(mock, "work")
	// ON CONFLICT DO NOTHING swallows the duplicate, zero rows affected
	mock.ExpectExec(`INSERT INTO todo_tags`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Act
	result, err := repo.Assign(context.Background(), uuid.New(), uuid.New(), uuid.New())

	// Assert
	assert.NoError(t, err)
	assert.False(t, result.Assigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoTagRepository_Assign_TodoNotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTodoTagRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "todos"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	// Act
	result, err := repo.Assign(context.Background(), uuid.New(), uuid.New(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrTodoNotFound)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoTagRepository_Assign_TagNotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTodoTagRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "todos"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT "id","name" FROM "tags"`).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	result, err := repo.Assign(context.Background(), uuid.New(), uuid.New(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrTagNotFound)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoTagRepository_Remove_AbsentPair(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTodoTagRepository(gormDB)

	expectOwnershipChecks(mock, "work")
	mock.ExpectExec(`DELETE FROM todo_tags`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Act
	result, err := repo.Remove(context.Background(), uuid.New(), uuid.New(), uuid.New())

	// Assert
	assert.NoError(t, err)
	assert.False(t, result.Removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoTagRepository_ReplaceAll_UnknownTagRollsBack(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTodoTagRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "todos"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM todo_tags WHERE todo_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tags"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	// Act
	err := repo.ReplaceAll(context.Background(), uuid.New(), uuid.New(), []uuid.UUID{uuid.New()})

	// Assert
	assert.ErrorIs(t, err, repository.ErrTagNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
