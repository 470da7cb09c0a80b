package repository_test

import (
	"context"
	"testing"
	"time"

	"todotrack/internal/model"
	"todotrack/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func todoRows(id, userID uuid.UUID, text string, completed bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "text", "priority", "due_date", "is_completed", "created_at", "updated_at"}).
		AddRow(id.String(), userID.String(), text, model.PriorityLow, nil, completed, time.Now(), time.Now())
}

func TestTodoRepository_Create_NoTags(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	todoRepo := repository.NewTodoRepository(gormDB)

	todo := &model.Todo{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Text:   "buy milk",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "todos"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(todo.ID.String()))
	mock.ExpectCommit()

	// Act
	err := todoRepo.Create(context.Background(), todo, nil)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_Create_UnknownTagRollsBack(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	todoRepo := repository.NewTodoRepository(gormDB)

	todo := &model.Todo{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Text:   "buy milk",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "todos"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(todo.ID.String()))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tags"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	// Act
	err := todoRepo.Create(context.Background(), todo, []uuid.UUID{uuid.New()})

	// Assert
	assert.ErrorIs(t, err, repository.ErrTagNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_GetByID_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	todoRepo := repository.NewTodoRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "todos" WHERE id = .*`).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	todo, err := todoRepo.GetByID(context.Background(), uuid.New(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrTodoNotFound)
	assert.Nil(t, todo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_Update_FiltersUnknownFields(t *testing.T) {
	// Arrange
	gormDB, _ := setupMockDB(t)
	todoRepo := repository.NewTodoRepository(gormDB)

	// Every field in the map is off the whitelist, so no SQL runs at all
	_, err := todoRepo.Update(context.Background(), uuid.New(), uuid.New(), map[string]any{
		"user_id": uuid.New(),
		"id":      uuid.New(),
	})

	// Assert
	assert.ErrorIs(t, err, repository.ErrNoUpdateFields)
}

func TestTodoRepository_Update_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	todoRepo := repository.NewTodoRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "todos" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	todo, err := todoRepo.Update(context.Background(), uuid.New(), uuid.New(), map[string]any{"text": "new text"})

	// Assert
	assert.ErrorIs(t, err, repository.ErrTodoNotFound)
	assert.Nil(t, todo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_ToggleComplete(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	todoRepo := repository.NewTodoRepository(gormDB)

	userID := uuid.New()
	todoID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "todos" SET "is_completed"=NOT is_completed`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT .* FROM "todos" WHERE id = .*`).
		WillReturnRows(todoRows(todoID, userID, "buy milk", true))
	mock.ExpectQuery(`SELECT .* FROM "todo_tags"`).
		WillReturnRows(sqlmock.NewRows([]string{"todo_id", "tag_id"}))

	// Act
	todo, err := todoRepo.ToggleComplete(context.Background(), userID, todoID)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, todo)
	assert.True(t, todo.IsCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_Delete_RemovesAssociationsFirst(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	todoRepo := repository.NewTodoRepository(gormDB)

	userID := uuid.New()
	todoID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "todos" WHERE id = .*`).
		WillReturnRows(todoRows(todoID, userID, "buy milk", false))
	mock.ExpectQuery(`SELECT .* FROM "todo_tags"`).
		WillReturnRows(sqlmock.NewRows([]string{"todo_id", "tag_id"}))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM todo_tags WHERE todo_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "todos"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	todo, err := todoRepo.Delete(context.Background(), userID, todoID)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, todo)
	assert.Equal(t, "buy milk", todo.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}
