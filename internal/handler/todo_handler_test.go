package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todotrack/internal/handler"
	"todotrack/internal/middleware"
	"todotrack/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)

	return gormDB, mock
}

// authedRouter injects the user id the way the auth middleware would
func authedRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	})
	return r
}

func doRequest(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, target, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestTodoHandler_List_RejectsBadPriority(t *testing.T) {
	// Arrange
	router := authedRouter(uuid.New())
	h := handler.NewTodoHandler(nil, nopLogger{})
	router.GET("/api/todos", h.List)

	// Act
	resp := doRequest(router, "GET", "/api/todos?priority=5")

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTodoHandler_List_AppliesFilters(t *testing.T) {
	// Arrange
	userID := uuid.New()
	gormDB, mock := newMockDB(t)
	router := authedRouter(userID)
	h := handler.NewTodoHandler(repository.NewTodoRepository(gormDB), nopLogger{})
	router.GET("/api/todos", h.List)

	mock.ExpectQuery(`SELECT .* FROM "todos" WHERE user_id = .* AND is_completed = .* AND priority = .* AND text ILIKE .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "text", "priority", "due_date", "is_completed", "created_at", "updated_at"}))

	// Act
	resp := doRequest(router, "GET", "/api/todos?is_completed=true&priority=2&search=milk")

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"data":[]`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoHandler_GetByID_EmptyTagsSerializeAsArray(t *testing.T) {
	// Arrange
	userID := uuid.New()
	todoID := uuid.New()
	gormDB, mock := newMockDB(t)
	router := authedRouter(userID)
	h := handler.NewTodoHandler(repository.NewTodoRepository(gormDB), nopLogger{})
	router.GET("/api/todos/:id", h.GetByID)

	mock.ExpectQuery(`SELECT .* FROM "todos" WHERE id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "text", "priority", "due_date", "is_completed", "created_at", "updated_at"}).
			AddRow(todoID.String(), userID.String(), "untagged", 0, nil, false, time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT .* FROM "todo_tags"`).
		WillReturnRows(sqlmock.NewRows([]string{"todo_id", "tag_id"}))

	// Act
	resp := doRequest(router, "GET", "/api/todos/"+todoID.String())

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"tags":[]`)
	assert.Contains(t, resp.Body.String(), `"due_date":null`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoHandler_GetByID_SerializesDueDateAndTags(t *testing.T) {
	// Arrange
	userID := uuid.New()
	todoID := uuid.New()
	tagID := uuid.New()
	gormDB, mock := newMockDB(t)
	router := authedRouter(userID)
	h := handler.NewTodoHandler(repository.NewTodoRepository(gormDB), nopLogger{})
	router.GET("/api/todos/:id", h.GetByID)

	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM "todos" WHERE id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "text", "priority", "due_date", "is_completed", "created_at", "updated_at"}).
			AddRow(todoID.String(), userID.String(), "dated", 1, due, false, time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT .* FROM "todo_tags"`).
		WillReturnRows(sqlmock.NewRows([]string{"todo_id", "tag_id"}).
			AddRow(todoID.String(), tagID.String()))
	mock.ExpectQuery(`SELECT .* FROM "tags"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "created_at"}).
			AddRow(tagID.String(), userID.String(), "work", time.Now()))

	// Act
	resp := doRequest(router, "GET", "/api/todos/"+todoID.String())

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var env envelope
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))

	var todo handler.TodoResponse
	assert.NoError(t, json.Unmarshal(env.Data, &todo))
	assert.NotNil(t, todo.DueDate)
	assert.Equal(t, "2026-03-15", *todo.DueDate)
	assert.Len(t, todo.Tags, 1)
	assert.Equal(t, "work", todo.Tags[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoHandler_GetByID_RejectsBadUUID(t *testing.T) {
	// Arrange
	router := authedRouter(uuid.New())
	h := handler.NewTodoHandler(nil, nopLogger{})
	router.GET("/api/todos/:id", h.GetByID)

	// Act
	resp := doRequest(router, "GET", "/api/todos/not-a-uuid")

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTodoHandler_Create_RejectsBadPriority(t *testing.T) {
	// Arrange
	router := authedRouter(uuid.New())
	h := handler.NewTodoHandler(nil, nopLogger{})
	router.POST("/api/todos", h.Create)

	// Act
	resp := postJSON(router, "POST", "/api/todos", map[string]any{"text": "x", "priority": 7})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTodoHandler_Create_RejectsBadDueDate(t *testing.T) {
	// Arrange
	router := authedRouter(uuid.New())
	h := handler.NewTodoHandler(nil, nopLogger{})
	router.POST("/api/todos", h.Create)

	// Act
	resp := postJSON(router, "POST", "/api/todos", map[string]any{"text": "x", "due_date": "15-03-2026"})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
