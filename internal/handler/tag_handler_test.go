package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"todotrack/internal/handler"
	"todotrack/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTagHandler_GetByName_Found(t *testing.T) {
	// Arrange
	userID := uuid.New()
	tagID := uuid.New()
	gormDB, mock := newMockDB(t)
	router := authedRouter(userID)
	h := handler.NewTagHandler(repository.NewTagRepository(gormDB), nopLogger{})
	router.GET("/api/tags/name/:name", h.GetByName)

	mock.ExpectQuery(`SELECT t.id, t.user_id, t.name, t.created_at, COUNT`).
		WithArgs("work", userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "usage_count"}).
			AddRow(tagID.String(), userID.String(), "work", time.Now(), 2))

	// Act
	resp := doRequest(router, "GET", "/api/tags/name/work")

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var env envelope
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))

	var tag repository.TagWithUsage
	assert.NoError(t, json.Unmarshal(env.Data, &tag))
	assert.Equal(t, "work", tag.Name)
	assert.Equal(t, tagID, tag.ID)
	assert.Equal(t, int64(2), tag.UsageCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagHandler_GetByName_NotFound(t *testing.T) {
	// Arrange
	userID := uuid.New()
	gormDB, mock := newMockDB(t)
	router := authedRouter(userID)
	h := handler.NewTagHandler(repository.NewTagRepository(gormDB), nopLogger{})
	router.GET("/api/tags/name/:name", h.GetByName)

	mock.ExpectQuery(`SELECT t.id, t.user_id, t.name, t.created_at, COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "usage_count"}))

	// Act
	resp := doRequest(router, "GET", "/api/tags/name/missing")

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "Tag not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
