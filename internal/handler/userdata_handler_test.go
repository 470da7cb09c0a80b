package handler_test

import (
	"net/http"
	"testing"

	"todotrack/internal/handler"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserDataHandler_Import_RejectsBadDueDate(t *testing.T) {
	// Arrange
	router := authedRouter(uuid.New())
	h := handler.NewUserDataHandler(nil, nopLogger{})
	router.POST("/api/user-data/import", h.Import)

	body := map[string]any{
		"todos": []map[string]any{
			{"text": "x", "priority": 0, "due_date": "15-03-2026"},
		},
	}

	// Act
	resp := postJSON(router, "POST", "/api/user-data/import", body)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Due date must be YYYY-MM-DD")
}

func TestUserDataHandler_Import_RejectsEmptyPayload(t *testing.T) {
	// Arrange
	router := authedRouter(uuid.New())
	h := handler.NewUserDataHandler(nil, nopLogger{})
	router.POST("/api/user-data/import", h.Import)

	// Act
	resp := postJSON(router, "POST", "/api/user-data/import", map[string]any{})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Nothing to import")
}
