package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todotrack/internal/middleware"
	"todotrack/internal/model"
	"todotrack/internal/repository"
)

// ActivityLogger is the best-effort audit trail every handler writes to.
// Satisfied by repository.LogRepository; an interface so handler tests
// can swap in a no-op.
type ActivityLogger interface {
	Record(ctx context.Context, userID uuid.UUID, action string, details model.LogDetails)
	RecordSystemError(ctx context.Context, userID *uuid.UUID, where string, cause error)
}

var _ ActivityLogger = (*repository.LogRepository)(nil)

// respondData writes the success envelope
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondDataMessage writes the success envelope with a human message
func respondDataMessage(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{"success": true, "data": data, "message": message})
}

// respondMeta writes the success envelope with pagination/extra metadata
func respondMeta(c *gin.Context, status int, data any, meta gin.H) {
	c.JSON(status, gin.H{"success": true, "data": data, "meta": meta})
}

// respondError writes the error envelope
func respondError(c *gin.Context, status int, message, code string) {
	c.JSON(status, gin.H{"success": false, "message": message, "error": code})
}

// authedUserID pulls the authenticated user id the middleware stored.
// Writes the response itself when the id is missing or malformed.
func authedUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Not authenticated", "unauthorized")
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		respondError(c, http.StatusInternalServerError, "Invalid user ID format", "internal")
		return uuid.Nil, false
	}
	return userID, true
}

// handleRepoError maps repository sentinels to status codes. Unknown
// errors become a redacted 500 and a best-effort system_error log entry.
func handleRepoError(c *gin.Context, logs ActivityLogger, userID uuid.UUID, where string, err error) {
	switch {
	case errors.Is(err, repository.ErrTodoNotFound),
		errors.Is(err, repository.ErrTagNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		respondError(c, http.StatusNotFound, err.Error(), "not_found")
	case errors.Is(err, repository.ErrDuplicateTagName),
		errors.Is(err, repository.ErrDuplicateUsername):
		respondError(c, http.StatusConflict, err.Error(), "conflict")
	case errors.Is(err, repository.ErrNoUpdateFields):
		respondError(c, http.StatusBadRequest, err.Error(), "validation")
	default:
		if logs != nil {
			var uid *uuid.UUID
			if userID != uuid.Nil {
				uid = &userID
			}
			logs.RecordSystemError(c.Request.Context(), uid, where, err)
		}
		respondError(c, http.StatusInternalServerError, "Internal server error", "internal")
	}
}
