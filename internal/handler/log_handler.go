package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"todotrack/internal/model"
	"todotrack/internal/repository"
)

type LogHandler struct {
	logRepo *repository.LogRepository
}

func NewLogHandler(logRepo *repository.LogRepository) *LogHandler {
	return &LogHandler{logRepo: logRepo}
}

type CreateLogRequest struct {
	Action  string           `json:"action" binding:"required"`
	Details model.LogDetails `json:"details"`
}

type LogResponse struct {
	ID        string           `json:"id"`
	Action    string           `json:"action"`
	Details   model.LogDetails `json:"details"`
	CreatedAt string           `json:"created_at"`
}

func toLogResponse(entry *model.Log) LogResponse {
	return LogResponse{
		ID:        entry.ID.String(),
		Action:    entry.Action,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// List returns the caller's activity log, newest first, with the total in meta
// @Summary      List activity log
// @Tags         Logs
// @Security     BearerAuth
// @Produce      json
// @Param        action query string false "Action filter"
// @Param        start_date query string false "Earliest entry (YYYY-MM-DD)"
// @Param        end_date query string false "Latest entry (YYYY-MM-DD)"
// @Param        limit query int false "Page size (default 50)"
// @Param        offset query int false "Page offset"
// @Success      200 {array} LogResponse
// @Router       /api/logs [get]
func (h *LogHandler) List(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var filters repository.LogFilters
	filters.Action = c.Query("action")
	if raw, exists := c.GetQuery("start_date"); exists {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD", "validation")
			return
		}
		filters.StartDate = &parsed
	}
	if raw, exists := c.GetQuery("end_date"); exists {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD", "validation")
			return
		}
		// inclusive end of day
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		filters.EndDate = &end
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, total, err := h.logRepo.List(c.Request.Context(), userID, filters)
	if err != nil {
		handleRepoError(c, h.logRepo, userID, "list_logs", err)
		return
	}

	responses := make([]LogResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, toLogResponse(&entries[i]))
	}

	respondMeta(c, http.StatusOK, responses, gin.H{
		"total":  total,
		"limit":  filters.Limit,
		"offset": filters.Offset,
	})
}

// Create appends a client-reported event. Only predefined actions are
// accepted so clients cannot invent their own vocabulary.
// @Summary      Append a log entry
// @Tags         Logs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateLogRequest true "Event to record"
// @Success      201 {object} LogResponse
// @Router       /api/logs [post]
func (h *LogHandler) Create(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "action is required", "validation")
		return
	}
	if !model.KnownAction(req.Action) {
		respondError(c, http.StatusBadRequest, "Unknown action", "validation")
		return
	}

	entry, err := h.logRepo.Create(c.Request.Context(), &userID, req.Action, req.Details)
	if err != nil {
		handleRepoError(c, h.logRepo, userID, "create_log", err)
		return
	}

	respondData(c, http.StatusCreated, toLogResponse(entry))
}

// Actions lists the permitted action constants
// @Summary      Known actions
// @Tags         Logs
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} string
// @Router       /api/logs/actions [get]
func (h *LogHandler) Actions(c *gin.Context) {
	if _, ok := authedUserID(c); !ok {
		return
	}
	respondData(c, http.StatusOK, model.KnownActions)
}

// Stats counts the caller's entries per action
// @Summary      Log stats
// @Tags         Logs
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} repository.ActionCount
// @Router       /api/logs/stats [get]
func (h *LogHandler) Stats(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	stats, err := h.logRepo.ActionStats(c.Request.Context(), userID)
	if err != nil {
		handleRepoError(c, h.logRepo, userID, "log_stats", err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// Cleanup prunes the caller's entries older than ?days (default 90)
// @Summary      Prune old log entries
// @Tags         Logs
// @Security     BearerAuth
// @Produce      json
// @Param        days query int false "Retention window in days (default 90)"
// @Success      200 {object} map[string]any
// @Router       /api/logs/bulk [delete]
func (h *LogHandler) Cleanup(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "90"))
	if err != nil || days < 1 {
		respondError(c, http.StatusBadRequest, "days must be a positive integer", "validation")
		return
	}

	deleted, err := h.logRepo.Cleanup(c.Request.Context(), userID, days)
	if err != nil {
		handleRepoError(c, h.logRepo, userID, "cleanup_logs", err)
		return
	}

	respondDataMessage(c, http.StatusOK, gin.H{
		"deleted": deleted,
		"days":    days,
	}, "Old log entries removed")
}
