package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"todotrack/internal/model"
	"todotrack/internal/repository"
)

type AnalyticsHandler struct {
	analyticsRepo *repository.AnalyticsRepository
	logs          ActivityLogger
}

func NewAnalyticsHandler(analyticsRepo *repository.AnalyticsRepository, logs ActivityLogger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsRepo: analyticsRepo, logs: logs}
}

// Dashboard returns headline metrics and the productivity score
// @Summary      Dashboard overview
// @Tags         Analytics
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} repository.DashboardOverview
// @Router       /api/analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	overview, err := h.analyticsRepo.Dashboard(c.Request.Context(), userID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "analytics_dashboard", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionViewDashboard, nil)

	respondData(c, http.StatusOK, overview)
}

// Daily returns per-day created/completed counts
// @Summary      Daily stats
// @Tags         Analytics
// @Security     BearerAuth
// @Produce      json
// @Param        days query int false "Trailing window in days (default 7)"
// @Success      200 {array} repository.DailyStat
// @Router       /api/analytics/daily [get]
func (h *AnalyticsHandler) Daily(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		days = 7
	}

	stats, err := h.analyticsRepo.Daily(c.Request.Context(), userID, days)
	if err != nil {
		handleRepoError(c, h.logs, userID, "analytics_daily", err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// Weekly returns per-week created/completed counts
// @Summary      Weekly stats
// @Tags         Analytics
// @Security     BearerAuth
// @Produce      json
// @Param        weeks query int false "Trailing window in weeks (default 4)"
// @Success      200 {array} repository.WeeklyStat
// @Router       /api/analytics/weekly [get]
func (h *AnalyticsHandler) Weekly(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	weeks, err := strconv.Atoi(c.DefaultQuery("weeks", "4"))
	if err != nil || weeks < 1 {
		weeks = 4
	}

	stats, err := h.analyticsRepo.Weekly(c.Request.Context(), userID, weeks)
	if err != nil {
		handleRepoError(c, h.logs, userID, "analytics_weekly", err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// Priority breaks todos down by priority level
// @Summary      Priority breakdown
// @Tags         Analytics
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} repository.PriorityStat
// @Router       /api/analytics/priority [get]
func (h *AnalyticsHandler) Priority(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	stats, err := h.analyticsRepo.PriorityBreakdown(c.Request.Context(), userID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "analytics_priority", err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// Tags ranks tags by usage with completion counts
// @Summary      Tag popularity
// @Tags         Analytics
// @Security     BearerAuth
// @Produce      json
// @Param        limit query int false "Max rows (default 10)"
// @Success      200 {array} repository.TagUsageStat
// @Router       /api/analytics/tags [get]
func (h *AnalyticsHandler) Tags(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	stats, err := h.analyticsRepo.TagPopularity(c.Request.Context(), userID, limit)
	if err != nil {
		handleRepoError(c, h.logs, userID, "analytics_tags", err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// Overdue reports overdue counts and the oldest due date
// @Summary      Overdue stats
// @Tags         Analytics
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} repository.OverdueStats
// @Router       /api/analytics/overdue [get]
func (h *AnalyticsHandler) Overdue(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	stats, err := h.analyticsRepo.Overdue(c.Request.Context(), userID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "analytics_overdue", err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// Usage summarises activity log volume over the trailing 30 days
// @Summary      Usage stats
// @Tags         Analytics
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} repository.UsageStats
// @Router       /api/analytics/usage [get]
func (h *AnalyticsHandler) Usage(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	stats, err := h.analyticsRepo.Usage(c.Request.Context(), userID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "analytics_usage", err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// Compare contrasts the current 30-day window with the prior one
// @Summary      Period comparison
// @Tags         Analytics
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} repository.PeriodComparison
// @Router       /api/analytics/compare [get]
func (h *AnalyticsHandler) Compare(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	comparison, err := h.analyticsRepo.Compare(c.Request.Context(), userID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "analytics_compare", err)
		return
	}

	respondData(c, http.StatusOK, comparison)
}

// Custom returns daily stats over a caller-supplied date range
// @Summary      Custom range stats
// @Tags         Analytics
// @Security     BearerAuth
// @Produce      json
// @Param        start_date query string true "Range start (YYYY-MM-DD)"
// @Param        end_date query string true "Range end (YYYY-MM-DD)"
// @Success      200 {array} repository.DailyStat
// @Router       /api/analytics/custom [get]
func (h *AnalyticsHandler) Custom(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	start, err := time.Parse(dateLayout, c.Query("start_date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD", "validation")
		return
	}
	end, err := time.Parse(dateLayout, c.Query("end_date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD", "validation")
		return
	}
	if end.Before(start) {
		respondError(c, http.StatusBadRequest, "end_date must not precede start_date", "validation")
		return
	}

	stats, err := h.analyticsRepo.CustomRange(c.Request.Context(), userID, start, end)
	if err != nil {
		handleRepoError(c, h.logs, userID, "analytics_custom", err)
		return
	}

	respondData(c, http.StatusOK, stats)
}
