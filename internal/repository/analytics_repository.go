package repository

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DashboardOverview is the per-user headline block on the dashboard
type DashboardOverview struct {
	TotalTodos        int64 `json:"total_todos"`
	CompletedTodos    int64 `json:"completed_todos"`
	PendingTodos      int64 `json:"pending_todos"`
	HighPriority      int64 `json:"high_priority"`
	MediumPriority    int64 `json:"medium_priority"`
	LowPriority       int64 `json:"low_priority"`
	Overdue           int64 `json:"overdue"`
	CompletionRate    int   `json:"completion_rate"`
	ProductivityScore int   `json:"productivity_score"`
}

// DailyStat is one day of created/completed counts
type DailyStat struct {
	Date           time.Time `json:"date"`
	CreatedCount   int64     `json:"created_count"`
	CompletedCount int64     `json:"completed_count"`
}

// WeeklyStat is one week of created/completed counts
type WeeklyStat struct {
	WeekStart      time.Time `json:"week_start"`
	CreatedCount   int64     `json:"created_count"`
	CompletedCount int64     `json:"completed_count"`
}

// PriorityStat is the per-priority breakdown with completion timing
type PriorityStat struct {
	Priority           int     `json:"priority"`
	Count              int64   `json:"count"`
	Completed          int64   `json:"completed"`
	AvgCompletionHours float64 `json:"avg_completion_hours"`
}

// TagUsageStat is tag popularity annotated with completed todo counts
type TagUsageStat struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	UsageCount     int64     `json:"usage_count"`
	CompletedTodos int64     `json:"completed_todos"`
}

// OverdueStats describes the user's overdue backlog
type OverdueStats struct {
	OverdueCount   int64      `json:"overdue_count"`
	OldestDueDate  *time.Time `json:"oldest_due_date"`
	HighPriority   int64      `json:"high_priority"`
	MediumPriority int64      `json:"medium_priority"`
	LowPriority    int64      `json:"low_priority"`
}

// DailyAction is one day of one action's log volume
type DailyAction struct {
	Action string    `json:"action"`
	Count  int64     `json:"count"`
	Date   time.Time `json:"date"`
}

// UsageStats is the activity-log based system usage report
type UsageStats struct {
	Summary map[string]int64 `json:"summary"`
	Daily   []DailyAction    `json:"daily"`
}

// PeriodMetrics are the measures compared between two 30-day windows
type PeriodMetrics struct {
	TotalTodos         int64   `json:"total_todos"`
	CompletedTodos     int64   `json:"completed_todos"`
	AvgCompletionHours float64 `json:"avg_completion_hours"`
}

// PeriodComparison holds both windows plus percent change per metric
type PeriodComparison struct {
	CurrentPeriod  PeriodMetrics  `json:"current_period"`
	PreviousPeriod PeriodMetrics  `json:"previous_period"`
	Changes        map[string]int `json:"changes"`
}

// ProductivityScore derives the 0-100 dashboard metric: up to 70 points
// from the completion rate minus up to 30 points for overdue todos,
// floored at zero. No todos scores zero.
func ProductivityScore(total, completed, overdue int64) int {
	if total == 0 {
		return 0
	}
	completionRate := float64(completed) / float64(total) * 100
	overdueRate := float64(overdue) / float64(total) * 100

	completionScore := math.Min(completionRate*0.7, 70)
	overdueDeduction := math.Min(overdueRate*0.3, 30)

	score := int(math.Round(completionScore - overdueDeduction))
	if score < 0 {
		return 0
	}
	return score
}

// AnalyticsRepository runs read-only aggregation queries over todos, tags
// and logs. Every call recomputes from scratch; nothing is cached.
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Dashboard gathers the headline counts and derives rate and score
func (r *AnalyticsRepository) Dashboard(ctx context.Context, userID uuid.UUID) (*DashboardOverview, error) {
	var overview DashboardOverview
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total_todos,
			COUNT(CASE WHEN is_completed = true THEN 1 END) AS completed_todos,
			COUNT(CASE WHEN is_completed = false THEN 1 END) AS pending_todos,
			COUNT(CASE WHEN priority = 2 THEN 1 END) AS high_priority,
			COUNT(CASE WHEN priority = 1 THEN 1 END) AS medium_priority,
			COUNT(CASE WHEN priority = 0 THEN 1 END) AS low_priority,
			COUNT(CASE WHEN due_date < NOW() AND is_completed = false THEN 1 END) AS overdue
		FROM todos
		WHERE user_id = ?`,
		userID,
	).Scan(&overview).Error
	if err != nil {
		return nil, err
	}

	if overview.TotalTodos > 0 {
		overview.CompletionRate = int(math.Round(float64(overview.CompletedTodos) / float64(overview.TotalTodos) * 100))
	}
	overview.ProductivityScore = ProductivityScore(overview.TotalTodos, overview.CompletedTodos, overview.Overdue)
	return &overview, nil
}

// Daily rolls up created and completed counts per day over the trailing window
func (r *AnalyticsRepository) Daily(ctx context.Context, userID uuid.UUID, days int) ([]DailyStat, error) {
	var stats []DailyStat
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			DATE(created_at) AS date,
			COUNT(*) AS created_count,
			COUNT(CASE WHEN is_completed = true THEN 1 END) AS completed_count
		FROM todos
		WHERE user_id = ? AND created_at >= NOW() - ? * INTERVAL '1 day'
		GROUP BY DATE(created_at)
		ORDER BY date DESC`,
		userID, days,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Weekly rolls up per calendar week over the trailing window
func (r *AnalyticsRepository) Weekly(ctx context.Context, userID uuid.UUID, weeks int) ([]WeeklyStat, error) {
	var stats []WeeklyStat
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			DATE_TRUNC('week', created_at) AS week_start,
			COUNT(*) AS created_count,
			COUNT(CASE WHEN is_completed = true THEN 1 END) AS completed_count
		FROM todos
		WHERE user_id = ? AND created_at >= NOW() - ? * INTERVAL '1 week'
		GROUP BY DATE_TRUNC('week', created_at)
		ORDER BY week_start DESC`,
		userID, weeks,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// PriorityBreakdown groups todos by priority with average completion time
func (r *AnalyticsRepository) PriorityBreakdown(ctx context.Context, userID uuid.UUID) ([]PriorityStat, error) {
	var stats []PriorityStat
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			priority,
			COUNT(*) AS count,
			COUNT(CASE WHEN is_completed = true THEN 1 END) AS completed,
			COALESCE(ROUND(AVG(CASE WHEN is_completed = true THEN
				EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600
			END)::numeric, 2), 0) AS avg_completion_hours
		FROM todos
		WHERE user_id = ?
		GROUP BY priority
		ORDER BY priority DESC`,
		userID,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// TagPopularity ranks the user's tags by usage with completion counts
func (r *AnalyticsRepository) TagPopularity(ctx context.Context, userID uuid.UUID, limit int) ([]TagUsageStat, error) {
	var stats []TagUsageStat
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			t.id,
			t.name,
			COUNT(tt.todo_id) AS usage_count,
			COUNT(CASE WHEN td.is_completed = true THEN 1 END) AS completed_todos
		FROM tags t
		LEFT JOIN todo_tags tt ON t.id = tt.tag_id
		LEFT JOIN todos td ON tt.todo_id = td.id
		WHERE t.user_id = ?
		GROUP BY t.id, t.name
		HAVING COUNT(tt.todo_id) > 0
		ORDER BY usage_count DESC
		LIMIT ?`,
		userID, limit,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Overdue summarises the overdue backlog by priority
func (r *AnalyticsRepository) Overdue(ctx context.Context, userID uuid.UUID) (*OverdueStats, error) {
	var stats OverdueStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS overdue_count,
			MIN(due_date) AS oldest_due_date,
			COUNT(CASE WHEN priority = 2 THEN 1 END) AS high_priority,
			COUNT(CASE WHEN priority = 1 THEN 1 END) AS medium_priority,
			COUNT(CASE WHEN priority = 0 THEN 1 END) AS low_priority
		FROM todos
		WHERE user_id = ? AND due_date < CURRENT_DATE AND is_completed = false`,
		userID,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Usage reports activity-log volume per action over the trailing 30 days
func (r *AnalyticsRepository) Usage(ctx context.Context, userID uuid.UUID) (*UsageStats, error) {
	var daily []DailyAction
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			action,
			COUNT(*) AS count,
			DATE(created_at) AS date
		FROM logs
		WHERE user_id = ? AND created_at >= NOW() - INTERVAL '30 days'
		GROUP BY action, DATE(created_at)
		ORDER BY date DESC, count DESC`,
		userID,
	).Scan(&daily).Error
	if err != nil {
		return nil, err
	}

	summary := map[string]int64{}
	for _, row := range daily {
		summary[row.Action] += row.Count
	}
	return &UsageStats{Summary: summary, Daily: daily}, nil
}

// Compare contrasts the current 30-day window with the 30 days before it
func (r *AnalyticsRepository) Compare(ctx context.Context, userID uuid.UUID) (*PeriodComparison, error) {
	current, err := r.periodMetrics(ctx, userID, 30, 0)
	if err != nil {
		return nil, err
	}
	previous, err := r.periodMetrics(ctx, userID, 60, 30)
	if err != nil {
		return nil, err
	}

	return &PeriodComparison{
		CurrentPeriod:  *current,
		PreviousPeriod: *previous,
		Changes: map[string]int{
			"total_todos":          percentChange(float64(current.TotalTodos), float64(previous.TotalTodos)),
			"completed_todos":      percentChange(float64(current.CompletedTodos), float64(previous.CompletedTodos)),
			"avg_completion_hours": percentChange(current.AvgCompletionHours, previous.AvgCompletionHours),
		},
	}, nil
}

// CustomRange rolls up per-day counts over a caller-supplied window
func (r *AnalyticsRepository) CustomRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]DailyStat, error) {
	var stats []DailyStat
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			DATE(created_at) AS date,
			COUNT(*) AS created_count,
			COUNT(CASE WHEN is_completed = true THEN 1 END) AS completed_count
		FROM todos
		WHERE user_id = ? AND created_at >= ? AND created_at <= ?
		GROUP BY DATE(created_at)
		ORDER BY date DESC`,
		userID, start, end,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *AnalyticsRepository) periodMetrics(ctx context.Context, userID uuid.UUID, fromDays, toDays int) (*PeriodMetrics, error) {
	var metrics PeriodMetrics
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total_todos,
			COUNT(CASE WHEN is_completed = true THEN 1 END) AS completed_todos,
			COALESCE(AVG(CASE WHEN is_completed = true THEN
				EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600
			END), 0) AS avg_completion_hours
		FROM todos
		WHERE user_id = ?
			AND created_at >= NOW() - ? * INTERVAL '1 day'
			AND created_at < NOW() - ? * INTERVAL '1 day'`,
		userID, fromDays, toDays,
	).Scan(&metrics).Error
	if err != nil {
		return nil, err
	}
	return &metrics, nil
}

// percentChange returns the rounded percent delta, 0 when the baseline is 0
func percentChange(current, previous float64) int {
	if previous == 0 {
		return 0
	}
	return int(math.Round((current - previous) / previous * 100))
}
