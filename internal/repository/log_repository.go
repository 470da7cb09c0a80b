package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todotrack/internal/model"
)

// LogFilters narrows List queries over the activity log
type LogFilters struct {
	Action    string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// ActionCount is one row of the per-action usage breakdown
type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

type LogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

// Create appends an activity log entry
func (r *LogRepository) Create(ctx context.Context, userID *uuid.UUID, action string, details model.LogDetails) (*model.Log, error) {
	entry := &model.Log{
		UserID:  userID,
		Action:  action,
		Details: details,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Record is the fire-and-forget variant used by every mutating operation.
// A failed log write must never fail the primary operation, so the error
// is reported to stderr and dropped.
func (r *LogRepository) Record(ctx context.Context, userID uuid.UUID, action string, details model.LogDetails) {
	if _, err := r.Create(ctx, &userID, action, details); err != nil {
		log.Printf("⚠️  failed to write activity log (action=%s): %v", action, err)
	}
}

// RecordSystemError captures a handler failure. The user id may be absent
// when the failure happened before authentication resolved one.
func (r *LogRepository) RecordSystemError(ctx context.Context, userID *uuid.UUID, where string, cause error) {
	_, err := r.Create(ctx, userID, model.ActionSystemError, model.LogDetails{
		"action": where,
		"error":  cause.Error(),
	})
	if err != nil {
		log.Printf("⚠️  failed to write system error log (%s): %v", where, err)
	}
}

// List retrieves the user's log entries, newest first, plus the total count
func (r *LogRepository) List(ctx context.Context, userID uuid.UUID, filters LogFilters) ([]model.Log, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Log{}).
		Where("user_id = ?", userID)

	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if filters.StartDate != nil {
		query = query.Where("created_at >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("created_at <= ?", *filters.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var logs []model.Log
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// ActionStats counts the user's log entries per action
func (r *LogRepository) ActionStats(ctx context.Context, userID uuid.UUID) ([]ActionCount, error) {
	var stats []ActionCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT action, COUNT(*) AS count
		FROM logs
		WHERE user_id = ?
		GROUP BY action
		ORDER BY count DESC`,
		userID,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Cleanup prunes the user's entries older than the given number of days
// and returns how many rows were removed
func (r *LogRepository) Cleanup(ctx context.Context, userID uuid.UUID, days int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at < NOW() - ?::interval", userID, fmt.Sprintf("%d days", days)).
		Delete(&model.Log{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
