package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todotrack/internal/model"
)

// TagWithUsage is a tag row annotated with how many todos carry it
type TagWithUsage struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UsageCount int64     `json:"usage_count"`
}

// TagStats summarises a user's tag usage
type TagStats struct {
	TotalTags      int64   `json:"total_tags"`
	TotalUsages    int64   `json:"total_usages"`
	AvgUsagePerTag float64 `json:"avg_usage_per_tag"`
}

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create adds a new tag. Name uniqueness per owner is enforced by the
// unique index, not a prior read, so concurrent creates cannot race.
func (r *TagRepository) Create(ctx context.Context, tag *model.Tag) error {
	err := r.db.WithContext(ctx).Omit("Todos").Create(tag).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateTagName
	}
	return err
}

// List retrieves the user's tags with usage counts, most used first
func (r *TagRepository) List(ctx context.Context, userID uuid.UUID) ([]TagWithUsage, error) {
	var tags []TagWithUsage
	err := r.db.WithContext(ctx).Raw(`
		SELECT t.id, t.user_id, t.name, t.created_at, COUNT(tt.todo_id) AS usage_count
		FROM tags t
		LEFT JOIN todo_tags tt ON t.id = tt.tag_id
		WHERE t.user_id = ?
		GROUP BY t.id, t.user_id, t.name, t.created_at
		ORDER BY usage_count DESC, t.created_at DESC`,
		userID,
	).Scan(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// GetByID retrieves a single tag with its usage count
func (r *TagRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*TagWithUsage, error) {
	var tags []TagWithUsage
	err := r.db.WithContext(ctx).Raw(`
		SELECT t.id, t.user_id, t.name, t.created_at, COUNT(tt.todo_id) AS usage_count
		FROM tags t
		LEFT JOIN todo_tags tt ON t.id = tt.tag_id
		WHERE t.id = ? AND t.user_id = ?
		GROUP BY t.id, t.user_id, t.name, t.created_at`,
		id, userID,
	).Scan(&tags).Error
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, ErrTagNotFound
	}
	return &tags[0], nil
}

// GetByName retrieves a tag by its per-owner name, nil when absent
func (r *TagRepository) GetByName(ctx context.Context, userID uuid.UUID, name string) (*TagWithUsage, error) {
	var tags []TagWithUsage
	err := r.db.WithContext(ctx).Raw(`
		SELECT t.id, t.user_id, t.name, t.created_at, COUNT(tt.todo_id) AS usage_count
		FROM tags t
		LEFT JOIN todo_tags tt ON t.id = tt.tag_id
		WHERE t.name = ? AND t.user_id = ?
		GROUP BY t.id, t.user_id, t.name, t.created_at`,
		name, userID,
	).Scan(&tags).Error
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return &tags[0], nil
}

// UpdateName renames a tag, keeping per-owner uniqueness
func (r *TagRepository) UpdateName(ctx context.Context, userID, id uuid.UUID, name string) (*model.Tag, error) {
	result := r.db.WithContext(ctx).Model(&model.Tag{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTagName
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTagNotFound
	}

	var tag model.Tag
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Delete removes a tag and its associations, returning the deleted row
func (r *TagRepository) Delete(ctx context.Context, userID, id uuid.UUID) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM todo_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Tag{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTagNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Popular retrieves the user's most used tags, skipping unused ones
func (r *TagRepository) Popular(ctx context.Context, userID uuid.UUID, limit int) ([]TagWithUsage, error) {
	var tags []TagWithUsage
	err := r.db.WithContext(ctx).Raw(`
		SELECT t.id, t.user_id, t.name, t.created_at, COUNT(tt.todo_id) AS usage_count
		FROM tags t
		LEFT JOIN todo_tags tt ON t.id = tt.tag_id
		WHERE t.user_id = ?
		GROUP BY t.id, t.user_id, t.name, t.created_at
		HAVING COUNT(tt.todo_id) > 0
		ORDER BY usage_count DESC, t.created_at DESC
		LIMIT ?`,
		userID, limit,
	).Scan(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// Stats aggregates tag counts across the user's account
func (r *TagRepository) Stats(ctx context.Context, userID uuid.UUID) (*TagStats, error) {
	var stats TagStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(DISTINCT t.id) AS total_tags,
			COUNT(tt.todo_id) AS total_usages,
			COALESCE(AVG(tag_usage.usage_count), 0) AS avg_usage_per_tag
		FROM tags t
		LEFT JOIN todo_tags tt ON t.id = tt.tag_id
		LEFT JOIN (
			SELECT tag_id, COUNT(*) AS usage_count
			FROM todo_tags
			GROUP BY tag_id
		) tag_usage ON t.id = tag_usage.tag_id
		WHERE t.user_id = ?`,
		userID,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// TodosByTag retrieves every todo carrying the tag, tags preloaded
func (r *TagRepository) TodosByTag(ctx context.Context, userID, tagID uuid.UUID) ([]model.Todo, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Tag{}).
		Where("id = ? AND user_id = ?", tagID, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrTagNotFound
	}

	var todos []model.Todo
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Joins("JOIN todo_tags ON todo_tags.todo_id = todos.id").
		Where("todo_tags.tag_id = ? AND todos.user_id = ?", tagID, userID).
		Order("todos.created_at DESC").
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}
