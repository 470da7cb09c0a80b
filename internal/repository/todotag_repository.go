package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todotrack/internal/model"
)

// AssignResult reports the outcome of a single assign/remove. Assigned and
// Removed are false on idempotent no-ops, never an error.
type AssignResult struct {
	TodoID   uuid.UUID `json:"todo_id"`
	TagID    uuid.UUID `json:"tag_id"`
	TagName  string    `json:"tag_name,omitempty"`
	Assigned bool      `json:"assigned"`
}

type RemoveResult struct {
	TodoID  uuid.UUID `json:"todo_id"`
	TagID   uuid.UUID `json:"tag_id"`
	TagName string    `json:"tag_name,omitempty"`
	Removed bool      `json:"removed"`
}

// BulkAssignItem mixes successes and per-item failures in bulk results
type BulkAssignItem struct {
	TagID    uuid.UUID `json:"tag_id"`
	Assigned bool      `json:"assigned"`
	Error    string    `json:"error,omitempty"`
}

type BulkRemoveItem struct {
	TagID   uuid.UUID `json:"tag_id"`
	Removed bool      `json:"removed"`
	Error   string    `json:"error,omitempty"`
}

// AssociationStats summarises the user's todo-tag relationships
type AssociationStats struct {
	TodosWithTags      int64   `json:"todos_with_tags"`
	TagsUsed           int64   `json:"tags_used"`
	TotalRelationships int64   `json:"total_relationships"`
	AvgTagsPerTodo     float64 `json:"avg_tags_per_todo"`
	MaxTagsPerTodo     int64   `json:"max_tags_per_todo"`
}

// TagRelationship is a co-occurrence pair of two tags on the same todos
type TagRelationship struct {
	Tag1ID       uuid.UUID `json:"tag1_id"`
	Tag1Name     string    `json:"tag1_name"`
	Tag2ID       uuid.UUID `json:"tag2_id"`
	Tag2Name     string    `json:"tag2_name"`
	CoOccurrence int64     `json:"co_occurrence_count"`
	Percentage   float64   `json:"co_occurrence_percentage"`
}

type TodoTagRepository struct {
	db *gorm.DB
}

func NewTodoTagRepository(db *gorm.DB) *TodoTagRepository {
	return &TodoTagRepository{db: db}
}

func (r *TodoTagRepository) todoOwned(ctx context.Context, userID, todoID uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Todo{}).
		Where("id = ? AND user_id = ?", todoID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (r *TodoTagRepository) tagOwned(ctx context.Context, userID, tagID uuid.UUID) (string, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).
		Select("id", "name").
		Where("id = ? AND user_id = ?", tagID, userID).
		First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrTagNotFound
	}
	if err != nil {
		return "", err
	}
	return tag.Name, nil
}

// Assign links a tag to a todo. Both must be owned by the user. Assigning
// an already-linked pair is a no-op with Assigned=false.
func (r *TodoTagRepository) Assign(ctx context.Context, userID, todoID, tagID uuid.UUID) (*AssignResult, error) {
	if err := r.todoOwned(ctx, userID, todoID); err != nil {
		return nil, err
	}
	tagName, err := r.tagOwned(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Exec(
		"INSERT INTO todo_tags (todo_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		todoID, tagID,
	)
	if result.Error != nil {
		return nil, result.Error
	}

	return &AssignResult{
		TodoID:   todoID,
		TagID:    tagID,
		TagName:  tagName,
		Assigned: result.RowsAffected > 0,
	}, nil
}

// Remove unlinks a tag from a todo. Removing an absent pair is a no-op
// with Removed=false.
func (r *TodoTagRepository) Remove(ctx context.Context, userID, todoID, tagID uuid.UUID) (*RemoveResult, error) {
	if err := r.todoOwned(ctx, userID, todoID); err != nil {
		return nil, err
	}
	tagName, err := r.tagOwned(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Exec(
		"DELETE FROM todo_tags WHERE todo_id = ? AND tag_id = ?",
		todoID, tagID,
	)
	if result.Error != nil {
		return nil, result.Error
	}

	return &RemoveResult{
		TodoID:  todoID,
		TagID:   tagID,
		TagName: tagName,
		Removed: result.RowsAffected > 0,
	}, nil
}

// AssignBulk assigns several tags with per-item error isolation: a failing
// tag id is reported in its result entry and does not abort the rest.
func (r *TodoTagRepository) AssignBulk(ctx context.Context, userID, todoID uuid.UUID, tagIDs []uuid.UUID) ([]BulkAssignItem, error) {
	if err := r.todoOwned(ctx, userID, todoID); err != nil {
		return nil, err
	}

	items := make([]BulkAssignItem, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		result, err := r.Assign(ctx, userID, todoID, tagID)
		if err != nil {
			items = append(items, BulkAssignItem{TagID: tagID, Error: err.Error()})
			continue
		}
		items = append(items, BulkAssignItem{TagID: tagID, Assigned: result.Assigned})
	}
	return items, nil
}

// RemoveBulk is the removal counterpart of AssignBulk
func (r *TodoTagRepository) RemoveBulk(ctx context.Context, userID, todoID uuid.UUID, tagIDs []uuid.UUID) ([]BulkRemoveItem, error) {
	if err := r.todoOwned(ctx, userID, todoID); err != nil {
		return nil, err
	}

	items := make([]BulkRemoveItem, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		result, err := r.Remove(ctx, userID, todoID, tagID)
		if err != nil {
			items = append(items, BulkRemoveItem{TagID: tagID, Error: err.Error()})
			continue
		}
		items = append(items, BulkRemoveItem{TagID: tagID, Removed: result.Removed})
	}
	return items, nil
}

// ReplaceAll swaps the todo's tag set for the given one in a single
// transaction: delete everything, insert each new id. Any unknown or
// foreign tag rolls the whole replacement back.
func (r *TodoTagRepository) ReplaceAll(ctx context.Context, userID, todoID uuid.UUID, tagIDs []uuid.UUID) error {
	if err := r.todoOwned(ctx, userID, todoID); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM todo_tags WHERE todo_id = ?", todoID).Error; err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			var count int64
			if err := tx.Model(&model.Tag{}).
				Where("id = ? AND user_id = ?", tagID, userID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrTagNotFound
			}
			if err := tx.Exec(
				"INSERT INTO todo_tags (todo_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
				todoID, tagID,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Stats aggregates relationship counts for the user
func (r *TodoTagRepository) Stats(ctx context.Context, userID uuid.UUID) (*AssociationStats, error) {
	var stats AssociationStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(DISTINCT tt.todo_id) AS todos_with_tags,
			COUNT(DISTINCT tt.tag_id) AS tags_used,
			COUNT(*) AS total_relationships,
			COALESCE(AVG(tag_counts.tag_count), 0) AS avg_tags_per_todo,
			COALESCE(MAX(tag_counts.tag_count), 0) AS max_tags_per_todo
		FROM todo_tags tt
		JOIN todos t ON tt.todo_id = t.id
		LEFT JOIN (
			SELECT todo_id, COUNT(*) AS tag_count
			FROM todo_tags tt2
			JOIN todos t2 ON tt2.todo_id = t2.id
			WHERE t2.user_id = ?
			GROUP BY todo_id
		) tag_counts ON tt.todo_id = tag_counts.todo_id
		WHERE t.user_id = ?`,
		userID, userID,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Relationships returns tag pairs that co-occur on the user's todos
func (r *TodoTagRepository) Relationships(ctx context.Context, userID uuid.UUID, limit int) ([]TagRelationship, error) {
	var pairs []TagRelationship
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			t1.id AS tag1_id,
			t1.name AS tag1_name,
			t2.id AS tag2_id,
			t2.name AS tag2_name,
			COUNT(*) AS co_occurrence,
			ROUND(COUNT(*) * 100.0 / NULLIF((
				SELECT COUNT(DISTINCT tt3.todo_id)
				FROM todo_tags tt3
				JOIN todos td3 ON tt3.todo_id = td3.id
				WHERE td3.user_id = ?
			), 0), 2) AS percentage
		FROM todo_tags tt1
		JOIN todo_tags tt2 ON tt1.todo_id = tt2.todo_id AND tt1.tag_id < tt2.tag_id
		JOIN todos td ON tt1.todo_id = td.id
		JOIN tags t1 ON tt1.tag_id = t1.id
		JOIN tags t2 ON tt2.tag_id = t2.id
		WHERE td.user_id = ?
		GROUP BY t1.id, t1.name, t2.id, t2.name
		ORDER BY co_occurrence DESC, percentage DESC
		LIMIT ?`,
		userID, userID, limit,
	).Scan(&pairs).Error
	if err != nil {
		return nil, err
	}
	return pairs, nil
}
