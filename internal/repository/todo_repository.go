package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todotrack/internal/model"
)

// TodoFilters narrows List and Count queries. Nil pointer fields are ignored.
type TodoFilters struct {
	Completed *bool
	Priority  *int
	DueDate   *time.Time
	Overdue   bool
	Search    string
	Limit     int
	Offset    int
}

// Fields a partial update may touch. Anything else in the request is dropped.
var allowedTodoUpdates = map[string]bool{
	"text":         true,
	"priority":     true,
	"due_date":     true,
	"is_completed": true,
}

type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// Create inserts a todo and, when tag ids are given, its tag associations
// in a single transaction. Every tag must exist and belong to the todo's
// owner or the whole insert is rolled back.
func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return r.db.WithContext(ctx).Omit("Tags").Create(todo).Error
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(todo).Error; err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			var count int64
			if err := tx.Model(&model.Tag{}).
				Where("id = ? AND user_id = ?", tagID, todo.UserID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrTagNotFound
			}
			if err := tx.Exec(
				"INSERT INTO todo_tags (todo_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
				todo.ID, tagID,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// List retrieves the user's todos with their tags preloaded
func (r *TodoRepository) List(ctx context.Context, userID uuid.UUID, filters TodoFilters) ([]model.Todo, error) {
	query := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", userID)

	query = applyTodoFilters(query, filters)
	query = query.Order("created_at DESC")

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var todos []model.Todo
	if err := query.Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// GetByID retrieves a single todo owned by the user
func (r *TodoRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Todo, error) {
	var todo model.Todo
	result := r.db.WithContext(ctx).
		Preload("Tags").
		Where("id = ? AND user_id = ?", id, userID).
		First(&todo)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, result.Error
	}
	return &todo, nil
}

// Update applies a whitelisted partial update and returns the fresh row.
// updated_at is restamped by gorm on every successful update.
func (r *TodoRepository) Update(ctx context.Context, userID, id uuid.UUID, updates map[string]any) (*model.Todo, error) {
	filtered := map[string]any{}
	for key, value := range updates {
		if allowedTodoUpdates[key] {
			filtered[key] = value
		}
	}
	if len(filtered) == 0 {
		return nil, ErrNoUpdateFields
	}

	result := r.db.WithContext(ctx).Model(&model.Todo{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(filtered)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTodoNotFound
	}
	return r.GetByID(ctx, userID, id)
}

// Delete removes a todo and its tag associations, returning the deleted row
func (r *TodoRepository) Delete(ctx context.Context, userID, id uuid.UUID) (*model.Todo, error) {
	todo, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM todo_tags WHERE todo_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Todo{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTodoNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// ToggleComplete flips is_completed and returns the updated row
func (r *TodoRepository) ToggleComplete(ctx context.Context, userID, id uuid.UUID) (*model.Todo, error) {
	result := r.db.WithContext(ctx).Model(&model.Todo{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_completed", gorm.Expr("NOT is_completed"))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTodoNotFound
	}
	return r.GetByID(ctx, userID, id)
}

// Count returns how many todos match the filters
func (r *TodoRepository) Count(ctx context.Context, userID uuid.UUID, filters TodoFilters) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Todo{}).
		Where("user_id = ?", userID)
	query = applyTodoFilters(query, filters)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyTodoFilters(query *gorm.DB, filters TodoFilters) *gorm.DB {
	if filters.Completed != nil {
		query = query.Where("is_completed = ?", *filters.Completed)
	}
	if filters.Priority != nil {
		query = query.Where("priority = ?", *filters.Priority)
	}
	if filters.DueDate != nil {
		query = query.Where("due_date = ?", *filters.DueDate)
	}
	if filters.Overdue {
		query = query.Where("due_date < CURRENT_DATE AND is_completed = false")
	}
	if filters.Search != "" {
		query = query.Where("text ILIKE ?", "%"+filters.Search+"%")
	}
	return query
}
