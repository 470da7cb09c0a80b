package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todotrack/internal/model"
)

// ExportedTodo is a todo row flattened for backup, tags by name only
type ExportedTodo struct {
	Text        string   `json:"text"`
	Priority    int      `json:"priority"`
	DueDate     *string  `json:"due_date"`
	IsCompleted bool     `json:"is_completed"`
	CreatedAt   string   `json:"created_at"`
	Tags        []string `json:"tags"`
}

type ExportedTag struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type ExportedUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

type ExportStats struct {
	TotalTodos     int `json:"total_todos"`
	CompletedTodos int `json:"completed_todos"`
	TotalTags      int `json:"total_tags"`
}

// UserExport is the full backup snapshot for one user
type UserExport struct {
	User       ExportedUser   `json:"user"`
	Todos      []ExportedTodo `json:"todos"`
	Tags       []ExportedTag  `json:"tags"`
	Stats      ExportStats    `json:"stats"`
	ExportedAt string         `json:"exported_at"`
}

// ImportTodo is the inbound shape accepted by Import
type ImportTodo struct {
	Text        string   `json:"text"`
	Priority    int      `json:"priority"`
	DueDate     *string  `json:"due_date"`
	IsCompleted bool     `json:"is_completed"`
	Tags        []string `json:"tags"`
}

// ImportSummary reports what a restore actually created
type ImportSummary struct {
	TodosImported int `json:"todos_imported"`
	TagsImported  int `json:"tags_imported"`
}

type UserDataRepository struct {
	db *gorm.DB
}

func NewUserDataRepository(db *gorm.DB) *UserDataRepository {
	return &UserDataRepository{db: db}
}

const exportDateLayout = "2006-01-02"

// Export assembles the user's complete data snapshot
func (r *UserDataRepository) Export(ctx context.Context, userID uuid.UUID) (*UserExport, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var todos []model.Todo
	if err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&todos).Error; err != nil {
		return nil, err
	}

	var tags []model.Tag
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&tags).Error; err != nil {
		return nil, err
	}

	export := &UserExport{
		User: ExportedUser{
			ID:        user.ID.String(),
			Username:  user.Username,
			CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		},
		Todos:      make([]ExportedTodo, 0, len(todos)),
		Tags:       make([]ExportedTag, 0, len(tags)),
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}

	completed := 0
	for _, todo := range todos {
		names := make([]string, 0, len(todo.Tags))
		for _, tag := range todo.Tags {
			names = append(names, tag.Name)
		}
		var dueDate *string
		if todo.DueDate != nil {
			formatted := todo.DueDate.Format(exportDateLayout)
			dueDate = &formatted
		}
		if todo.IsCompleted {
			completed++
		}
		export.Todos = append(export.Todos, ExportedTodo{
			Text:        todo.Text,
			Priority:    todo.Priority,
			DueDate:     dueDate,
			IsCompleted: todo.IsCompleted,
			CreatedAt:   todo.CreatedAt.UTC().Format(time.RFC3339),
			Tags:        names,
		})
	}
	for _, tag := range tags {
		export.Tags = append(export.Tags, ExportedTag{
			Name:      tag.Name,
			CreatedAt: tag.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	export.Stats = ExportStats{
		TotalTodos:     len(todos),
		CompletedTodos: completed,
		TotalTags:      len(tags),
	}

	return export, nil
}

// Import restores todos, tags and their associations from a snapshot in a
// single transaction. Tags are matched by name; ones the user already has
// are reused rather than duplicated. Any failure rolls the restore back.
func (r *UserDataRepository) Import(ctx context.Context, userID uuid.UUID, tagNames []string, todos []ImportTodo) (*ImportSummary, error) {
	summary := &ImportSummary{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tagIDs := make(map[string]uuid.UUID)

		var existing []model.Tag
		if err := tx.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
			return err
		}
		for _, tag := range existing {
			tagIDs[tag.Name] = tag.ID
		}

		ensureTag := func(name string) (uuid.UUID, error) {
			if id, ok := tagIDs[name]; ok {
				return id, nil
			}
			tag := model.Tag{ID: uuid.New(), UserID: userID, Name: name}
			if err := tx.Omit("Todos").Create(&tag).Error; err != nil {
				return uuid.Nil, err
			}
			tagIDs[name] = tag.ID
			summary.TagsImported++
			return tag.ID, nil
		}

		for _, name := range tagNames {
			if _, err := ensureTag(name); err != nil {
				return err
			}
		}

		for _, item := range todos {
			var dueDate *time.Time
			if item.DueDate != nil {
				parsed, err := time.Parse(exportDateLayout, *item.DueDate)
				if err != nil {
					return err
				}
				dueDate = &parsed
			}

			todo := model.Todo{
				ID:          uuid.New(),
				UserID:      userID,
				Text:        item.Text,
				Priority:    item.Priority,
				DueDate:     dueDate,
				IsCompleted: item.IsCompleted,
			}
			if err := tx.Omit("Tags").Create(&todo).Error; err != nil {
				return err
			}
			summary.TodosImported++

			for _, name := range item.Tags {
				tagID, err := ensureTag(name)
				if err != nil {
					return err
				}
				if err := tx.Exec(
					"INSERT INTO todo_tags (todo_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
					todo.ID, tagID,
				).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
