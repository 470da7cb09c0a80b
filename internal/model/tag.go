package model

import (
	"time"

	"github.com/google/uuid"
)

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tags_user_name"`
	Name      string    `gorm:"not null;uniqueIndex:idx_tags_user_name"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	User  User   `gorm:"foreignKey:UserID"`
	Todos []Todo `gorm:"many2many:todo_tags"`
}
