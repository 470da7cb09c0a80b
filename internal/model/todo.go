package model

import (
	"time"

	"github.com/google/uuid"
)

// Priority levels for todos
const (
	PriorityLow    = 0
	PriorityMedium = 1
	PriorityHigh   = 2
)

type Todo struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Text        string     `gorm:"not null"`
	Priority    int        `gorm:"not null;default:0"`
	DueDate     *time.Time `gorm:"type:date"`
	IsCompleted bool       `gorm:"not null;default:false"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`

	User User  `gorm:"foreignKey:UserID"`
	Tags []Tag `gorm:"many2many:todo_tags"`
}

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p int) bool {
	return p >= PriorityLow && p <= PriorityHigh
}
