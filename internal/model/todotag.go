package model

import (
	"github.com/google/uuid"
)

// TodoTag is the join row between a todo and a tag. The composite primary
// key makes duplicate assignments impossible at the storage layer.
type TodoTag struct {
	TodoID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID  uuid.UUID `gorm:"type:uuid;primaryKey"`

	Todo Todo `gorm:"foreignKey:TodoID"`
	Tag  Tag  `gorm:"foreignKey:TagID"`
}
