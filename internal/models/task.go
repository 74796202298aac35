package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	IsCompleted bool           `gorm:"not null;default:false" json:"is_completed"`
	CreatedByID uint64         `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator User `gorm:"foreignKey:CreatedByID" json:"creator,omitempty"`
}

// TaskWithUser is the read model joining a task with its creator's identity.
// It is only ever produced by querying; consumers replace whole entries
// instead of mutating fields in place.
type TaskWithUser struct {
	ID               uint64    `gorm:"column:id" json:"id"`
	Title            string    `gorm:"column:title" json:"title"`
	Description      string    `gorm:"column:description" json:"description"`
	IsCompleted      bool      `gorm:"column:is_completed" json:"is_completed"`
	CreatedByID      uint64    `gorm:"column:created_by_id" json:"created_by"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	CreatorFirstName string    `gorm:"column:creator_first_name" json:"creator_first_name"`
	CreatorLastName  string    `gorm:"column:creator_last_name" json:"creator_last_name"`
	CreatorEmail     string    `gorm:"column:creator_email" json:"creator_email"`
}

// TaskUpdates holds a partial update; nil fields are left unchanged.
type TaskUpdates struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
}
