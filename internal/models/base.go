package models

import (
	"time"

	"gorm.io/gorm"
)

// Base contains common columns for all tables. Rows are soft-deleted;
// nothing in the API hard-deletes a user.
type Base struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
