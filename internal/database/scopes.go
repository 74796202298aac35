package database

import (
	"gorm.io/gorm"
)

// RangeWindow applies an inclusive row window [start, end] to a GORM query.
func RangeWindow(start, end int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(start).Limit(end - start + 1)
	}
}
