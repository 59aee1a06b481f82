package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/todolist-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// NotRemoved hides soft-deleted tasks.
func NotRemoved(db *gorm.DB) *gorm.DB {
	return db.Where("tasks.is_removed = ?", false)
}
