package repositories

import (
	"gorm.io/gorm"
)

// Both alias gorm's sentinels so callers can match either. Unique index
// violations surface as gorm.ErrDuplicatedKey when the connection is opened
// with TranslateError.
var (
	ErrNotFound      = gorm.ErrRecordNotFound
	ErrAlreadyExists = gorm.ErrDuplicatedKey
)

// offset converts a 1-based page into a row offset.
func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
