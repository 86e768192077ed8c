package repository

import (
	"errors"

	"gorm.io/gorm"
)

// IsDuplicate reports whether err came from a unique constraint violation.
// The database must be opened with TranslateError enabled.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsNotFound reports whether err signals a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
