package mysql

import (
	"errors"

	"gorm.io/gorm"
)

// notFound maps gorm's miss onto the aggregate's own sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
