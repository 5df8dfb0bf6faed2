package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/skincareshop/database"
	"gorm.io/gorm"
)

// Error kinds. Callers classify with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrReferenced   = errors.New("still referenced")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrPersistence  = errors.New("persistence failure")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string, id uint) error {
	return fmt.Errorf("%w: %s %d does not exist", ErrNotFound, what, id)
}

func referenced(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrReferenced, fmt.Sprintf(format, args...))
}

// classify leaves known kinds alone and marks everything else as a
// persistence failure.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrReferenced),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrPersistence),
		errors.Is(err, database.ErrPoolExhausted),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	default:
		return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
	}
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
