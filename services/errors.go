package services

import (
	"errors"
	"fmt"

	"blog-api/repositories"
)

// ErrNotFound is returned when the requested post does not exist or its id is malformed.
var ErrNotFound = errors.New("blog not found")

// ConflictError reports that a unique field is already taken by another post.
type ConflictError struct {
	Field string
	Err   error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("blog with this %s already exists", e.Field)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// storeErr maps repository errors to service errors and wraps the rest with op.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	var dup *repositories.DuplicateKeyError
	if errors.As(err, &dup) {
		return &ConflictError{Field: dup.Field, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
