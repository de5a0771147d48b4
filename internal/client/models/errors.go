package models

import (
	"errors"
	"fmt"
)

var (
	ErrTooManyPhotos   = errors.New("too many photos")
	ErrPhotoType       = errors.New("photo type not allowed")
	ErrPhotoTooLarge   = errors.New("photo exceeds size budget")
	ErrRatingRange     = errors.New("rating out of range")
	ErrMalformedRemote = errors.New("malformed remote entry")
)

// ValidationError reports input rejected before anything is persisted.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
