package errors

import "errors"

var (
	ErrPlaneNotFound = errors.New("plane not found")

	ErrInvalidID = errors.New("invalid ID format")
)
