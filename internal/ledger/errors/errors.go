package errors

import "errors"

var (
	// ErrSeatUnavailable means another user holds the seat on the flight instance.
	ErrSeatUnavailable = errors.New("seat is held by another user")

	ErrNotFound = errors.New("seat reservation not found")
)
