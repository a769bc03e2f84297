package application

import (
	"errors"
	"fmt"
)

// ValidationError is a business-rule violation the caller can fix by changing
// its input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

// ConflictError reports that the input collides with existing state.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return "conflict: " + e.Reason }

// NotFoundError reports a missing user id. It matches ErrUserNotFound.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("user %d not found", e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrUserNotFound }

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var (
	ErrUnderage        = &ValidationError{Reason: "underage"}
	ErrPasswordTooLong = &ValidationError{Reason: "password too long"}
	ErrEmailConflict   = &ConflictError{Reason: "email exists"}
	ErrUserNotFound    = errors.New("user not found")
)
