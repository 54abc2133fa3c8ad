package quotes

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrValidation indicates a required field is empty or a reference does not resolve.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorage indicates the store failed to read or write a collection.
	ErrStorage = errors.New("storage failure")

	// ErrCorrupt indicates a stored collection could not be decoded.
	ErrCorrupt = errors.New("corrupt collection")
)

// ValidationError describes which input field was rejected
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// Unwrap returns ErrValidation
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError names the missing entity
type NotFoundError struct {
	Entity string
	ID     int64
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// Unwrap returns ErrNotFound
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// StorageError wraps a failed read, write or decode of a collection key
type StorageError struct {
	Op  string
	Key string
	Err error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Key, e.Err)
}

// Unwrap exposes both ErrStorage and the underlying cause
func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorage reports whether err is a storage error
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
