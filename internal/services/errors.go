package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/testing-service/internal/validator"
)

// Generic errors
var (
	ErrNotFound         = errors.New("not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrConflict         = errors.New("conflict")
	ErrAlreadySubmitted = errors.New("test already submitted")
	ErrValidationFailed = errors.New("validation failed")
)

// Entity-specific not-found errors; each matches ErrNotFound with errors.Is
var (
	ErrTeacherNotFound  = fmt.Errorf("teacher %w", ErrNotFound)
	ErrStudentNotFound  = fmt.Errorf("student %w", ErrNotFound)
	ErrTestNotFound     = fmt.Errorf("test %w", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	ErrOptionNotFound   = fmt.Errorf("option %w", ErrNotFound)
)

// Conflict reasons
var (
	ErrTestHasResults    = fmt.Errorf("test has submitted results: %w", ErrConflict)
	ErrStudentHasResults = fmt.Errorf("student has submitted results: %w", ErrConflict)
)

// ValidationErrors is returned for rejected request payloads
type ValidationErrors = validator.ValidationErrors

// PermissionError describes a denied action. It matches ErrAccessDenied.
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrAccessDenied
}

// IsNotFound reports whether err is any not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAccessDenied reports whether err is a denied permission
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsValidationError reports whether err carries rejected fields
func IsValidationError(err error) bool {
	var verrs ValidationErrors
	return errors.As(err, &verrs) || errors.Is(err, ErrValidationFailed)
}
