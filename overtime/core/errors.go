package core

import "fmt"

// The workflow and tracker report failures through this taxonomy so the
// HTTP layer can map them without string matching. All of these are
// caller errors; none should take the process down.

type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("validation failed: %s", e.Msg)
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Msg)
}

func NewPermissionError(format string, args ...interface{}) *PermissionError {
	return &PermissionError{Msg: fmt.Sprintf(format, args...)}
}

// StateError covers status-guard violations, including double submission:
// a second respond() on the same request fails loudly instead of silently
// succeeding so clients can detect it.
type StateError struct {
	Op     string
	Status string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s is not valid in status %q", e.Op, e.Status)
}

func NewStateError(op, status string) *StateError {
	return &StateError{Op: op, Status: status}
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ResourceLimitError covers the daily hour cap and active-session conflicts.
type ResourceLimitError struct {
	Msg string
}

func (e *ResourceLimitError) Error() string {
	return fmt.Sprintf("resource limit: %s", e.Msg)
}

func NewResourceLimitError(format string, args ...interface{}) *ResourceLimitError {
	return &ResourceLimitError{Msg: fmt.Sprintf(format, args...)}
}
