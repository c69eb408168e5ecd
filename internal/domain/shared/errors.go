package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a domain error for invalid input
func NewValidationError(message string) *DomainError {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// ConflictError signals a row-version mismatch on a mutation attempt. It
// carries both the token the client presented and the token currently stored
// so the client can refresh without a second read.
type ConflictError struct {
	Resource string
	ID       uuid.UUID
	Expected RowVersion
	Current  RowVersion
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified by another process", e.Resource, e.ID)
}

// NewConflictError creates a ConflictError for the given resource and tokens
func NewConflictError(resource string, id uuid.UUID, expected, current RowVersion) *ConflictError {
	return &ConflictError{
		Resource: resource,
		ID:       id,
		Expected: expected,
		Current:  current,
	}
}
