package claims

import (
	"errors"
	"fmt"
)

// NotFoundError indicates an unknown claim, task, verdict, or product
// identifier. It aborts only the operation that raised it.
type NotFoundError struct {
	Kind string // entity kind ("claim", "task", "verdict", "product")
	ID   string // identifier that was not found
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// InvalidInputError indicates a malformed request, such as an unknown review
// action or a modify action without replacement text.
type InvalidInputError struct {
	Message string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	return e.Message
}

// NewInvalidInputError creates a new InvalidInputError.
func NewInvalidInputError(format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// StorageError represents a failed read or write against the backing store.
type StorageError struct {
	Backend   string // storage backend ("sqlite", "memory")
	Operation string // operation that failed ("insert_claim", "complete_task", ...)
	Cause     error  // underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// EvidenceLookupError indicates that category derivation or an evidence
// lookup failed for one document. It downgrades the document to status ERROR
// and never aborts a verification batch.
type EvidenceLookupError struct {
	Reference string // document reference that failed
	Cause     error  // underlying error
}

// Error implements the error interface.
func (e *EvidenceLookupError) Error() string {
	return fmt.Sprintf("evidence lookup failed for %q: %v", e.Reference, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *EvidenceLookupError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidInput reports whether err is (or wraps) an InvalidInputError.
func IsInvalidInput(err error) bool {
	var ii *InvalidInputError
	return errors.As(err, &ii)
}
