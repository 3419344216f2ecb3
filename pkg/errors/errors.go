package errors

import (
	"errors"
	"fmt"
)

// ResourceNotFoundError is returned when a stored resource does not exist.
type ResourceNotFoundError struct {
	resource string
	id       string
}

func (e *ResourceNotFoundError) Error() string {
	if e.id == "" {
		return fmt.Sprintf("%s not found", e.resource)
	}
	return fmt.Sprintf("%s %q not found", e.resource, e.id)
}

func NewResourceNotFoundError(resource, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{resource: resource, id: id}
}

func NewPreferencesNotFoundError() *ResourceNotFoundError {
	return NewResourceNotFoundError("preferences", "")
}

func NewThumbnailNotFoundError(pageID string) *ResourceNotFoundError {
	return NewResourceNotFoundError("thumbnail", pageID)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// InvalidOperationError reports a lifecycle misuse: an operation on a closed
// engine, a closed client or a client the scheduler does not know.
type InvalidOperationError struct {
	msg string
}

func (e *InvalidOperationError) Error() string {
	return e.msg
}

func NewClosedError(component string) *InvalidOperationError {
	return &InvalidOperationError{msg: fmt.Sprintf("%s is closed", component)}
}

func NewClientClosedError(name string) *InvalidOperationError {
	return &InvalidOperationError{msg: fmt.Sprintf("client %q is closed", name)}
}

func NewClientNotRegisteredError(name string) *InvalidOperationError {
	return &InvalidOperationError{msg: fmt.Sprintf("client %q is not registered", name)}
}

func NewCategoryMismatchError(client, want, got string) *InvalidOperationError {
	return &InvalidOperationError{
		msg: fmt.Sprintf("client %q is bound to category %q, order has category %q", client, want, got),
	}
}

func IsInvalidOperationError(err error) bool {
	var e *InvalidOperationError
	return errors.As(err, &e)
}

// JobFactoryError wraps a failure of a category factory while building a job.
type JobFactoryError struct {
	Category string
	Err      error
}

func (e *JobFactoryError) Error() string {
	return fmt.Sprintf("failed to build job for category %q: %v", e.Category, e.Err)
}

func (e *JobFactoryError) Unwrap() error {
	return e.Err
}

func NewJobFactoryError(category string, err error) *JobFactoryError {
	return &JobFactoryError{Category: category, Err: err}
}

func IsJobFactoryError(err error) bool {
	var e *JobFactoryError
	return errors.As(err, &e)
}

// InvalidWorkerCountError is returned when a requested worker count cannot be parsed or applied.
type InvalidWorkerCountError struct {
	value int
	max   int
}

func (e *InvalidWorkerCountError) Error() string {
	return fmt.Sprintf("invalid worker count %d: must be between 1 and %d", e.value, e.max)
}

func NewInvalidWorkerCountError(value, max int) *InvalidWorkerCountError {
	return &InvalidWorkerCountError{value: value, max: max}
}

func IsInvalidWorkerCountError(err error) bool {
	var e *InvalidWorkerCountError
	return errors.As(err, &e)
}
