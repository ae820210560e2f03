package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ErrGroupNotFound is returned when no group row matches a
// (dataType, dataID) pair.
var ErrGroupNotFound = NotFoundError{Resource: "group"}

// ErrSelfReference rejects edges that would point an entity at itself,
// such as a group parented to itself or a user blocking themselves.
var ErrSelfReference = fmt.Errorf("entity cannot reference itself")

// UnknownDataTypeError indicates a registry lookup with an unregistered
// tag or kind name. This is a programming/configuration error and is
// never retried.
type UnknownDataTypeError struct {
	Tag  DataType
	Kind string
}

func (e UnknownDataTypeError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("unknown group data kind %q", e.Kind)
	}
	return fmt.Sprintf("unknown group data type %d", int(e.Tag))
}

func (e UnknownDataTypeError) Is(target error) bool {
	_, ok := target.(UnknownDataTypeError)
	if ok {
		return true
	}
	_, ok = target.(*UnknownDataTypeError)
	return ok
}

// ConflictError wraps a storage-layer conflict hit during a membership
// mutation. Lifecycle operations are idempotent, so the whole call is
// safe to retry.
type ConflictError struct {
	Op  string
	Err error
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("concurrent mutation conflict in %s: %v", e.Op, e.Err)
}

func (e ConflictError) Unwrap() error { return e.Err }

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}
