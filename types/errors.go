package types

import (
	"errors"
	"fmt"
)

const (
	// CodeResourceIDMissing no id value was bound and none could be generated
	CodeResourceIDMissing = "ResourceIdMissing"
	// CodePartitionKeyMissing the entity declares a partition key but no value was bound
	CodePartitionKeyMissing = "PartitionKeyMissing"
	// CodeInvalidResourceID the id value converts to an empty string
	CodeInvalidResourceID = "InvalidResourceId"
	// CodeInvalidPartitionKey the partition key value converts to an empty string
	CodeInvalidPartitionKey = "InvalidPartitionKey"
	// CodeConcurrentMethodInvocation a query context was entered while already in use
	CodeConcurrentMethodInvocation = "ConcurrentMethodInvocation"
	// CodeNotImplemented the operation is not supported
	CodeNotImplemented = "NotImplemented"
	// CodeInvalidOperation the operation is invalid for the receiver
	CodeInvalidOperation = "InvalidOperation"
)

var (
	// ErrResourceIDMissing when a point read has no id value and cannot generate one
	ErrResourceIDMissing = NewError(CodeResourceIDMissing, "unable to execute a ReadItem query since the 'id' value is missing and cannot be generated", nil)
	// ErrPartitionKeyMissing when the partition key value of a point read is not bound
	ErrPartitionKeyMissing = NewError(CodePartitionKeyMissing, "unable to execute a ReadItem query since the partition key value is missing", nil)
	// ErrInvalidResourceID when the bound id value is empty
	ErrInvalidResourceID = NewError(CodeInvalidResourceID, "the 'id' value resolved to an empty string", nil)
	// ErrInvalidPartitionKey when the bound partition key value is empty
	ErrInvalidPartitionKey = NewError(CodeInvalidPartitionKey, "the partition key value resolved to an empty string", nil)
	// ErrConcurrentMethodInvocation when a query context is entered while another operation is still using it
	ErrConcurrentMethodInvocation = NewError(CodeConcurrentMethodInvocation, "a second operation was started on this context before a previous operation completed", nil)
	// ErrResetNotSupported when an enumerator is asked to rewind
	ErrResetNotSupported = NewError(CodeNotImplemented, "point read enumerators cannot be reset", nil)
	// ErrNotImplemented when an operation is not available for point reads
	ErrNotImplemented = NewError(CodeNotImplemented, "operation not implemented for point reads", nil)
	// ErrVisitChildrenMustBeOverridden when a node does not define how to visit its children
	ErrVisitChildrenMustBeOverridden = NewError(CodeInvalidOperation, "VisitChildren must be overridden by every expression node", nil)
)

// An Error wraps lower level errors with code, message and an original error.
type Error interface {
	error

	Code() string
	Message() string
	OrigErr() error
}

// NewError returns an Error object described by the code, message, and origErr.
func NewError(code, message string, origErr error) Error {
	return &baseError{
		code:    code,
		message: message,
		origErr: origErr,
	}
}

// Errorf returns a copy of err with a formatted detail appended to its message.
// The result still matches err with errors.Is.
func Errorf(err Error, format string, args ...any) Error {
	return &detailedError{
		base:   err,
		detail: fmt.Sprintf(format, args...),
	}
}

// CodeOf returns the code of the first Error in the chain of err.
func CodeOf(err error) (string, bool) {
	var e Error
	if !errors.As(err, &e) {
		return "", false
	}

	return e.Code(), true
}

// SprintError returns a string of the formatted error code.
func SprintError(code, message, extra string, origErr error) string {
	msg := fmt.Sprintf("%s: %s", code, message)
	if extra != "" {
		msg = fmt.Sprintf("%s\n\t%s", msg, extra)
	}

	if origErr != nil {
		msg = fmt.Sprintf("%s\ncaused by: %s", msg, origErr.Error())
	}

	return msg
}

// A baseError wraps the code and message which defines an error. It also
// can be used to wrap an original error object.
type baseError struct {
	code    string
	message string
	origErr error
}

// Error returns the string representation of the error.
func (b *baseError) Error() string {
	return SprintError(b.code, b.message, "", b.origErr)
}

// String returns the string representation of the error.
// Alias for Error to satisfy the stringer interface.
func (b *baseError) String() string {
	return b.Error()
}

// Code returns the short phrase depicting the classification of the error.
func (b *baseError) Code() string {
	return b.code
}

// Message returns the error details message.
func (b *baseError) Message() string {
	return b.message
}

// OrigErr returns the original error if one was set.
func (b *baseError) OrigErr() error {
	return b.origErr
}

// Unwrap exposes the original error to errors.Is and errors.As.
func (b *baseError) Unwrap() error {
	return b.origErr
}

type detailedError struct {
	base   Error
	detail string
}

func (d *detailedError) Error() string {
	return SprintError(d.Code(), d.Message(), d.detail, d.OrigErr())
}

func (d *detailedError) Code() string { return d.base.Code() }

func (d *detailedError) Message() string { return d.base.Message() }

func (d *detailedError) OrigErr() error { return d.base.OrigErr() }

func (d *detailedError) Unwrap() error {
	return d.base
}
