package ir

import (
	"errors"
	"fmt"
)

// StepError is the single error type returned by the sequence store,
// the registry and the controller.
//
// All step errors are local and non-fatal: the failing operation leaves
// state unchanged and the caller reports the error to the user.
type StepError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// StepID identifies the affected step, if any.
	StepID StepID

	// Field names the rejected field for PROTECTED_FIELD and VALIDATION.
	Field string
}

// ErrorCode categorizes step errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a referenced id is absent.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeDuplicate indicates an id collision on create or insert.
	ErrCodeDuplicate ErrorCode = "DUPLICATE"

	// ErrCodeProtectedElement indicates an attempted mutation of start or end.
	ErrCodeProtectedElement ErrorCode = "PROTECTED_ELEMENT"

	// ErrCodeProtectedField indicates an attempted change of a step's kind.
	ErrCodeProtectedField ErrorCode = "PROTECTED_FIELD"

	// ErrCodeValidation indicates rejected input, e.g. an empty label.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeInvalidState indicates a gesture that is not valid in the
	// controller's current state.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
)

// Error implements the error interface.
func (e *StepError) Error() string {
	switch {
	case e.StepID != "" && e.Field != "":
		return fmt.Sprintf("%s: %s (step=%s, field=%s)", e.Code, e.Message, e.StepID, e.Field)
	case e.StepID != "":
		return fmt.Sprintf("%s: %s (step=%s)", e.Code, e.Message, e.StepID)
	case e.Field != "":
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFoundError creates a StepError for a missing id.
func NewNotFoundError(id StepID) *StepError {
	return &StepError{Code: ErrCodeNotFound, Message: "step not found", StepID: id}
}

// NewDuplicateError creates a StepError for an id that already exists.
func NewDuplicateError(id StepID) *StepError {
	return &StepError{Code: ErrCodeDuplicate, Message: "step already exists", StepID: id}
}

// NewProtectedElementError creates a StepError for a mutation of start or end.
func NewProtectedElementError(id StepID, op string) *StepError {
	return &StepError{
		Code:    ErrCodeProtectedElement,
		Message: fmt.Sprintf("cannot %s boundary step", op),
		StepID:  id,
	}
}

// NewProtectedFieldError creates a StepError for a change of an immutable field.
func NewProtectedFieldError(id StepID, field string) *StepError {
	return &StepError{
		Code:    ErrCodeProtectedField,
		Message: "field cannot be changed",
		StepID:  id,
		Field:   field,
	}
}

// NewValidationError creates a StepError for rejected input.
func NewValidationError(id StepID, field, message string) *StepError {
	return &StepError{Code: ErrCodeValidation, Message: message, StepID: id, Field: field}
}

// NewInvalidStateError creates a StepError for a gesture fired in the wrong state.
func NewInvalidStateError(gesture, state string) *StepError {
	return &StepError{
		Code:    ErrCodeInvalidState,
		Message: fmt.Sprintf("%s is not allowed while %s", gesture, state),
	}
}

// CodeOf returns the code of a StepError anywhere in err's chain,
// or "" if there is none.
func CodeOf(err error) ErrorCode {
	var se *StepError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsNotFound returns true if err is a NOT_FOUND step error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsDuplicate returns true if err is a DUPLICATE step error.
func IsDuplicate(err error) bool {
	return CodeOf(err) == ErrCodeDuplicate
}

// IsProtectedElement returns true if err is a PROTECTED_ELEMENT step error.
func IsProtectedElement(err error) bool {
	return CodeOf(err) == ErrCodeProtectedElement
}

// IsProtectedField returns true if err is a PROTECTED_FIELD step error.
func IsProtectedField(err error) bool {
	return CodeOf(err) == ErrCodeProtectedField
}

// IsValidation returns true if err is a VALIDATION step error.
func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

// IsInvalidState returns true if err is an INVALID_STATE step error.
func IsInvalidState(err error) bool {
	return CodeOf(err) == ErrCodeInvalidState
}
