package ir

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepError_Message(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: step not found (step=node-3)", NewNotFoundError("node-3").Error())
	assert.Equal(t,
		"PROTECTED_FIELD: field cannot be changed (step=node-0, field=kind)",
		NewProtectedFieldError("node-0", "kind").Error())
	assert.Equal(t,
		"INVALID_STATE: insert is not allowed while editing",
		NewInvalidStateError("insert", "editing").Error())
}

func TestStepError_HelpersMatchWrapped(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NewNotFoundError("x"), IsNotFound},
		{"duplicate", NewDuplicateError("x"), IsDuplicate},
		{"protected element", NewProtectedElementError(StartID, "remove"), IsProtectedElement},
		{"protected field", NewProtectedFieldError("x", "kind"), IsProtectedField},
		{"validation", NewValidationError("x", "label", "label is empty"), IsValidation},
		{"invalid state", NewInvalidStateError("submit", "idle"), IsInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("gesture failed: %w", tt.err)))
		})
	}

	assert.False(t, IsNotFound(NewDuplicateError("x")))
	assert.False(t, IsNotFound(fmt.Errorf("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestStepID_IsBoundary(t *testing.T) {
	assert.True(t, StartID.IsBoundary())
	assert.True(t, EndID.IsBoundary())
	assert.False(t, StepID("node-0").IsBoundary())
}
