package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsSetKindAndStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantKind   Kind
		wantStatus int
	}{
		{"configuration", NewConfigurationError("bad template"), KindConfiguration, http.StatusUnprocessableEntity},
		{"validation", NewValidationError("bad answers"), KindValidation, http.StatusBadRequest},
		{"computation", NewComputationError("nothing to score"), KindComputation, http.StatusUnprocessableEntity},
		{"internal", NewInternalError("boom", errors.New("cause")), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.err.Kind)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
			assert.Contains(t, tt.err.Error(), string(tt.wantKind))
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(NewValidationError("x")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))

	wrapped := NewComputationError("no scorable questions")
	assert.Equal(t, KindComputation, KindOf(wrapped))
	assert.True(t, IsComputation(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.False(t, IsConfiguration(wrapped))
}

func TestWithFieldErrors(t *testing.T) {
	err := NewConfigurationError("template is invalid").WithFieldErrors(map[string]string{
		"questions.sessions": "number question requires a range",
		"bands":              "bands must cover the full score range",
	})

	assert.Len(t, err.ErrBuilder.Details.Errors, 2)

	// Attaching nothing leaves the error unchanged.
	bare := NewConfigurationError("template is invalid").WithFieldErrors(nil)
	assert.Empty(t, bare.ErrBuilder.Details.Errors)
}

func TestNewInternalErrorKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError("failed to persist score", cause)

	assert.ErrorIs(t, err, cause)
}

func TestToError(t *testing.T) {
	assert.Nil(t, ToError(nil))

	appErr := NewValidationError("dup answer")
	assert.Same(t, appErr, ToError(appErr))

	foreign := ToError(errors.New("sql: connection closed"))
	require.NotNil(t, foreign)
	assert.Equal(t, KindInternal, foreign.Kind)
	assert.Equal(t, http.StatusInternalServerError, foreign.HTTPStatus)
}
