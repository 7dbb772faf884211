package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Kind classifies an error for handling and propagation. All three scoring
// kinds are terminal: the computation is deterministic, so nothing is retried
// and recovery is a collaborator concern.
type Kind string

const (
	// KindConfiguration means the template itself is invalid. Raised at
	// save/validate time; a template in this state must not be published.
	KindConfiguration Kind = "configuration"
	// KindValidation means a specific answer set is invalid against an
	// otherwise valid template. The check-in is rejected, not partially scored.
	KindValidation Kind = "validation"
	// KindComputation means valid inputs yield no scorable basis. Surfaced as
	// "insufficient data to score", never as a score of zero.
	KindComputation Kind = "computation"
	// KindInternal covers unexpected failures outside the scoring contract.
	KindInternal Kind = "internal"
)

// Error wraps an errbuilder error with the scoring error kind and the HTTP
// status the API surface maps it to.
type Error struct {
	*errbuilder.ErrBuilder
	Kind       Kind      `json:"kind"`
	HTTPStatus int       `json:"http_status"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// WithFieldErrors attaches per-field detail messages to the error.
func (e *Error) WithFieldErrors(fields map[string]string) *Error {
	if len(fields) == 0 {
		return e
	}
	errMap := errbuilder.ErrorMap{}
	for field, msg := range fields {
		errMap.Set(field, errors.New(msg))
	}
	e.ErrBuilder = e.ErrBuilder.WithDetails(errbuilder.NewErrDetails(errMap))
	return e
}

func newError(code errbuilder.ErrCode, kind Kind, status int, message string) *Error {
	builder := errbuilder.New().
		WithCode(code).
		WithMsg(message)

	return &Error{
		ErrBuilder: builder,
		Kind:       kind,
		HTTPStatus: status,
		Timestamp:  time.Now(),
	}
}

// NewConfigurationError reports an invalid template.
func NewConfigurationError(message string) *Error {
	return newError(errbuilder.CodeFailedPrecondition, KindConfiguration, http.StatusUnprocessableEntity, message)
}

// NewConfigurationErrorf reports an invalid template with a formatted message.
func NewConfigurationErrorf(format string, args ...any) *Error {
	return NewConfigurationError(fmt.Sprintf(format, args...))
}

// NewValidationError reports an invalid answer set.
func NewValidationError(message string) *Error {
	return newError(errbuilder.CodeInvalidArgument, KindValidation, http.StatusBadRequest, message)
}

// NewValidationErrorf reports an invalid answer set with a formatted message.
func NewValidationErrorf(format string, args ...any) *Error {
	return NewValidationError(fmt.Sprintf(format, args...))
}

// NewComputationError reports that no scorable basis exists for valid inputs.
func NewComputationError(message string) *Error {
	return newError(errbuilder.CodeFailedPrecondition, KindComputation, http.StatusUnprocessableEntity, message)
}

// NewInternalError reports an unexpected failure with its cause.
func NewInternalError(message string, cause error) *Error {
	e := newError(errbuilder.CodeInternal, KindInternal, http.StatusInternalServerError, message)
	if cause != nil {
		e.ErrBuilder = e.ErrBuilder.WithCause(cause)
	}
	return e
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsConfiguration reports whether err is a template configuration error.
func IsConfiguration(err error) bool { return KindOf(err) == KindConfiguration }

// IsValidation reports whether err is an answer validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsComputation reports whether err is an insufficient-data error.
func IsComputation(err error) bool { return KindOf(err) == KindComputation }

// ToError converts any error to an *Error, wrapping foreign errors as internal.
func ToError(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if ebErr, ok := err.(*errbuilder.ErrBuilder); ok {
		return &Error{
			ErrBuilder: ebErr,
			Kind:       KindInternal,
			HTTPStatus: http.StatusInternalServerError,
			Timestamp:  time.Now(),
		}
	}

	return NewInternalError("an unexpected error occurred", err)
}
