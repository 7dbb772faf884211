package apperrors

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorHandler is a gin middleware that converts errors attached to the
// context into structured JSON responses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			appErr := ToError(err)
			LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, gin.H{
				"error": appErr.ErrBuilder.Msg,
				"kind":  appErr.Kind,
			})
		}
	}
}

// RecoveryHandler provides panic recovery with a structured error response.
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		appErr := NewInternalError(
			fmt.Sprintf("panic recovered: %v", recovered),
			fmt.Errorf("%v", recovered),
		)
		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
			"error": appErr.ErrBuilder.Msg,
			"kind":  appErr.Kind,
		})
	})
}

// LogError logs an error with request context at a level matching its kind.
// Configuration and validation failures are caller mistakes, not service
// faults, so they log as warnings.
func LogError(c *gin.Context, err *Error) {
	logEntry := slog.With(
		"error_kind", err.Kind,
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	msg := err.ErrBuilder.Msg
	details := err.ErrBuilder.Details

	switch err.Kind {
	case KindConfiguration, KindValidation, KindComputation:
		if len(details.Errors) > 0 {
			logEntry.Warn(msg, "details", details.Errors)
		} else {
			logEntry.Warn(msg)
		}
	default:
		if cause := err.ErrBuilder.Unwrap(); cause != nil {
			logEntry.Error(msg, "cause", cause)
		} else {
			logEntry.Error(msg)
		}
	}
}
