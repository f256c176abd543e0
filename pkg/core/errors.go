package core

import (
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: element_not_found, wait_timeout, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an ExecutionError with the same code.
// Derived errors (WithCause, WithMessage, WithDetails) still match their sentinel.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors (like Appium W3C error codes)
var (
	// Element errors
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrElementNotVisible = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "element_not_visible",
		Message:  "element not visible",
	}
	ErrElementNotClickable = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "element_not_clickable",
		Message:  "element not clickable",
	}
	ErrStaleElement = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "stale_element",
		Message:  "element is no longer attached to the view hierarchy",
	}

	// Timeout errors
	ErrWaitTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "wait_timeout",
		Message:  "wait condition timed out",
	}

	// Connection errors
	ErrServerUnreachable = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "server_unreachable",
		Message:  "could not connect to automation server",
	}
	ErrSessionCreate = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "session_create",
		Message:  "could not create driver session",
	}
	ErrNoSession = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "no_session",
		Message:  "no active driver session",
	}

	// Config errors
	ErrInvalidPlatform = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_platform",
		Message:  "invalid platform",
	}
	ErrInvalidConfig = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
	ErrConfigLoad = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "config_load",
		Message:  "failed to load configuration",
	}
)

// TrimSentinel returns the cause of err when err was derived from sentinel,
// so rewrapping it with sentinel does not repeat the sentinel's message.
func TrimSentinel(err error, sentinel *ExecutionError) error {
	if e, ok := err.(*ExecutionError); ok && e.Is(sentinel) && e.Cause != nil {
		return e.Cause
	}
	return err
}

// CategoryOf returns the category of err if it wraps an ExecutionError.
func CategoryOf(err error) ErrorCategory {
	for err != nil {
		if e, ok := err.(*ExecutionError); ok {
			return e.Category
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ErrCategoryNone
		}
		err = u.Unwrap()
	}
	return ErrCategoryNone
}
