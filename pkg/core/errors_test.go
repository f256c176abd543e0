package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExecutionError_Error(t *testing.T) {
	err := &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "test_error",
		Message:  "test message",
	}

	if got := err.Error(); got != "test message" {
		t.Errorf("Error() = %q, want %q", got, "test message")
	}
}

func TestExecutionError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "test_error",
		Message:  "test message",
		Cause:    cause,
	}

	got := err.Error()
	if !strings.Contains(got, "test message") {
		t.Errorf("Error() = %q, should contain 'test message'", got)
	}
	if !strings.Contains(got, "underlying error") {
		t.Errorf("Error() = %q, should contain 'underlying error'", got)
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ExecutionError{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestExecutionError_WithCause(t *testing.T) {
	original := ErrElementNotFound
	cause := errors.New("custom cause")

	newErr := original.WithCause(cause)

	if newErr.Cause != cause {
		t.Error("WithCause() did not set cause")
	}
	if newErr.Code != original.Code {
		t.Error("WithCause() changed code")
	}
	if original.Cause != nil {
		t.Error("WithCause() modified original error")
	}
}

func TestExecutionError_WithMessage(t *testing.T) {
	original := ErrWaitTimeout
	newErr := original.WithMessage("custom timeout message")

	if newErr.Message != "custom timeout message" {
		t.Errorf("Message = %q, want 'custom timeout message'", newErr.Message)
	}
	if newErr.Code != original.Code {
		t.Error("WithMessage() changed code")
	}
	if original.Message == "custom timeout message" {
		t.Error("WithMessage() modified original error")
	}
}

func TestExecutionError_WithDetails(t *testing.T) {
	original := &ExecutionError{
		Code:    "test",
		Message: "test",
		Details: map[string]interface{}{"existing": "value"},
	}

	newErr := original.WithDetails(map[string]interface{}{
		"locator": "login_button",
		"timeout": 5000,
	})

	if newErr.Details["locator"] != "login_button" {
		t.Error("WithDetails() did not add new details")
	}
	if newErr.Details["existing"] != "value" {
		t.Error("WithDetails() did not preserve existing details")
	}
	if _, ok := original.Details["locator"]; ok {
		t.Error("WithDetails() modified original error")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err      *ExecutionError
		category ErrorCategory
		code     string
	}{
		{ErrElementNotFound, ErrCategoryElement, "element_not_found"},
		{ErrElementNotVisible, ErrCategoryElement, "element_not_visible"},
		{ErrElementNotClickable, ErrCategoryElement, "element_not_clickable"},
		{ErrStaleElement, ErrCategoryElement, "stale_element"},
		{ErrWaitTimeout, ErrCategoryTimeout, "wait_timeout"},
		{ErrServerUnreachable, ErrCategoryConnection, "server_unreachable"},
		{ErrSessionCreate, ErrCategoryConnection, "session_create"},
		{ErrNoSession, ErrCategoryConnection, "no_session"},
		{ErrInvalidPlatform, ErrCategoryConfig, "invalid_platform"},
		{ErrInvalidConfig, ErrCategoryConfig, "invalid_config"},
		{ErrConfigLoad, ErrCategoryConfig, "config_load"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestExecutionError_ErrorsIs(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrWaitTimeout.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
	if !errors.Is(err, ErrWaitTimeout) {
		t.Error("errors.Is() should match the sentinel by code")
	}
	if errors.Is(err, ErrElementNotFound) {
		t.Error("errors.Is() should not match a different code")
	}
}

func TestExecutionError_ErrorsIsThroughWrap(t *testing.T) {
	err := fmt.Errorf("setup: %w", ErrInvalidPlatform.WithMessage("invalid platform: windows"))

	if !errors.Is(err, ErrInvalidPlatform) {
		t.Error("errors.Is() should see through fmt wrapping")
	}
}

func TestTrimSentinel(t *testing.T) {
	inner := errors.New("no such element: missing")
	derived := ErrElementNotFound.WithCause(inner)

	if got := TrimSentinel(derived, ErrElementNotFound); got != inner {
		t.Errorf("TrimSentinel() = %v, want the cause", got)
	}
	if got := TrimSentinel(derived, ErrWaitTimeout); got != derived {
		t.Errorf("TrimSentinel() with another sentinel = %v, want err unchanged", got)
	}
	if got := TrimSentinel(ErrElementNotFound, ErrElementNotFound); got != ErrElementNotFound {
		t.Errorf("TrimSentinel() without cause = %v, want err unchanged", got)
	}

	rewrapped := ErrElementNotFound.WithMessage("element not found: login_button").
		WithCause(TrimSentinel(derived, ErrElementNotFound))
	if got, want := rewrapped.Error(), "element not found: login_button: no such element: missing"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ErrCategoryNone},
		{"plain", errors.New("boom"), ErrCategoryNone},
		{"direct", ErrWaitTimeout, ErrCategoryTimeout},
		{"wrapped", fmt.Errorf("click: %w", ErrElementNotFound), ErrCategoryElement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategoryOf(tt.err); got != tt.want {
				t.Errorf("CategoryOf() = %s, want %s", got, tt.want)
			}
		})
	}
}
