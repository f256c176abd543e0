package core

// CaseStatus represents the execution status of a test case
type CaseStatus int

const (
	StatusPending CaseStatus = iota // Not yet started
	StatusRunning                   // Currently executing
	StatusPassed                    // Completed with every assertion holding
	StatusFailed                    // At least one assertion failed, or the case panicked
	StatusSkipped                   // Excluded by group filter or suite setup failed
)

// String returns the string representation of CaseStatus
func (s CaseStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the status is a final state
func (s CaseStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryElement                         // Element lookup or state problem
	ErrCategoryTimeout                         // Explicit wait timed out
	ErrCategoryConnection                      // Server unreachable, session problems
	ErrCategoryConfig                          // Invalid configuration or platform
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryElement:
		return "element"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}
