package errors

import (
	"errors"
	"fmt"
)

// Category groups errors by subsystem
type Category string

const (
	CategoryLLM        Category = "llm"
	CategoryClassifier Category = "classifier"
	CategoryProtocol   Category = "protocol"
	CategoryNavigation Category = "navigation"
	CategoryConfig     Category = "config"
	CategoryStore      Category = "store"
)

// Error is the structured error type for handnav.
type Error struct {
	Category  Category
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on category and code so sentinel values built by the
// constructors compare equal regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Category == t.Category
}

// IsRetryable checks whether an error is retryable.
// Returns false for nil errors or foreign error types.
func IsRetryable(err error) bool {
	var he *Error
	if errors.As(err, &he) {
		return he.Retryable
	}
	return false
}

// GetCategory extracts the error category.
// Returns an empty Category for nil errors or foreign error types.
func GetCategory(err error) Category {
	var he *Error
	if errors.As(err, &he) {
		return he.Category
	}
	return ""
}

// GetCode returns the machine-readable code, or "" for foreign errors.
func GetCode(err error) string {
	var he *Error
	if errors.As(err, &he) {
		return he.Code
	}
	return ""
}

// GetUserMessage returns a user-friendly message for the error.
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var he *Error
	if errors.As(err, &he) {
		return he.Message
	}
	return err.Error()
}
