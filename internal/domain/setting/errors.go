package setting

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode identifies the error categories adapters report to the engine.
type ErrorCode string

const (
	ErrCodeNotSupported ErrorCode = "NOT_SUPPORTED"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeParse        ErrorCode = "PARSE_ERROR"
	ErrCodeExecution    ErrorCode = "EXECUTION_ERROR"
	ErrCodeEnumeration  ErrorCode = "ENUMERATION_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeMissing      ErrorCode = "MISSING_REQUIRED"
	ErrCodeCancelled    ErrorCode = "CANCELLED"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a typed error enriched with contextual data while
// remaining free from infrastructure dependencies.
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As usage.
func (e *DomainError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another DomainError carrying the same code. An empty message on
// the target matches any message.
func (e *DomainError) Is(target error) bool {
	var domainErr *DomainError
	if !errors.As(target, &domainErr) {
		return false
	}
	if e.Code != domainErr.Code {
		return false
	}
	return domainErr.Message == "" || e.Message == domainErr.Message
}

// WithContext clones the error with additional contextual metadata.
func (e *DomainError) WithContext(ctx map[string]interface{}) *DomainError {
	if e == nil {
		return nil
	}
	merged := make(map[string]interface{}, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Context: merged,
	}
}

// NewError constructs a DomainError with the supplied code and message.
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, Cause: cause}
}

// NotSupported reports that the target lacks the capability.
func NotSupported(message string, cause error) *DomainError {
	return NewError(ErrCodeNotSupported, message, cause)
}

// NotFound reports that the setting or target does not exist.
func NotFound(message string, cause error) *DomainError {
	return NewError(ErrCodeNotFound, message, cause)
}

// ParseFailure reports backend output that could not be interpreted.
func ParseFailure(message string, cause error) *DomainError {
	return NewError(ErrCodeParse, message, cause)
}

// ExecutionFailure reports a backend call that failed outright.
func ExecutionFailure(message string, cause error) *DomainError {
	return NewError(ErrCodeExecution, message, cause)
}

// CodeOf classifies any error into an ErrorCode. Context cancellation maps to
// ErrCodeCancelled and unknown errors to ErrCodeExecution.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var derr *DomainError
	if errors.As(err, &derr) {
		return derr.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeCancelled
	}
	return ErrCodeExecution
}

// IsNotSupported reports whether err carries ErrCodeNotSupported.
func IsNotSupported(err error) bool {
	return CodeOf(err) == ErrCodeNotSupported
}

// IsNotFound reports whether err carries ErrCodeNotFound.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func newValidationError(message string, context map[string]interface{}) *DomainError {
	return &DomainError{Code: ErrCodeValidation, Message: message, Context: context}
}

func newMissingFieldError(field string) *DomainError {
	return &DomainError{Code: ErrCodeMissing, Message: "missing required field", Context: map[string]interface{}{
		"field": field,
	}}
}
