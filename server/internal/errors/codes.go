package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for assistant operations.
type ErrorCode string

const (
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeServiceUnavailable indicates the service is not available.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeAgentExecutionFailed indicates agent execution failure.
	ErrCodeAgentExecutionFailed ErrorCode = "AGENT_EXECUTION_FAILED"
	// ErrCodeLoopGuardExceeded indicates the reasoning loop hit its
	// iteration cap without reaching a terminal answer.
	ErrCodeLoopGuardExceeded ErrorCode = "LOOP_GUARD_EXCEEDED"
	// ErrCodeRetrievalFailed indicates the report search failed.
	ErrCodeRetrievalFailed ErrorCode = "RETRIEVAL_FAILED"
	// ErrCodeLLMUnavailable indicates the LLM service is not available.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// AIError represents a structured error for assistant operations.
type AIError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AIError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *AIError) WithContext(key string, value interface{}) *AIError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetCode returns the error code.
func (e *AIError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *AIError {
	return &AIError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *AIError {
	return &AIError{Code: ErrCodeInvalidArgument, Message: msg}
}

// ServiceUnavailable creates a service unavailable error.
func ServiceUnavailable(msg string) *AIError {
	return &AIError{Code: ErrCodeServiceUnavailable, Message: msg}
}

// AgentExecutionFailed creates an agent execution failed error.
func AgentExecutionFailed(msg string, cause error) *AIError {
	return &AIError{Code: ErrCodeAgentExecutionFailed, Message: msg, Cause: cause}
}

// LoopGuardExceeded creates a loop guard exceeded error.
func LoopGuardExceeded(cause error) *AIError {
	return &AIError{Code: ErrCodeLoopGuardExceeded, Message: "reasoning loop did not terminate", Cause: cause}
}

// RetrievalFailed creates a retrieval failed error.
func RetrievalFailed(msg string, cause error) *AIError {
	return &AIError{Code: ErrCodeRetrievalFailed, Message: msg, Cause: cause}
}

// LLMUnavailable creates an LLM unavailable error.
func LLMUnavailable(msg string) *AIError {
	return &AIError{Code: ErrCodeLLMUnavailable, Message: msg}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *AIError {
	return &AIError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string) *AIError {
	return &AIError{Code: ErrCodeTimeout, Message: msg}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *AIError {
	return &AIError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error (or anything it wraps) carries a specific code.
func IsCode(err error, code ErrorCode) bool {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if no AIError is found in the chain.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr.Code
	}
	return defaultCode
}
