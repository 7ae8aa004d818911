package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIErrorFormatting(t *testing.T) {
	plain := ServiceUnavailable("store unreachable")
	assert.Equal(t, "[SERVICE_UNAVAILABLE] store unreachable", plain.Error())

	cause := errors.New("dial tcp: connection refused")
	wrapped := Wrap(cause, ErrCodeRetrievalFailed, "vector search failed")
	assert.Equal(t, "[RETRIEVAL_FAILED] vector search failed: dial tcp: connection refused", wrapped.Error())
	assert.True(t, errors.Is(wrapped, cause))
}

func TestAIErrorWithContext(t *testing.T) {
	err := InvalidArgument("query too long").
		WithContext("length", 1200).
		WithContext("limit", 1000)

	require.NotNil(t, err.Context)
	assert.Equal(t, 1200, err.Context["length"])
	assert.Equal(t, 1000, err.Context["limit"])
	assert.Equal(t, ErrCodeInvalidArgument, err.GetCode())
}

func TestConstructorCodes(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  *AIError
		code ErrorCode
	}{
		{RateLimitExceeded("slow down"), ErrCodeRateLimitExceeded},
		{InvalidArgument("bad input"), ErrCodeInvalidArgument},
		{ServiceUnavailable("down"), ErrCodeServiceUnavailable},
		{AgentExecutionFailed("turn failed", cause), ErrCodeAgentExecutionFailed},
		{LoopGuardExceeded(cause), ErrCodeLoopGuardExceeded},
		{RetrievalFailed("search failed", cause), ErrCodeRetrievalFailed},
		{LLMUnavailable("no provider"), ErrCodeLLMUnavailable},
		{ContextCanceled(cause), ErrCodeContextCanceled},
		{Timeout("deadline exceeded"), ErrCodeTimeout},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.True(t, IsCode(tt.err, tt.code))
		})
	}
}

func TestIsCodeUnwrapsChains(t *testing.T) {
	inner := LoopGuardExceeded(errors.New("5 iterations"))
	outer := fmt.Errorf("turn aborted: %w", inner)

	assert.True(t, IsCode(outer, ErrCodeLoopGuardExceeded))
	assert.False(t, IsCode(outer, ErrCodeTimeout))
	assert.False(t, IsCode(errors.New("plain"), ErrCodeTimeout))
}

func TestGetCodeFromError(t *testing.T) {
	inner := RetrievalFailed("search failed", errors.New("db down"))
	outer := fmt.Errorf("tool failed: %w", inner)

	assert.Equal(t, ErrCodeRetrievalFailed, GetCodeFromError(outer, ErrCodeAgentExecutionFailed))
	assert.Equal(t, ErrCodeAgentExecutionFailed, GetCodeFromError(errors.New("plain"), ErrCodeAgentExecutionFailed))
	assert.Equal(t, ErrCodeAgentExecutionFailed, GetCodeFromError(nil, ErrCodeAgentExecutionFailed))
}
