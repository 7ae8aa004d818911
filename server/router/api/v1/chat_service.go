package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/finsense/plugin/ai/agent"
	"github.com/hrygo/finsense/plugin/ai/timeout"
	apierrors "github.com/hrygo/finsense/server/internal/errors"
	"github.com/hrygo/finsense/server/internal/observability"
)

const maxQueryLength = 1000

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// ChatResponse carries the final assistant answer.
type ChatResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Chat runs one synchronous conversational turn. Turns on the same session
// are serialized; the response either carries a non-empty answer or a
// non-2xx status with a generic error body.
func (s *APIV1Service) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: string(apierrors.ErrCodeInvalidArgument)})
	}

	req.Query = strings.TrimSpace(req.Query)
	req.SessionID = strings.TrimSpace(req.SessionID)
	switch {
	case req.Query == "":
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "query is required", Code: string(apierrors.ErrCodeInvalidArgument)})
	case len(req.Query) > maxQueryLength:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "query too long (max " + strconv.Itoa(maxQueryLength) + " characters)", Code: string(apierrors.ErrCodeInvalidArgument)})
	case req.SessionID == "":
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "session_id is required", Code: string(apierrors.ErrCodeInvalidArgument)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout.TurnTimeout)
	defer cancel()

	reqCtx := observability.NewRequestContext(slog.Default(), req.SessionID)
	ctx = observability.WithRequestContext(ctx, reqCtx)

	// Concurrent turns on one session queue up in arrival order.
	release, err := s.locker.Acquire(ctx, req.SessionID)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "session busy", Code: string(apierrors.ErrCodeTimeout)})
	}
	defer release()

	metrics := observability.GlobalMetrics()
	metrics.RecordRequest(observability.OpChatTurn)

	state, err := s.Sessions.LoadState(ctx, req.SessionID)
	if err != nil {
		metrics.RecordFailure(observability.OpChatTurn)
		reqCtx.Error("failed to load session state", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: string(apierrors.ErrCodeServiceUnavailable)})
	}
	if state == nil {
		state = agent.NewState()
	}

	answer, err := s.Engine.Turn(ctx, state, req.Query)
	metrics.RecordDuration(observability.OpChatTurn, reqCtx.Duration())
	if err != nil {
		metrics.RecordFailure(observability.OpChatTurn)
		turnErr := classifyTurnError(ctx, err)
		code := apierrors.GetCodeFromError(turnErr, apierrors.ErrCodeAgentExecutionFailed)
		reqCtx.Error("turn failed", turnErr,
			slog.String(observability.LogFieldErrorCode, string(code)),
			slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to produce an answer", Code: string(code)})
	}

	// Persist the turn even if the client disconnects afterwards.
	if err := s.Sessions.SaveState(context.WithoutCancel(ctx), req.SessionID, state); err != nil {
		metrics.RecordFailure(observability.OpChatTurn)
		reqCtx.Error("failed to save session state", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: string(apierrors.ErrCodeServiceUnavailable)})
	}

	reqCtx.Info("turn completed",
		slog.Int("answer_length", len(answer)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))

	return c.JSON(http.StatusOK, ChatResponse{Answer: answer, SessionID: req.SessionID})
}

// classifyTurnError wraps an engine failure in a coded error so logging and
// the response body agree on the failure class.
func classifyTurnError(ctx context.Context, err error) *apierrors.AIError {
	switch {
	case agent.IsLoopGuard(err):
		return apierrors.LoopGuardExceeded(err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apierrors.Wrap(err, apierrors.ErrCodeTimeout, "turn deadline exceeded")
	case errors.Is(ctx.Err(), context.Canceled):
		return apierrors.ContextCanceled(err)
	default:
		return apierrors.AgentExecutionFailed("turn failed", err)
	}
}

// ListSessions returns recent sessions, most recently active first.
func (s *APIV1Service) ListSessions(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit", Code: string(apierrors.ErrCodeInvalidArgument)})
		}
		limit = parsed
	}

	summaries, err := s.Sessions.ListSessions(c.Request().Context(), limit)
	if err != nil {
		slog.Error("failed to list sessions", slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"sessions": summaries})
}

// DeleteSession removes one session and its stored state.
func (s *APIV1Service) DeleteSession(c echo.Context) error {
	sessionID := c.Param("id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "session id is required", Code: string(apierrors.ErrCodeInvalidArgument)})
	}

	if err := s.Sessions.DeleteSession(c.Request().Context(), sessionID); err != nil {
		slog.Error("failed to delete session", slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
	return c.NoContent(http.StatusNoContent)
}
