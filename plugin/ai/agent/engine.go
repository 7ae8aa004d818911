package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/finsense/plugin/ai/timeout"
)

// Transition is the router's verdict after an oracle step.
type Transition string

const (
	// TransitionTools routes to tool execution.
	TransitionTools Transition = "tools"
	// TransitionTerminate ends the turn; the last message is the answer.
	TransitionTerminate Transition = "terminate"
)

// Route inspects the most recent message and decides whether to execute the
// requested tools or terminate the turn. Pure function of the last message.
func Route(state *State) Transition {
	last := state.LastMessage()
	if last != nil && len(last.ToolCalls) > 0 {
		return TransitionTools
	}
	return TransitionTerminate
}

// Engine drives one turn of the agent state machine:
// mem_manager -> oracle -> (tools -> oracle)* -> terminal.
type Engine struct {
	memory        *MemoryManager
	oracle        *Oracle
	tools         *ToolRegistry
	maxIterations int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxIterations overrides the oracle/tool loop iteration cap.
func WithMaxIterations(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// NewEngine creates a new Engine.
func NewEngine(memory *MemoryManager, oracle *Oracle, tools *ToolRegistry, opts ...EngineOption) (*Engine, error) {
	if memory == nil {
		return nil, fmt.Errorf("memory manager cannot be nil")
	}
	if oracle == nil {
		return nil, fmt.Errorf("oracle cannot be nil")
	}
	if tools == nil {
		tools = NewToolRegistry()
	}
	e := &Engine{
		memory:        memory,
		oracle:        oracle,
		tools:         tools,
		maxIterations: timeout.MaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Turn runs the state machine to completion for one user message, mutating
// the state in place. It returns the final answer text. The turn is
// synchronous; the context cancels both model and tool calls.
func (e *Engine) Turn(ctx context.Context, state *State, userText string) (string, error) {
	start := time.Now()

	state.Append(NewUserMessage(userText))

	update, err := e.memory.Manage(ctx, state)
	if err != nil {
		return "", fmt.Errorf("memory manager: %w", err)
	}
	if !update.IsZero() {
		state.Apply(update)
	}

	for iteration := 0; iteration < e.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("turn cancelled: %w", err)
		}

		decision, err := e.oracle.Decide(ctx, state)
		if err != nil {
			return "", err
		}
		state.Append(decision)

		if Route(state) == TransitionTerminate {
			answer := decision.Text()
			if strings.TrimSpace(answer) == "" {
				return "", ErrEmptyAnswer
			}
			slog.Debug("turn completed",
				slog.Int("iterations", iteration+1),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			return answer, nil
		}

		e.executeTools(ctx, state, decision.ToolCalls)
	}

	return "", &LoopGuardError{Iterations: e.maxIterations}
}

// executeTools runs every tool call of the latest assistant message and
// appends a tool message per call. Tool-level failures become tool result
// text for the oracle to reason about, never a turn failure; control always
// returns to the oracle.
func (e *Engine) executeTools(ctx context.Context, state *State, calls []ToolCall) {
	for _, call := range calls {
		state.Append(NewToolMessage(call.ID, e.runTool(ctx, call)))
	}
}

func (e *Engine) runTool(ctx context.Context, call ToolCall) string {
	tool, exists := e.tools.Get(call.Name)
	if !exists {
		slog.Warn("unknown tool requested", slog.String("tool", call.Name))
		return fmt.Sprintf("tool not found: %s", call.Name)
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout.ToolExecutionTimeout)
	defer cancel()

	start := time.Now()
	result, err := tool.Run(execCtx, call.Arguments)
	if err != nil {
		slog.Warn("tool execution failed",
			slog.String("tool", call.Name),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fmt.Sprintf("tool %s failed: %v", call.Name, err)
	}

	slog.Debug("tool executed",
		slog.String("tool", call.Name),
		slog.Int("output_length", len(result)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return result
}
