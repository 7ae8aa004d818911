// Package agent error definitions. All failures bubble to the turn driver;
// no node catches or retries locally.
package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingMessageID indicates a message selected for compression has
	// no stable ID, so targeted deletion is impossible. IDs must be assigned
	// at message creation; this is a fatal precondition violation.
	ErrMissingMessageID = errors.New("message has no stable id")

	// ErrEmptyAnswer indicates the terminal assistant message carried no
	// text. The boundary must report a failure instead of returning an
	// empty answer.
	ErrEmptyAnswer = errors.New("terminal message has empty text")
)

// LoopGuardError indicates the oracle/tool cycle exceeded the configured
// iteration cap within a single turn.
type LoopGuardError struct {
	Iterations int
}

func (e *LoopGuardError) Error() string {
	return fmt.Sprintf("loop guard exceeded: %d oracle iterations without a terminal answer", e.Iterations)
}

// IsLoopGuard reports whether err is a loop-guard failure.
func IsLoopGuard(err error) bool {
	var lge *LoopGuardError
	return errors.As(err, &lge)
}
