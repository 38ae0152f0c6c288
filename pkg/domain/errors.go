package domain

import (
	"errors"
	"fmt"
)

// ErrThreadNotFound is returned when a thread id cannot be found in the store.
var ErrThreadNotFound = errors.New("thread not found")

// ErrNoPendingInterrupt is returned when a resume is attempted on a thread
// that is not suspended.
var ErrNoPendingInterrupt = errors.New("no pending interrupt")

// ErrTurnInProgress is returned when a new utterance arrives while the
// thread is parked on an interrupt. The client must resume (or the UI must
// translate the utterance into a resume payload) before starting a turn.
var ErrTurnInProgress = errors.New("thread is awaiting a resume")

// ProtocolError indicates caller misuse of the interrupt/resume contract.
// It is the one error category that crosses the transport boundary as an
// explicit failure rather than a conversational message.
type ProtocolError struct {
	Reason   string
	Expected InterruptKind
	Got      InterruptKind
}

func (e *ProtocolError) Error() string {
	if e.Expected != "" || e.Got != "" {
		return fmt.Sprintf("protocol error: %s (expected %q, got %q)", e.Reason, e.Expected, e.Got)
	}
	return "protocol error: " + e.Reason
}

// EngineError indicates a graph invariant violation (hop budget exceeded,
// unroutable state). These are bugs to investigate, not expected paths.
type EngineError struct {
	Node   string
	Hops   int
	Reason string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error at node %q after %d hops: %s", e.Node, e.Hops, e.Reason)
}
