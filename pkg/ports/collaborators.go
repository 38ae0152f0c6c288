package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

// Classification is the structured result of intent detection.
// Confidence is advisory; routing proceeds on the label.
type Classification struct {
	Intent     domain.Intent `json:"intent"`
	Confidence float64       `json:"confidence"`
	Reason     string        `json:"reason"`
}

// Classifier decides which branch a fresh utterance belongs to.
type Classifier interface {
	Classify(ctx context.Context, query string) (Classification, error)
}

// PromptMessage is one entry of a completion request.
type PromptMessage struct {
	Role domain.Role
	Text string
}

// ToolSpec describes a callable tool offered to the completion model.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// CompletionRequest is the input to a single model call. Tools is optional;
// when present the model may answer with tool calls instead of text.
type CompletionRequest struct {
	Messages []PromptMessage
	Tools    []ToolSpec
}

// Completion is a model response: free text, tool calls, or both.
type Completion struct {
	Text      string
	ToolCalls []domain.ToolCall
}

// Completer is the language-model collaborator. Implementations enforce
// their own timeouts; callers contain every error at the node boundary.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// Chunk is one retrieved grounding passage.
type Chunk struct {
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	PageNumber int     `json:"page_number"`
	SourceRef  string  `json:"source_ref"`
}

// Retriever returns the top-k passages relevant to a query.
// An empty result is valid and means "no grounding exists".
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Chunk, error)
}

// ErrDateBeyondWindow is returned by GetAvailability when the requested
// date falls outside the backend's booking window.
var ErrDateBeyondWindow = errors.New("requested date is beyond the scheduling window")

// RescheduleResult reports the outcome of moving an existing booking.
type RescheduleResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Appointment is a booking created in the calendar backend.
type Appointment struct {
	ID       string    `json:"id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Provider string    `json:"provider"`
}

// Calendar is the scheduling backend collaborator.
type Calendar interface {
	// GetAvailability returns candidate slots. Empty preferences mean "any".
	// An empty result is valid.
	GetAvailability(ctx context.Context, preferredDate, preferredProvider string) ([]domain.Slot, error)

	// Reschedule moves an existing event to a new window.
	Reschedule(ctx context.Context, eventID string, newStart, newEnd time.Time, reason string) (RescheduleResult, error)

	// CreateAppointment books a new event. May fail; callers must not
	// propagate the failure past the node boundary.
	CreateAppointment(ctx context.Context, start, end time.Time, provider, attendee string) (Appointment, error)
}

// EscalationResult reports a human hand-off request.
type EscalationResult struct {
	Success      bool   `json:"success"`
	EscalationID string `json:"escalation_id"`
}

// Escalator pages a human with a stable per-thread key and a reason.
type Escalator interface {
	EscalateToHuman(ctx context.Context, userKey, reason string) (EscalationResult, error)
}
