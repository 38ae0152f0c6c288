// Package testutils provides programmable collaborator stubs. Each stub
// exposes a function field for the behavior under test and counts calls so
// assertions can verify which collaborators a path actually touched.
package testutils

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

// StubClassifier returns a fixed or programmed classification.
type StubClassifier struct {
	ClassifyFunc func(ctx context.Context, query string) (ports.Classification, error)
	Calls        atomic.Int64
}

func (s *StubClassifier) Classify(ctx context.Context, query string) (ports.Classification, error) {
	s.Calls.Add(1)
	if s.ClassifyFunc != nil {
		return s.ClassifyFunc(ctx, query)
	}
	return ports.Classification{Intent: domain.IntentPolicy, Confidence: 1}, nil
}

// ClassifyAs builds a classifier that always yields the given intent.
func ClassifyAs(intent domain.Intent) *StubClassifier {
	return &StubClassifier{ClassifyFunc: func(context.Context, string) (ports.Classification, error) {
		return ports.Classification{Intent: intent, Confidence: 1}, nil
	}}
}

// StubCompleter returns programmed completions in sequence, repeating the
// last one once the script runs out.
type StubCompleter struct {
	CompleteFunc func(ctx context.Context, req ports.CompletionRequest) (ports.Completion, error)
	Script       []ports.Completion
	Calls        atomic.Int64
}

func (s *StubCompleter) Complete(ctx context.Context, req ports.CompletionRequest) (ports.Completion, error) {
	n := s.Calls.Add(1)
	if s.CompleteFunc != nil {
		return s.CompleteFunc(ctx, req)
	}
	if len(s.Script) == 0 {
		return ports.Completion{Text: "ok"}, nil
	}
	i := int(n) - 1
	if i >= len(s.Script) {
		i = len(s.Script) - 1
	}
	return s.Script[i], nil
}

// StubRetriever returns fixed chunks.
type StubRetriever struct {
	RetrieveFunc func(ctx context.Context, query string, k int) ([]ports.Chunk, error)
	Chunks       []ports.Chunk
	Calls        atomic.Int64
}

func (s *StubRetriever) Retrieve(ctx context.Context, query string, k int) ([]ports.Chunk, error) {
	s.Calls.Add(1)
	if s.RetrieveFunc != nil {
		return s.RetrieveFunc(ctx, query, k)
	}
	return s.Chunks, nil
}

// StubCalendar returns fixed slots and records reschedule and booking
// requests.
type StubCalendar struct {
	GetAvailabilityFunc func(ctx context.Context, preferredDate, preferredProvider string) ([]domain.Slot, error)
	RescheduleFunc      func(ctx context.Context, eventID string, newStart, newEnd time.Time, reason string) (ports.RescheduleResult, error)
	CreateFunc          func(ctx context.Context, start, end time.Time, provider, attendee string) (ports.Appointment, error)

	Slots []domain.Slot

	AvailabilityCalls atomic.Int64
	RescheduleCalls   atomic.Int64
	CreateCalls       atomic.Int64
}

func (s *StubCalendar) GetAvailability(ctx context.Context, preferredDate, preferredProvider string) ([]domain.Slot, error) {
	s.AvailabilityCalls.Add(1)
	if s.GetAvailabilityFunc != nil {
		return s.GetAvailabilityFunc(ctx, preferredDate, preferredProvider)
	}
	return s.Slots, nil
}

func (s *StubCalendar) Reschedule(ctx context.Context, eventID string, newStart, newEnd time.Time, reason string) (ports.RescheduleResult, error) {
	s.RescheduleCalls.Add(1)
	if s.RescheduleFunc != nil {
		return s.RescheduleFunc(ctx, eventID, newStart, newEnd, reason)
	}
	return ports.RescheduleResult{Success: true, Message: "moved"}, nil
}

func (s *StubCalendar) CreateAppointment(ctx context.Context, start, end time.Time, provider, attendee string) (ports.Appointment, error) {
	s.CreateCalls.Add(1)
	if s.CreateFunc != nil {
		return s.CreateFunc(ctx, start, end, provider, attendee)
	}
	return ports.Appointment{ID: "appt-stub", Start: start, End: end, Provider: provider}, nil
}

// StubEscalator records hand-off requests.
type StubEscalator struct {
	EscalateFunc func(ctx context.Context, userKey, reason string) (ports.EscalationResult, error)
	Calls        atomic.Int64
	LastReason   string
}

func (s *StubEscalator) EscalateToHuman(ctx context.Context, userKey, reason string) (ports.EscalationResult, error) {
	s.Calls.Add(1)
	s.LastReason = reason
	if s.EscalateFunc != nil {
		return s.EscalateFunc(ctx, userKey, reason)
	}
	return ports.EscalationResult{Success: true, EscalationID: "esc-stub"}, nil
}

// TestSlots is a small fixed slot set for scheduling tests.
func TestSlots() []domain.Slot {
	base := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	return []domain.Slot{
		{ID: "s1", Start: base, End: base.Add(30 * time.Minute), Provider: "Dr. Amara Osei"},
		{ID: "s2", Start: base.Add(time.Hour), End: base.Add(90 * time.Minute), Provider: "Dr. Amara Osei"},
		{ID: "s3", Start: base.Add(2 * time.Hour), End: base.Add(150 * time.Minute), Provider: "Dr. Felix Navarro"},
	}
}
