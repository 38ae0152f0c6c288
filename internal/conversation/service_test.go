package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dima11235813/wellness-clinic-agent/internal/adapters/memory"
	"github.com/Dima11235813/wellness-clinic-agent/internal/adapters/sim"
	"github.com/Dima11235813/wellness-clinic-agent/internal/nodes"
	"github.com/Dima11235813/wellness-clinic-agent/internal/runtime"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

// newTestService wires the full graph against the simulated backend so
// turns here exercise the same paths production traffic does.
func newTestService(t *testing.T, store ports.ThreadStore) (*Service, *sim.Suite) {
	t.Helper()
	suite, err := sim.NewSuite()
	require.NoError(t, err)
	// Pin the clock so the roster always has upcoming availability.
	suite.Calendar.WithClock(func() time.Time {
		return time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)
	})

	seq := 0
	deps := nodes.Deps{
		Classifier: suite.Classifier,
		Completer:  suite.Completer,
		Retriever:  suite.Retriever,
		Calendar:   suite.Calendar,
		Escalator:  suite.Escalator,
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	}
	return NewService(store, deps, nil), suite
}

func assistantTexts(state *domain.State) []string {
	var out []string
	for _, m := range state.Messages {
		if m.Role == domain.RoleAssistant {
			out = append(out, m.Text)
		}
	}
	return out
}

func TestGreetingOnFreshThread(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	res, err := svc.StartTurn(context.Background(), "t1", "")
	require.NoError(t, err)

	assert.Equal(t, runtime.Ended, res.Disposition)
	texts := assistantTexts(res.State)
	require.Len(t, texts, 1)
	assert.Equal(t, nodes.GreetingMessage, texts[0])
	assert.Equal(t, domain.PhaseChatting, res.State.UIPhase)
}

func TestPolicyQuestionAnsweredWithCitations(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	res, err := svc.StartTurn(context.Background(), "t1", "What is the cancellation fee?")
	require.NoError(t, err)

	assert.Equal(t, runtime.Ended, res.Disposition)
	assert.Nil(t, res.Interrupt)

	texts := assistantTexts(res.State)
	require.Len(t, texts, 2)
	assert.Contains(t, texts[1], "$25")

	final := res.State.Messages[len(res.State.Messages)-1]
	require.NotEmpty(t, final.Citations)
	assert.Equal(t, "patient-handbook.pdf", final.Citations[0].SourceRef)

	// Transients reset, ready for an unrelated next turn.
	assert.Equal(t, "", res.State.UserQuery)
	assert.Equal(t, domain.IntentNone, res.State.Intent)
	assert.Equal(t, domain.PhaseChatting, res.State.UIPhase)
}

func TestUngroundedQuestionDeclined(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	res, err := svc.StartTurn(context.Background(), "t1", "Do you validate parking?")
	require.NoError(t, err)

	assert.Equal(t, runtime.Ended, res.Disposition)
	texts := assistantTexts(res.State)
	assert.Equal(t, nodes.PolicyDeclineMessage, texts[len(texts)-1])
}

func TestScheduleHappyPath(t *testing.T) {
	svc, suite := newTestService(t, memory.New())
	ctx := context.Background()

	// Turn 1: the request suspends on slot selection.
	res, err := svc.StartTurn(ctx, "t1", "I need to schedule an appointment")
	require.NoError(t, err)
	assert.Equal(t, runtime.Suspended, res.Disposition)
	require.NotNil(t, res.Interrupt)
	assert.Equal(t, domain.InterruptSelectTime, res.Interrupt.Kind)
	require.NotEmpty(t, res.Interrupt.Slots)
	assert.Equal(t, domain.PhaseSelectingTime, res.State.UIPhase)

	// Turn 2: picking a slot suspends again on confirmation.
	picked := res.Interrupt.Slots[0]
	res, err = svc.ResumeTurn(ctx, "t1", domain.ResumePayload{
		Kind:   domain.InterruptSelectTime,
		SlotID: picked.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, runtime.Suspended, res.Disposition)
	require.NotNil(t, res.Interrupt)
	assert.Equal(t, domain.InterruptConfirmTime, res.Interrupt.Kind)
	assert.Equal(t, picked.ID, res.Interrupt.SelectedSlotID)
	assert.Equal(t, domain.PhaseConfirmingTime, res.State.UIPhase)

	// Turn 3: confirming books it and resets the thread.
	res, err = svc.ResumeTurn(ctx, "t1", domain.ResumePayload{
		Kind:    domain.InterruptConfirmTime,
		Confirm: domain.Ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, runtime.Ended, res.Disposition)
	assert.Nil(t, res.Interrupt)

	texts := assistantTexts(res.State)
	assert.Contains(t, texts[len(texts)-1], "You're all set!")
	assert.Equal(t, domain.PhaseChatting, res.State.UIPhase)
	assert.Empty(t, res.State.AvailableSlots)
	assert.Equal(t, "", res.State.SelectedSlotID)

	// The booking landed in the calendar backend.
	booked, err := suite.Calendar.GetAvailability(ctx, "", "")
	require.NoError(t, err)
	for _, s := range booked {
		assert.NotEqual(t, picked.ID, s.ID)
	}
}

func TestScheduleRejectionOffersFreshSlots(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	ctx := context.Background()

	res, err := svc.StartTurn(ctx, "t1", "book an appointment please")
	require.NoError(t, err)
	require.NotNil(t, res.Interrupt)

	res, err = svc.ResumeTurn(ctx, "t1", domain.ResumePayload{
		Kind:   domain.InterruptSelectTime,
		SlotID: res.Interrupt.Slots[0].ID,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Interrupt)
	require.Equal(t, domain.InterruptConfirmTime, res.Interrupt.Kind)

	// Declining loops back through a fresh availability fetch.
	res, err = svc.ResumeTurn(ctx, "t1", domain.ResumePayload{
		Kind:    domain.InterruptConfirmTime,
		Confirm: domain.Ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, runtime.Suspended, res.Disposition)
	require.NotNil(t, res.Interrupt)
	assert.Equal(t, domain.InterruptSelectTime, res.Interrupt.Kind)
	assert.NotEmpty(t, res.Interrupt.Slots)
	assert.False(t, res.State.UserEscalated)
}

func TestScheduleNoneEscalates(t *testing.T) {
	svc, suite := newTestService(t, memory.New())
	ctx := context.Background()

	res, err := svc.StartTurn(ctx, "t1", "book an appointment please")
	require.NoError(t, err)
	require.NotNil(t, res.Interrupt)

	res, err = svc.ResumeTurn(ctx, "t1", domain.ResumePayload{
		Kind:   domain.InterruptSelectTime,
		SlotID: domain.SlotNone,
	})
	require.NoError(t, err)
	assert.Equal(t, runtime.Ended, res.Disposition)
	assert.Nil(t, res.Interrupt)
	assert.True(t, res.State.UserEscalated)
	assert.Equal(t, domain.PhaseEscalated, res.State.UIPhase)

	escalations := suite.Escalator.Escalations()
	require.Len(t, escalations, 1)
	assert.Equal(t, "t1", escalations[0].UserKey)
	assert.Equal(t, "times-unacceptable", escalations[0].Reason)
}

func TestEscalatedThreadNeverSchedulesAgain(t *testing.T) {
	svc, suite := newTestService(t, memory.New())
	ctx := context.Background()

	res, err := svc.StartTurn(ctx, "t1", "book an appointment please")
	require.NoError(t, err)
	require.NotNil(t, res.Interrupt)
	_, err = svc.ResumeTurn(ctx, "t1", domain.ResumePayload{
		Kind:   domain.InterruptSelectTime,
		SlotID: domain.SlotNone,
	})
	require.NoError(t, err)

	// A later scheduling request is handled informationally only.
	res, err = svc.StartTurn(ctx, "t1", "actually, book an appointment anyway")
	require.NoError(t, err)
	assert.Equal(t, runtime.Ended, res.Disposition)
	assert.Nil(t, res.Interrupt)
	assert.True(t, res.State.UserEscalated)
	assert.Empty(t, res.State.AvailableSlots)

	// No second page goes out for the same thread.
	assert.Len(t, suite.Escalator.Escalations(), 1)
}

func TestStartTurnWhileSuspendedIsRejected(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	ctx := context.Background()

	_, err := svc.StartTurn(ctx, "t1", "book an appointment please")
	require.NoError(t, err)

	_, err = svc.StartTurn(ctx, "t1", "also, what are your hours?")
	assert.ErrorIs(t, err, domain.ErrTurnInProgress)
}

func TestResumeWithoutPendingInterrupt(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	ctx := context.Background()

	_, err := svc.StartTurn(ctx, "t1", "What is the cancellation fee?")
	require.NoError(t, err)

	_, err = svc.ResumeTurn(ctx, "t1", domain.ResumePayload{
		Kind:   domain.InterruptSelectTime,
		SlotID: "s1",
	})
	assert.ErrorIs(t, err, domain.ErrNoPendingInterrupt)
}

func TestResumeKindMismatch(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	ctx := context.Background()

	_, err := svc.StartTurn(ctx, "t1", "book an appointment please")
	require.NoError(t, err)

	_, err = svc.ResumeTurn(ctx, "t1", domain.ResumePayload{
		Kind:    domain.InterruptConfirmTime,
		Confirm: domain.Ptr(true),
	})
	var protoErr *domain.ProtocolError
	require.True(t, errors.As(err, &protoErr))
	assert.Equal(t, domain.InterruptSelectTime, protoErr.Expected)
	assert.Equal(t, domain.InterruptConfirmTime, protoErr.Got)
}

func TestResumeUnknownThread(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	_, err := svc.ResumeTurn(context.Background(), "ghost", domain.ResumePayload{
		Kind:   domain.InterruptSelectTime,
		SlotID: "s1",
	})
	assert.ErrorIs(t, err, domain.ErrThreadNotFound)
}

func TestSuspensionSurvivesServiceRestart(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	first, _ := newTestService(t, store)
	res, err := first.StartTurn(ctx, "t1", "I need to schedule an appointment")
	require.NoError(t, err)
	require.NotNil(t, res.Interrupt)
	picked := res.Interrupt.Slots[0]

	// A brand-new service instance over the same store picks the turn
	// up exactly where it parked.
	second, _ := newTestService(t, store)
	res, err = second.ResumeTurn(ctx, "t1", domain.ResumePayload{
		Kind:   domain.InterruptSelectTime,
		SlotID: picked.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, runtime.Suspended, res.Disposition)
	assert.Equal(t, domain.InterruptConfirmTime, res.Interrupt.Kind)
}

func TestWatchStreamsSnapshots(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	ctx := context.Background()

	states, cancel := svc.Watch("t1")
	defer cancel()

	_, err := svc.StartTurn(ctx, "t1", "What is the cancellation fee?")
	require.NoError(t, err)

	// One snapshot per executed node; the policy path runs two nodes.
	var seen []domain.State
	for len(seen) < 2 {
		select {
		case s := <-states:
			seen = append(seen, s)
		default:
			t.Fatalf("expected at least 2 snapshots, got %d", len(seen))
		}
	}
	last := seen[len(seen)-1]
	assert.Equal(t, "t1", last.ThreadID)
	assert.NotEmpty(t, last.Messages)
}

func TestSnapshotAndThreads(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	ctx := context.Background()

	_, err := svc.StartTurn(ctx, "t1", "What are your hours?")
	require.NoError(t, err)

	state, err := svc.Snapshot(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", state.ThreadID)

	ids, err := svc.Threads(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "t1")

	_, err = svc.Snapshot(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrThreadNotFound)
}
