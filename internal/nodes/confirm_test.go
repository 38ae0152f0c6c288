package nodes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dima11235813/wellness-clinic-agent/internal/testutils"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

func schedulingState() *domain.State {
	state := domain.NewState("t1")
	state.AvailableSlots = testutils.TestSlots()
	state.UIPhase = domain.PhaseSelectingTime
	return state
}

func TestConfirmRaisesConfirmInterrupt(t *testing.T) {
	deps, _, _, _, _, _ := testDeps()
	node := NewConfirmNode(deps)

	state := schedulingState()
	state.SelectedSlotID = "s1"
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	require.NotNil(t, res.Patch.Interrupt)
	assert.Equal(t, domain.InterruptConfirmTime, res.Patch.Interrupt.Kind)
	assert.Equal(t, "s1", res.Patch.Interrupt.SelectedSlotID)
	assert.Equal(t, NodeConfirm, res.Patch.Interrupt.ResumeNode)
	require.NotNil(t, res.Patch.UIPhase)
	assert.Equal(t, domain.PhaseConfirmingTime, *res.Patch.UIPhase)
	require.Len(t, res.Patch.AppendMessages, 1)
	assert.Contains(t, res.Patch.AppendMessages[0].Text, "Just to confirm")
}

func TestConfirmStaleSlotReprompts(t *testing.T) {
	deps, _, _, _, _, _ := testDeps()
	node := NewConfirmNode(deps)

	state := schedulingState()
	state.SelectedSlotID = "vanished"
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	// Cleared and re-asked with the slots still on offer.
	require.NotNil(t, res.Patch.SelectedSlotID)
	assert.Equal(t, "", *res.Patch.SelectedSlotID)
	require.NotNil(t, res.Patch.Interrupt)
	assert.Equal(t, domain.InterruptSelectTime, res.Patch.Interrupt.Kind)
}

func TestConfirmNoSlotsEscalates(t *testing.T) {
	deps, _, _, _, _, _ := testDeps()
	node := NewConfirmNode(deps)

	state := domain.NewState("t1")
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, NodeEscalate, res.Next)
	require.NotNil(t, res.Patch.EscalationRequired)
	assert.True(t, *res.Patch.EscalationRequired)
}

func TestConfirmNoneSentinelEscalates(t *testing.T) {
	deps, _, _, _, _, _ := testDeps()
	node := NewConfirmNode(deps)

	state := schedulingState()
	state.SelectedSlotID = domain.SlotNone
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, NodeEscalate, res.Next)
	assert.True(t, res.Patch.UserEscalated)
	require.NotNil(t, res.Patch.SlotsUnacceptable)
	assert.True(t, *res.Patch.SlotsUnacceptable)
	require.Len(t, res.Patch.AppendMessages, 1)
	assert.Equal(t, escalationEmpathy, res.Patch.AppendMessages[0].Text)
	require.NotNil(t, res.Patch.UIPhase)
	assert.Equal(t, domain.PhaseEscalated, *res.Patch.UIPhase)
}

func TestConfirmRejectionFetchesFreshSlots(t *testing.T) {
	deps, _, _, _, _, _ := testDeps()
	node := NewConfirmNode(deps)

	state := schedulingState()
	state.SelectedSlotID = "s1"
	state.ConfirmDecision = domain.Ptr(false)
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, NodeOfferAgent, res.Next)
	assert.True(t, res.Patch.ClearConfirmDecision)
	require.NotNil(t, res.Patch.SelectedSlotID)
	assert.Equal(t, "", *res.Patch.SelectedSlotID)
}

func TestConfirmAcceptNewBookingGoesToNotify(t *testing.T) {
	deps, _, _, _, calendar, _ := testDeps()
	node := NewConfirmNode(deps)

	state := schedulingState()
	state.SelectedSlotID = "s1"
	state.ConfirmDecision = domain.Ptr(true)
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, NodeNotify, res.Next)
	assert.True(t, res.Patch.ClearConfirmDecision)
	assert.Zero(t, calendar.RescheduleCalls.Load())
}

func TestConfirmAcceptRescheduleMovesEvent(t *testing.T) {
	deps, _, _, _, calendar, _ := testDeps()
	var gotEventID string
	var gotStart time.Time
	calendar.RescheduleFunc = func(_ context.Context, eventID string, newStart, _ time.Time, _ string) (ports.RescheduleResult, error) {
		gotEventID, gotStart = eventID, newStart
		return ports.RescheduleResult{Success: true}, nil
	}
	node := NewConfirmNode(deps)

	state := schedulingState()
	state.SelectedSlotID = "s2"
	state.ExistingEventID = "evt-42"
	state.ConfirmDecision = domain.Ptr(true)
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, NodeNotify, res.Next)
	assert.Equal(t, "evt-42", gotEventID)
	slot, _ := state.SlotByID("s2")
	assert.Equal(t, slot.Start, gotStart)
	require.Len(t, res.Patch.AppendMessages, 1)
	assert.Contains(t, res.Patch.AppendMessages[0].Text, "moved your appointment")
}

func TestConfirmRescheduleConflictRetriesWithFreshSlots(t *testing.T) {
	deps, _, _, _, calendar, _ := testDeps()
	calendar.RescheduleFunc = func(context.Context, string, time.Time, time.Time, string) (ports.RescheduleResult, error) {
		return ports.RescheduleResult{Success: false, Message: "slot taken"}, nil
	}
	node := NewConfirmNode(deps)

	state := schedulingState()
	state.SelectedSlotID = "s1"
	state.ExistingEventID = "evt-42"
	state.ConfirmDecision = domain.Ptr(true)
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, NodeOfferAgent, res.Next)
	assert.True(t, res.Patch.ClearConfirmDecision)
	require.Len(t, res.Patch.AppendMessages, 1)
	assert.Contains(t, res.Patch.AppendMessages[0].Text, "just taken")
}

func TestConfirmRescheduleErrorRetries(t *testing.T) {
	deps, _, _, _, calendar, _ := testDeps()
	calendar.RescheduleFunc = func(context.Context, string, time.Time, time.Time, string) (ports.RescheduleResult, error) {
		return ports.RescheduleResult{}, errors.New("backend down")
	}
	node := NewConfirmNode(deps)

	state := schedulingState()
	state.SelectedSlotID = "s1"
	state.ExistingEventID = "evt-42"
	state.ConfirmDecision = domain.Ptr(true)
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, NodeOfferAgent, res.Next)
}

func TestConfirmShortCircuitAfterDecline(t *testing.T) {
	deps, _, _, _, _, _ := testDeps()
	node := NewConfirmNode(deps)

	state := schedulingState()
	state.EscalationRequired = true
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, NodeOfferAgent, res.Next)
	require.NotNil(t, res.Patch.EscalationRequired)
	assert.False(t, *res.Patch.EscalationRequired)
}

func TestConfirmWithoutSelectionReprompts(t *testing.T) {
	deps, _, _, _, _, _ := testDeps()
	node := NewConfirmNode(deps)

	state := schedulingState()
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	require.NotNil(t, res.Patch.Interrupt)
	assert.Equal(t, domain.InterruptSelectTime, res.Patch.Interrupt.Kind)
	assert.Len(t, res.Patch.Interrupt.Slots, 3)
}
