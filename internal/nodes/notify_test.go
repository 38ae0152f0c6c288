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

func TestNotifyBooksNewAppointment(t *testing.T) {
	deps, _, _, _, calendar, _ := testDeps()
	var gotProvider string
	calendar.CreateFunc = func(_ context.Context, start, end time.Time, provider, _ string) (ports.Appointment, error) {
		gotProvider = provider
		return ports.Appointment{ID: "appt-1", Start: start, End: end, Provider: provider}, nil
	}
	node := NewNotifyNode(deps)

	state := domain.NewState("t1")
	state.AvailableSlots = testutils.TestSlots()
	state.SelectedSlotID = "s1"
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, "Dr. Amara Osei", gotProvider)
	require.Len(t, res.Patch.AppendMessages, 1)
	assert.Contains(t, res.Patch.AppendMessages[0].Text, "booked for")
	assert.Equal(t, NodeIntent, res.Next)
}

func TestNotifyRescheduleSkipsCreation(t *testing.T) {
	deps, _, _, _, calendar, _ := testDeps()
	node := NewNotifyNode(deps)

	state := domain.NewState("t1")
	state.AvailableSlots = testutils.TestSlots()
	state.SelectedSlotID = "s1"
	state.ExistingEventID = "evt-42"
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Zero(t, calendar.CreateCalls.Load())
	assert.Contains(t, res.Patch.AppendMessages[0].Text, "moved to")
}

func TestNotifyCreationFailureStillConfirms(t *testing.T) {
	deps, _, _, _, calendar, _ := testDeps()
	calendar.CreateFunc = func(context.Context, time.Time, time.Time, string, string) (ports.Appointment, error) {
		return ports.Appointment{}, errors.New("backend down")
	}
	node := NewNotifyNode(deps)

	state := domain.NewState("t1")
	state.AvailableSlots = testutils.TestSlots()
	state.SelectedSlotID = "s1"
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, res.Patch.AppendMessages, 1)
	assert.Contains(t, res.Patch.AppendMessages[0].Text, "booked for")
}

func TestNotifyResetsSchedulingTransients(t *testing.T) {
	deps, _, _, _, _, _ := testDeps()
	node := NewNotifyNode(deps)

	state := domain.NewState("t1")
	state.AvailableSlots = testutils.TestSlots()
	state.SelectedSlotID = "s1"
	state.UserQuery = "reschedule please"
	state.Intent = domain.IntentScheduling
	state.UIPhase = domain.PhaseConfirmingTime
	state.PreferredDate = "2026-09-03"

	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)
	state.Apply(res.Patch)

	assert.Equal(t, domain.PhaseChatting, state.UIPhase)
	assert.Equal(t, "", state.UserQuery)
	assert.Equal(t, domain.IntentNone, state.Intent)
	assert.Equal(t, "", state.SelectedSlotID)
	assert.Equal(t, "", state.PreferredDate)
	assert.Empty(t, state.AvailableSlots)
	assert.Nil(t, state.ConfirmDecision)
}

func TestNotifyUnresolvableSlotResetsQuietly(t *testing.T) {
	deps, _, _, _, calendar, _ := testDeps()
	node := NewNotifyNode(deps)

	state := domain.NewState("t1")
	state.SelectedSlotID = "vanished"
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Empty(t, res.Patch.AppendMessages)
	assert.Equal(t, NodeIntent, res.Next)
	assert.Zero(t, calendar.CreateCalls.Load())
}
