package nodes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dima11235813/wellness-clinic-agent/internal/testutils"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

func TestEscalateReasonPriority(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*domain.State)
		want  string
	}{
		{
			"beyond window wins over everything",
			func(s *domain.State) {
				s.DateBeyondWindow = true
				s.SlotsUnacceptable = true
			},
			reasonBeyondWindow,
		},
		{
			"times unacceptable",
			func(s *domain.State) {
				s.SlotsUnacceptable = true
				s.AvailableSlots = testutils.TestSlots()
			},
			reasonTimesBad,
		},
		{
			"no slots available",
			func(s *domain.State) {},
			reasonNoSlots,
		},
		{
			"generic fallback",
			func(s *domain.State) { s.AvailableSlots = testutils.TestSlots() },
			reasonGeneric,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := domain.NewState("t1")
			tc.setup(state)
			assert.Equal(t, tc.want, selectReason(state))
		})
	}
}

func TestEscalatePagesHumanAndDowngradesThread(t *testing.T) {
	deps, _, _, _, _, escalator := testDeps()
	node := NewEscalateNode(deps)

	state := domain.NewState("t1")
	state.SlotsUnacceptable = true
	state.AvailableSlots = testutils.TestSlots()
	state.UserQuery = "none of these work"
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, int64(1), escalator.Calls.Load())
	assert.Equal(t, reasonTimesBad, escalator.LastReason)

	require.Len(t, res.Patch.AppendMessages, 1)
	assert.Equal(t, escalationMessages[reasonTimesBad], res.Patch.AppendMessages[0].Text)
	assert.True(t, res.Patch.UserEscalated)
	require.NotNil(t, res.Patch.UIPhase)
	assert.Equal(t, domain.PhaseEscalated, *res.Patch.UIPhase)
	require.NotNil(t, res.Patch.EscalationRequired)
	assert.False(t, *res.Patch.EscalationRequired)
	require.NotNil(t, res.Patch.UserQuery)
	assert.Equal(t, "", *res.Patch.UserQuery)
	assert.Equal(t, NodeIntent, res.Next)
}

func TestEscalatePagingFailureStillMessagesUser(t *testing.T) {
	deps, _, _, _, _, escalator := testDeps()
	escalator.EscalateFunc = func(context.Context, string, string) (ports.EscalationResult, error) {
		return ports.EscalationResult{}, errors.New("pager down")
	}
	node := NewEscalateNode(deps)

	state := domain.NewState("t1")
	res, err := node.Run(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, res.Patch.AppendMessages, 1)
	assert.Equal(t, escalationMessages[reasonNoSlots], res.Patch.AppendMessages[0].Text)
	assert.True(t, res.Patch.UserEscalated)
}
