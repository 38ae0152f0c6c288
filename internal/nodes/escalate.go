package nodes

import (
	"context"

	"github.com/Dima11235813/wellness-clinic-agent/internal/runtime"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

// Escalation reasons, evaluated in fixed priority order. Only the first
// matching condition's message reaches the user.
const (
	reasonBeyondWindow = "beyond-scheduling-window"
	reasonTimesBad     = "times-unacceptable"
	reasonNoSlots      = "no-slots-available"
	reasonGeneric      = "needs-assistance"
)

var escalationMessages = map[string]string{
	reasonBeyondWindow: "The date you're after is beyond how far out we can book online. I've asked our scheduling team to reach out and set this up for you directly.",
	reasonTimesBad:     "Since none of our open times work for you, I've asked our scheduling team to reach out and find something that fits your schedule.",
	reasonNoSlots:      "We don't have any open times at the moment, so I've asked our scheduling team to reach out as soon as something frees up.",
	reasonGeneric:      "I've asked a member of our team to step in and help you from here.",
}

// EscalateNode hands the thread to a human with a deterministic,
// explainable reason, and permanently downgrades the thread to
// informational-only handling.
type EscalateNode struct {
	deps Deps
}

func NewEscalateNode(deps Deps) *EscalateNode {
	return &EscalateNode{deps: deps.WithDefaults()}
}

func (n *EscalateNode) Name() string { return NodeEscalate }

func (n *EscalateNode) Run(ctx context.Context, state *domain.State) (runtime.Result, error) {
	reason := selectReason(state)

	res, err := n.deps.Escalator.EscalateToHuman(ctx, state.ThreadID, reason)
	if err != nil {
		// The page failing must never block the user-facing message.
		n.deps.Logger.Error("escalation notification failed",
			"thread_id", state.ThreadID, "reason", reason, "error", err)
	} else {
		n.deps.Logger.Info("thread escalated",
			"thread_id", state.ThreadID, "reason", reason, "escalation_id", res.EscalationID)
	}

	return runtime.Result{
		Patch: domain.Patch{
			AppendMessages:     []domain.Message{n.deps.message(domain.RoleAssistant, escalationMessages[reason])},
			UIPhase:            domain.Ptr(domain.PhaseEscalated),
			UserEscalated:      true,
			SlotsUnacceptable:  domain.Ptr(true),
			EscalationRequired: domain.Ptr(false),
			UserQuery:          domain.Ptr(""),
			Intent:             domain.Ptr(domain.IntentNone),
		},
		Next: NodeIntent,
	}, nil
}

// selectReason walks the fixed-priority decision table. Multiple flags
// can technically be set at once; the user only ever hears one framing.
func selectReason(state *domain.State) string {
	switch {
	case state.DateBeyondWindow:
		return reasonBeyondWindow
	case state.SlotsUnacceptable:
		return reasonTimesBad
	case len(state.AvailableSlots) == 0:
		return reasonNoSlots
	default:
		return reasonGeneric
	}
}
