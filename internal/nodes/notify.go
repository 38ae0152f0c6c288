package nodes

import (
	"context"
	"fmt"

	"github.com/Dima11235813/wellness-clinic-agent/internal/runtime"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

// NotifyNode performs the booking side effect for new bookings (a
// reschedule already moved its event in the confirmation node) and
// delivers the confirmation message, then resets the thread to its idle
// chat baseline.
type NotifyNode struct {
	deps Deps
}

func NewNotifyNode(deps Deps) *NotifyNode {
	return &NotifyNode{deps: deps.WithDefaults()}
}

func (n *NotifyNode) Name() string { return NodeNotify }

func (n *NotifyNode) Run(ctx context.Context, state *domain.State) (runtime.Result, error) {
	slot, ok := state.SlotByID(state.SelectedSlotID)
	if state.SelectedSlotID == "" || !ok {
		// Unreachable given upstream guarantees; must not crash if a
		// future edge gets here early.
		n.deps.Logger.Warn("notify entered without a resolvable slot",
			"thread_id", state.ThreadID, "slot_id", state.SelectedSlotID)
		return runtime.Result{Patch: n.resetPatch(nil), Next: NodeIntent}, nil
	}

	if state.ExistingEventID == "" {
		_, err := n.deps.Calendar.CreateAppointment(ctx, slot.Start, slot.End, slot.Provider, state.ThreadID)
		if err != nil {
			// Best-effort in this MVP: the confirmation is about the
			// scheduling decision. See DESIGN.md for the known tension.
			n.deps.Logger.Error("appointment creation failed",
				"thread_id", state.ThreadID, "slot_id", slot.ID, "error", err)
		}
	}

	text := fmt.Sprintf("You're all set! Your appointment is booked for %s. We'll see you then.", FormatSlotTime(slot))
	if state.ExistingEventID != "" {
		text = fmt.Sprintf("You're all set! Your appointment has been moved to %s. We'll see you then.", FormatSlotTime(slot))
	}

	msgs := []domain.Message{n.deps.message(domain.RoleAssistant, text)}
	return runtime.Result{Patch: n.resetPatch(msgs), Next: NodeIntent}, nil
}

// resetPatch clears all scheduling transients, returning the thread to
// its idle baseline so the next turn starts fresh.
func (n *NotifyNode) resetPatch(msgs []domain.Message) domain.Patch {
	empty := []domain.Slot{}
	return domain.Patch{
		AppendMessages:       msgs,
		UIPhase:              domain.Ptr(domain.PhaseChatting),
		UserQuery:            domain.Ptr(""),
		Intent:               domain.Ptr(domain.IntentNone),
		SelectedSlotID:       domain.Ptr(""),
		ExistingEventID:      domain.Ptr(""),
		AvailableSlots:       &empty,
		PreferredDate:        domain.Ptr(""),
		PreferredProvider:    domain.Ptr(""),
		ClearConfirmDecision: true,
	}
}
