package nodes

import (
	"context"
	"fmt"

	"github.com/Dima11235813/wellness-clinic-agent/internal/runtime"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

const escalationEmpathy = "I completely understand — none of those times work for you. Let me bring in a member of our scheduling team to sort this out personally."

// ConfirmNode drives the two-step "pick a slot, then confirm it"
// interaction. Its state machine is implicit in which state fields are
// set: no slot yet, slot picked, picked the "none" sentinel, or a
// confirmation answer waiting to be consumed.
type ConfirmNode struct {
	deps Deps
}

func NewConfirmNode(deps Deps) *ConfirmNode {
	return &ConfirmNode{deps: deps.WithDefaults()}
}

func (n *ConfirmNode) Name() string { return NodeConfirm }

func (n *ConfirmNode) Run(ctx context.Context, state *domain.State) (runtime.Result, error) {
	// Previously-declined short-circuit: the user already said no once
	// this pass; go straight back to fresh slots instead of re-asking.
	if state.EscalationRequired && state.ConfirmDecision == nil && state.SelectedSlotID == "" {
		return runtime.Result{
			Patch: domain.Patch{EscalationRequired: domain.Ptr(false)},
			Next:  NodeOfferAgent,
		}, nil
	}

	if state.ConfirmDecision != nil {
		return n.consumeDecision(ctx, state)
	}

	if state.SelectedSlotID == domain.SlotNone {
		// Hard escape hatch, distinct from merely rejecting one slot.
		return runtime.Result{
			Patch: domain.Patch{
				AppendMessages:     []domain.Message{n.deps.message(domain.RoleAssistant, escalationEmpathy)},
				UserEscalated:      true,
				EscalationRequired: domain.Ptr(true),
				SlotsUnacceptable:  domain.Ptr(true),
				SelectedSlotID:     domain.Ptr(""),
				UIPhase:            domain.Ptr(domain.PhaseEscalated),
			},
			Next: NodeEscalate,
		}, nil
	}

	if state.SelectedSlotID != "" {
		slot, ok := state.SlotByID(state.SelectedSlotID)
		if !ok {
			// Stale reference; recover by clearing it and re-prompting.
			n.deps.Logger.Warn("selected slot not among offered slots",
				"thread_id", state.ThreadID, "slot_id", state.SelectedSlotID)
			return n.promptSelection(state, domain.Patch{SelectedSlotID: domain.Ptr("")})
		}

		prompt := fmt.Sprintf("Just to confirm: %s. Shall I book it?", FormatSlotTime(slot))
		return runtime.Result{Patch: domain.Patch{
			AppendMessages: []domain.Message{n.deps.message(domain.RoleAssistant, prompt)},
			UIPhase:        domain.Ptr(domain.PhaseConfirmingTime),
			Interrupt: &domain.Interrupt{
				Kind:           domain.InterruptConfirmTime,
				Prompt:         prompt,
				SelectedSlotID: slot.ID,
				Mandatory:      true,
				ResumeNode:     NodeConfirm,
			},
		}}, nil
	}

	return n.promptSelection(state, domain.Patch{})
}

// promptSelection re-raises the select-time interrupt, or escalates when
// there is nothing to offer at all.
func (n *ConfirmNode) promptSelection(state *domain.State, patch domain.Patch) (runtime.Result, error) {
	if len(state.AvailableSlots) == 0 {
		patch.EscalationRequired = domain.Ptr(true)
		return runtime.Result{Patch: patch, Next: NodeEscalate}, nil
	}

	prompt := "Which of these times works for you?"
	patch.AppendMessages = append(patch.AppendMessages,
		n.deps.message(domain.RoleAssistant, prompt+"\n\n"+FormatSlotList(state.AvailableSlots)))
	patch.UIPhase = domain.Ptr(domain.PhaseSelectingTime)
	patch.Interrupt = &domain.Interrupt{
		Kind:       domain.InterruptSelectTime,
		Prompt:     prompt,
		Slots:      state.AvailableSlots,
		Mandatory:  true,
		ResumeNode: NodeConfirm,
	}
	return runtime.Result{Patch: patch}, nil
}

func (n *ConfirmNode) consumeDecision(ctx context.Context, state *domain.State) (runtime.Result, error) {
	accepted := *state.ConfirmDecision

	if !accepted {
		// "No" means "show me different slots", not "give up".
		return runtime.Result{
			Patch: domain.Patch{
				SelectedSlotID:       domain.Ptr(""),
				ClearConfirmDecision: true,
			},
			Next: NodeOfferAgent,
		}, nil
	}

	if state.ExistingEventID != "" {
		slot, ok := state.SlotByID(state.SelectedSlotID)
		if !ok {
			n.deps.Logger.Warn("confirmed slot disappeared before reschedule",
				"thread_id", state.ThreadID, "slot_id", state.SelectedSlotID)
			return n.promptSelection(state, domain.Patch{
				SelectedSlotID:       domain.Ptr(""),
				ClearConfirmDecision: true,
			})
		}

		reason := fmt.Sprintf("Patient requested reschedule via assistant, thread %s", state.ThreadID)
		res, err := n.deps.Calendar.Reschedule(ctx, state.ExistingEventID, slot.Start, slot.End, reason)
		if err != nil || !res.Success {
			// Reschedule conflicts are expected to be transient: retry
			// with fresh slots rather than escalating.
			n.deps.Logger.Warn("reschedule failed", "thread_id", state.ThreadID,
				"event_id", state.ExistingEventID, "error", err, "message", res.Message)
			return runtime.Result{
				Patch: domain.Patch{
					AppendMessages: []domain.Message{n.deps.message(domain.RoleAssistant,
						"That time was just taken on our end. Let me pull up some fresh options for you.")},
					SelectedSlotID:       domain.Ptr(""),
					ClearConfirmDecision: true,
				},
				Next: NodeOfferAgent,
			}, nil
		}

		return runtime.Result{
			Patch: domain.Patch{
				AppendMessages: []domain.Message{n.deps.message(domain.RoleAssistant,
					"Done — I've moved your appointment.")},
				ClearConfirmDecision: true,
			},
			Next: NodeNotify,
		}, nil
	}

	// New booking: the side effect happens in the notification node.
	return runtime.Result{
		Patch: domain.Patch{ClearConfirmDecision: true},
		Next:  NodeNotify,
	}, nil
}
