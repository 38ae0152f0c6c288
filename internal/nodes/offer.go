package nodes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/Dima11235813/wellness-clinic-agent/internal/runtime"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

const noSlotsApology = "I'm sorry — I wasn't able to pull up any appointment times just now. I can connect you with our scheduling team instead."

// The offer pipeline is three nodes rather than one so slot-fetching stays
// a tool call the model may precede with clarifying questions, while the
// graph (not the model) owns every control-flow transition.

// OfferAgentNode asks the model for availability with the single
// get_availability tool bound, and records whether it issued a call.
type OfferAgentNode struct {
	deps Deps
}

func NewOfferAgentNode(deps Deps) *OfferAgentNode {
	return &OfferAgentNode{deps: deps.WithDefaults()}
}

func (n *OfferAgentNode) Name() string { return NodeOfferAgent }

func (n *OfferAgentNode) Run(ctx context.Context, state *domain.State) (runtime.Result, error) {
	date := orAny(state.PreferredDate)
	provider := orAny(state.PreferredProvider)

	prompt := fmt.Sprintf(
		"The patient wants to %s an appointment. Preferred date: %s. Preferred provider: %s. Use the get_availability tool to fetch candidate slots.",
		bookingVerb(state), date, provider)

	out, err := n.deps.Completer.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.PromptMessage{{Role: domain.RoleUser, Text: prompt}},
		Tools: []ports.ToolSpec{{
			Name:        ToolGetAvailability,
			Description: "Fetch open appointment slots for the clinic calendar.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"preferred_date":     map[string]any{"type": "string"},
					"preferred_provider": map[string]any{"type": "string"},
				},
			},
		}},
	})
	if err != nil {
		// The model is advisory; the default path always fetches. Fall
		// back to a graph-issued call with the known preferences.
		n.deps.Logger.Warn("availability agent call failed, issuing direct tool call",
			"thread_id", state.ThreadID, "error", err)
		out = ports.Completion{ToolCalls: []domain.ToolCall{{
			ID:   "direct-" + n.deps.NewID(),
			Name: ToolGetAvailability,
			Args: map[string]any{"preferred_date": date, "preferred_provider": provider},
		}}}
	}

	msg := n.deps.message(domain.RoleAssistant, out.Text)
	msg.ToolCalls = out.ToolCalls
	return runtime.Result{
		Patch: domain.Patch{AppendMessages: []domain.Message{msg}},
		Next:  NodeOfferTools,
	}, nil
}

// OfferToolsNode executes the availability tool call, if one was issued,
// and records its result. The model must always see *some* tool result;
// an execution failure becomes a failure-shaped result, never a gap.
type OfferToolsNode struct {
	deps Deps
}

func NewOfferToolsNode(deps Deps) *OfferToolsNode {
	return &OfferToolsNode{deps: deps.WithDefaults()}
}

func (n *OfferToolsNode) Name() string { return NodeOfferTools }

func (n *OfferToolsNode) Run(ctx context.Context, state *domain.State) (runtime.Result, error) {
	call, ok := latestAvailabilityCall(state)
	if !ok {
		n.deps.Logger.Debug("no availability tool call issued", "thread_id", state.ThreadID)
		return runtime.Result{Next: NodeOfferFinalize}, nil
	}

	var args struct {
		PreferredDate     string `mapstructure:"preferred_date"`
		PreferredProvider string `mapstructure:"preferred_provider"`
	}
	if err := mapstructure.Decode(call.Args, &args); err != nil {
		n.deps.Logger.Warn("malformed tool call args", "thread_id", state.ThreadID, "error", err)
	}

	var text string
	patch := domain.Patch{}
	slots, err := n.deps.Calendar.GetAvailability(ctx, args.PreferredDate, args.PreferredProvider)
	if err != nil {
		n.deps.Logger.Warn("availability fetch failed", "thread_id", state.ThreadID, "error", err)
		if errors.Is(err, ports.ErrDateBeyondWindow) {
			patch.DateBeyondWindow = domain.Ptr(true)
		}
		text = fmt.Sprintf(`{"error":%q}`, err.Error())
	} else {
		buf, merr := json.Marshal(slots)
		if merr != nil {
			return runtime.Result{}, fmt.Errorf("marshal slots: %w", merr)
		}
		text = string(buf)
	}

	msg := n.deps.message(domain.RoleTool, text)
	msg.ToolCallID = call.ID
	patch.AppendMessages = []domain.Message{msg}
	return runtime.Result{
		Patch: patch,
		Next:  NodeOfferFinalize,
	}, nil
}

// OfferFinalizeNode parses the fetched slots, caps them for usability and
// parks the graph on a mandatory select-time interrupt; with nothing to
// offer it raises the escalation flags instead of dead-ending.
type OfferFinalizeNode struct {
	deps Deps
}

func NewOfferFinalizeNode(deps Deps) *OfferFinalizeNode {
	return &OfferFinalizeNode{deps: deps.WithDefaults()}
}

func (n *OfferFinalizeNode) Name() string { return NodeOfferFinalize }

func (n *OfferFinalizeNode) Run(ctx context.Context, state *domain.State) (runtime.Result, error) {
	slots := n.parseLatestResult(state)
	if len(slots) == 0 {
		return runtime.Result{Patch: domain.Patch{
			AppendMessages:     []domain.Message{n.deps.message(domain.RoleAssistant, noSlotsApology)},
			EscalationRequired: domain.Ptr(true),
			SlotsUnacceptable:  domain.Ptr(true),
		}}, nil
	}

	if len(slots) > n.deps.Config.SlotCap {
		slots = slots[:n.deps.Config.SlotCap]
	}

	prompt := "Here are the times I found. Which works for you?"
	return runtime.Result{Patch: domain.Patch{
		AppendMessages: []domain.Message{
			n.deps.message(domain.RoleAssistant, prompt+"\n\n"+FormatSlotList(slots)),
		},
		UIPhase:        domain.Ptr(domain.PhaseSelectingTime),
		AvailableSlots: &slots,
		Interrupt: &domain.Interrupt{
			Kind:       domain.InterruptSelectTime,
			Prompt:     prompt,
			Slots:      slots,
			Mandatory:  true,
			ResumeNode: NodeConfirm,
		},
	}}, nil
}

func (n *OfferFinalizeNode) parseLatestResult(state *domain.State) []domain.Slot {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		msg := state.Messages[i]
		if msg.Role == domain.RoleUser {
			// Tool results older than the current utterance belong to a
			// previous pass and must not be resurfaced.
			return nil
		}
		if msg.Role != domain.RoleTool {
			continue
		}
		slots, err := ParseSlotsPayload([]byte(msg.Text))
		if err != nil {
			n.deps.Logger.Warn("unparseable slot payload", "thread_id", state.ThreadID, "error", err)
			return nil
		}
		return slots
	}
	return nil
}

// RouteOffer routes past the finalize node. It only takes effect on the
// escalation path: the happy path raised an interrupt, so the engine has
// already halted and the confirm edge applies on resume instead.
func RouteOffer(state *domain.State) string {
	if state.EscalationRequired {
		return NodeEscalate
	}
	return NodeConfirm
}

func latestAvailabilityCall(state *domain.State) (domain.ToolCall, bool) {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		msg := state.Messages[i]
		if msg.Role != domain.RoleAssistant {
			continue
		}
		for _, call := range msg.ToolCalls {
			if call.Name == ToolGetAvailability {
				return call, true
			}
		}
		// The newest assistant turn decided not to call; older calls are
		// from previous passes and must not be replayed.
		return domain.ToolCall{}, false
	}
	return domain.ToolCall{}, false
}

func orAny(v string) string {
	if strings.TrimSpace(v) == "" {
		return "any"
	}
	return v
}

func bookingVerb(state *domain.State) string {
	if state.ExistingEventID != "" {
		return "reschedule"
	}
	return "book"
}
