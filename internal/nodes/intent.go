package nodes

import (
	"context"

	"github.com/Dima11235813/wellness-clinic-agent/internal/runtime"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

// GreetingMessage opens a brand-new thread.
const GreetingMessage = "Hi! I'm the clinic assistant. I can answer questions about our policies or help you schedule an appointment. What can I do for you?"

const classifierApology = "I'm having a little trouble understanding requests right now, so I'll treat that as a question and do my best to answer it."

// IntentNode classifies a fresh utterance and hands it to the policy or
// scheduling branch. It is the graph's entry point and the fixed point
// every cycle returns to.
type IntentNode struct {
	deps Deps
}

func NewIntentNode(deps Deps) *IntentNode {
	return &IntentNode{deps: deps.WithDefaults()}
}

func (n *IntentNode) Name() string { return NodeIntent }

func (n *IntentNode) Run(ctx context.Context, state *domain.State) (runtime.Result, error) {
	// Nothing to classify. A fresh thread gets a one-time greeting; an
	// established thread quiesces silently.
	if state.UserQuery == "" {
		if len(state.Messages) == 0 {
			return runtime.Result{
				Patch: domain.Patch{
					AppendMessages: []domain.Message{n.deps.message(domain.RoleAssistant, GreetingMessage)},
					UIPhase:        domain.Ptr(domain.PhaseChatting),
				},
				Next: runtime.End,
			}, nil
		}
		return runtime.Result{Next: runtime.End}, nil
	}

	// Escalated users are never offered automated scheduling again,
	// whatever the classifier would say.
	if state.UserEscalated {
		return runtime.Result{
			Patch: domain.Patch{
				Intent: domain.Ptr(domain.IntentPolicy),
				AppendMessages: []domain.Message{
					n.deps.message(domain.RoleAssistant, "A member of our team is already in the loop. Let me see what I can tell you in the meantime."),
				},
			},
		}, nil
	}

	result, err := n.deps.Classifier.Classify(ctx, state.UserQuery)
	if err != nil {
		n.deps.Logger.Warn("intent classification failed, defaulting to policy",
			"thread_id", state.ThreadID, "error", err)
		return runtime.Result{
			Patch: domain.Patch{
				Intent:         domain.Ptr(domain.IntentPolicy),
				AppendMessages: []domain.Message{n.deps.message(domain.RoleAssistant, classifierApology)},
			},
		}, nil
	}

	// Confidence is advisory only: routing proceeds on the raw label,
	// and unknown falls back to the self-limiting policy branch.
	intent := result.Intent
	if intent != domain.IntentScheduling && intent != domain.IntentPolicy {
		intent = domain.IntentUnknown
	}
	n.deps.Logger.Debug("intent classified",
		"thread_id", state.ThreadID, "intent", intent,
		"confidence", result.Confidence, "reason", result.Reason)

	patch := domain.Patch{Intent: domain.Ptr(intent)}
	if intent == domain.IntentScheduling {
		// The policy branch acknowledges with its own progress message;
		// doubling up here would read as stuttering.
		patch.AppendMessages = []domain.Message{
			n.deps.message(domain.RoleAssistant, "Happy to help with scheduling. One moment while I check the calendar."),
		}
	}
	return runtime.Result{Patch: patch}, nil
}

// RouteIntent is the conditional edge out of the intent node.
func RouteIntent(state *domain.State) string {
	if state.Intent == domain.IntentScheduling && !state.UserEscalated {
		return NodeOfferAgent
	}
	return NodePolicy
}
