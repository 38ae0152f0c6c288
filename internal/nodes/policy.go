package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Dima11235813/wellness-clinic-agent/internal/runtime"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

// PolicyDeclineMessage is emitted verbatim when retrieval finds no
// grounding. No model call happens on that path, so there is nothing to
// hallucinate.
const PolicyDeclineMessage = "I couldn't find anything in our clinic policies that covers that, so I'd rather not guess. Our front desk at (555) 014-2200 can help with questions outside the policy handbook."

const policyProgressMessage = "Let me check the policy handbook..."

const policyApology = "I'm sorry, I ran into a problem looking that up. Please try again in a moment."

// validationNote is appended to conservatively rewritten answers.
const validationNote = "\n\n_(I've kept this answer strictly to what our policy documents state.)_"

// PolicyNode answers a grounded question using only retrieved context:
// retrieve, draft, judge, and conservatively rewrite if the judge rejects
// the draft. A single model pass cannot reliably self-verify groundedness,
// hence the independent judging pass.
type PolicyNode struct {
	deps Deps
}

func NewPolicyNode(deps Deps) *PolicyNode {
	return &PolicyNode{deps: deps.WithDefaults()}
}

func (n *PolicyNode) Name() string { return NodePolicy }

func (n *PolicyNode) Run(ctx context.Context, state *domain.State) (runtime.Result, error) {
	query := state.UserQuery
	progress := n.deps.message(domain.RoleAssistant, policyProgressMessage)

	chunks, err := n.deps.Retriever.Retrieve(ctx, query, n.deps.Config.RetrievalK)
	if err != nil {
		n.deps.Logger.Warn("retrieval failed", "thread_id", state.ThreadID, "error", err)
		return n.finish(progress, n.deps.message(domain.RoleAssistant, policyApology)), nil
	}

	if len(chunks) == 0 {
		return n.finish(progress, n.deps.message(domain.RoleAssistant, PolicyDeclineMessage)), nil
	}

	answer, err := n.draft(ctx, query, chunks)
	if err != nil {
		n.deps.Logger.Warn("draft completion failed", "thread_id", state.ThreadID, "error", err)
		return n.finish(progress, n.deps.message(domain.RoleAssistant, policyApology)), nil
	}

	verdict, err := n.judge(ctx, query, chunks, answer)
	if err != nil {
		// The draft exists; failing the judge is not worth discarding it.
		n.deps.Logger.Warn("validation pass failed, returning draft", "thread_id", state.ThreadID, "error", err)
	} else if !verdict.IsValid || verdict.Confidence < n.deps.Config.ValidationConfidence {
		n.deps.Logger.Debug("draft rejected by judge",
			"thread_id", state.ThreadID, "is_valid", verdict.IsValid,
			"confidence", verdict.Confidence, "reasoning", verdict.Reasoning)
		rewritten, rerr := n.rewrite(ctx, query, chunks)
		if rerr != nil {
			n.deps.Logger.Warn("conservative rewrite failed, returning draft", "thread_id", state.ThreadID, "error", rerr)
		} else {
			answer = rewritten + validationNote
		}
	}

	final := n.deps.message(domain.RoleAssistant, answer)
	final.Citations = citations(chunks)
	return n.finish(progress, final), nil
}

// finish assembles the terminal patch: both messages in order, transient
// query and intent cleared (each question is independently classified),
// back to the chat surface.
func (n *PolicyNode) finish(msgs ...domain.Message) runtime.Result {
	return runtime.Result{
		Patch: domain.Patch{
			AppendMessages: msgs,
			UIPhase:        domain.Ptr(domain.PhaseChatting),
			UserQuery:      domain.Ptr(""),
			Intent:         domain.Ptr(domain.IntentNone),
		},
		Next: runtime.End,
	}
}

func (n *PolicyNode) draft(ctx context.Context, query string, chunks []ports.Chunk) (string, error) {
	prompt := fmt.Sprintf(`You are a clinic policy assistant. Answer the question using ONLY the context below. If the context does not contain the answer, say so plainly.

Context:
%s

Question: %s`, renderChunks(chunks), query)

	out, err := n.deps.Completer.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.PromptMessage{{Role: domain.RoleUser, Text: prompt}},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Text), nil
}

type judgeVerdict struct {
	IsValid    bool    `json:"isValid"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func (n *PolicyNode) judge(ctx context.Context, query string, chunks []ports.Chunk, answer string) (judgeVerdict, error) {
	prompt := fmt.Sprintf(`You are a strict grounding judge. Given the context, the question and a drafted answer, decide whether every claim in the answer is supported by the context.

Context:
%s

Question: %s

Answer: %s

Respond with JSON only: {"isValid": bool, "confidence": number between 0 and 1, "reasoning": string}`, renderChunks(chunks), query, answer)

	out, err := n.deps.Completer.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.PromptMessage{{Role: domain.RoleUser, Text: prompt}},
	})
	if err != nil {
		return judgeVerdict{}, err
	}

	var v judgeVerdict
	if err := json.Unmarshal([]byte(extractJSONObject(out.Text)), &v); err != nil {
		return judgeVerdict{}, fmt.Errorf("unparseable judge verdict: %w", err)
	}
	return v, nil
}

func (n *PolicyNode) rewrite(ctx context.Context, query string, chunks []ports.Chunk) (string, error) {
	prompt := fmt.Sprintf(`Answer the question below using ONLY literal statements from the context. Do not infer, generalize or combine facts. If the context does not literally answer the question, say the policy does not state it.

Context:
%s

Question: %s`, renderChunks(chunks), query)

	out, err := n.deps.Completer.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.PromptMessage{{Role: domain.RoleUser, Text: prompt}},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Text), nil
}

func renderChunks(chunks []ports.Chunk) string {
	var b strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&b, "[%d] (%s, p.%d) %s\n", i+1, c.SourceRef, c.PageNumber, c.Content)
	}
	return b.String()
}

func citations(chunks []ports.Chunk) []domain.Citation {
	out := make([]domain.Citation, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, domain.Citation{
			SourceRef:  c.SourceRef,
			PageNumber: c.PageNumber,
			Score:      c.Score,
		})
	}
	return out
}

// extractJSONObject pulls the first {...} block out of model output that
// may be wrapped in prose or code fences.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}
	return text[start : end+1]
}
