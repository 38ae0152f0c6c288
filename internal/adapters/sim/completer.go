package sim

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

// Completer is a rule-based stand-in for the language model. It recognises
// the three prompt shapes the graph issues and answers each one
// deterministically:
//
//   - availability requests with a tool bound produce a single tool call
//     whose args echo the stated preferences
//   - grounding-judge prompts produce an accepting JSON verdict
//   - grounded question prompts answer with the best-matching context line
type Completer struct {
	calls atomic.Int64
}

func NewCompleter() *Completer { return &Completer{} }

func (c *Completer) Complete(_ context.Context, req ports.CompletionRequest) (ports.Completion, error) {
	prompt := lastUserText(req.Messages)

	for _, tool := range req.Tools {
		if tool.Name == "get_availability" {
			return c.availabilityCall(tool.Name, prompt), nil
		}
	}

	if strings.Contains(prompt, "grounding judge") {
		return ports.Completion{
			Text: `{"isValid": true, "confidence": 0.92, "reasoning": "answer restates the context"}`,
		}, nil
	}

	return ports.Completion{Text: answerFromContext(prompt)}, nil
}

func (c *Completer) availabilityCall(tool, prompt string) ports.Completion {
	args := map[string]any{
		"preferred_date":     scanPreference(prompt, "Preferred date: "),
		"preferred_provider": scanPreference(prompt, "Preferred provider: "),
	}
	return ports.Completion{
		Text: "Let me pull up some open times for you.",
		ToolCalls: []domain.ToolCall{{
			ID:   fmt.Sprintf("sim-call-%d", c.calls.Add(1)),
			Name: tool,
			Args: args,
		}},
	}
}

// scanPreference lifts a "Preferred date: X." style value out of the
// availability prompt. "any" comes back empty, matching the calendar's
// convention for unconstrained searches.
func scanPreference(prompt, label string) string {
	i := strings.Index(prompt, label)
	if i < 0 {
		return ""
	}
	rest := prompt[i+len(label):]
	if j := strings.IndexAny(rest, ".\n"); j >= 0 {
		rest = rest[:j]
	}
	rest = strings.TrimSpace(rest)
	if strings.EqualFold(rest, "any") {
		return ""
	}
	return rest
}

// answerFromContext picks the context line sharing the most words with the
// question and paraphrases it as the answer. With no context lines at all
// it declines, mirroring what a well-prompted model should do.
func answerFromContext(prompt string) string {
	question := scanQuestion(prompt)
	lines := contextLines(prompt)
	if len(lines) == 0 {
		return "The policy documents I have do not state that."
	}

	best, bestScore := lines[0], -1
	qWords := wordSet(question)
	for _, line := range lines {
		score := 0
		for w := range wordSet(line) {
			if qWords[w] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = line, score
		}
	}
	return best
}

func scanQuestion(prompt string) string {
	i := strings.LastIndex(prompt, "Question: ")
	if i < 0 {
		return prompt
	}
	q := prompt[i+len("Question: "):]
	if j := strings.Index(q, "\n"); j >= 0 {
		q = q[:j]
	}
	return q
}

// contextLines extracts the numbered "[n] (source, p.x) content" entries.
func contextLines(prompt string) []string {
	var out []string
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "[") {
			continue
		}
		if i := strings.Index(line, ") "); i >= 0 {
			line = line[i+2:]
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,?!:;\"'")
		if len(w) > 3 {
			set[w] = true
		}
	}
	return set
}

func lastUserText(msgs []ports.PromptMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == domain.RoleUser {
			return msgs[i].Text
		}
	}
	return ""
}
