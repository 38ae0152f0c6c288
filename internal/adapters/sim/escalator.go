package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

// Escalation is one recorded hand-off request.
type Escalation struct {
	UserKey string
	Reason  string
}

// Escalator records hand-off requests in memory so demos and tests can
// inspect what would have been paged to a human.
type Escalator struct {
	mu   sync.Mutex
	seq  int
	seen []Escalation
}

func NewEscalator() *Escalator { return &Escalator{} }

func (e *Escalator) EscalateToHuman(_ context.Context, userKey, reason string) (ports.EscalationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	e.seen = append(e.seen, Escalation{UserKey: userKey, Reason: reason})
	return ports.EscalationResult{
		Success:      true,
		EscalationID: fmt.Sprintf("esc-%d", e.seq),
	}, nil
}

// Escalations returns a copy of everything recorded so far.
func (e *Escalator) Escalations() []Escalation {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Escalation, len(e.seen))
	copy(out, e.seen)
	return out
}
