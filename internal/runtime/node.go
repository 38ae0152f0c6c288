package runtime

import (
	"context"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

// End is the sentinel next-node name that terminates a turn.
const End = "end"

// Result is what a node execution produces: a partial-state patch plus
// where to go next. A patch carrying an interrupt halts the run regardless
// of Next. An empty Next defers the choice to the router registered for
// the node; a node with neither Next nor a router is an unroutable state.
type Result struct {
	Patch domain.Patch
	Next  string
}

// Node is a unit of work in the conversation graph. Run reads the state
// and returns a delta; it must never mutate the state directly, and it
// must contain collaborator failures rather than returning them (an error
// from Run is treated as an engine-level bug).
type Node interface {
	Name() string
	Run(ctx context.Context, state *domain.State) (Result, error)
}

// Router is a pure function of state that selects the next node name.
// Returning End terminates the turn.
type Router func(state *domain.State) string
