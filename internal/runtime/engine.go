package runtime

import (
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

// Disposition is the outcome of one engine run.
type Disposition string

const (
	// Ended: the turn completed; no further user input is needed.
	Ended Disposition = "ended"
	// Suspended: a pending interrupt was raised and must be surfaced.
	Suspended Disposition = "suspended"
	// Errored: a graph invariant was violated (hop budget, unroutable
	// state, node bug). The only disposition treated as a defect.
	Errored Disposition = "error"
)

// DefaultMaxHops caps node executions per external call. Cycles back to
// the intent node are designed; anything approaching this bound is an
// accidental cycle introduced by a new edge.
const DefaultMaxHops = 25

// SnapshotFunc observes the state after every node execution. The state
// passed in is a private clone; observers may retain it.
type SnapshotFunc func(ctx context.Context, state *domain.State)

// Engine executes the conversation graph: named nodes joined by routers,
// one node at a time, until a node returns End, raises an interrupt, or
// the hop budget is exhausted. State is persisted after every node so a
// crash mid-turn loses at most one node's work.
type Engine struct {
	nodes   map[string]Node
	routers map[string]Router

	store   ports.ThreadStore
	entry   string
	maxHops int
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	observe SnapshotFunc
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithMaxHops overrides the per-turn hop budget.
func WithMaxHops(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxHops = n
		}
	}
}

// WithEntryNode sets the canonical entry point (default "intent").
func WithEntryNode(name string) Option {
	return func(e *Engine) { e.entry = name }
}

// WithSnapshotObserver registers a per-node state observer.
func WithSnapshotObserver(fn SnapshotFunc) Option {
	return func(e *Engine) { e.observe = fn }
}

// NewEngine creates an empty engine persisting to the given store.
func NewEngine(store ports.ThreadStore, opts ...Option) *Engine {
	e := &Engine{
		nodes:   make(map[string]Node),
		routers: make(map[string]Router),
		store:   store,
		entry:   "intent",
		maxHops: DefaultMaxHops,
		logger:  slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddNode registers a node under its name.
func (e *Engine) AddNode(n Node) *Engine {
	e.nodes[n.Name()] = n
	return e
}

// AddRouter registers the conditional edge function for a node. It is
// consulted when the node's result does not name an explicit successor.
func (e *Engine) AddRouter(node string, r Router) *Engine {
	e.routers[node] = r
	return e
}

// AddEdge registers a static edge as a constant router.
func (e *Engine) AddEdge(from, to string) *Engine {
	return e.AddRouter(from, func(*domain.State) string { return to })
}

// Entry returns the canonical entry node name.
func (e *Engine) Entry() string { return e.entry }

// Run executes the graph starting at the given node, mutating state in
// place, and returns the disposition. The returned error is non-nil only
// for the Errored disposition.
func (e *Engine) Run(ctx context.Context, state *domain.State, start string) (Disposition, error) {
	current := start
	hops := 0
	log := e.logger.With("thread_id", state.ThreadID)

	for {
		if hops >= e.maxHops {
			err := &domain.EngineError{Node: current, Hops: hops, Reason: "hop budget exceeded"}
			log.Error("turn aborted", "error", err, "ui_phase", state.UIPhase, "intent", state.Intent)
			e.emitTurnEnd(ctx, state, Errored, hops)
			return Errored, err
		}

		node, ok := e.nodes[current]
		if !ok {
			err := &domain.EngineError{Node: current, Hops: hops, Reason: "unknown node"}
			log.Error("turn aborted", "error", err)
			e.emitTurnEnd(ctx, state, Errored, hops)
			return Errored, err
		}

		hops++
		e.emitNodeEnter(ctx, state, current, hops)
		result, err := node.Run(ctx, state)
		if err != nil {
			// Nodes contain collaborator failures themselves; an error
			// here is a bug in the node.
			engErr := &domain.EngineError{Node: current, Hops: hops, Reason: err.Error()}
			log.Error("node failed", "node", current, "error", err)
			e.emitTurnEnd(ctx, state, Errored, hops)
			return Errored, engErr
		}

		state.Apply(result.Patch)
		e.persist(ctx, log, state)
		e.emitNodeLeave(ctx, state, current, hops)
		if e.observe != nil {
			e.observe(ctx, state.Clone())
		}

		if result.Patch.Suspends() {
			log.Debug("turn suspended", "node", current, "kind", state.PendingInterrupt.Kind, "hops", hops)
			e.emitInterrupt(ctx, state, current)
			e.emitTurnEnd(ctx, state, Suspended, hops)
			return Suspended, nil
		}

		next := result.Next
		if next == "" {
			router, ok := e.routers[current]
			if !ok {
				err := &domain.EngineError{Node: current, Hops: hops, Reason: "unroutable state: no successor and no router"}
				log.Error("turn aborted", "error", err, "ui_phase", state.UIPhase, "intent", state.Intent)
				e.emitTurnEnd(ctx, state, Errored, hops)
				return Errored, err
			}
			next = router(state)
		}

		if next == End {
			log.Debug("turn ended", "node", current, "hops", hops)
			e.emitTurnEnd(ctx, state, Ended, hops)
			return Ended, nil
		}

		// Designed fixed point: the graph cycles back to the entry node
		// after notify/escalate. With no query left to process there is
		// nothing to classify, so the turn is over.
		if next == e.entry && state.UserQuery == "" {
			log.Debug("turn ended at idle entry", "node", current, "hops", hops)
			e.emitTurnEnd(ctx, state, Ended, hops)
			return Ended, nil
		}

		current = next
	}
}

func (e *Engine) persist(ctx context.Context, log *slog.Logger, state *domain.State) {
	if e.store == nil {
		return
	}
	if err := e.store.Save(ctx, state.ThreadID, state); err != nil {
		// The turn still completes; only crash-resumability degrades.
		log.Warn("failed to persist state", "error", err)
	}
}

func (e *Engine) emitNodeEnter(ctx context.Context, state *domain.State, node string, hop int) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		Timestamp: time.Now(),
		Type:      domain.EventNodeEnter,
		ThreadID:  state.ThreadID,
		Node:      node,
		Hop:       hop,
	})
}

func (e *Engine) emitNodeLeave(ctx context.Context, state *domain.State, node string, hop int) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		Timestamp: time.Now(),
		Type:      domain.EventNodeLeave,
		ThreadID:  state.ThreadID,
		Node:      node,
		Hop:       hop,
	})
}

func (e *Engine) emitInterrupt(ctx context.Context, state *domain.State, node string) {
	if e.hooks.OnInterrupt == nil || state.PendingInterrupt == nil {
		return
	}
	e.hooks.OnInterrupt(ctx, &domain.InterruptEvent{
		Timestamp: time.Now(),
		ThreadID:  state.ThreadID,
		Node:      node,
		Kind:      state.PendingInterrupt.Kind,
	})
}

func (e *Engine) emitTurnEnd(ctx context.Context, state *domain.State, d Disposition, hops int) {
	if e.hooks.OnTurnEnd == nil {
		return
	}
	e.hooks.OnTurnEnd(ctx, &domain.TurnEvent{
		Timestamp:   time.Now(),
		ThreadID:    state.ThreadID,
		Disposition: string(d),
		Hops:        hops,
	})
}
