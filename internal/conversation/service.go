package conversation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dima11235813/wellness-clinic-agent/internal/nodes"
	"github.com/Dima11235813/wellness-clinic-agent/internal/runtime"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

// TurnResult is what a completed (or suspended) turn hands back to the
// transport layer.
type TurnResult struct {
	Disposition runtime.Disposition `json:"disposition"`
	State       *domain.State       `json:"state"`
	Interrupt   *domain.Interrupt   `json:"interrupt,omitempty"`
}

// Service is the core surface exposed to transports: it owns the graph
// engine, the thread store and the per-thread snapshot watchers.
type Service struct {
	engine *runtime.Engine
	store  ports.ThreadStore
	logger *slog.Logger
	clock  nodes.Clock
	newID  func() string

	mu       sync.Mutex
	watchers map[string]map[int]chan domain.State
	watchSeq int
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source (tests).
func WithClock(clock nodes.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// NewService wires a graph engine over the given store and collaborators.
func NewService(store ports.ThreadStore, deps nodes.Deps, engineOpts []runtime.Option, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
		clock:    time.Now,
		newID:    uuid.NewString,
		watchers: make(map[string]map[int]chan domain.State),
	}
	for _, opt := range opts {
		opt(s)
	}

	engineOpts = append(engineOpts, runtime.WithSnapshotObserver(s.broadcast))
	s.engine = BuildEngine(store, deps, engineOpts...)
	return s
}

// NewThreadID mints a fresh thread identifier.
func (s *Service) NewThreadID() string { return s.newID() }

// StartTurn appends the user's utterance to the thread (creating it on
// first contact) and runs the graph from the entry node. An empty
// utterance on a fresh thread produces the one-time greeting.
func (s *Service) StartTurn(ctx context.Context, threadID, utterance string) (*TurnResult, error) {
	state, err := s.loadOrCreate(ctx, threadID)
	if err != nil {
		return nil, err
	}

	if state.PendingInterrupt != nil {
		return nil, domain.ErrTurnInProgress
	}

	utterance = strings.TrimSpace(utterance)
	if utterance != "" {
		state.Apply(domain.Patch{
			AppendMessages: []domain.Message{{
				ID:        s.newID(),
				Role:      domain.RoleUser,
				Text:      utterance,
				CreatedAt: s.clock(),
			}},
			UserQuery: domain.Ptr(utterance),
		})
	}

	// Persist the inbound message before executing anything, so a crash
	// mid-graph never loses what the user said.
	if err := s.store.Save(ctx, threadID, state); err != nil {
		return nil, err
	}

	return s.run(ctx, state, s.engine.Entry())
}

// ResumeTurn applies a resume payload to a suspended thread and re-enters
// the graph at the node that requested the suspension.
func (s *Service) ResumeTurn(ctx context.Context, threadID string, payload domain.ResumePayload) (*TurnResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	state, err := s.store.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}

	pending := state.PendingInterrupt
	if pending == nil {
		return nil, domain.ErrNoPendingInterrupt
	}
	if payload.Kind != pending.Kind {
		return nil, &domain.ProtocolError{
			Reason:   "resume kind does not match the pending interrupt",
			Expected: pending.Kind,
			Got:      payload.Kind,
		}
	}

	patch := domain.Patch{ClearInterrupt: true}
	switch payload.Kind {
	case domain.InterruptSelectTime:
		patch.SelectedSlotID = domain.Ptr(payload.SlotID)
	case domain.InterruptConfirmTime:
		patch.ConfirmDecision = payload.Confirm
	}
	state.Apply(patch)

	if err := s.store.Save(ctx, threadID, state); err != nil {
		return nil, err
	}

	resumeAt := pending.ResumeNode
	if resumeAt == "" {
		resumeAt = s.engine.Entry()
	}
	return s.run(ctx, state, resumeAt)
}

// Snapshot returns the latest persisted state for a thread.
func (s *Service) Snapshot(ctx context.Context, threadID string) (*domain.State, error) {
	return s.store.Load(ctx, threadID)
}

// Threads lists the ids of all known threads.
func (s *Service) Threads(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Watch subscribes to per-node state snapshots for a thread. The returned
// cancel function must be called to release the subscription.
func (s *Service) Watch(threadID string) (<-chan domain.State, func()) {
	ch := make(chan domain.State, 16)

	s.mu.Lock()
	s.watchSeq++
	id := s.watchSeq
	if s.watchers[threadID] == nil {
		s.watchers[threadID] = make(map[int]chan domain.State)
	}
	s.watchers[threadID][id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if subs, ok := s.watchers[threadID]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(s.watchers, threadID)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Service) run(ctx context.Context, state *domain.State, start string) (*TurnResult, error) {
	disposition, err := s.engine.Run(ctx, state, start)
	result := &TurnResult{
		Disposition: disposition,
		State:       state.Clone(),
		Interrupt:   state.PendingInterrupt,
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

func (s *Service) loadOrCreate(ctx context.Context, threadID string) (*domain.State, error) {
	state, err := s.store.Load(ctx, threadID)
	if errors.Is(err, domain.ErrThreadNotFound) {
		s.logger.Debug("creating thread", "thread_id", threadID)
		return domain.NewState(threadID), nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// broadcast fans a snapshot out to the thread's watchers. Slow watchers
// drop snapshots rather than stalling the engine.
func (s *Service) broadcast(_ context.Context, state *domain.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.watchers[state.ThreadID] {
		select {
		case ch <- *state:
		default:
		}
	}
}
