package domain

// UIPhase describes which interaction surface the client should show.
type UIPhase string

const (
	PhaseChatting       UIPhase = "chatting"
	PhaseSelectingTime  UIPhase = "selecting_time"
	PhaseConfirmingTime UIPhase = "confirming_time"
	PhaseEscalated      UIPhase = "escalated"
	PhasePolicyQA       UIPhase = "policy_qa"
)

// Intent is the last-classified routing intent for the current utterance.
type Intent string

const (
	IntentNone       Intent = ""
	IntentPolicy     Intent = "policy"
	IntentScheduling Intent = "scheduling"
	IntentUnknown    Intent = "unknown"
)

// State is the single source of truth for one conversation thread.
// It is mutated exclusively through Apply (per-field reducers) and is
// persisted to the thread store after every node execution.
type State struct {
	ThreadID string    `json:"thread_id"`
	Messages []Message `json:"messages"`
	UIPhase  UIPhase   `json:"ui_phase"`

	// PendingInterrupt is non-nil if and only if the graph is suspended
	// waiting on exactly that decision.
	PendingInterrupt *Interrupt `json:"pending_interrupt,omitempty"`

	// UserQuery is the raw utterance being processed by the current pass.
	// Terminal nodes must clear it; a stale query re-enters the intent
	// node and loops forever.
	UserQuery string `json:"user_query,omitempty"`

	Intent Intent `json:"intent,omitempty"`

	// UserEscalated is sticky: once true it stays true for the life of
	// the thread and all routing degrades to informational handling.
	UserEscalated bool `json:"user_escalated,omitempty"`

	// Scheduling sub-state.
	PreferredDate     string `json:"preferred_date,omitempty"`
	PreferredProvider string `json:"preferred_provider,omitempty"`
	AvailableSlots    []Slot `json:"available_slots,omitempty"`
	SelectedSlotID    string `json:"selected_slot_id,omitempty"`
	ExistingEventID   string `json:"existing_event_id,omitempty"`

	// ConfirmDecision holds the user's answer to a confirm-time interrupt
	// until the confirmation node consumes it.
	ConfirmDecision *bool `json:"confirm_decision,omitempty"`

	// Short-lived routing flags, reset by the node that consumes them.
	SlotsUnacceptable  bool `json:"slots_unacceptable,omitempty"`
	DateBeyondWindow   bool `json:"date_beyond_window,omitempty"`
	EscalationRequired bool `json:"escalation_required,omitempty"`
}

// NewState creates the default state for a fresh thread.
func NewState(threadID string) *State {
	return &State{
		ThreadID: threadID,
		Messages: []Message{},
		UIPhase:  PhaseChatting,
	}
}

// SlotByID looks up an offered slot. The second return is false for a
// stale or unknown id; callers treat that as a recoverable condition.
func (s *State) SlotByID(id string) (Slot, bool) {
	for _, slot := range s.AvailableSlots {
		if slot.ID == id {
			return slot, true
		}
	}
	return Slot{}, false
}

// Clone returns a deep copy safe for handing to observers while the
// engine keeps mutating the original.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Messages = make([]Message, len(s.Messages))
	copy(next.Messages, s.Messages)
	next.AvailableSlots = make([]Slot, len(s.AvailableSlots))
	copy(next.AvailableSlots, s.AvailableSlots)
	if s.PendingInterrupt != nil {
		in := *s.PendingInterrupt
		in.Slots = make([]Slot, len(s.PendingInterrupt.Slots))
		copy(in.Slots, s.PendingInterrupt.Slots)
		next.PendingInterrupt = &in
	}
	if s.ConfirmDecision != nil {
		d := *s.ConfirmDecision
		next.ConfirmDecision = &d
	}
	return &next
}
