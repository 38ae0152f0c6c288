package domain

// Patch is a partial state update produced by a single node execution.
// Each field has its own reducer semantics, applied by State.Apply:
//
//   - AppendMessages: append-only, never replaces the log
//   - AvailableSlots: whole-value replace (an empty slice legitimately
//     clears the previous fetch)
//   - UserEscalated: monotonic, can only be raised
//   - everything else: replace-wins-last, nil pointer means "untouched"
type Patch struct {
	AppendMessages []Message

	UIPhase *UIPhase

	Interrupt      *Interrupt
	ClearInterrupt bool

	UserQuery *string
	Intent    *Intent

	// UserEscalated raises the sticky flag. There is deliberately no way
	// to lower it.
	UserEscalated bool

	PreferredDate     *string
	PreferredProvider *string
	AvailableSlots    *[]Slot
	SelectedSlotID    *string
	ExistingEventID   *string

	ConfirmDecision      *bool
	ClearConfirmDecision bool

	SlotsUnacceptable  *bool
	DateBeyondWindow   *bool
	EscalationRequired *bool
}

// Suspends reports whether applying this patch parks the graph.
func (p Patch) Suspends() bool {
	return p.Interrupt != nil
}

// Apply merges a patch into the state using the per-field reducers.
// Applying the same scalar patch twice is idempotent; message appends
// are the only non-idempotent reducer by design.
func (s *State) Apply(p Patch) {
	s.Messages = append(s.Messages, p.AppendMessages...)

	if p.UIPhase != nil {
		s.UIPhase = *p.UIPhase
	}
	if p.ClearInterrupt {
		s.PendingInterrupt = nil
	}
	if p.Interrupt != nil {
		s.PendingInterrupt = p.Interrupt
	}
	if p.UserQuery != nil {
		s.UserQuery = *p.UserQuery
	}
	if p.Intent != nil {
		s.Intent = *p.Intent
	}
	if p.UserEscalated {
		s.UserEscalated = true
	}
	if p.PreferredDate != nil {
		s.PreferredDate = *p.PreferredDate
	}
	if p.PreferredProvider != nil {
		s.PreferredProvider = *p.PreferredProvider
	}
	if p.AvailableSlots != nil {
		s.AvailableSlots = *p.AvailableSlots
	}
	if p.SelectedSlotID != nil {
		s.SelectedSlotID = *p.SelectedSlotID
	}
	if p.ExistingEventID != nil {
		s.ExistingEventID = *p.ExistingEventID
	}
	if p.ClearConfirmDecision {
		s.ConfirmDecision = nil
	}
	if p.ConfirmDecision != nil {
		d := *p.ConfirmDecision
		s.ConfirmDecision = &d
	}
	if p.SlotsUnacceptable != nil {
		s.SlotsUnacceptable = *p.SlotsUnacceptable
	}
	if p.DateBeyondWindow != nil {
		s.DateBeyondWindow = *p.DateBeyondWindow
	}
	if p.EscalationRequired != nil {
		s.EscalationRequired = *p.EscalationRequired
	}
}

// Ptr is a small helper for building patches from literals.
func Ptr[T any](v T) *T { return &v }
