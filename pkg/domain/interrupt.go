package domain

// InterruptKind discriminates the decision an interrupt is waiting on.
type InterruptKind string

const (
	// InterruptSelectTime asks the user to pick one of the offered slots
	// (or the literal "none" sentinel).
	InterruptSelectTime InterruptKind = "select-time"

	// InterruptConfirmTime asks the user to confirm the selected slot.
	InterruptConfirmTime InterruptKind = "confirm-time"

	// InterruptStartSuggest is reserved for proactively suggesting a slot
	// before the user asks. No node raises it yet.
	InterruptStartSuggest InterruptKind = "start-suggest"
)

// SlotNone is the sentinel slot id meaning "none of these work".
const SlotNone = "none"

// Interrupt captures an outstanding question to the user. Its presence on a
// state means the graph is parked: not executing, persisted, awaiting a
// resume payload of the matching kind.
type Interrupt struct {
	Kind InterruptKind `json:"kind"`

	// Prompt is the human-readable question surfaced alongside the options.
	Prompt string `json:"prompt,omitempty"`

	// Slots are the candidate options for a select-time interrupt.
	Slots []Slot `json:"slots,omitempty"`

	// SelectedSlotID is the pre-selected option, if any (confirm-time).
	SelectedSlotID string `json:"selected_slot_id,omitempty"`

	// Mandatory means the graph cannot proceed without a response.
	Mandatory bool `json:"mandatory"`

	// ResumeNode is the graph node execution re-enters once the response
	// has been applied to the state.
	ResumeNode string `json:"resume_node"`
}
