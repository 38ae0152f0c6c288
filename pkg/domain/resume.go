package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ResumePayload is the structured response that un-parks a suspended
// thread. Kind must match the pending interrupt's kind exactly.
type ResumePayload struct {
	Kind InterruptKind `json:"kind" mapstructure:"kind"`

	// SlotID answers a select-time interrupt. The literal "none" means
	// none of the offered slots work.
	SlotID string `json:"slot_id,omitempty" mapstructure:"slot_id"`

	// Confirm answers a confirm-time interrupt.
	Confirm *bool `json:"confirm,omitempty" mapstructure:"confirm"`
}

// DecodeResumePayload builds a ResumePayload from a loose map (as decoded
// from a JSON request body) and validates its shape.
func DecodeResumePayload(raw map[string]any) (ResumePayload, error) {
	var p ResumePayload
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(raw); err != nil {
		return p, &ProtocolError{Reason: fmt.Sprintf("malformed resume payload: %v", err)}
	}
	return p, p.Validate()
}

// Validate checks that the payload carries the fields its kind requires.
func (p ResumePayload) Validate() error {
	switch p.Kind {
	case InterruptSelectTime:
		if p.SlotID == "" {
			return &ProtocolError{Reason: "select-time resume requires slot_id"}
		}
	case InterruptConfirmTime:
		if p.Confirm == nil {
			return &ProtocolError{Reason: "confirm-time resume requires confirm"}
		}
	default:
		return &ProtocolError{Reason: fmt.Sprintf("unknown resume kind %q", p.Kind)}
	}
	return nil
}
