package nodes

import (
	"encoding/json"
	"fmt"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

// ParseSlotsPayload decodes candidate slots from a tool result. The
// intermediate representation varies (a bare array, an object with a
// "slots" field, or either of those as a JSON string), so all defensive
// parsing is concentrated here instead of being scattered through nodes.
func ParseSlotsPayload(raw []byte) ([]domain.Slot, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("slot payload is not JSON: %w", err)
	}
	return slotsFromValue(payload)
}

func slotsFromValue(v any) ([]domain.Slot, error) {
	switch t := v.(type) {
	case []any:
		return decodeSlotList(t)
	case map[string]any:
		inner, ok := t["slots"]
		if !ok {
			return nil, fmt.Errorf("slot payload object has no slots field")
		}
		return slotsFromValue(inner)
	case string:
		// String-encoded JSON, one level deep only.
		var nested any
		if err := json.Unmarshal([]byte(t), &nested); err != nil {
			return nil, fmt.Errorf("slot payload string is not JSON: %w", err)
		}
		if _, again := nested.(string); again {
			return nil, fmt.Errorf("slot payload is doubly string-encoded")
		}
		return slotsFromValue(nested)
	default:
		return nil, fmt.Errorf("unsupported slot payload type %T", v)
	}
}

func decodeSlotList(items []any) ([]domain.Slot, error) {
	// Round-trip through JSON so time parsing follows the one canonical
	// path (RFC 3339 with offset).
	buf, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	var slots []domain.Slot
	if err := json.Unmarshal(buf, &slots); err != nil {
		return nil, fmt.Errorf("slot entries malformed: %w", err)
	}

	// Entries are unique by id; a duplicate is a data integrity problem
	// upstream, resolved here by keeping the first occurrence.
	seen := make(map[string]bool, len(slots))
	out := slots[:0]
	for _, s := range slots {
		if s.ID == "" || seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out, nil
}
