package domain

import "time"

// Slot is a bookable appointment window. Start and End carry their UTC
// offset; there is no implicit clinic timezone anywhere in the core.
type Slot struct {
	ID       string    `json:"id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Provider string    `json:"provider,omitempty"`
}
