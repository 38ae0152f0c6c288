package nodes

import (
	"fmt"
	"strings"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

// FormatSlotTime renders a slot window for chat, keeping the slot's own
// offset rather than normalizing to a server timezone.
func FormatSlotTime(s domain.Slot) string {
	day := s.Start.Format("Monday, January 2")
	window := s.Start.Format("3:04 PM") + "–" + s.End.Format("3:04 PM")
	if s.Provider != "" {
		return fmt.Sprintf("%s, %s with %s", day, window, s.Provider)
	}
	return fmt.Sprintf("%s, %s", day, window)
}

// FormatSlotList renders a numbered menu of candidate slots.
func FormatSlotList(slots []domain.Slot) string {
	var b strings.Builder
	for i, s := range slots {
		fmt.Fprintf(&b, "%d. %s\n", i+1, FormatSlotTime(s))
	}
	b.WriteString("\nReply \"none\" if none of these work.")
	return b.String()
}
