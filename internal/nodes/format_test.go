package nodes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

func TestFormatSlotTime(t *testing.T) {
	slot := domain.Slot{
		Start:    time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2026, time.September, 1, 9, 30, 0, 0, time.UTC),
		Provider: "Dr. Amara Osei",
	}
	assert.Equal(t, "Tuesday, September 1, 9:00 AM–9:30 AM with Dr. Amara Osei", FormatSlotTime(slot))

	slot.Provider = ""
	assert.Equal(t, "Tuesday, September 1, 9:00 AM–9:30 AM", FormatSlotTime(slot))
}

func TestFormatSlotList(t *testing.T) {
	slots := []domain.Slot{
		{Start: time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC), End: time.Date(2026, time.September, 1, 9, 30, 0, 0, time.UTC)},
		{Start: time.Date(2026, time.September, 2, 14, 0, 0, 0, time.UTC), End: time.Date(2026, time.September, 2, 14, 30, 0, 0, time.UTC)},
	}
	out := FormatSlotList(slots)
	assert.Contains(t, out, "1. Tuesday, September 1")
	assert.Contains(t, out, "2. Wednesday, September 2")
	assert.Contains(t, out, `Reply "none" if none of these work.`)
}
