package sim

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

const (
	// windowDays bounds how far ahead the simulated clinic books.
	windowDays = 14

	// maxOffered keeps a single availability response readable.
	maxOffered = 12

	slotLength = 30 * time.Minute
)

// Calendar generates availability from the embedded provider roster and
// keeps bookings in memory. Slot ids are deterministic functions of
// provider and start time so repeated fetches offer stable ids.
type Calendar struct {
	providers []providerSpec
	now       func() time.Time

	mu       sync.Mutex
	seq      int
	bookings map[string]ports.Appointment
	moves    map[string]time.Time
}

func NewCalendar() (*Calendar, error) {
	providers, err := loadProviders()
	if err != nil {
		return nil, err
	}
	return &Calendar{
		providers: providers,
		now:       time.Now,
		bookings:  make(map[string]ports.Appointment),
		moves:     make(map[string]time.Time),
	}, nil
}

// WithClock overrides the time source. Tests pin it for stable windows.
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	c.now = now
	return c
}

func (c *Calendar) GetAvailability(_ context.Context, preferredDate, preferredProvider string) ([]domain.Slot, error) {
	today := c.now().Truncate(24 * time.Hour)
	first, last := today.AddDate(0, 0, 1), today.AddDate(0, 0, windowDays)

	if preferredDate != "" {
		want, err := time.Parse("2006-01-02", preferredDate)
		if err == nil {
			if want.After(last) {
				return nil, ports.ErrDateBeyondWindow
			}
			if !want.Before(first) {
				first, last = want, want
			}
		}
		// An unparseable date is treated as no preference.
	}

	var slots []domain.Slot
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		for _, p := range c.providers {
			if preferredProvider != "" &&
				!strings.Contains(strings.ToLower(p.Name), strings.ToLower(preferredProvider)) {
				continue
			}
			if !worksOn(p, day.Weekday()) {
				continue
			}
			for h := p.StartHour; h < p.EndHour; h++ {
				start := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, day.Location())
				if c.isBooked(p.Name, start) {
					continue
				}
				slots = append(slots, domain.Slot{
					ID:       slotID(p.Name, start),
					Start:    start,
					End:      start.Add(slotLength),
					Provider: p.Name,
				})
				if len(slots) >= maxOffered {
					return slots, nil
				}
			}
		}
	}
	return slots, nil
}

func (c *Calendar) Reschedule(_ context.Context, eventID string, newStart, newEnd time.Time, reason string) (ports.RescheduleResult, error) {
	if eventID == "" {
		return ports.RescheduleResult{Success: false, Message: "no event to move"}, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if appt, ok := c.bookings[eventID]; ok {
		appt.Start, appt.End = newStart, newEnd
		c.bookings[eventID] = appt
	}
	c.moves[eventID] = newStart
	return ports.RescheduleResult{
		Success: true,
		Message: fmt.Sprintf("event %s moved to %s", eventID, newStart.Format(time.RFC3339)),
	}, nil
}

func (c *Calendar) CreateAppointment(_ context.Context, start, end time.Time, provider, attendee string) (ports.Appointment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	appt := ports.Appointment{
		ID:       fmt.Sprintf("appt-%d", c.seq),
		Start:    start,
		End:      end,
		Provider: provider,
	}
	c.bookings[appt.ID] = appt
	return appt, nil
}

// Moves reports where an event was last rescheduled to. Test hook.
func (c *Calendar) Moves() map[string]time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]time.Time, len(c.moves))
	for k, v := range c.moves {
		out[k] = v
	}
	return out
}

func (c *Calendar) isBooked(provider string, start time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, appt := range c.bookings {
		if appt.Provider == provider && appt.Start.Equal(start) {
			return true
		}
	}
	return false
}

func worksOn(p providerSpec, day time.Weekday) bool {
	for _, wd := range p.Weekdays {
		if time.Weekday(wd) == day {
			return true
		}
	}
	return false
}

func slotID(provider string, start time.Time) string {
	initials := ""
	for _, part := range strings.Fields(provider) {
		initials += strings.ToLower(part[:1])
	}
	return fmt.Sprintf("%s-%s", initials, start.Format("20060102-1504"))
}
