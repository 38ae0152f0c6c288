package sim

import (
	"context"
	"strings"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

// Classifier labels utterances with keyword rules. Scheduling verbs win
// over policy nouns so "reschedule my appointment" never lands in the
// policy branch even though "appointment" appears in the handbook.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

var schedulingMarkers = []string{
	"reschedule", "re-schedule", "book", "booking",
	"move my appointment", "change my appointment", "new appointment",
	"schedule an", "schedule a", "make an appointment", "see a doctor",
	"available slot", "open slot", "appointment time",
}

var policyMarkers = []string{
	"policy", "policies", "fee", "cancel", "cancellation", "late",
	"insurance", "coverage", "copay", "billing", "referral", "specialist",
	"hours", "open", "closed", "weekend", "holiday",
	"telehealth", "video", "virtual", "remote",
}

func (c *Classifier) Classify(_ context.Context, query string) (ports.Classification, error) {
	q := strings.ToLower(query)

	for _, m := range schedulingMarkers {
		if strings.Contains(q, m) {
			return ports.Classification{
				Intent:     domain.IntentScheduling,
				Confidence: 0.9,
				Reason:     "matched scheduling marker " + m,
			}, nil
		}
	}
	for _, m := range policyMarkers {
		if strings.Contains(q, m) {
			return ports.Classification{
				Intent:     domain.IntentPolicy,
				Confidence: 0.8,
				Reason:     "matched policy marker " + m,
			}, nil
		}
	}
	return ports.Classification{
		Intent:     domain.IntentUnknown,
		Confidence: 0.3,
		Reason:     "no marker matched",
	}, nil
}
