package nodes

import (
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

// Node names. The graph is assembled from these in internal/conversation.
const (
	NodeIntent        = "intent"
	NodePolicy        = "policy"
	NodeOfferAgent    = "offer_agent"
	NodeOfferTools    = "offer_tools"
	NodeOfferFinalize = "offer_finalize"
	NodeConfirm       = "confirm"
	NodeNotify        = "notify"
	NodeEscalate      = "escalate"
)

// ToolGetAvailability is the single tool bound to the scheduling model.
const ToolGetAvailability = "get_availability"

// Config carries the tunables the nodes consult. The zero value is not
// usable; call Defaults or fill every field.
type Config struct {
	// RetrievalK is how many grounding chunks a policy question fetches.
	RetrievalK int

	// ValidationConfidence is the judge-confidence floor below which a
	// drafted policy answer is rewritten conservatively.
	ValidationConfidence float64

	// SlotCap bounds how many candidate slots are surfaced to the user.
	SlotCap int
}

// Defaults returns the stock configuration.
func Defaults() Config {
	return Config{
		RetrievalK:           5,
		ValidationConfidence: 0.5,
		SlotCap:              9,
	}
}

// Clock abstracts time.Now for deterministic tests.
type Clock func() time.Time

// Deps bundles the collaborators and utilities shared by all nodes.
type Deps struct {
	Classifier ports.Classifier
	Completer  ports.Completer
	Retriever  ports.Retriever
	Calendar   ports.Calendar
	Escalator  ports.Escalator

	Logger *slog.Logger
	Clock  Clock
	NewID  func() string
	Config Config
}

// WithDefaults fills the optional fields.
func (d Deps) WithDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Config == (Config{}) {
		d.Config = Defaults()
	}
	return d
}

func (d Deps) message(role domain.Role, text string) domain.Message {
	return domain.Message{
		ID:        d.NewID(),
		Role:      role,
		Text:      text,
		CreatedAt: d.Clock(),
	}
}
