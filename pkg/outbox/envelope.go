package outbox

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
)

// ActorRef identifies the staff member whose action produced the event.
// System jobs leave it nil.
type ActorRef struct {
	StaffID string          `json:"staffId"`
	Role    enums.StaffRole `json:"role,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
