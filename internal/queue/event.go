// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into the activity
// log.
package queue

// ActivityQueueName is the durable queue all activity events flow
// through.
const ActivityQueueName = "activity.events"

// Event kinds carried in ActivityEvent.Kind.
const (
	KindTicketPurchased      = "ticket.purchased"
	KindTicketVoided         = "ticket.voided"
	KindConcertStatusChanged = "concert.status_changed"
)

// ActivityEvent is published after a successful admission decision or
// an admin override. It carries enough for downstream consumers to log
// or notify without querying the primary database.
type ActivityEvent struct {
	Kind       string `json:"kind"`
	TicketID   uint64 `json:"ticket_id,omitempty"`
	Serial     string `json:"serial,omitempty"`
	ConcertID  uint64 `json:"concert_id"`
	BandName   string `json:"band_name,omitempty"`
	Venue      string `json:"venue,omitempty"`
	ActorID    uint64 `json:"actor_id"`
	Quantity   uint32 `json:"quantity,omitempty"`
	Remaining  uint32 `json:"remaining"`
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"`
}
