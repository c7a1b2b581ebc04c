package model

import "time"

// Concert statuses. A concert is SOLD_OUT exactly when tickets_sold has
// reached capacity; CANCELLED concerts never sell tickets.
const (
	ConcertScheduled = "SCHEDULED"
	ConcertCancelled = "CANCELLED"
	ConcertSoldOut   = "SOLD_OUT"
)

// ValidConcertStatus reports whether s is one of the known statuses.
func ValidConcertStatus(s string) bool {
	switch s {
	case ConcertScheduled, ConcertCancelled, ConcertSoldOut:
		return true
	}
	return false
}

// Concert represents a scheduled performance with a fixed ticket
// capacity. Capacity is set at creation; edits that shrink it below
// tickets_sold are rejected.
//
// Invariants enforced by the admission package:
//
//	0 <= TicketsSold <= Capacity
//	Status == SOLD_OUT iff TicketsSold == Capacity (unless CANCELLED)
type Concert struct {
	ID          uint64    // concerts.id
	BandID      uint64    // concerts.band_id (owning user)
	BandName    string    // concerts.band_name
	Venue       string    // concerts.venue
	StartsAt    time.Time // concerts.starts_at
	PriceCents  uint32    // concerts.price_cents
	Capacity    uint32    // concerts.capacity
	TicketsSold uint32    // concerts.tickets_sold
	Status      string    // concerts.status
	CreatedAt   time.Time // concerts.created_at
	UpdatedAt   time.Time // concerts.updated_at
}

// Remaining returns the number of tickets still available.
func (c Concert) Remaining() uint32 {
	if c.TicketsSold >= c.Capacity {
		return 0
	}
	return c.Capacity - c.TicketsSold
}
