package model

import "time"

// Ticket statuses. Tickets are immutable after issuance; the only state
// change is an admin void, which keeps the row for auditing.
const (
	TicketIssued = "ISSUED"
	TicketVoid   = "VOID"
)

// Ticket records a successful admission for one or more seats at a
// concert. Serial is a UUID printed on the receipt.
type Ticket struct {
	ID             uint64    // tickets.id
	Serial         string    // tickets.serial (uuid, unique)
	ConcertID      uint64    // tickets.concert_id
	BuyerID        uint64    // tickets.buyer_id
	Quantity       uint32    // tickets.quantity (>= 1)
	UnitPriceCents uint32    // tickets.unit_price_cents at purchase time
	Status         string    // tickets.status
	PurchasedAt    time.Time // tickets.purchased_at
}

// Favourite links a fan to a concert they marked. One row per
// (user, concert) pair.
type Favourite struct {
	ID        uint64    // favourites.id
	UserID    uint64    // favourites.user_id
	ConcertID uint64    // favourites.concert_id
	CreatedAt time.Time // favourites.created_at
}
