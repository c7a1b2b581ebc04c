package repository

import (
	"context"
	"database/sql"

	"github.com/irodion/concert-ticketing/internal/model"
)

// TicketRepo provides read access to issued tickets. Ticket creation
// and voiding happen inside the admission store transaction, never here.
type TicketRepo struct{ db *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// TicketDetail is a ticket joined with its concert for display to the
// buyer.
type TicketDetail struct {
	ID             uint64  `json:"id"`
	Serial         string  `json:"serial"`
	ConcertID      uint64  `json:"concert_id"`
	BandName       string  `json:"band_name"`
	Venue          string  `json:"venue"`
	StartsAt       string  `json:"starts_at"`
	Quantity       uint32  `json:"quantity"`
	UnitPriceCents uint32  `json:"unit_price_cents"`
	Total          float64 `json:"total"`
	Status         string  `json:"status"`
	PurchasedAt    string  `json:"purchased_at"`
	ConcertStatus  string  `json:"concert_status"`
}

// ListByBuyer returns the buyer's tickets, newest first.
func (r *TicketRepo) ListByBuyer(ctx context.Context, buyerID uint64) ([]TicketDetail, error) {
	const q = `SELECT
			t.id,
			t.serial,
			t.concert_id,
			c.band_name,
			c.venue,
			DATE_FORMAT(c.starts_at, '%Y-%m-%d %T'),
			t.quantity,
			t.unit_price_cents,
			t.status,
			DATE_FORMAT(t.purchased_at, '%Y-%m-%d %T'),
			c.status
		FROM tickets t
		JOIN concerts c ON c.id = t.concert_id
		WHERE t.buyer_id = ?
		ORDER BY t.purchased_at DESC, t.id DESC`

	rows, err := r.db.QueryContext(ctx, q, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TicketDetail
	for rows.Next() {
		var d TicketDetail
		if err := rows.Scan(&d.ID, &d.Serial, &d.ConcertID, &d.BandName, &d.Venue,
			&d.StartsAt, &d.Quantity, &d.UnitPriceCents, &d.Status, &d.PurchasedAt, &d.ConcertStatus); err != nil {
			return nil, err
		}
		d.Total = float64(d.Quantity) * float64(d.UnitPriceCents) / 100.0
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByID fetches a single ticket row.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.Ticket, error) {
	var t model.Ticket
	err := r.db.QueryRowContext(ctx,
		`SELECT id, serial, concert_id, buyer_id, quantity, unit_price_cents, status, purchased_at
		 FROM tickets WHERE id=? LIMIT 1`, id).
		Scan(&t.ID, &t.Serial, &t.ConcertID, &t.BuyerID, &t.Quantity, &t.UnitPriceCents, &t.Status, &t.PurchasedAt)
	return t, err
}
