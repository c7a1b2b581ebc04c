package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/irodion/concert-ticketing/internal/admission"
	"github.com/irodion/concert-ticketing/internal/model"
)

// AdmissionStore backs the admission controller with MySQL. Each
// controller operation runs in one transaction; ConcertForUpdate takes
// an exclusive row lock (SELECT ... FOR UPDATE) so concurrent purchases
// for the same concert serialize at the database.
type AdmissionStore struct{ db *sql.DB }

func NewAdmissionStore(db *sql.DB) *AdmissionStore { return &AdmissionStore{db: db} }

// WithTx opens a transaction, runs fn, and commits only when fn
// returns nil.
func (s *AdmissionStore) WithTx(ctx context.Context, fn func(tx admission.Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = dbTx.Rollback()
		}
	}()
	if err := fn(&admissionTx{tx: dbTx}); err != nil {
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type admissionTx struct{ tx *sql.Tx }

func (t *admissionTx) ConcertForUpdate(ctx context.Context, concertID uint64) (model.Concert, error) {
	var c model.Concert
	err := t.tx.QueryRowContext(ctx,
		"SELECT "+concertColumns+" FROM concerts WHERE id=? FOR UPDATE",
		concertID).Scan(&c.ID, &c.BandID, &c.BandName, &c.Venue, &c.StartsAt,
		&c.PriceCents, &c.Capacity, &c.TicketsSold, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, admission.ErrConcertNotFound
	}
	return c, err
}

func (t *admissionTx) UpdateConcertSales(ctx context.Context, concertID uint64, ticketsSold uint32, status string) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE concerts SET tickets_sold=?, status=? WHERE id=?",
		ticketsSold, status, concertID)
	return err
}

func (t *admissionTx) UpdateConcertCapacity(ctx context.Context, concertID uint64, capacity uint32, status string) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE concerts SET capacity=?, status=? WHERE id=?",
		capacity, status, concertID)
	return err
}

func (t *admissionTx) InsertTicket(ctx context.Context, tk *model.Ticket) error {
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO tickets (serial, concert_id, buyer_id, quantity, unit_price_cents, status, purchased_at) VALUES (?,?,?,?,?,?,?)",
		tk.Serial, tk.ConcertID, tk.BuyerID, tk.Quantity, tk.UnitPriceCents, tk.Status, tk.PurchasedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tk.ID = uint64(id)
	return nil
}

func (t *admissionTx) TicketForUpdate(ctx context.Context, ticketID uint64) (model.Ticket, error) {
	var tk model.Ticket
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, serial, concert_id, buyer_id, quantity, unit_price_cents, status, purchased_at
		 FROM tickets WHERE id=? FOR UPDATE`, ticketID).
		Scan(&tk.ID, &tk.Serial, &tk.ConcertID, &tk.BuyerID, &tk.Quantity, &tk.UnitPriceCents, &tk.Status, &tk.PurchasedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return tk, admission.ErrTicketNotFound
	}
	return tk, err
}

func (t *admissionTx) MarkTicketVoid(ctx context.Context, ticketID uint64) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE tickets SET status=? WHERE id=?", model.TicketVoid, ticketID)
	return err
}
