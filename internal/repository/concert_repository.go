package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/irodion/concert-ticketing/internal/model"
)

// ConcertRepo provides CRUD access to the concerts table. Capacity and
// status mutations are deliberately absent here; those go through the
// admission store so they serialize with in-flight purchases.
type ConcertRepo struct{ db *sql.DB }

func NewConcertRepo(db *sql.DB) *ConcertRepo { return &ConcertRepo{db: db} }

const concertColumns = "id,band_id,band_name,venue,starts_at,price_cents,capacity,tickets_sold,status,created_at,updated_at"

func scanConcert(row *sql.Row) (model.Concert, error) {
	var c model.Concert
	err := row.Scan(&c.ID, &c.BandID, &c.BandName, &c.Venue, &c.StartsAt,
		&c.PriceCents, &c.Capacity, &c.TicketsSold, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrConcertNotFound
	}
	return c, err
}

// Create inserts a concert and populates the generated ID. Capacity is
// fixed here; tickets_sold starts at zero via the column default.
func (r *ConcertRepo) Create(ctx context.Context, c *model.Concert) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO concerts (band_id, band_name, venue, starts_at, price_cents, capacity, status) VALUES (?,?,?,?,?,?,?)",
		c.BandID, c.BandName, c.Venue, c.StartsAt, c.PriceCents, c.Capacity, c.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a concert by id.
func (r *ConcertRepo) GetByID(ctx context.Context, id uint64) (model.Concert, error) {
	return scanConcert(r.db.QueryRowContext(ctx,
		"SELECT "+concertColumns+" FROM concerts WHERE id=? LIMIT 1", id))
}

// ListByBand returns all concerts owned by the given band user, soonest
// first. Used for the band dashboard.
func (r *ConcertRepo) ListByBand(ctx context.Context, bandID uint64) ([]model.Concert, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+concertColumns+" FROM concerts WHERE band_id=? ORDER BY starts_at ASC", bandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Concert
	for rows.Next() {
		var c model.Concert
		if err := rows.Scan(&c.ID, &c.BandID, &c.BandName, &c.Venue, &c.StartsAt,
			&c.PriceCents, &c.Capacity, &c.TicketsSold, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateDetails changes the descriptive fields of a concert owned by
// ownerID. Returns ErrConcertNotFound for unknown ids and ErrForbidden
// when the concert belongs to someone else. Capacity and status are not
// touched here.
func (r *ConcertRepo) UpdateDetails(ctx context.Context, id, ownerID uint64, bandName, venue string, startsAt time.Time, priceCents uint32) error {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.BandID != ownerID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE concerts SET band_name=?, venue=?, starts_at=?, price_cents=? WHERE id=?",
		bandName, venue, startsAt, priceCents, id)
	return err
}
