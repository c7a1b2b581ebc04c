package repository

import (
	"context"
	"database/sql"
)

// FavouriteRepo manages the fan "selected concerts" list. One row per
// (user, concert) pair, enforced by a unique index.
type FavouriteRepo struct{ db *sql.DB }

func NewFavouriteRepo(db *sql.DB) *FavouriteRepo { return &FavouriteRepo{db: db} }

// Add marks a concert as selected for the user. Adding twice is a
// no-op (INSERT IGNORE), matching idempotent UI behaviour.
func (r *FavouriteRepo) Add(ctx context.Context, userID, concertID uint64) error {
	var exists uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM concerts WHERE id=? LIMIT 1", concertID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrConcertNotFound
	}
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT IGNORE INTO favourites (user_id, concert_id) VALUES (?,?)",
		userID, concertID)
	return err
}

// Remove unselects a concert. Removing an absent row is a no-op.
func (r *FavouriteRepo) Remove(ctx context.Context, userID, concertID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM favourites WHERE user_id=? AND concert_id=?",
		userID, concertID)
	return err
}

// ListForUser returns the selected concerts joined with their current
// details, soonest first.
func (r *FavouriteRepo) ListForUser(ctx context.Context, userID uint64) ([]PublicConcertRow, error) {
	const q = `SELECT
			c.id,
			c.band_name,
			c.venue,
			DATE_FORMAT(c.starts_at, '%Y-%m-%d %T'),
			c.price_cents,
			c.status,
			c.capacity,
			c.tickets_sold
		FROM favourites f
		JOIN concerts c ON c.id = f.concert_id
		WHERE f.user_id = ?
		ORDER BY c.starts_at ASC`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PublicConcertRow
	for rows.Next() {
		var d PublicConcertRow
		var capacity, sold uint32
		if err := rows.Scan(&d.ID, &d.BandName, &d.Venue, &d.StartsAt,
			&d.PriceCents, &d.Status, &capacity, &sold); err != nil {
			return nil, err
		}
		d.Price = float64(d.PriceCents) / 100.0
		if sold < capacity {
			d.Remaining = capacity - sold
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
