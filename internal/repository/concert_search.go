package repository

import (
	"context"
	"strings"
)

// ConcertSearchQuery defines filters & pagination for the public
// concert listing. Date is an exact-day match in YYYY-MM-DD form
// (validated by the handler); Band matches as a case-insensitive
// substring; Status must be one of the known statuses or empty.
type ConcertSearchQuery struct {
	Band     string
	Date     string
	Status   string
	Page     int
	PageSize int
}

// PublicConcertRow is the sanitized listing row returned to guests.
type PublicConcertRow struct {
	ID         uint64  `json:"id"`
	BandName   string  `json:"band_name"`
	Venue      string  `json:"venue"`
	StartsAt   string  `json:"starts_at"`
	PriceCents uint32  `json:"price_cents"`
	Price      float64 `json:"price"`
	Status     string  `json:"status"`
	Remaining  uint32  `json:"remaining"`
}

// buildSearchFilters converts a query into a WHERE condition and its
// arguments. Kept separate so the filter logic is testable without a
// database.
func buildSearchFilters(q ConcertSearchQuery) (string, []any) {
	where := []string{}
	args := []any{}

	if q.Band != "" {
		where = append(where, "LOWER(band_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Band)+"%")
	}
	if q.Date != "" {
		where = append(where, "DATE(starts_at) = ?")
		args = append(args, q.Date)
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}

	if len(where) == 0 {
		return "1=1", args
	}
	return strings.Join(where, " AND "), args
}

// Search returns matching concerts ordered by start time plus the total
// match count for pagination.
func (r *ConcertRepo) Search(ctx context.Context, q ConcertSearchQuery) ([]PublicConcertRow, int64, error) {
	cond, args := buildSearchFilters(q)

	var total int64
	countSQL := `SELECT COUNT(*) FROM concerts WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			id,
			band_name,
			venue,
			DATE_FORMAT(starts_at, '%Y-%m-%d %T') AS starts_at,
			price_cents,
			status,
			capacity,
			tickets_sold
		FROM concerts
		WHERE ` + cond + `
		ORDER BY starts_at ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicConcertRow, 0, limit)
	for rows.Next() {
		var d PublicConcertRow
		var capacity, sold uint32
		if err := rows.Scan(
			&d.ID,
			&d.BandName,
			&d.Venue,
			&d.StartsAt,
			&d.PriceCents,
			&d.Status,
			&capacity,
			&sold,
		); err != nil {
			return nil, 0, err
		}
		d.Price = float64(d.PriceCents) / 100.0
		if sold < capacity {
			d.Remaining = capacity - sold
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
