package admission

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/irodion/concert-ticketing/internal/model"
)

// Store provides the transactional critical section the controller runs
// in. WithTx must execute fn inside a single database transaction and
// commit only when fn returns nil. Tx methods operate within that
// transaction; ConcertForUpdate must take an exclusive row lock so that
// concurrent calls for the same concert serialize.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the per-transaction view of the catalog store.
type Tx interface {
	ConcertForUpdate(ctx context.Context, concertID uint64) (model.Concert, error)
	UpdateConcertSales(ctx context.Context, concertID uint64, ticketsSold uint32, status string) error
	UpdateConcertCapacity(ctx context.Context, concertID uint64, capacity uint32, status string) error
	InsertTicket(ctx context.Context, t *model.Ticket) error
	TicketForUpdate(ctx context.Context, ticketID uint64) (model.Ticket, error)
	MarkTicketVoid(ctx context.Context, ticketID uint64) error
}

// Controller enforces at-most-capacity ticket issuance. It holds no
// authoritative state of its own; concert capacity is always re-read
// under the row lock inside the store transaction.
type Controller struct {
	store Store
	now   func() time.Time
}

func NewController(store Store) *Controller {
	return &Controller{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// PurchaseInput describes one all-or-nothing ticket request.
type PurchaseInput struct {
	ConcertID uint64
	BuyerID   uint64
	Quantity  int
}

// Receipt is returned on a successful purchase.
type Receipt struct {
	Ticket    model.Ticket
	Remaining uint32
	SoldOut   bool
}

// Purchase atomically checks remaining capacity and, when sufficient,
// issues a ticket and decrements availability. The capacity decrement
// and any SOLD_OUT transition commit as one unit; no interleaved request
// can observe the concert between the two.
func (c *Controller) Purchase(ctx context.Context, in PurchaseInput) (Receipt, error) {
	if in.Quantity <= 0 {
		return Receipt{}, ErrInvalidQuantity
	}

	var rcpt Receipt
	err := c.store.WithTx(ctx, func(tx Tx) error {
		concert, err := tx.ConcertForUpdate(ctx, in.ConcertID)
		if err != nil {
			return err
		}
		switch concert.Status {
		case model.ConcertCancelled:
			return ErrConcertCancelled
		case model.ConcertSoldOut:
			return ErrSoldOut
		}
		// Compare in uint64 so a quantity beyond uint32 range cannot
		// truncate into a small number that slips past the check.
		if uint64(in.Quantity) > uint64(concert.Remaining()) {
			return ErrInsufficientCapacity
		}
		qty := uint32(in.Quantity)

		ticket := model.Ticket{
			Serial:         uuid.New().String(),
			ConcertID:      concert.ID,
			BuyerID:        in.BuyerID,
			Quantity:       qty,
			UnitPriceCents: concert.PriceCents,
			Status:         model.TicketIssued,
			PurchasedAt:    c.now(),
		}
		if err := tx.InsertTicket(ctx, &ticket); err != nil {
			return err
		}

		sold := concert.TicketsSold + qty
		status := concert.Status
		if sold == concert.Capacity {
			status = model.ConcertSoldOut
		}
		if err := tx.UpdateConcertSales(ctx, concert.ID, sold, status); err != nil {
			return err
		}

		rcpt = Receipt{
			Ticket:    ticket,
			Remaining: concert.Capacity - sold,
			SoldOut:   status == model.ConcertSoldOut,
		}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}
	return rcpt, nil
}

// SetStatus forces a concert into SCHEDULED or CANCELLED under the same
// row lock as purchases, so an admin cancel cannot race an in-flight
// ticket request. SOLD_OUT is derived from the sold count and cannot be
// forced directly: reinstating a fully sold concert lands on SOLD_OUT.
func (c *Controller) SetStatus(ctx context.Context, concertID uint64, status string) (model.Concert, error) {
	if status != model.ConcertScheduled && status != model.ConcertCancelled {
		return model.Concert{}, ErrInvalidStatus
	}

	var out model.Concert
	err := c.store.WithTx(ctx, func(tx Tx) error {
		concert, err := tx.ConcertForUpdate(ctx, concertID)
		if err != nil {
			return err
		}
		next := status
		if next == model.ConcertScheduled && concert.Remaining() == 0 {
			next = model.ConcertSoldOut
		}
		if next == concert.Status {
			out = concert
			return nil
		}
		if err := tx.UpdateConcertSales(ctx, concert.ID, concert.TicketsSold, next); err != nil {
			return err
		}
		concert.Status = next
		out = concert
		return nil
	})
	if err != nil {
		return model.Concert{}, err
	}
	return out, nil
}

// Resize changes a concert's capacity. The new capacity is validated
// against tickets already sold under the row lock; growing a SOLD_OUT
// concert reopens it, shrinking exactly to the sold count closes it.
func (c *Controller) Resize(ctx context.Context, concertID uint64, capacity int) (model.Concert, error) {
	if capacity <= 0 || int64(capacity) > math.MaxUint32 {
		return model.Concert{}, ErrInvalidCapacity
	}
	newCap := uint32(capacity)

	var out model.Concert
	err := c.store.WithTx(ctx, func(tx Tx) error {
		concert, err := tx.ConcertForUpdate(ctx, concertID)
		if err != nil {
			return err
		}
		if newCap < concert.TicketsSold {
			return ErrCapacityBelowSold
		}
		status := concert.Status
		if status != model.ConcertCancelled {
			if newCap == concert.TicketsSold {
				status = model.ConcertSoldOut
			} else {
				status = model.ConcertScheduled
			}
		}
		if err := tx.UpdateConcertCapacity(ctx, concert.ID, newCap, status); err != nil {
			return err
		}
		concert.Capacity = newCap
		concert.Status = status
		out = concert
		return nil
	})
	if err != nil {
		return model.Concert{}, err
	}
	return out, nil
}

// VoidTicket is the admin override: the ticket row survives for auditing
// but its quantity returns to the pool. Runs under the concert row lock
// so the freed capacity is visible atomically.
func (c *Controller) VoidTicket(ctx context.Context, ticketID uint64) (model.Ticket, error) {
	var out model.Ticket
	err := c.store.WithTx(ctx, func(tx Tx) error {
		ticket, err := tx.TicketForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status == model.TicketVoid {
			return ErrTicketVoid
		}
		concert, err := tx.ConcertForUpdate(ctx, ticket.ConcertID)
		if err != nil {
			return err
		}
		if err := tx.MarkTicketVoid(ctx, ticket.ID); err != nil {
			return err
		}
		sold := concert.TicketsSold - ticket.Quantity
		status := concert.Status
		if status == model.ConcertSoldOut && sold < concert.Capacity {
			status = model.ConcertScheduled
		}
		if err := tx.UpdateConcertSales(ctx, concert.ID, sold, status); err != nil {
			return err
		}
		ticket.Status = model.TicketVoid
		out = ticket
		return nil
	})
	if err != nil {
		return model.Ticket{}, err
	}
	return out, nil
}
