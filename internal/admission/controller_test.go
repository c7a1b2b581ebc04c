package admission

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irodion/concert-ticketing/internal/model"
)

// memStore is an in-memory Store. A single mutex serializes the whole
// transaction body, which mirrors the row lock the SQL store takes.
type memStore struct {
	mu       sync.Mutex
	concerts map[uint64]model.Concert
	tickets  map[uint64]model.Ticket
	nextID   uint64
}

func newMemStore(concerts ...model.Concert) *memStore {
	s := &memStore{
		concerts: make(map[uint64]model.Concert),
		tickets:  make(map[uint64]model.Ticket),
		nextID:   1,
	}
	for _, c := range concerts {
		s.concerts[c.ID] = c
	}
	return s
}

func (s *memStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{s: s})
}

type memTx struct{ s *memStore }

func (t *memTx) ConcertForUpdate(ctx context.Context, concertID uint64) (model.Concert, error) {
	c, ok := t.s.concerts[concertID]
	if !ok {
		return model.Concert{}, ErrConcertNotFound
	}
	return c, nil
}

func (t *memTx) UpdateConcertSales(ctx context.Context, concertID uint64, ticketsSold uint32, status string) error {
	c := t.s.concerts[concertID]
	c.TicketsSold = ticketsSold
	c.Status = status
	t.s.concerts[concertID] = c
	return nil
}

func (t *memTx) UpdateConcertCapacity(ctx context.Context, concertID uint64, capacity uint32, status string) error {
	c := t.s.concerts[concertID]
	c.Capacity = capacity
	c.Status = status
	t.s.concerts[concertID] = c
	return nil
}

func (t *memTx) InsertTicket(ctx context.Context, tk *model.Ticket) error {
	tk.ID = t.s.nextID
	t.s.nextID++
	t.s.tickets[tk.ID] = *tk
	return nil
}

func (t *memTx) TicketForUpdate(ctx context.Context, ticketID uint64) (model.Ticket, error) {
	tk, ok := t.s.tickets[ticketID]
	if !ok {
		return model.Ticket{}, ErrTicketNotFound
	}
	return tk, nil
}

func (t *memTx) MarkTicketVoid(ctx context.Context, ticketID uint64) error {
	tk := t.s.tickets[ticketID]
	tk.Status = model.TicketVoid
	t.s.tickets[ticketID] = tk
	return nil
}

func (s *memStore) concert(t *testing.T, id uint64) model.Concert {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.concerts[id]
	require.True(t, ok)
	return c
}

func scheduledConcert(id uint64, capacity, sold uint32) model.Concert {
	return model.Concert{
		ID:          id,
		BandID:      7,
		BandName:    "The Testones",
		Venue:       "Old Depot",
		PriceCents:  2500,
		Capacity:    capacity,
		TicketsSold: sold,
		Status:      model.ConcertScheduled,
	}
}

func TestPurchase_Success(t *testing.T) {
	store := newMemStore(scheduledConcert(1, 10, 0))
	ctrl := NewController(store)

	rcpt, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 42, Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), rcpt.Ticket.ConcertID)
	assert.Equal(t, uint64(42), rcpt.Ticket.BuyerID)
	assert.Equal(t, uint32(3), rcpt.Ticket.Quantity)
	assert.Equal(t, uint32(2500), rcpt.Ticket.UnitPriceCents)
	assert.NotEmpty(t, rcpt.Ticket.Serial)
	assert.Equal(t, uint32(7), rcpt.Remaining)
	assert.False(t, rcpt.SoldOut)

	c := store.concert(t, 1)
	assert.Equal(t, uint32(3), c.TicketsSold)
	assert.Equal(t, model.ConcertScheduled, c.Status)
}

func TestPurchase_InvalidQuantity(t *testing.T) {
	ctrl := NewController(newMemStore(scheduledConcert(1, 10, 0)))

	for _, q := range []int{0, -1, -100} {
		_, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 1, Quantity: q})
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %d", q)
	}
}

func TestPurchase_QuantityBeyondUint32NeverTruncates(t *testing.T) {
	store := newMemStore(scheduledConcert(1, 10, 0))
	ctrl := NewController(store)

	// 2^32+3 would read as 3 after a naive uint32 conversion.
	_, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 1, Quantity: 1<<32 + 3})
	assert.ErrorIs(t, err, ErrInsufficientCapacity)

	c := store.concert(t, 1)
	assert.Equal(t, uint32(0), c.TicketsSold)
	assert.Equal(t, model.ConcertScheduled, c.Status)
	store.mu.Lock()
	assert.Empty(t, store.tickets)
	store.mu.Unlock()
}

func TestPurchase_ConcertNotFound(t *testing.T) {
	ctrl := NewController(newMemStore())

	_, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 99, BuyerID: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrConcertNotFound)
}

func TestPurchase_Cancelled(t *testing.T) {
	c := scheduledConcert(1, 10, 0)
	c.Status = model.ConcertCancelled
	ctrl := NewController(newMemStore(c))

	_, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrConcertCancelled)
}

func TestPurchase_InsufficientRemaining(t *testing.T) {
	store := newMemStore(scheduledConcert(1, 10, 8))
	ctrl := NewController(store)

	_, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 1, Quantity: 3})
	assert.ErrorIs(t, err, ErrInsufficientCapacity)

	// Nothing changed.
	c := store.concert(t, 1)
	assert.Equal(t, uint32(8), c.TicketsSold)
	assert.Equal(t, model.ConcertScheduled, c.Status)
}

func TestPurchase_LastTicketMarksSoldOut(t *testing.T) {
	store := newMemStore(scheduledConcert(1, 10, 7))
	ctrl := NewController(store)

	rcpt, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 5, Quantity: 3})
	require.NoError(t, err)
	assert.True(t, rcpt.SoldOut)
	assert.Equal(t, uint32(0), rcpt.Remaining)

	c := store.concert(t, 1)
	assert.Equal(t, model.ConcertSoldOut, c.Status)

	_, err = ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 6, Quantity: 1})
	assert.ErrorIs(t, err, ErrSoldOut)
}

func TestPurchase_SequentialDrain(t *testing.T) {
	store := newMemStore(scheduledConcert(1, 10, 0))
	ctrl := NewController(store)

	for i := 0; i < 3; i++ {
		_, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: uint64(i + 1), Quantity: 3})
		require.NoError(t, err)
	}

	// 9 of 10 sold: a fourth group of 3 does not fit, 1 still does.
	_, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 4, Quantity: 3})
	assert.ErrorIs(t, err, ErrInsufficientCapacity)

	rcpt, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 4, Quantity: 1})
	require.NoError(t, err)
	assert.True(t, rcpt.SoldOut)
}

func TestPurchase_ConcurrentSingleSeat(t *testing.T) {
	store := newMemStore(scheduledConcert(1, 1, 0))
	ctrl := NewController(store)

	const buyers = 16
	errs := make(chan error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(buyer uint64) {
			defer wg.Done()
			_, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: buyer, Quantity: 1})
			errs <- err
		}(uint64(i + 1))
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrSoldOut)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, buyers-1, lost)

	c := store.concert(t, 1)
	assert.Equal(t, uint32(1), c.TicketsSold)
	assert.Equal(t, model.ConcertSoldOut, c.Status)
}

func TestPurchase_ConcurrentNeverOversells(t *testing.T) {
	store := newMemStore(scheduledConcert(1, 25, 0))
	ctrl := NewController(store)

	const buyers = 40
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(buyer uint64) {
			defer wg.Done()
			_, _ = ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: buyer, Quantity: 2})
		}(uint64(i + 1))
	}
	wg.Wait()

	c := store.concert(t, 1)
	assert.LessOrEqual(t, c.TicketsSold, c.Capacity)

	var issued uint32
	store.mu.Lock()
	for _, tk := range store.tickets {
		issued += tk.Quantity
	}
	store.mu.Unlock()
	assert.Equal(t, c.TicketsSold, issued)
}

func TestSetStatus_CancelAndReinstate(t *testing.T) {
	store := newMemStore(scheduledConcert(1, 10, 4))
	ctrl := NewController(store)

	c, err := ctrl.SetStatus(context.Background(), 1, model.ConcertCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.ConcertCancelled, c.Status)

	_, err = ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrConcertCancelled)

	c, err = ctrl.SetStatus(context.Background(), 1, model.ConcertScheduled)
	require.NoError(t, err)
	assert.Equal(t, model.ConcertScheduled, c.Status)
}

func TestSetStatus_ReinstateFullConcertLandsOnSoldOut(t *testing.T) {
	co := scheduledConcert(1, 5, 5)
	co.Status = model.ConcertCancelled
	ctrl := NewController(newMemStore(co))

	c, err := ctrl.SetStatus(context.Background(), 1, model.ConcertScheduled)
	require.NoError(t, err)
	assert.Equal(t, model.ConcertSoldOut, c.Status)
}

func TestSetStatus_RejectsDirectSoldOut(t *testing.T) {
	ctrl := NewController(newMemStore(scheduledConcert(1, 10, 0)))

	_, err := ctrl.SetStatus(context.Background(), 1, model.ConcertSoldOut)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ctrl.SetStatus(context.Background(), 1, "PENDING")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetStatus_ConcertNotFound(t *testing.T) {
	ctrl := NewController(newMemStore())

	_, err := ctrl.SetStatus(context.Background(), 9, model.ConcertCancelled)
	assert.ErrorIs(t, err, ErrConcertNotFound)
}

func TestResize_Validation(t *testing.T) {
	ctrl := NewController(newMemStore(scheduledConcert(1, 10, 6)))

	_, err := ctrl.Resize(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = ctrl.Resize(context.Background(), 1, -5)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	// 2^32+5 would read as 5 after a naive uint32 conversion.
	_, err = ctrl.Resize(context.Background(), 1, 1<<32+5)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = ctrl.Resize(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrCapacityBelowSold)
}

func TestResize_ShrinkToSoldClosesAndGrowReopens(t *testing.T) {
	store := newMemStore(scheduledConcert(1, 10, 6))
	ctrl := NewController(store)

	c, err := ctrl.Resize(context.Background(), 1, 6)
	require.NoError(t, err)
	assert.Equal(t, model.ConcertSoldOut, c.Status)
	assert.Equal(t, uint32(0), c.Remaining())

	c, err = ctrl.Resize(context.Background(), 1, 8)
	require.NoError(t, err)
	assert.Equal(t, model.ConcertScheduled, c.Status)
	assert.Equal(t, uint32(2), c.Remaining())
}

func TestResize_CancelledStaysCancelled(t *testing.T) {
	co := scheduledConcert(1, 10, 2)
	co.Status = model.ConcertCancelled
	ctrl := NewController(newMemStore(co))

	c, err := ctrl.Resize(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, model.ConcertCancelled, c.Status)
	assert.Equal(t, uint32(20), c.Capacity)
}

func TestVoidTicket_RestoresCapacity(t *testing.T) {
	store := newMemStore(scheduledConcert(1, 3, 0))
	ctrl := NewController(store)

	rcpt, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 2, Quantity: 3})
	require.NoError(t, err)
	assert.True(t, rcpt.SoldOut)

	tk, err := ctrl.VoidTicket(context.Background(), rcpt.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TicketVoid, tk.Status)

	c := store.concert(t, 1)
	assert.Equal(t, uint32(0), c.TicketsSold)
	assert.Equal(t, model.ConcertScheduled, c.Status)

	// The freed seats can be bought again.
	_, err = ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 3, Quantity: 2})
	require.NoError(t, err)
}

func TestVoidTicket_AlreadyVoid(t *testing.T) {
	store := newMemStore(scheduledConcert(1, 5, 0))
	ctrl := NewController(store)

	rcpt, err := ctrl.Purchase(context.Background(), PurchaseInput{ConcertID: 1, BuyerID: 2, Quantity: 1})
	require.NoError(t, err)

	_, err = ctrl.VoidTicket(context.Background(), rcpt.Ticket.ID)
	require.NoError(t, err)

	_, err = ctrl.VoidTicket(context.Background(), rcpt.Ticket.ID)
	assert.ErrorIs(t, err, ErrTicketVoid)

	c := store.concert(t, 1)
	assert.Equal(t, uint32(0), c.TicketsSold)
}

func TestVoidTicket_NotFound(t *testing.T) {
	ctrl := NewController(newMemStore())

	_, err := ctrl.VoidTicket(context.Background(), 123)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}
