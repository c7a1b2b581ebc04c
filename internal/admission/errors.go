// Package admission decides whether ticket requests are granted. All
// capacity mutations for a concert go through this package so that the
// check-and-decrement is serialized per concert: two purchases for the
// same concert are strictly ordered, purchases for different concerts
// proceed independently.
package admission

import "errors"

var (
	// ErrConcertNotFound is returned when the concert id does not exist.
	ErrConcertNotFound = errors.New("concert not found")
	// ErrConcertCancelled is returned for any sale against a cancelled concert.
	ErrConcertCancelled = errors.New("concert cancelled")
	// ErrSoldOut is returned when no tickets remain at all.
	ErrSoldOut = errors.New("concert sold out")
	// ErrInsufficientCapacity is returned when fewer tickets remain than
	// requested. Requests are all-or-nothing; no partial fulfillment.
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	// ErrInvalidQuantity is returned for requested quantities below one.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidCapacity is returned for concert capacities below one.
	ErrInvalidCapacity = errors.New("invalid capacity")
	// ErrCapacityBelowSold is returned when a capacity edit would drop the
	// capacity under the number of tickets already sold.
	ErrCapacityBelowSold = errors.New("capacity below tickets sold")
	// ErrInvalidStatus is returned for forced transitions to unknown or
	// non-forcible statuses.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrTicketNotFound is returned when the ticket id does not exist.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrTicketVoid is returned when voiding an already void ticket.
	ErrTicketVoid = errors.New("ticket already void")
)
