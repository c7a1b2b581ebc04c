package queue

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatLine_Purchased(t *testing.T) {
	line := formatLine(ActivityEvent{
		Kind:       KindTicketPurchased,
		Serial:     "abc-123",
		ConcertID:  7,
		BandName:   "The Testones",
		Venue:      "Old Depot",
		ActorID:    42,
		Quantity:   2,
		Remaining:  8,
		Status:     "SCHEDULED",
		OccurredAt: "2026-09-15T20:00:00Z",
	})

	assert.True(t, strings.HasPrefix(line, "[2026-09-15T20:00:00Z] Ticket purchased"))
	assert.Contains(t, line, "serial=abc-123")
	assert.Contains(t, line, "concert_id=7")
	assert.Contains(t, line, "buyer_id=42")
	assert.Contains(t, line, "remaining=8")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestFormatLine_Voided(t *testing.T) {
	line := formatLine(ActivityEvent{
		Kind:       KindTicketVoided,
		TicketID:   3,
		Serial:     "abc-123",
		ConcertID:  7,
		ActorID:    1,
		Quantity:   4,
		OccurredAt: "2026-09-15T21:00:00Z",
	})

	assert.Contains(t, line, "Ticket voided")
	assert.Contains(t, line, "ticket_id=3")
	assert.Contains(t, line, "admin_id=1")
	assert.Contains(t, line, "qty=4")
}

func TestFormatLine_StatusChanged(t *testing.T) {
	line := formatLine(ActivityEvent{
		Kind:       KindConcertStatusChanged,
		ConcertID:  7,
		BandName:   "The Testones",
		ActorID:    1,
		Status:     "CANCELLED",
		OccurredAt: "2026-09-15T22:00:00Z",
	})

	assert.Contains(t, line, "Concert status changed")
	assert.Contains(t, line, "status=CANCELLED")
}

func TestFormatLine_UnknownKindFallsBack(t *testing.T) {
	line := formatLine(ActivityEvent{Kind: "something.else", ConcertID: 1, ActorID: 2, OccurredAt: "x"})
	assert.Contains(t, line, "something.else")
	assert.True(t, strings.HasSuffix(line, "\n"))
}
