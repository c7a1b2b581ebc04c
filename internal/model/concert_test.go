package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemaining(t *testing.T) {
	assert.Equal(t, uint32(10), Concert{Capacity: 10}.Remaining())
	assert.Equal(t, uint32(3), Concert{Capacity: 10, TicketsSold: 7}.Remaining())
	assert.Equal(t, uint32(0), Concert{Capacity: 10, TicketsSold: 10}.Remaining())
	// Never underflows even on inconsistent data.
	assert.Equal(t, uint32(0), Concert{Capacity: 10, TicketsSold: 11}.Remaining())
}

func TestValidConcertStatus(t *testing.T) {
	assert.True(t, ValidConcertStatus(ConcertScheduled))
	assert.True(t, ValidConcertStatus(ConcertCancelled))
	assert.True(t, ValidConcertStatus(ConcertSoldOut))
	assert.False(t, ValidConcertStatus(""))
	assert.False(t, ValidConcertStatus("scheduled"))
	assert.False(t, ValidConcertStatus("PENDING"))
}
