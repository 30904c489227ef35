package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceLines_Totals(t *testing.T) {
	bundle := ServiceLines{
		{ServiceID: 1, Name: "Corte", UnitPriceCents: 4500, UnitDurationMinutes: 20, Quantity: 2},
		{ServiceID: 2, Name: "Barba", UnitPriceCents: 3000, UnitDurationMinutes: 15, Quantity: 1},
	}

	assert.Equal(t, 55, bundle.TotalDurationMinutes())
	assert.Equal(t, int64(12000), bundle.TotalPriceCents())
}

func TestServiceLines_Empty(t *testing.T) {
	var bundle ServiceLines
	assert.Equal(t, 0, bundle.TotalDurationMinutes())
	assert.Equal(t, int64(0), bundle.TotalPriceCents())
}

func TestOccupiesTime(t *testing.T) {
	assert.True(t, OccupiesTime(StatusPending))
	assert.True(t, OccupiesTime(StatusConfirmed))
	assert.True(t, OccupiesTime(StatusCompleted))
	assert.False(t, OccupiesTime(StatusCancelled))
}
