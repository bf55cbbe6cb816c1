package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewReservation(t *testing.T) {
	now := time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)
	reservation := NewReservation(7, 3, now)

	assert.Equal(t, ReservationStatusPending, reservation.Status)
	assert.Nil(t, reservation.ActivatedAt)
	assert.Nil(t, reservation.ExpiresAt)
}

func TestReservationActivate(t *testing.T) {
	now := time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)
	reservation := NewReservation(7, 3, now.Add(-time.Hour))

	reservation.Activate(now)

	assert.Equal(t, ReservationStatusActive, reservation.Status)
	if assert.NotNil(t, reservation.ActivatedAt) {
		assert.True(t, reservation.ActivatedAt.Equal(now))
	}
	if assert.NotNil(t, reservation.ExpiresAt) {
		assert.True(t, reservation.ExpiresAt.Equal(now.Add(48*time.Hour)))
	}
}

func TestIsReservationStatus(t *testing.T) {
	assert.True(t, IsReservationStatus("active"))
	assert.True(t, IsReservationStatus("Expired"))
	assert.True(t, IsReservationStatus("FINALIZED"))
	assert.False(t, IsReservationStatus("cancelled"))
	assert.False(t, IsReservationStatus(""))
}
