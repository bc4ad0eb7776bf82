package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHoldActive(t *testing.T) {
	now := time.Now()
	future := now.Add(5 * time.Minute)
	past := now.Add(-5 * time.Minute)

	tests := []struct {
		name     string
		status   BookingStatus
		expires  *time.Time
		expected bool
	}{
		{"Active hold", BookingStatusHold, &future, true},
		{"Expired deadline", BookingStatusHold, &past, false},
		{"Confirmed booking", BookingStatusConfirmed, nil, false},
		{"Expired booking", BookingStatusExpired, nil, false},
		{"Hold without deadline", BookingStatusHold, nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := &Booking{Status: tc.status, HoldExpiresAt: tc.expires}
			assert.Equal(t, tc.expected, b.IsHoldActive(now))
		})
	}
}

func TestTransitionResultString(t *testing.T) {
	assert.Equal(t, "applied", TransitionApplied.String())
	assert.Equal(t, "already_transitioned", TransitionAlreadyDone.String())
	assert.Equal(t, "not_found", TransitionNotFound.String())
}

func TestDepartureAt(t *testing.T) {
	journeyDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Minute Precision", func(t *testing.T) {
		trip := &Trip{JourneyDate: journeyDate, DepartureTime: "18:30"}
		at, err := trip.DepartureAt(time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 9, 1, 18, 30, 0, 0, time.UTC), at)
	})

	t.Run("Seconds From TIME Column", func(t *testing.T) {
		trip := &Trip{JourneyDate: journeyDate, DepartureTime: "18:30:00"}
		at, err := trip.DepartureAt(time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 9, 1, 18, 30, 0, 0, time.UTC), at)
	})

	t.Run("Invalid Time", func(t *testing.T) {
		trip := &Trip{JourneyDate: journeyDate, DepartureTime: "soon"}
		_, err := trip.DepartureAt(time.UTC)
		assert.Error(t, err)
	})
}
