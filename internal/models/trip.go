package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trip is a concrete departure: route + journey date + departure time, with a
// seat quota reserved for the WhatsApp channel. The (route_id, journey_date,
// departure_time) triple is unique.
type Trip struct {
	ID            uuid.UUID `json:"id" db:"id"`
	RouteID       uuid.UUID `json:"route_id" db:"route_id"`
	JourneyDate   time.Time `json:"journey_date" db:"journey_date"`
	DepartureTime string    `json:"departure_time" db:"departure_time"` // TIME as "15:04"
	SeatQuota     int       `json:"seat_quota" db:"seat_quota"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// DepartureAt composes journey_date and departure_time into a single
// timestamp in the given location.
func (t *Trip) DepartureAt(loc *time.Location) (time.Time, error) {
	parsed, err := time.Parse("15:04", t.DepartureTime)
	if err != nil {
		// TIME columns may scan with seconds
		parsed, err = time.Parse("15:04:05", t.DepartureTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid departure time %q: %w", t.DepartureTime, err)
		}
	}
	d := t.JourneyDate
	return time.Date(d.Year(), d.Month(), d.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}

// TripStats is a trip with its computed seat accounting, for the management API.
type TripStats struct {
	Trip
	Source         string `json:"source" db:"source"`
	Destination    string `json:"destination" db:"destination"`
	ConfirmedSeats int    `json:"confirmed_seats" db:"confirmed_seats"`
	HeldSeats      int    `json:"held_seats" db:"held_seats"`
	AvailableSeats int    `json:"available_seats" db:"available_seats"`
}

// CreateTripRequest is the management API request to create a trip
type CreateTripRequest struct {
	RouteID       string `json:"route_id" binding:"required"`
	JourneyDate   string `json:"journey_date" binding:"required"`   // "2006-01-02"
	DepartureTime string `json:"departure_time" binding:"required"` // "15:04"
	SeatQuota     int    `json:"seat_quota" binding:"required,min=1"`
}

// UpdateQuotaRequest is the management API request to change a trip's quota
type UpdateQuotaRequest struct {
	SeatQuota int `json:"seat_quota" binding:"required,min=1"`
}
