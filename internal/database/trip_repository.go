package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/seatwave/whatsapp-booking-backend/internal/models"
)

var (
	// ErrDuplicateTrip indicates a trip with the same route, date and time
	// already exists
	ErrDuplicateTrip = errors.New("a trip for this route, date and time already exists")

	// ErrQuotaBelowCommitted indicates a quota update would undercut seats
	// that are already confirmed or actively held
	ErrQuotaBelowCommitted = errors.New("seat quota cannot be reduced below confirmed and held seats")
)

// activeHoldWhere builds the SQL predicate for a hold that still reduces
// availability, with the placeholder carrying the "now" timestamp. Kept in
// one place so the ledger, stats and quota guard all count the same rows.
func activeHoldWhere(placeholder string) string {
	return `b.status = 'hold' AND b.hold_expires_at > ` + placeholder
}

// TripRepository handles trip database operations and the seat ledger
type TripRepository struct {
	db *sqlx.DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

// Create inserts a new trip. The (route_id, journey_date, departure_time)
// triple is unique; violations map to ErrDuplicateTrip.
func (r *TripRepository) Create(routeID uuid.UUID, journeyDate time.Time, departureTime string, seatQuota int) (*models.Trip, error) {
	trip := &models.Trip{
		ID:            uuid.New(),
		RouteID:       routeID,
		JourneyDate:   journeyDate,
		DepartureTime: departureTime,
		SeatQuota:     seatQuota,
		CreatedAt:     time.Now(),
	}

	query := `
		INSERT INTO trips (id, route_id, journey_date, departure_time, seat_quota, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query, trip.ID, trip.RouteID, trip.JourneyDate, trip.DepartureTime, trip.SeatQuota, trip.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateTrip
		}
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	return trip, nil
}

// GetByID retrieves a trip by ID
func (r *TripRepository) GetByID(id uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	query := `
		SELECT id, route_id, journey_date, departure_time, seat_quota, created_at
		FROM trips
		WHERE id = $1`

	err := r.db.Get(&trip, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &trip, nil
}

// GetByRouteDateTime retrieves the trip for an exact route, journey date and
// departure time. Returns nil when no such trip exists.
func (r *TripRepository) GetByRouteDateTime(routeID uuid.UUID, journeyDate time.Time, departureTime string) (*models.Trip, error) {
	var trip models.Trip
	query := `
		SELECT id, route_id, journey_date, departure_time, seat_quota, created_at
		FROM trips
		WHERE route_id = $1 AND journey_date = $2 AND departure_time = $3`

	err := r.db.Get(&trip, query, routeID, journeyDate, departureTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip by route/date/time: %w", err)
	}
	return &trip, nil
}

// ListWithStats retrieves all trips with computed seat accounting:
// available = quota - confirmed - active holds.
func (r *TripRepository) ListWithStats(now time.Time) ([]models.TripStats, error) {
	trips := []models.TripStats{}
	query := `
		SELECT t.id, t.route_id, t.journey_date, t.departure_time, t.seat_quota, t.created_at,
		       r.source, r.destination,
		       COALESCE(c.seats, 0) AS confirmed_seats,
		       COALESCE(h.seats, 0) AS held_seats,
		       t.seat_quota - COALESCE(c.seats, 0) - COALESCE(h.seats, 0) AS available_seats
		FROM trips t
		JOIN routes r ON r.id = t.route_id
		LEFT JOIN (
			SELECT trip_id, SUM(seat_count) AS seats FROM bookings b
			WHERE b.status = 'confirmed' GROUP BY trip_id
		) c ON c.trip_id = t.id
		LEFT JOIN (
			SELECT trip_id, SUM(seat_count) AS seats FROM bookings b
			WHERE ` + activeHoldWhere("$1") + ` GROUP BY trip_id
		) h ON h.trip_id = t.id
		ORDER BY t.journey_date, t.departure_time`

	if err := r.db.Select(&trips, query, now); err != nil {
		return nil, fmt.Errorf("failed to list trips with stats: %w", err)
	}
	return trips, nil
}

// UpdateQuota changes a trip's seat quota. The update only takes effect when
// the new quota still covers all confirmed seats plus active holds, enforced
// in the same statement to avoid racing the hold issuer.
func (r *TripRepository) UpdateQuota(tripID uuid.UUID, seatQuota int, now time.Time) error {
	query := `
		UPDATE trips SET seat_quota = $3
		WHERE id = $1
		  AND $3 >= (
			SELECT COALESCE(SUM(b.seat_count), 0) FROM bookings b
			WHERE b.trip_id = $1
			  AND (b.status = 'confirmed' OR (` + activeHoldWhere("$2") + `))
		  )`

	result, err := r.db.Exec(query, tripID, now, seatQuota)
	if err != nil {
		return fmt.Errorf("failed to update quota: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read quota update result: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing trip from a quota that would undercut
		// committed seats.
		trip, getErr := r.GetByID(tripID)
		if getErr != nil {
			return getErr
		}
		if trip == nil {
			return sql.ErrNoRows
		}
		return ErrQuotaBelowCommitted
	}
	return nil
}
