package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/seatwave/whatsapp-booking-backend/internal/models"
)

// ErrInsufficientSeats is returned when a hold request exceeds the seats
// remaining on a trip. Carries the actual remaining count so the customer can
// be told what is still bookable.
type ErrInsufficientSeats struct {
	Requested int
	Remaining int
}

func (e *ErrInsufficientSeats) Error() string {
	return fmt.Sprintf("insufficient seats: requested %d, %d remaining", e.Requested, e.Remaining)
}

// BookingRepository handles booking database operations. It owns every
// booking state transition: holds are created here under a per-trip lock, and
// the confirmed/expired transitions are status-guarded updates.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Availability computes the seat ledger for a trip:
// quota - confirmed - active holds. Read-only variant for callers outside the
// hold transaction.
func (r *BookingRepository) Availability(tripID uuid.UUID, now time.Time) (int, error) {
	return r.availability(r.db, tripID, now, false)
}

type queryer interface {
	Get(dest interface{}, query string, args ...interface{}) error
}

func (r *BookingRepository) availability(q queryer, tripID uuid.UUID, now time.Time, forUpdate bool) (int, error) {
	tripQuery := `SELECT seat_quota FROM trips WHERE id = $1`
	if forUpdate {
		tripQuery += ` FOR UPDATE`
	}

	var quota int
	if err := q.Get(&quota, tripQuery, tripID); err != nil {
		if err == sql.ErrNoRows {
			return 0, sql.ErrNoRows
		}
		return 0, fmt.Errorf("failed to read trip quota: %w", err)
	}

	var committed int
	committedQuery := `
		SELECT COALESCE(SUM(b.seat_count), 0) FROM bookings b
		WHERE b.trip_id = $1
		  AND (b.status = 'confirmed' OR (` + activeHoldWhere("$2") + `))`
	if err := q.Get(&committed, committedQuery, tripID, now); err != nil {
		return 0, fmt.Errorf("failed to sum committed seats: %w", err)
	}

	return quota - committed, nil
}

// CreateHold atomically checks availability and inserts a hold booking. The
// trip row is locked for the duration of the transaction so concurrent
// requests against the same trip serialize; two requests cannot both pass the
// availability check when only one fits.
func (r *BookingRepository) CreateHold(tripID uuid.UUID, customerName, customerPhone string, seatCount int, holdFor time.Duration) (*models.Booking, error) {
	now := time.Now()

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin hold transaction: %w", err)
	}
	defer tx.Rollback()

	remaining, err := r.availability(tx, tripID, now, true)
	if err != nil {
		return nil, err
	}
	if remaining < seatCount {
		return nil, &ErrInsufficientSeats{Requested: seatCount, Remaining: remaining}
	}

	expiresAt := now.Add(holdFor)
	booking := &models.Booking{
		ID:            uuid.New(),
		TripID:        tripID,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		SeatCount:     seatCount,
		Status:        models.BookingStatusHold,
		HoldExpiresAt: &expiresAt,
		CreatedAt:     now,
	}

	insertQuery := `
		INSERT INTO bookings (id, trip_id, customer_name, customer_phone, seat_count, status, hold_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.Exec(insertQuery,
		booking.ID, booking.TripID, booking.CustomerName, booking.CustomerPhone,
		booking.SeatCount, booking.Status, booking.HoldExpiresAt, booking.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert hold: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit hold: %w", err)
	}
	return booking, nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	query := `
		SELECT id, trip_id, customer_name, customer_phone, seat_count, status, hold_expires_at, created_at
		FROM bookings
		WHERE id = $1`

	err := r.db.Get(&booking, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// LatestActiveHold returns the most recently created booking still in an
// unexpired hold, or nil when none exists. This is the row an operator ticket
// confirms.
func (r *BookingRepository) LatestActiveHold(now time.Time) (*models.Booking, error) {
	var booking models.Booking
	query := `
		SELECT b.id, b.trip_id, b.customer_name, b.customer_phone, b.seat_count, b.status, b.hold_expires_at, b.created_at
		FROM bookings b
		WHERE ` + activeHoldWhere("$1") + `
		ORDER BY b.created_at DESC
		LIMIT 1`

	err := r.db.Get(&booking, query, now)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest active hold: %w", err)
	}
	return &booking, nil
}

// Confirm transitions a hold to confirmed and records the ticket attachment
// in the same transaction. The update is guarded on status='hold': when a
// concurrent sweep already expired the row (or it was confirmed twice), the
// result is TransitionAlreadyDone and nothing is written.
func (r *BookingRepository) Confirm(bookingID uuid.UUID, mediaID, mediaType, sourceURL string) (models.TransitionResult, *models.TicketAttachment, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return models.TransitionNotFound, nil, fmt.Errorf("failed to begin confirm transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE bookings
		SET status = 'confirmed', hold_expires_at = NULL
		WHERE id = $1 AND status = 'hold'`, bookingID)
	if err != nil {
		return models.TransitionNotFound, nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return models.TransitionNotFound, nil, fmt.Errorf("failed to read confirm result: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)`, bookingID); err != nil {
			return models.TransitionNotFound, nil, fmt.Errorf("failed to check booking existence: %w", err)
		}
		if exists {
			return models.TransitionAlreadyDone, nil, nil
		}
		return models.TransitionNotFound, nil, nil
	}

	ticket := &models.TicketAttachment{
		ID:         uuid.New(),
		BookingID:  bookingID,
		MediaID:    mediaID,
		MediaType:  mediaType,
		SourceURL:  sourceURL,
		ReceivedAt: time.Now(),
	}

	_, err = tx.Exec(`
		INSERT INTO ticket_attachments (id, booking_id, media_id, media_type, source_url, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ticket.ID, ticket.BookingID, ticket.MediaID, ticket.MediaType, ticket.SourceURL, ticket.ReceivedAt,
	)
	if err != nil {
		return models.TransitionNotFound, nil, fmt.Errorf("failed to record ticket attachment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.TransitionNotFound, nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}
	return models.TransitionApplied, ticket, nil
}

// ExpireStale transitions every hold past its expiry to expired and returns
// the IDs of the rows it moved. The status guard makes the sweep a no-op for
// rows a concurrent confirmation just won, and re-running it is idempotent.
func (r *BookingRepository) ExpireStale(now time.Time) ([]uuid.UUID, error) {
	var expired []uuid.UUID
	query := `
		UPDATE bookings
		SET status = 'expired', hold_expires_at = NULL
		WHERE status = 'hold' AND hold_expires_at <= $1
		RETURNING id`

	if err := r.db.Select(&expired, query, now); err != nil {
		return nil, fmt.Errorf("failed to expire stale holds: %w", err)
	}
	return expired, nil
}

// ListByTrip retrieves all bookings for a trip with their ticket attachments
func (r *BookingRepository) ListByTrip(tripID uuid.UUID) ([]models.BookingDetail, error) {
	type row struct {
		models.Booking
		TicketID   *uuid.UUID `db:"ticket_id"`
		MediaID    *string    `db:"media_id"`
		MediaType  *string    `db:"media_type"`
		SourceURL  *string    `db:"source_url"`
		ReceivedAt *time.Time `db:"received_at"`
	}

	rows := []row{}
	query := `
		SELECT b.id, b.trip_id, b.customer_name, b.customer_phone, b.seat_count, b.status, b.hold_expires_at, b.created_at,
		       t.id AS ticket_id, t.media_id, t.media_type, t.source_url, t.received_at
		FROM bookings b
		LEFT JOIN ticket_attachments t ON t.booking_id = b.id
		WHERE b.trip_id = $1
		ORDER BY b.created_at DESC`

	if err := r.db.Select(&rows, query, tripID); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	details := make([]models.BookingDetail, 0, len(rows))
	for _, rw := range rows {
		detail := models.BookingDetail{Booking: rw.Booking}
		if rw.TicketID != nil {
			detail.Ticket = &models.TicketAttachment{
				ID:         *rw.TicketID,
				BookingID:  rw.Booking.ID,
				MediaID:    *rw.MediaID,
				MediaType:  *rw.MediaType,
				SourceURL:  *rw.SourceURL,
				ReceivedAt: *rw.ReceivedAt,
			}
		}
		details = append(details, detail)
	}
	return details, nil
}

// ReminderCandidate is a confirmed booking approaching departure that has no
// reminder logged yet.
type ReminderCandidate struct {
	models.Booking
	Source        string    `db:"source"`
	Destination   string    `db:"destination"`
	JourneyDate   time.Time `db:"journey_date"`
	DepartureTime string    `db:"departure_time"`
}

// ConfirmedNeedingReminder selects confirmed bookings whose departure falls
// within (now, now+lead] and for which no reminder message has been logged.
// The message log row is the dedup guard; selection and logging together give
// at-least-once delivery.
func (r *BookingRepository) ConfirmedNeedingReminder(now time.Time, lead time.Duration) ([]ReminderCandidate, error) {
	candidates := []ReminderCandidate{}
	query := `
		SELECT b.id, b.trip_id, b.customer_name, b.customer_phone, b.seat_count, b.status, b.hold_expires_at, b.created_at,
		       r.source, r.destination, t.journey_date, t.departure_time
		FROM bookings b
		JOIN trips t ON t.id = b.trip_id
		JOIN routes r ON r.id = t.route_id
		WHERE b.status = 'confirmed'
		  AND t.journey_date + t.departure_time > $1
		  AND t.journey_date + t.departure_time <= $2
		  AND NOT EXISTS (
			SELECT 1 FROM message_logs m
			WHERE m.booking_id = b.id AND m.kind = 'reminder'
		  )
		ORDER BY t.journey_date, t.departure_time`

	if err := r.db.Select(&candidates, query, now, now.Add(lead)); err != nil {
		return nil, fmt.Errorf("failed to select reminder candidates: %w", err)
	}
	return candidates, nil
}
