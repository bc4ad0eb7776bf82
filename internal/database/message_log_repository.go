package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/seatwave/whatsapp-booking-backend/internal/models"
)

// MessageLogRepository handles the append-only outbound notification log
type MessageLogRepository struct {
	db *sqlx.DB
}

// NewMessageLogRepository creates a new MessageLogRepository
func NewMessageLogRepository(db *sqlx.DB) *MessageLogRepository {
	return &MessageLogRepository{db: db}
}

// Append records an outbound notification. bookingID may be nil for
// notifications not tied to a booking (e.g. rejections).
func (r *MessageLogRepository) Append(bookingID *uuid.UUID, kind models.MessageKind, recipient string) (*models.MessageLog, error) {
	entry := &models.MessageLog{
		ID:        uuid.New(),
		BookingID: bookingID,
		Kind:      kind,
		Recipient: recipient,
		SentAt:    time.Now(),
	}

	query := `
		INSERT INTO message_logs (id, booking_id, kind, recipient, sent_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query, entry.ID, entry.BookingID, entry.Kind, entry.Recipient, entry.SentAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append message log: %w", err)
	}
	return entry, nil
}

// HasForBooking reports whether a log row of the given kind exists for a
// booking. The reminder sweep uses this as its idempotency guard.
func (r *MessageLogRepository) HasForBooking(bookingID uuid.UUID, kind models.MessageKind) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM message_logs WHERE booking_id = $1 AND kind = $2)`

	if err := r.db.Get(&exists, query, bookingID, kind); err != nil {
		return false, fmt.Errorf("failed to check message log: %w", err)
	}
	return exists, nil
}

// ListByBooking retrieves the notification history of a booking
func (r *MessageLogRepository) ListByBooking(bookingID uuid.UUID) ([]models.MessageLog, error) {
	logs := []models.MessageLog{}
	query := `
		SELECT id, booking_id, kind, recipient, sent_at
		FROM message_logs
		WHERE booking_id = $1
		ORDER BY sent_at ASC`

	if err := r.db.Select(&logs, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to list message logs: %w", err)
	}
	return logs, nil
}
