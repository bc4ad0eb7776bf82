package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking.
// Legal transitions: hold → confirmed, hold → expired. Confirmed and expired
// are terminal.
type BookingStatus string

const (
	BookingStatusHold      BookingStatus = "hold"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusExpired   BookingStatus = "expired"
)

// TransitionResult is the outcome of a status-guarded update. A transition
// that matched zero rows because another writer got there first is
// TransitionAlreadyDone, which callers treat as a benign no-op.
type TransitionResult int

const (
	TransitionApplied TransitionResult = iota
	TransitionAlreadyDone
	TransitionNotFound
)

func (r TransitionResult) String() string {
	switch r {
	case TransitionApplied:
		return "applied"
	case TransitionAlreadyDone:
		return "already_transitioned"
	default:
		return "not_found"
	}
}

// Booking is a seat reservation on a trip. Created only in hold status by the
// hold issuer; mutated only by the confirmation engine (→confirmed) or the
// expiration sweeper (→expired). Never deleted.
type Booking struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	TripID        uuid.UUID     `json:"trip_id" db:"trip_id"`
	CustomerName  string        `json:"customer_name" db:"customer_name"`
	CustomerPhone string        `json:"customer_phone" db:"customer_phone"`
	SeatCount     int           `json:"seat_count" db:"seat_count"`
	Status        BookingStatus `json:"status" db:"status"`
	HoldExpiresAt *time.Time    `json:"hold_expires_at,omitempty" db:"hold_expires_at"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// IsHoldActive reports whether the booking is an unexpired hold at the given
// instant. Only active holds reduce seat availability.
func (b *Booking) IsHoldActive(now time.Time) bool {
	return b.Status == BookingStatusHold && b.HoldExpiresAt != nil && b.HoldExpiresAt.After(now)
}

// TicketAttachment records the operator-issued ticket media that confirmed a
// booking. Exactly one per confirmed booking, created atomically with the
// confirmed transition.
type TicketAttachment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	BookingID  uuid.UUID `json:"booking_id" db:"booking_id"`
	MediaID    string    `json:"media_id" db:"media_id"`
	MediaType  string    `json:"media_type" db:"media_type"` // "image" or "document"
	SourceURL  string    `json:"source_url" db:"source_url"`
	ReceivedAt time.Time `json:"received_at" db:"received_at"`
}

// BookingDetail pairs a booking with its ticket attachment, if any.
type BookingDetail struct {
	Booking
	Ticket *TicketAttachment `json:"ticket,omitempty"`
}
