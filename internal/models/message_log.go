package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageKind classifies an outbound notification in the audit trail.
type MessageKind string

const (
	MessageKindHoldNotification     MessageKind = "hold_notification"
	MessageKindOperatorNotification MessageKind = "operator_notification"
	MessageKindConfirmation         MessageKind = "confirmation"
	MessageKindReminder             MessageKind = "reminder"
	MessageKindRejection            MessageKind = "rejection"
)

// MessageLog is an append-only record of an outbound notification. The
// reminder sweep uses the absence of a reminder row as its send trigger, so
// rows are never mutated or deleted.
type MessageLog struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	BookingID *uuid.UUID  `json:"booking_id,omitempty" db:"booking_id"`
	Kind      MessageKind `json:"kind" db:"kind"`
	Recipient string      `json:"recipient" db:"recipient"`
	SentAt    time.Time   `json:"sent_at" db:"sent_at"`
}
