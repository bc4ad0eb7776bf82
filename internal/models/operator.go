package models

import (
	"time"

	"github.com/google/uuid"
)

// Operator represents the controlling entity for the direct booking channel.
// The MVP runs with a single operator record created at bootstrap; inbound
// messages from its phone number are treated as operator actions.
type Operator struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Phone      string    `json:"phone" db:"phone"` // normalized, digits only
	IsApproved bool      `json:"is_approved" db:"is_approved"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
