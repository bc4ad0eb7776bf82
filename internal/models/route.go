package models

import (
	"time"

	"github.com/google/uuid"
)

// Route is a source→destination template priced per seat. Trips reference a
// route; once referenced the route is treated as immutable.
type Route struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OperatorID  uuid.UUID `json:"operator_id" db:"operator_id"`
	Source      string    `json:"source" db:"source"`
	Destination string    `json:"destination" db:"destination"`
	Price       float64   `json:"price" db:"price"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateRouteRequest is the management API request to create a route
type CreateRouteRequest struct {
	Source      string  `json:"source" binding:"required"`
	Destination string  `json:"destination" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
}
