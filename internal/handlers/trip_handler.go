package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/seatwave/whatsapp-booking-backend/internal/database"
	"github.com/seatwave/whatsapp-booking-backend/internal/models"
)

// TripHandler exposes the operator-facing trip management API
type TripHandler struct {
	tripRepo    *database.TripRepository
	routeRepo   *database.RouteRepository
	bookingRepo *database.BookingRepository
}

// NewTripHandler creates a new TripHandler
func NewTripHandler(
	tripRepo *database.TripRepository,
	routeRepo *database.RouteRepository,
	bookingRepo *database.BookingRepository,
) *TripHandler {
	return &TripHandler{
		tripRepo:    tripRepo,
		routeRepo:   routeRepo,
		bookingRepo: bookingRepo,
	}
}

// ListTrips retrieves all trips with computed seat stats
// GET /api/v1/trips
func (h *TripHandler) ListTrips(c *gin.Context) {
	trips, err := h.tripRepo.ListWithStats(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list trips"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GetTrip retrieves a trip with its bookings
// GET /api/v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip ID"})
		return
	}

	trip, err := h.tripRepo.GetByID(tripID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get trip"})
		return
	}
	if trip == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}

	bookings, err := h.bookingRepo.ListByTrip(tripID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}

	available, err := h.bookingRepo.Availability(tripID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trip":            trip,
		"available_seats": available,
		"bookings":        bookings,
	})
}

// CreateTrip creates a new trip
// POST /api/v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	routeID, err := uuid.Parse(req.RouteID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	journeyDate, err := time.Parse("2006-01-02", req.JourneyDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid journey date, expected YYYY-MM-DD"})
		return
	}

	if _, err := time.Parse("15:04", req.DepartureTime); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid departure time, expected HH:MM"})
		return
	}

	route, err := h.routeRepo.GetByID(routeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get route"})
		return
	}
	if route == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	trip, err := h.tripRepo.Create(routeID, journeyDate, req.DepartureTime, req.SeatQuota)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateTrip) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trip"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"trip": trip})
}

// UpdateQuota changes a trip's seat quota, rejecting reductions below the
// currently committed seat count
// PATCH /api/v1/trips/:id/quota
func (h *TripHandler) UpdateQuota(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip ID"})
		return
	}

	var req models.UpdateQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	err = h.tripRepo.UpdateQuota(tripID, req.SeatQuota, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		if errors.Is(err, database.ErrQuotaBelowCommitted) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quota"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quota updated"})
}
