package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seatwave/whatsapp-booking-backend/internal/database"
	"github.com/seatwave/whatsapp-booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Notifier sends a text message to a phone number. Satisfied by
// *whatsapp.Client; tests substitute a fake.
type Notifier interface {
	SendText(to, body string) (string, error)
}

// RouteNotFoundError indicates no route matched the requested endpoints
type RouteNotFoundError struct {
	Source      string
	Destination string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("sorry, we don't operate a route from %s to %s", e.Source, e.Destination)
}

// RouteAmbiguousError indicates the requested endpoints matched more than one
// route, so the system refuses to pick one silently
type RouteAmbiguousError struct {
	Source      string
	Destination string
	Matches     int
}

func (e *RouteAmbiguousError) Error() string {
	return fmt.Sprintf("your route %s to %s matches %d of our routes, please be more specific", e.Source, e.Destination, e.Matches)
}

// TripNotFoundError indicates the route exists but no trip departs at the
// requested date and time
type TripNotFoundError struct {
	Source      string
	Destination string
	Date        time.Time
	Time        string
}

func (e *TripNotFoundError) Error() string {
	return fmt.Sprintf("no %s to %s departure at %s on %s", e.Source, e.Destination, e.Time, e.Date.Format("2 Jan 2006"))
}

// HoldService is the hold issuer: it resolves a parsed intent to a trip,
// checks the seat ledger and creates a time-limited hold, all inside one
// per-trip transaction in the booking repository.
type HoldService struct {
	routeRepo    *database.RouteRepository
	tripRepo     *database.TripRepository
	bookingRepo  *database.BookingRepository
	msgLogRepo   *database.MessageLogRepository
	operatorRepo *database.OperatorRepository
	notifier     Notifier
	logger       *logrus.Logger
	holdDuration time.Duration
}

// NewHoldService creates a new HoldService
func NewHoldService(
	routeRepo *database.RouteRepository,
	tripRepo *database.TripRepository,
	bookingRepo *database.BookingRepository,
	msgLogRepo *database.MessageLogRepository,
	operatorRepo *database.OperatorRepository,
	notifier Notifier,
	logger *logrus.Logger,
	holdDuration time.Duration,
) *HoldService {
	return &HoldService{
		routeRepo:    routeRepo,
		tripRepo:     tripRepo,
		bookingRepo:  bookingRepo,
		msgLogRepo:   msgLogRepo,
		operatorRepo: operatorRepo,
		notifier:     notifier,
		logger:       logger,
		holdDuration: holdDuration,
	}
}

// PlaceHold resolves the intent and creates a hold booking. Input failures
// (unknown/ambiguous route, unknown trip, insufficient seats) come back as
// typed errors whose messages are fit to forward to the customer verbatim.
// On success the customer and operator notifications are sent after the
// commit; a failed send never rolls the hold back.
func (s *HoldService) PlaceHold(intent *BookingIntent, customerName, customerPhone string) (*models.Booking, error) {
	routes, err := s.routeRepo.FindByEndpoints(intent.Source, intent.Destination)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, &RouteNotFoundError{Source: intent.Source, Destination: intent.Destination}
	}
	if len(routes) > 1 {
		return nil, &RouteAmbiguousError{Source: intent.Source, Destination: intent.Destination, Matches: len(routes)}
	}
	route := routes[0]

	trip, err := s.tripRepo.GetByRouteDateTime(route.ID, intent.Date, intent.Time)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, &TripNotFoundError{
			Source:      route.Source,
			Destination: route.Destination,
			Date:        intent.Date,
			Time:        intent.Time,
		}
	}

	booking, err := s.bookingRepo.CreateHold(trip.ID, customerName, customerPhone, intent.SeatCount, s.holdDuration)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"trip_id":    trip.ID,
		"seats":      booking.SeatCount,
		"expires_at": booking.HoldExpiresAt,
	}).Info("Hold created")

	s.notifyHold(booking, &route, trip)
	return booking, nil
}

// notifyHold sends the post-commit notifications: hold details to the
// customer, full booking detail to the operator. Both are best-effort; a
// failure is logged with context and the hold stands.
func (s *HoldService) notifyHold(booking *models.Booking, route *models.Route, trip *models.Trip) {
	expiresIn := int(s.holdDuration.Minutes())
	customerMsg := fmt.Sprintf(
		"Your booking is on hold: %s to %s on %s at %s, %d seat(s). "+
			"We will confirm within %d minutes once your ticket is issued.",
		route.Source, route.Destination,
		trip.JourneyDate.Format("2 Jan 2006"), trip.DepartureTime,
		booking.SeatCount, expiresIn,
	)
	s.sendAndLog(booking.CustomerPhone, customerMsg, &booking.ID, models.MessageKindHoldNotification)

	operator, err := s.operatorRepo.GetDefault()
	if err != nil || operator == nil {
		s.logger.WithError(err).Error("No operator to notify for new hold")
		return
	}

	operatorMsg := fmt.Sprintf(
		"New booking hold: %s, %s — %s to %s on %s at %s, %d seat(s), total %.2f. "+
			"Issue the ticket and send it here to confirm.",
		booking.CustomerName, booking.CustomerPhone,
		route.Source, route.Destination,
		trip.JourneyDate.Format("2 Jan 2006"), trip.DepartureTime,
		booking.SeatCount, route.Price*float64(booking.SeatCount),
	)
	s.sendAndLog(operator.Phone, operatorMsg, &booking.ID, models.MessageKindOperatorNotification)
}

func (s *HoldService) sendAndLog(to, body string, bookingID *uuid.UUID, kind models.MessageKind) {
	if _, err := s.notifier.SendText(to, body); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"recipient": to,
			"kind":      kind,
		}).Error("Failed to send notification")
		return
	}
	if _, err := s.msgLogRepo.Append(bookingID, kind, to); err != nil {
		s.logger.WithError(err).WithField("kind", kind).Error("Failed to log notification")
	}
}
