package services

import (
	"fmt"
	"time"

	"github.com/seatwave/whatsapp-booking-backend/internal/database"
	"github.com/seatwave/whatsapp-booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ReminderService messages customers of confirmed bookings shortly before
// departure. The message log row written after each send is the dedup guard:
// a crash between send and log can repeat a reminder on the next sweep, which
// is the documented at-least-once trade-off.
type ReminderService struct {
	bookingRepo *database.BookingRepository
	msgLogRepo  *database.MessageLogRepository
	notifier    Notifier
	logger      *logrus.Logger
	lead        time.Duration
}

// NewReminderService creates a new ReminderService
func NewReminderService(
	bookingRepo *database.BookingRepository,
	msgLogRepo *database.MessageLogRepository,
	notifier Notifier,
	logger *logrus.Logger,
	lead time.Duration,
) *ReminderService {
	return &ReminderService{
		bookingRepo: bookingRepo,
		msgLogRepo:  msgLogRepo,
		notifier:    notifier,
		logger:      logger,
		lead:        lead,
	}
}

// Sweep sends a reminder for each confirmed booking departing within the
// lead window that has none logged yet
func (s *ReminderService) Sweep() {
	candidates, err := s.bookingRepo.ConfirmedNeedingReminder(time.Now(), s.lead)
	if err != nil {
		s.logger.WithError(err).Error("Reminder sweep failed")
		return
	}

	for _, candidate := range candidates {
		msg := fmt.Sprintf(
			"Reminder: your bus from %s to %s departs at %s on %s. %d seat(s) booked. Safe travels!",
			candidate.Source, candidate.Destination, candidate.DepartureTime,
			candidate.JourneyDate.Format("2 Jan 2006"), candidate.SeatCount,
		)

		if _, err := s.notifier.SendText(candidate.CustomerPhone, msg); err != nil {
			s.logger.WithError(err).WithField("booking_id", candidate.ID).Error("Failed to send reminder")
			continue
		}

		if _, err := s.msgLogRepo.Append(&candidate.Booking.ID, models.MessageKindReminder, candidate.CustomerPhone); err != nil {
			s.logger.WithError(err).WithField("booking_id", candidate.ID).Error("Failed to log reminder, it may repeat next sweep")
		}
	}
}
