package services

import (
	"time"

	"github.com/seatwave/whatsapp-booking-backend/internal/database"
	"github.com/seatwave/whatsapp-booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// MediaResolver resolves an inbound media ID into a downloadable URL.
// Satisfied by *whatsapp.Client.
type MediaResolver interface {
	GetMediaURL(mediaID string) (string, error)
}

// ConfirmationService turns an operator ticket attachment into a confirmed
// booking. The ticket is matched to the most recently created active hold;
// the confirmed transition is status-guarded so it cannot clobber a row the
// expiration sweep already moved.
type ConfirmationService struct {
	bookingRepo *database.BookingRepository
	msgLogRepo  *database.MessageLogRepository
	notifier    Notifier
	media       MediaResolver
	logger      *logrus.Logger
}

// NewConfirmationService creates a new ConfirmationService
func NewConfirmationService(
	bookingRepo *database.BookingRepository,
	msgLogRepo *database.MessageLogRepository,
	notifier Notifier,
	media MediaResolver,
	logger *logrus.Logger,
) *ConfirmationService {
	return &ConfirmationService{
		bookingRepo: bookingRepo,
		msgLogRepo:  msgLogRepo,
		notifier:    notifier,
		media:       media,
		logger:      logger,
	}
}

// ConfirmWithTicket applies an operator media attachment to the latest active
// hold. When no active hold exists, nothing changes and nothing is sent. A
// lost race against the expiration sweep is a benign no-op.
func (s *ConfirmationService) ConfirmWithTicket(mediaID, mediaType string) error {
	booking, err := s.bookingRepo.LatestActiveHold(time.Now())
	if err != nil {
		return err
	}
	if booking == nil {
		s.logger.WithField("media_id", mediaID).Info("Operator ticket received with no active hold, ignoring")
		return nil
	}

	// URL resolution is best-effort provenance; the media ID is the durable
	// reference.
	sourceURL := ""
	if url, err := s.media.GetMediaURL(mediaID); err != nil {
		s.logger.WithError(err).WithField("media_id", mediaID).Warn("Failed to resolve media URL")
	} else {
		sourceURL = url
	}

	result, _, err := s.bookingRepo.Confirm(booking.ID, mediaID, mediaType, sourceURL)
	if err != nil {
		return err
	}

	switch result {
	case models.TransitionAlreadyDone:
		s.logger.WithField("booking_id", booking.ID).Info("Hold already transitioned before confirmation, no-op")
		return nil
	case models.TransitionNotFound:
		s.logger.WithField("booking_id", booking.ID).Error("Booking vanished during confirmation")
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"media_id":   mediaID,
	}).Info("Booking confirmed by operator ticket")

	s.notifyConfirmed(booking)
	return nil
}

func (s *ConfirmationService) notifyConfirmed(booking *models.Booking) {
	msg := "Your booking is confirmed! Your ticket has been issued. Have a safe journey."
	if _, err := s.notifier.SendText(booking.CustomerPhone, msg); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to send confirmation message")
		return
	}
	if _, err := s.msgLogRepo.Append(&booking.ID, models.MessageKindConfirmation, booking.CustomerPhone); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to log confirmation message")
	}
}
