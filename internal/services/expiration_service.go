package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/seatwave/whatsapp-booking-backend/internal/database"
	"github.com/sirupsen/logrus"
)

// ExpirationService sweeps stale holds to expired, returning their seats to
// the pool. The sweep is idempotent and safe to overlap with confirmations:
// the repository's status guard means a row can only leave hold once.
type ExpirationService struct {
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger

	// OnExpired, when set, is called once per expired booking after the
	// sweep commits. Extension point for an expiry notification.
	OnExpired func(bookingID uuid.UUID)
}

// NewExpirationService creates a new ExpirationService
func NewExpirationService(bookingRepo *database.BookingRepository, logger *logrus.Logger) *ExpirationService {
	return &ExpirationService{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// Sweep expires every hold whose deadline has passed
func (s *ExpirationService) Sweep() {
	expired, err := s.bookingRepo.ExpireStale(time.Now())
	if err != nil {
		s.logger.WithError(err).Error("Hold expiration sweep failed")
		return
	}

	if len(expired) == 0 {
		return
	}

	s.logger.WithField("count", len(expired)).Info("Expired stale holds")

	if s.OnExpired != nil {
		for _, id := range expired {
			s.OnExpired(id)
		}
	}
}
