package services

import (
	"errors"
	"strings"

	"github.com/seatwave/whatsapp-booking-backend/internal/database"
	"github.com/seatwave/whatsapp-booking-backend/internal/models"
	"github.com/seatwave/whatsapp-booking-backend/pkg/validator"
	"github.com/seatwave/whatsapp-booking-backend/pkg/whatsapp"
	"github.com/sirupsen/logrus"
)

// DispatcherService classifies every inbound message by sender identity and
// message kind and routes it to the hold issuer or the confirmation engine.
// All outcomes are absorbed here: processing errors are logged, never
// returned to the webhook transport.
type DispatcherService struct {
	operatorRepo *database.OperatorRepository
	msgLogRepo   *database.MessageLogRepository
	parser       *MessageParser
	holds        *HoldService
	confirmation *ConfirmationService
	notifier     Notifier
	phones       *validator.PhoneValidator
	logger       *logrus.Logger
}

// NewDispatcherService creates a new DispatcherService
func NewDispatcherService(
	operatorRepo *database.OperatorRepository,
	msgLogRepo *database.MessageLogRepository,
	parser *MessageParser,
	holds *HoldService,
	confirmation *ConfirmationService,
	notifier Notifier,
	phones *validator.PhoneValidator,
	logger *logrus.Logger,
) *DispatcherService {
	return &DispatcherService{
		operatorRepo: operatorRepo,
		msgLogRepo:   msgLogRepo,
		parser:       parser,
		holds:        holds,
		confirmation: confirmation,
		notifier:     notifier,
		phones:       phones,
		logger:       logger,
	}
}

// HandleInbound processes one inbound message. profileName is the sender's
// WhatsApp display name, used as the customer name on new holds.
func (s *DispatcherService) HandleInbound(msg *whatsapp.InboundMessage, profileName string) {
	sender := s.phones.Normalize(msg.From)

	operator, err := s.operatorRepo.GetByPhone(sender)
	if err != nil {
		s.logger.WithError(err).WithField("sender", sender).Error("Failed to classify sender")
		return
	}

	if operator != nil {
		s.handleOperatorMessage(msg, operator)
		return
	}
	s.handleCustomerMessage(msg, sender, profileName)
}

// handleOperatorMessage consumes ticket media from the operator. Anything
// else from the operator, text included, is logged and ignored.
func (s *DispatcherService) handleOperatorMessage(msg *whatsapp.InboundMessage, operator *models.Operator) {
	var mediaID, mediaType string
	switch msg.Type {
	case "image":
		if msg.Image != nil {
			mediaID, mediaType = msg.Image.ID, "image"
		}
	case "document":
		if msg.Document != nil {
			mediaID, mediaType = msg.Document.ID, "document"
		}
	}

	if mediaID == "" {
		s.logger.WithFields(logrus.Fields{
			"operator": operator.ID,
			"type":     msg.Type,
		}).Info("Non-media operator message, ignoring")
		return
	}

	if err := s.confirmation.ConfirmWithTicket(mediaID, mediaType); err != nil {
		s.logger.WithError(err).WithField("media_id", mediaID).Error("Ticket confirmation failed")
	}
}

// handleCustomerMessage parses a booking intent from customer text and places
// a hold. Unrecognized content is dropped silently; recognized-but-invalid
// input gets the specific reason back, verbatim.
func (s *DispatcherService) handleCustomerMessage(msg *whatsapp.InboundMessage, sender, profileName string) {
	if msg.Type != "text" || msg.Text == nil {
		s.logger.WithFields(logrus.Fields{
			"sender": sender,
			"type":   msg.Type,
		}).Info("Unhandled customer message type, dropping")
		return
	}

	body := strings.TrimSpace(msg.Text.Body)
	intent, perr := s.parser.Parse(body)
	if perr != nil {
		if !perr.Recognized {
			s.logger.WithField("sender", sender).Info("Unrecognized customer message, dropping")
			return
		}
		s.reject(sender, perr.Error())
		return
	}

	customerName := profileName
	if customerName == "" {
		customerName = sender
	}

	_, err := s.holds.PlaceHold(intent, customerName, sender)
	if err == nil {
		return
	}

	// Input errors go back to the customer in plain language; anything else
	// is a server-side problem that stays in the logs.
	var routeNotFound *RouteNotFoundError
	var routeAmbiguous *RouteAmbiguousError
	var tripNotFound *TripNotFoundError
	var insufficient *database.ErrInsufficientSeats

	switch {
	case errors.As(err, &routeNotFound),
		errors.As(err, &routeAmbiguous),
		errors.As(err, &tripNotFound):
		s.reject(sender, "Sorry, we couldn't book that: "+err.Error())
	case errors.As(err, &insufficient):
		s.reject(sender, "Sorry, not enough seats are left on that trip: "+err.Error())
	default:
		s.logger.WithError(err).WithField("sender", sender).Error("Hold placement failed")
	}
}

func (s *DispatcherService) reject(to, reason string) {
	if _, err := s.notifier.SendText(to, reason); err != nil {
		s.logger.WithError(err).WithField("recipient", to).Error("Failed to send rejection message")
		return
	}
	if _, err := s.msgLogRepo.Append(nil, models.MessageKindRejection, to); err != nil {
		s.logger.WithError(err).Error("Failed to log rejection message")
	}
}
