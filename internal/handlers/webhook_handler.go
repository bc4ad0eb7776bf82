package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seatwave/whatsapp-booking-backend/internal/services"
	"github.com/seatwave/whatsapp-booking-backend/pkg/whatsapp"
	"github.com/sirupsen/logrus"
)

// WebhookHandler terminates the messaging provider's webhook: the GET
// verification handshake and the POST event delivery. Events are always
// acknowledged with 200 before processing so the provider never retries;
// every downstream failure is visible only in the logs.
type WebhookHandler struct {
	dispatcher  *services.DispatcherService
	verifyToken string
	logger      *logrus.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(dispatcher *services.DispatcherService, verifyToken string, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher:  dispatcher,
		verifyToken: verifyToken,
		logger:      logger,
	}
}

// Verify handles the provider's subscription handshake
// GET /webhook?hub.mode=subscribe&hub.verify_token=...&hub.challenge=...
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken {
		h.logger.WithField("mode", mode).Warn("Webhook verification rejected")
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, challenge)
}

// Receive handles event delivery
// POST /webhook
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload whatsapp.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// Still acknowledge: a malformed body would otherwise be redelivered
		// forever.
		h.logger.WithError(err).Warn("Unparseable webhook payload")
		c.Status(http.StatusOK)
		return
	}

	c.Status(http.StatusOK)

	msg := payload.FirstMessage()
	if msg == nil {
		return
	}
	profileName := payload.FirstContactName()

	// Acknowledge-then-process: the dispatcher absorbs all errors.
	go h.dispatcher.HandleInbound(msg, profileName)
}
