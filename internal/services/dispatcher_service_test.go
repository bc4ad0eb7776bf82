package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatwave/whatsapp-booking-backend/internal/database"
	"github.com/seatwave/whatsapp-booking-backend/pkg/validator"
	"github.com/seatwave/whatsapp-booking-backend/pkg/whatsapp"
)

func newDispatcher(db *sqlx.DB, notifier Notifier) *DispatcherService {
	holds := newHoldService(db, notifier)
	confirmation := newConfirmationService(db, notifier, &fakeMediaResolver{url: "https://lookaside.example/media/7"})
	return NewDispatcherService(
		database.NewOperatorRepository(db),
		database.NewMessageLogRepository(db),
		NewMessageParser(),
		holds,
		confirmation,
		notifier,
		validator.NewPhoneValidator(),
		testLogger(),
	)
}

func textMessage(from, body string) *whatsapp.InboundMessage {
	return &whatsapp.InboundMessage{
		From: from,
		Type: "text",
		Text: &whatsapp.InboundText{Body: body},
	}
}

func expectCustomerLookup(mock sqlmock.Sqlmock, phone string) {
	mock.ExpectQuery(`SELECT (.+) FROM operators`).
		WithArgs(phone).
		WillReturnError(sql.ErrNoRows)
}

func expectOperatorLookup(mock sqlmock.Sqlmock, phone string) uuid.UUID {
	operatorID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM operators`).
		WithArgs(phone).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "is_approved", "created_at"}).
			AddRow(operatorID, "SeatWave Travels", phone, true, time.Now()))
	return operatorID
}

func TestHandleInbound_CustomerMessages(t *testing.T) {
	t.Run("Unrecognized Text Is Dropped Silently", func(t *testing.T) {
		db, mock := newServiceMockDB(t)
		notifier := &fakeNotifier{}
		dispatcher := newDispatcher(db, notifier)

		expectCustomerLookup(mock, "919876543210")

		dispatcher.HandleInbound(textMessage("919876543210", "hello, do you have buses?"), "Asha")

		assert.Empty(t, notifier.sent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Recognized But Invalid Gets The Reason Back", func(t *testing.T) {
		db, mock := newServiceMockDB(t)
		notifier := &fakeNotifier{}
		dispatcher := newDispatcher(db, notifier)

		expectCustomerLookup(mock, "919876543210")
		mock.ExpectExec(`INSERT INTO message_logs`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		dispatcher.HandleInbound(textMessage("919876543210", "Mumbai, Pune, someday, 08:00"), "Asha")

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "919876543210", notifier.sent[0].To)
		assert.Contains(t, notifier.sent[0].Body, "someday")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Valid Booking Places Hold", func(t *testing.T) {
		db, mock := newServiceMockDB(t)
		notifier := &fakeNotifier{}
		dispatcher := newDispatcher(db, notifier)
		routeID, tripID := uuid.New(), uuid.New()

		expectCustomerLookup(mock, "919876543210")
		intent := &BookingIntent{
			Source:      "Mumbai",
			Destination: "Pune",
			Date:        time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			Time:        "08:00",
			SeatCount:   2,
		}
		expectHoldPlacement(mock, routeID, tripID, intent)
		mock.ExpectExec(`INSERT INTO message_logs`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM operators`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "is_approved", "created_at"}).
				AddRow(uuid.New(), "SeatWave Travels", "919999999999", true, time.Now()))
		mock.ExpectExec(`INSERT INTO message_logs`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		dispatcher.HandleInbound(
			textMessage("919876543210", "BOOK Mumbai Pune 2026-09-01 08:00 2"), "Asha")

		require.Len(t, notifier.sent, 2)
		assert.Contains(t, notifier.sent[0].Body, "on hold")
		assert.Contains(t, notifier.sent[1].Body, "Asha")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Route Gets Plain Language Rejection", func(t *testing.T) {
		db, mock := newServiceMockDB(t)
		notifier := &fakeNotifier{}
		dispatcher := newDispatcher(db, notifier)

		expectCustomerLookup(mock, "919876543210")
		mock.ExpectQuery(`SELECT (.+) FROM routes`).
			WithArgs("Goa", "Pune").
			WillReturnRows(sqlmock.NewRows([]string{"id", "operator_id", "source", "destination", "price", "created_at"}))
		mock.ExpectExec(`INSERT INTO message_logs`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		dispatcher.HandleInbound(
			textMessage("919876543210", "BOOK Goa Pune 2026-09-01 08:00 2"), "Asha")

		require.Len(t, notifier.sent, 1)
		assert.Contains(t, notifier.sent[0].Body, "don't operate a route")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Non-Text Customer Message Is Dropped", func(t *testing.T) {
		db, mock := newServiceMockDB(t)
		notifier := &fakeNotifier{}
		dispatcher := newDispatcher(db, notifier)

		expectCustomerLookup(mock, "919876543210")

		dispatcher.HandleInbound(&whatsapp.InboundMessage{
			From:  "919876543210",
			Type:  "image",
			Image: &whatsapp.InboundMedia{ID: "media-9"},
		}, "Asha")

		assert.Empty(t, notifier.sent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Sender Phone Is Normalized Before Classification", func(t *testing.T) {
		db, mock := newServiceMockDB(t)
		notifier := &fakeNotifier{}
		dispatcher := newDispatcher(db, notifier)

		// The lookup must use the digits-only form.
		expectCustomerLookup(mock, "919876543210")

		dispatcher.HandleInbound(textMessage("+91 98765-43210", "hello"), "Asha")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHandleInbound_OperatorMessages(t *testing.T) {
	t.Run("Ticket Image Confirms Latest Hold", func(t *testing.T) {
		db, mock := newServiceMockDB(t)
		notifier := &fakeNotifier{}
		dispatcher := newDispatcher(db, notifier)
		bookingID := uuid.New()

		expectOperatorLookup(mock, "919999999999")
		expectLatestActiveHold(mock, bookingID)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO ticket_attachments`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectExec(`INSERT INTO message_logs`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		dispatcher.HandleInbound(&whatsapp.InboundMessage{
			From:  "919999999999",
			Type:  "image",
			Image: &whatsapp.InboundMedia{ID: "media-7"},
		}, "")

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "919876543210", notifier.sent[0].To)
		assert.Contains(t, notifier.sent[0].Body, "confirmed")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ticket With No Active Hold Is Ignored", func(t *testing.T) {
		db, mock := newServiceMockDB(t)
		notifier := &fakeNotifier{}
		dispatcher := newDispatcher(db, notifier)

		expectOperatorLookup(mock, "919999999999")
		mock.ExpectQuery(`SELECT (.+) FROM bookings b`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnError(sql.ErrNoRows)

		dispatcher.HandleInbound(&whatsapp.InboundMessage{
			From:     "919999999999",
			Type:     "document",
			Document: &whatsapp.InboundMedia{ID: "media-8"},
		}, "")

		assert.Empty(t, notifier.sent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Operator Text Is Ignored", func(t *testing.T) {
		db, mock := newServiceMockDB(t)
		notifier := &fakeNotifier{}
		dispatcher := newDispatcher(db, notifier)

		expectOperatorLookup(mock, "919999999999")

		dispatcher.HandleInbound(textMessage("919999999999", "YES"), "")

		assert.Empty(t, notifier.sent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
