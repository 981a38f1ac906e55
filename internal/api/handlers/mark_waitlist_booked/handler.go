package mark_waitlist_booked

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BayLedger/internal/api/handlers"
	"github.com/m04kA/SMC-BayLedger/internal/service/waitlist"
	"github.com/m04kA/SMC-BayLedger/internal/service/waitlist/models"
)

const (
	msgInvalidEntryID     = "некорректный ID записи очереди"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgEntryNotFound      = "запись очереди не найдена"
	msgBookingNotFound    = "бронирование не найдено"
	msgNotNotified        = "запись очереди не находится в статусе notified"
	msgBookingMismatch    = "бронирование не совпадает с предложенным слотом"
	msgInvalidInput       = "некорректные параметры запроса"
)

type Handler struct {
	service WaitlistService
	logger  Logger
}

func NewHandler(service WaitlistService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/waitlist/{entryId}/booked
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	entryID := mux.Vars(r)["entryId"]
	if _, err := uuid.Parse(entryID); err != nil {
		h.logger.Warn("POST /waitlist/{id}/booked - Invalid entry ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEntryID)
		return
	}

	var req models.MarkBookedRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /waitlist/{id}/booked - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	entry, err := h.service.MarkBooked(r.Context(), entryID, &req)
	if err != nil {
		switch {
		case errors.Is(err, waitlist.ErrEntryNotFound):
			h.logger.Warn("POST /waitlist/{id}/booked - Entry not found: entry_id=%s", entryID)
			handlers.RespondNotFound(w, msgEntryNotFound)

		case errors.Is(err, waitlist.ErrBookingNotFound):
			h.logger.Warn("POST /waitlist/{id}/booked - Booking not found: booking_id=%s", req.BookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, waitlist.ErrInvalidTransition):
			h.logger.Warn("POST /waitlist/{id}/booked - Entry is not notified: entry_id=%s", entryID)
			handlers.RespondConflict(w, msgNotNotified)

		case errors.Is(err, waitlist.ErrBookingMismatch):
			h.logger.Warn("POST /waitlist/{id}/booked - Booking does not match offer: entry_id=%s, booking_id=%s",
				entryID, req.BookingID)
			handlers.RespondConflict(w, msgBookingMismatch)

		case errors.Is(err, waitlist.ErrInvalidInput):
			h.logger.Warn("POST /waitlist/{id}/booked - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /waitlist/{id}/booked - Failed to mark entry booked: entry_id=%s, error=%v", entryID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /waitlist/{id}/booked - Entry booked successfully: entry_id=%s, booking_id=%s",
		entryID, req.BookingID)
	handlers.RespondJSON(w, http.StatusOK, entry)
}
