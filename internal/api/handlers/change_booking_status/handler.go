package change_booking_status

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BayLedger/internal/api/handlers"
	"github.com/m04kA/SMC-BayLedger/internal/service/bookings"
	"github.com/m04kA/SMC-BayLedger/internal/service/bookings/models"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
	msgInvalidStatus    = "переход недопустим в текущем статусе бронирования"
)

// Action переход статуса, последний сегмент пути
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
	ActionNoShow   Action = "no-show"
)

type Handler struct {
	service BookingService
	action  Action
	logger  Logger
}

func NewHandler(service BookingService, action Action, logger Logger) *Handler {
	return &Handler{
		service: service,
		action:  action,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/{confirm|check-in|check-out|no-show}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["bookingId"]
	if _, err := uuid.Parse(bookingID); err != nil {
		h.logger.Warn("POST /bookings/{id}/%s - Invalid booking ID: %v", h.action, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	booking, err := h.apply(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/%s - Booking not found: booking_id=%s", h.action, bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("POST /bookings/{id}/%s - Invalid transition: booking_id=%s", h.action, bookingID)
			handlers.RespondConflict(w, msgInvalidStatus)

		default:
			h.logger.Error("POST /bookings/{id}/%s - Failed to change status: booking_id=%s, error=%v",
				h.action, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/%s - Status changed successfully: booking_id=%s, status=%s",
		h.action, bookingID, booking.Status)
	handlers.RespondJSON(w, http.StatusOK, booking)
}

func (h *Handler) apply(ctx context.Context, id string) (*models.BookingResponse, error) {
	switch h.action {
	case ActionConfirm:
		return h.service.Confirm(ctx, id)
	case ActionCheckIn:
		return h.service.CheckIn(ctx, id)
	case ActionCheckOut:
		return h.service.CheckOut(ctx, id)
	case ActionNoShow:
		return h.service.MarkNoShow(ctx, id)
	default:
		return nil, errors.New("change_booking_status: unknown action " + string(h.action))
	}
}
