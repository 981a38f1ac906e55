package add_waitlist_entry

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BayLedger/internal/api/handlers"
	"github.com/m04kA/SMC-BayLedger/internal/service/waitlist"
	"github.com/m04kA/SMC-BayLedger/internal/service/waitlist/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные параметры записи в очередь"
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

// Handle POST /api/v1/waitlist
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.AddEntryRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /waitlist - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	entry, err := h.service.AddEntry(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, waitlist.ErrInvalidInput):
			h.logger.Warn("POST /waitlist - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /waitlist - Failed to add entry: date=%s, error=%v", req.Date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /waitlist - Entry added successfully: entry_id=%s, date=%s", entry.ID, entry.Date)
	handlers.RespondJSON(w, http.StatusCreated, entry)
}
