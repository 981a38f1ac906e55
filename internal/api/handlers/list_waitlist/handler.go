package list_waitlist

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BayLedger/internal/api/handlers"
	"github.com/m04kA/SMC-BayLedger/internal/service/waitlist"
	"github.com/m04kA/SMC-BayLedger/internal/service/waitlist/models"
)

const (
	msgInvalidParams = "некорректные параметры запроса"
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

// Handle GET /api/v1/waitlist
// Query params: date, status (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := &models.ListEntriesRequest{}
	if date := query.Get("date"); date != "" {
		req.Date = &date
	}
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, waitlist.ErrInvalidInput):
			h.logger.Warn("GET /waitlist - Invalid parameters: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /waitlist - Failed to list entries: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /waitlist - Entries retrieved successfully: count=%d", len(result.Entries))
	handlers.RespondJSON(w, http.StatusOK, result)
}
