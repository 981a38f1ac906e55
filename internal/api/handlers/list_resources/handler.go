package list_resources

import (
	"net/http"

	"github.com/m04kA/SMC-BayLedger/internal/api/handlers"
	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

const (
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	catalog ResourceCatalog
	logger  Logger
}

func NewHandler(catalog ResourceCatalog, logger Logger) *Handler {
	return &Handler{
		catalog: catalog,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources
// Query params: date (опционально, добавляет часы работы на дату)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	response := FromDomainResources(h.catalog.List())

	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		date, err := domain.ParseDate(dateStr)
		if err != nil {
			h.logger.Warn("GET /resources - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		response.Hours = FromDomainHours(date, h.catalog.HoursFor(date))
	}

	h.logger.Info("GET /resources - Resources retrieved successfully: count=%d", len(response.Resources))
	handlers.RespondJSON(w, http.StatusOK, response)
}
