package list_conflicts

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-BayLedger/internal/api/handlers"
	"github.com/m04kA/SMC-BayLedger/internal/service/conflicts/models"
)

const (
	msgInvalidParams = "некорректные параметры запроса"
)

type Handler struct {
	service ConflictService
	logger  Logger
}

func NewHandler(service ConflictService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/conflicts
// Query params: onlyOpen (опционально, по умолчанию true)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := &models.ListConflictsRequest{OnlyOpen: true}

	if onlyOpenStr := r.URL.Query().Get("onlyOpen"); onlyOpenStr != "" {
		onlyOpen, err := strconv.ParseBool(onlyOpenStr)
		if err != nil {
			h.logger.Warn("GET /conflicts - Invalid onlyOpen value: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)
			return
		}
		req.OnlyOpen = onlyOpen
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("GET /conflicts - Failed to list conflicts: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /conflicts - Conflicts retrieved successfully: count=%d, open=%d",
		len(result.Conflicts), result.Open)
	handlers.RespondJSON(w, http.StatusOK, result)
}
