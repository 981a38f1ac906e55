package get_sync_status

import (
	"net/http"

	"github.com/m04kA/SMC-BayLedger/internal/api/handlers"
)

type Handler struct {
	service SyncService
	logger  Logger
}

func NewHandler(service SyncService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/sync/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		h.logger.Error("GET /sync/status - Failed to get sync status: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /sync/status - Status retrieved: online=%t, pending=%d, conflicts=%d",
		status.Online, status.PendingChanges, status.OpenConflicts)
	handlers.RespondJSON(w, http.StatusOK, FromDomainStatus(status))
}
