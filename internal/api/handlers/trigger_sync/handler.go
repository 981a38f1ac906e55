package trigger_sync

import (
	"net/http"

	"github.com/m04kA/SMC-BayLedger/internal/api/handlers"
)

// TriggerResponse HTTP response model
type TriggerResponse struct {
	Accepted bool `json:"accepted"`
}

type Handler struct {
	trigger SyncTrigger
	logger  Logger
}

func NewHandler(trigger SyncTrigger, logger Logger) *Handler {
	return &Handler{
		trigger: trigger,
		logger:  logger,
	}
}

// Handle POST /api/v1/sync
// Цикл выполняется асинхронно, результат виден в GET /api/v1/sync/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	h.trigger.Trigger()

	h.logger.Info("POST /sync - Sync cycle requested")
	handlers.RespondJSON(w, http.StatusAccepted, TriggerResponse{Accepted: true})
}
