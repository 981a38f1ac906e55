package resolve_conflict

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BayLedger/internal/api/handlers"
	"github.com/m04kA/SMC-BayLedger/internal/service/conflicts"
	"github.com/m04kA/SMC-BayLedger/internal/service/conflicts/models"
)

const (
	msgInvalidConflictID  = "некорректный ID конфликта"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "конфликт не найден"
	msgAlreadyResolved    = "конфликт уже разрешен"
	msgInvalidNote        = "некорректная заметка оператора"
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

// Handle POST /api/v1/conflicts/{conflictId}/resolve
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conflictID, err := strconv.ParseInt(mux.Vars(r)["conflictId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /conflicts/{id}/resolve - Invalid conflict ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidConflictID)
		return
	}

	var req models.ResolveConflictRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /conflicts/{id}/resolve - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Resolve(r.Context(), conflictID, &req)
	if err != nil {
		switch {
		case errors.Is(err, conflicts.ErrConflictNotFound):
			h.logger.Warn("POST /conflicts/{id}/resolve - Conflict not found: conflict_id=%d", conflictID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, conflicts.ErrAlreadyResolved):
			h.logger.Warn("POST /conflicts/{id}/resolve - Already resolved: conflict_id=%d", conflictID)
			handlers.RespondConflict(w, msgAlreadyResolved)

		case errors.Is(err, conflicts.ErrInvalidInput):
			h.logger.Warn("POST /conflicts/{id}/resolve - Invalid note: conflict_id=%d", conflictID)
			handlers.RespondBadRequest(w, msgInvalidNote)

		default:
			h.logger.Error("POST /conflicts/{id}/resolve - Failed to resolve conflict: conflict_id=%d, error=%v",
				conflictID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /conflicts/{id}/resolve - Conflict resolved successfully: conflict_id=%d", conflictID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
