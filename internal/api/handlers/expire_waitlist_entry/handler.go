package expire_waitlist_entry

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BayLedger/internal/api/handlers"
	"github.com/m04kA/SMC-BayLedger/internal/service/waitlist"
)

const (
	msgInvalidEntryID = "некорректный ID записи очереди"
	msgEntryNotFound  = "запись очереди не найдена"
	msgCannotExpire   = "запись очереди уже закрыта"
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

// Handle POST /api/v1/waitlist/{entryId}/expire
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	entryID := mux.Vars(r)["entryId"]
	if _, err := uuid.Parse(entryID); err != nil {
		h.logger.Warn("POST /waitlist/{id}/expire - Invalid entry ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEntryID)
		return
	}

	entry, err := h.service.Expire(r.Context(), entryID)
	if err != nil {
		switch {
		case errors.Is(err, waitlist.ErrEntryNotFound):
			h.logger.Warn("POST /waitlist/{id}/expire - Entry not found: entry_id=%s", entryID)
			handlers.RespondNotFound(w, msgEntryNotFound)

		case errors.Is(err, waitlist.ErrInvalidTransition):
			h.logger.Warn("POST /waitlist/{id}/expire - Entry already closed: entry_id=%s", entryID)
			handlers.RespondConflict(w, msgCannotExpire)

		default:
			h.logger.Error("POST /waitlist/{id}/expire - Failed to expire entry: entry_id=%s, error=%v", entryID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /waitlist/{id}/expire - Entry expired successfully: entry_id=%s", entryID)
	handlers.RespondJSON(w, http.StatusOK, entry)
}
