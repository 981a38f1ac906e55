package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	addWaitlistEntryHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/add_waitlist_entry"
	cancelBookingHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/cancel_booking"
	changeBookingStatusHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/change_booking_status"
	createBookingHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/create_booking"
	expireWaitlistEntryHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/expire_waitlist_entry"
	getAvailableSlotsHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/get_booking"
	getSyncStatusHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/get_sync_status"
	listBookingsHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/list_bookings"
	listConflictsHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/list_conflicts"
	listResourcesHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/list_resources"
	listWaitlistHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/list_waitlist"
	markWaitlistBookedHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/mark_waitlist_booked"
	purgeBookingHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/purge_booking"
	resolveConflictHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/resolve_conflict"
	triggerSyncHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/trigger_sync"
	updateBookingHandler "github.com/m04kA/SMC-BayLedger/internal/api/handlers/update_booking"
	"github.com/m04kA/SMC-BayLedger/internal/api/middleware"
	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

func (a *App) newRouter(catalog *domain.Catalog) http.Handler {
	log := a.log

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(a.CreateBooking, log)
	getBooking := getBookingHandler.NewHandler(a.Bookings, log)
	listBookings := listBookingsHandler.NewHandler(a.Bookings, log)
	updateBooking := updateBookingHandler.NewHandler(a.Bookings, log)
	cancelBooking := cancelBookingHandler.NewHandler(a.Bookings, log)
	purgeBooking := purgeBookingHandler.NewHandler(a.Bookings, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(a.Availability, log)
	listResources := listResourcesHandler.NewHandler(catalog, log)
	addWaitlistEntry := addWaitlistEntryHandler.NewHandler(a.Waitlist, log)
	listWaitlist := listWaitlistHandler.NewHandler(a.Waitlist, log)
	markWaitlistBooked := markWaitlistBookedHandler.NewHandler(a.Waitlist, log)
	expireWaitlistEntry := expireWaitlistEntryHandler.NewHandler(a.Waitlist, log)
	listConflicts := listConflictsHandler.NewHandler(a.Conflicts, log)
	resolveConflict := resolveConflictHandler.NewHandler(a.Conflicts, log)
	triggerSync := triggerSyncHandler.NewHandler(a.Reconciler, log)
	getSyncStatus := getSyncStatusHandler.NewHandler(a.Reconciler, log)

	r := mux.NewRouter()
	r.Use(middleware.Recovery(log))

	if a.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(a.Metrics))
		r.Handle(a.cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Бронирования ---
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}", updateBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}", purgeBooking.Handle).Methods(http.MethodDelete)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	for _, action := range []changeBookingStatusHandler.Action{
		changeBookingStatusHandler.ActionConfirm,
		changeBookingStatusHandler.ActionCheckIn,
		changeBookingStatusHandler.ActionCheckOut,
		changeBookingStatusHandler.ActionNoShow,
	} {
		h := changeBookingStatusHandler.NewHandler(a.Bookings, action, log)
		api.HandleFunc("/bookings/{bookingId}/"+string(action), h.Handle).Methods(http.MethodPost)
	}

	// --- Каталог и доступность ---
	api.HandleFunc("/resources", listResources.Handle).Methods(http.MethodGet)
	api.HandleFunc("/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// --- Очередь ожидания ---
	api.HandleFunc("/waitlist", addWaitlistEntry.Handle).Methods(http.MethodPost)
	api.HandleFunc("/waitlist", listWaitlist.Handle).Methods(http.MethodGet)
	api.HandleFunc("/waitlist/{entryId}/booked", markWaitlistBooked.Handle).Methods(http.MethodPost)
	api.HandleFunc("/waitlist/{entryId}/expire", expireWaitlistEntry.Handle).Methods(http.MethodPost)

	// --- Сверка ---
	api.HandleFunc("/conflicts", listConflicts.Handle).Methods(http.MethodGet)
	api.HandleFunc("/conflicts/{conflictId}/resolve", resolveConflict.Handle).Methods(http.MethodPost)
	api.HandleFunc("/sync", triggerSync.Handle).Methods(http.MethodPost)
	api.HandleFunc("/sync/status", getSyncStatus.Handle).Methods(http.MethodGet)

	return otelhttp.NewHandler(r, a.cfg.Metrics.ServiceName)
}
