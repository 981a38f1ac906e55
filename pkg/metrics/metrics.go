package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus метрик сервиса
// Все методы безопасно вызывать на nil (метрики выключены)
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration  *prometheus.HistogramVec
	dbOpenConns      *prometheus.GaugeVec
	dbInUseConns     *prometheus.GaugeVec
	dbIdleConns      *prometheus.GaugeVec
	dbWaitCountTotal *prometheus.GaugeVec

	bookingOperationsTotal *prometheus.CounterVec
	syncRunsTotal          *prometheus.CounterVec
	syncRecordsTotal       *prometheus.CounterVec
	syncPendingRecords     *prometheus.GaugeVec
	syncOnline             *prometheus.GaugeVec
	conflictsDetectedTotal *prometheus.CounterVec
	waitlistNotifiedTotal  *prometheus.CounterVec
}

// New регистрирует метрики в глобальном registry (для promhttp.Handler)
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном registerer
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		dbQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"db", "operation", "status"}),
		dbOpenConns: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}, []string{"db"}),
		dbInUseConns: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),
		dbIdleConns: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}, []string{"db"}),
		dbWaitCountTotal: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count_total",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),

		bookingOperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_operations_total",
			Help:        "Ledger operations by kind and result",
			ConstLabels: constLabels,
		}, []string{"operation", "result"}),
		syncRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "sync_runs_total",
			Help:        "Reconciler push/pull runs by result",
			ConstLabels: constLabels,
		}, []string{"phase", "result"}),
		syncRecordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "sync_records_total",
			Help:        "Records processed by the reconciler",
			ConstLabels: constLabels,
		}, []string{"phase", "collection", "decision"}),
		syncPendingRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "sync_pending_records",
			Help:        "Outbox entries waiting to be pushed",
			ConstLabels: constLabels,
		}, []string{}),
		syncOnline: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "sync_remote_online",
			Help:        "1 when the remote store answered the last probe",
			ConstLabels: constLabels,
		}, []string{}),
		conflictsDetectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "reconciliation_conflicts_detected_total",
			Help:        "Overlapping bookings discovered during merge",
			ConstLabels: constLabels,
		}, []string{}),
		waitlistNotifiedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "waitlist_notifications_total",
			Help:        "Waitlist notifications by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) ObserveDBQuery(db, operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(db, operation, resultLabel(err)).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет метрики пула соединений
func (m *Metrics) SetDBPoolStats(db string, open, inUse, idle int, waitCount int64) {
	if m == nil {
		return
	}
	m.dbOpenConns.WithLabelValues(db).Set(float64(open))
	m.dbInUseConns.WithLabelValues(db).Set(float64(inUse))
	m.dbIdleConns.WithLabelValues(db).Set(float64(idle))
	m.dbWaitCountTotal.WithLabelValues(db).Set(float64(waitCount))
}

func (m *Metrics) IncBookingOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.bookingOperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
}

func (m *Metrics) IncSyncRun(phase string, err error) {
	if m == nil {
		return
	}
	m.syncRunsTotal.WithLabelValues(phase, resultLabel(err)).Inc()
}

func (m *Metrics) AddSyncRecords(phase, collection, decision string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.syncRecordsTotal.WithLabelValues(phase, collection, decision).Add(float64(n))
}

func (m *Metrics) SetPendingRecords(n int) {
	if m == nil {
		return
	}
	m.syncPendingRecords.WithLabelValues().Set(float64(n))
}

func (m *Metrics) SetRemoteOnline(online bool) {
	if m == nil {
		return
	}
	v := 0.0
	if online {
		v = 1
	}
	m.syncOnline.WithLabelValues().Set(v)
}

func (m *Metrics) AddConflicts(n int) {
	if m == nil || n == 0 {
		return
	}
	m.conflictsDetectedTotal.WithLabelValues().Add(float64(n))
}

func (m *Metrics) IncWaitlistNotification(err error) {
	if m == nil {
		return
	}
	m.waitlistNotifiedTotal.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
