package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/m04kA/SMC-BayLedger/internal/config"
	"github.com/m04kA/SMC-BayLedger/internal/infra/remote/postgres"
	bookingRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/booking"
	conflictRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/conflict"
	outboxRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/outbox"
	"github.com/m04kA/SMC-BayLedger/internal/infra/storage/sqlite"
	waitlistRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/waitlist"
	"github.com/m04kA/SMC-BayLedger/internal/integrations/membership"
	"github.com/m04kA/SMC-BayLedger/internal/integrations/notifier"
	"github.com/m04kA/SMC-BayLedger/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-BayLedger/internal/service/bookings"
	conflictsService "github.com/m04kA/SMC-BayLedger/internal/service/conflicts"
	"github.com/m04kA/SMC-BayLedger/internal/service/pricing"
	syncService "github.com/m04kA/SMC-BayLedger/internal/service/sync"
	waitlistService "github.com/m04kA/SMC-BayLedger/internal/service/waitlist"
	createBookingUC "github.com/m04kA/SMC-BayLedger/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-BayLedger/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BayLedger/pkg/dbmetrics"
	"github.com/m04kA/SMC-BayLedger/pkg/metrics"
	"github.com/m04kA/SMC-BayLedger/pkg/txmanager"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Option настройка сборки приложения
type Option func(*options)

type options struct {
	remote     syncService.RemoteStore
	notifier   waitlistService.Notifier
	membership createBookingUC.MembershipClient
	registerer prometheus.Registerer
}

// WithRemoteStore подменяет удаленное хранилище (тесты, альтернативные бэкенды)
func WithRemoteStore(remote syncService.RemoteStore) Option {
	return func(o *options) { o.remote = remote }
}

// WithNotifier подменяет канал уведомлений очереди ожидания
func WithNotifier(n waitlistService.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithMembership подменяет клиент сервиса членства
func WithMembership(m createBookingUC.MembershipClient) Option {
	return func(o *options) { o.membership = m }
}

// WithRegisterer регистрирует метрики в указанном реестре вместо глобального
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// App собранный сервис: локальный кэш, сервисы, сверка и HTTP роутер
type App struct {
	cfg *config.Config
	log Logger

	cache    *sql.DB
	remoteDB *sql.DB
	closers  []io.Closer
	stopCh   chan struct{}

	Metrics       *metrics.Metrics
	Bookings      *bookingsService.Service
	CreateBooking *createBookingUC.UseCase
	Availability  *getAvailableSlotsUC.UseCase
	Waitlist      *waitlistService.Service
	Conflicts     *conflictsService.Service
	Reconciler    *syncService.Reconciler
	Router        http.Handler
}

// New собирает приложение по конфигурации
// Недоступность удаленного хранилища на старте не ошибка: сервис работает офлайн
func New(ctx context.Context, cfg *config.Config, log Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, log: log, stopCh: make(chan struct{})}

	// 1. Каталог и правила цен
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("app: build catalog: %w", err)
	}
	calculator := pricing.NewCalculator(cfg.PricingRules())
	checker := availability.NewChecker(catalog, cfg.Booking.TimeUnitMinutes, cfg.Booking.SlotStepMinutes)

	// 2. Метрики
	if cfg.Metrics.Enabled {
		if o.registerer != nil {
			a.Metrics = metrics.NewWithRegisterer(cfg.Metrics.ServiceName, o.registerer)
		} else {
			a.Metrics = metrics.New(cfg.Metrics.ServiceName)
		}
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// 3. Локальный кэш
	if dir := filepath.Dir(cfg.Cache.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("app: create cache directory: %w", err)
		}
	}
	a.cache, err = sqlite.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("app: open local cache: %w", err)
	}
	log.Info("Local cache opened at %s", cfg.Cache.Path)

	cacheDB := a.wrapDB(a.cache, "cache")
	bookings := bookingRepo.NewRepository(cacheDB)
	entries := waitlistRepo.NewRepository(cacheDB)
	outbox := outboxRepo.NewRepository(cacheDB)
	conflicts := conflictRepo.NewRepository(cacheDB)
	txManager := txmanager.NewTransactionManager(cacheDB)
	trigger := syncService.NewTrigger()

	// 4. Удаленное хранилище
	remote := o.remote
	if remote == nil {
		remote, err = a.openRemote(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	// 5. Интеграции
	notify := o.notifier
	if notify == nil {
		notify, err = a.openNotifier()
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	membershipClient := o.membership
	if membershipClient == nil && cfg.Membership.URL != "" {
		membershipClient = membership.NewClient(
			cfg.Membership.URL,
			time.Duration(cfg.Membership.Timeout)*time.Second,
			log,
		)
		log.Info("Membership client initialized (url=%s, timeout=%ds)", cfg.Membership.URL, cfg.Membership.Timeout)
	}

	// 6. Сервисы и use cases
	maxUnits := cfg.Booking.MaxDurationUnits

	a.Waitlist = waitlistService.NewService(
		entries, bookings, outbox, catalog, checker, notify, txManager, trigger, a.Metrics, maxUnits, log,
	)
	a.Bookings = bookingsService.NewService(
		bookings, outbox, catalog, checker, calculator, a.Waitlist, txManager, trigger, a.Metrics, maxUnits, log,
	)
	a.CreateBooking = createBookingUC.NewUseCase(
		bookings, outbox, catalog, checker, calculator, membershipClient, txManager, trigger, a.Metrics, maxUnits, log,
	)
	a.Availability = getAvailableSlotsUC.NewUseCase(bookings, catalog, checker, maxUnits, log)
	a.Conflicts = conflictsService.NewService(conflicts, log)

	a.Reconciler = syncService.NewReconciler(
		remote,
		bookings,
		entries,
		outbox,
		conflicts,
		a.Waitlist,
		txManager,
		trigger,
		a.Metrics,
		syncService.Config{
			Interval:       time.Duration(cfg.Sync.IntervalSeconds) * time.Second,
			ProbeInterval:  time.Duration(cfg.Sync.ProbeIntervalSeconds) * time.Second,
			MaxRetries:     uint(cfg.Sync.MaxRetries),
			InitialBackoff: time.Duration(cfg.Sync.InitialBackoffMs) * time.Millisecond,
			MaxBackoff:     time.Duration(cfg.Sync.MaxBackoffMs) * time.Millisecond,
			BatchSize:      cfg.Sync.BatchSize,
			UnitMinutes:    cfg.Booking.TimeUnitMinutes,
		},
		log,
	)

	// 7. HTTP
	a.Router = a.newRouter(catalog)

	return a, nil
}

// Close останавливает сбор метрик и закрывает соединения
func (a *App) Close() error {
	select {
	case <-a.stopCh:
	default:
		close(a.stopCh)
	}

	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.remoteDB != nil {
		if err := a.remoteDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close remote database: %w", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close local cache: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) wrapDB(db *sql.DB, name string) *dbmetrics.DB {
	if a.Metrics == nil {
		return dbmetrics.Wrap(db, nil, name)
	}
	return dbmetrics.WrapWithDefault(db, a.Metrics, name, a.stopCh)
}

// openRemote подключает PostgreSQL или возвращает хранилище, всегда недоступное
func (a *App) openRemote(ctx context.Context) (syncService.RemoteStore, error) {
	if !a.cfg.Remote.Enabled {
		a.log.Warn("Remote store disabled: running in local-only mode, changes stay pending")
		return disabledRemote{}, nil
	}

	db, err := postgres.Open(a.cfg.Remote.DSN(), postgres.PoolConfig{
		MaxOpenConns:    a.cfg.Remote.MaxOpenConns,
		MaxIdleConns:    a.cfg.Remote.MaxIdleConns,
		ConnMaxLifetime: time.Duration(a.cfg.Remote.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	a.remoteDB = db

	store := postgres.NewStore(a.wrapDB(db, "remote"))

	schemaCtx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Remote.ConnectTimeout)*time.Second)
	defer cancel()
	if err := store.EnsureSchema(schemaCtx); err != nil {
		a.log.Warn("Remote store is not reachable on startup (host=%s, db=%s): %v",
			a.cfg.Remote.Host, a.cfg.Remote.DBName, err)
	} else {
		a.log.Info("Successfully connected to remote store (host=%s, port=%d, db=%s)",
			a.cfg.Remote.Host, a.cfg.Remote.Port, a.cfg.Remote.DBName)
	}
	return store, nil
}

func (a *App) openNotifier() (waitlistService.Notifier, error) {
	switch a.cfg.Notifier.Kind {
	case "amqp":
		n, err := notifier.NewAMQPNotifier(a.cfg.Notifier.AMQPURL, a.cfg.Notifier.Exchange, a.cfg.Notifier.RoutingKey)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		a.closers = append(a.closers, n)
		a.log.Info("Waitlist notifications published to exchange=%s key=%s",
			a.cfg.Notifier.Exchange, a.cfg.Notifier.RoutingKey)
		return n, nil
	default:
		return notifier.NewLogNotifier(a.log), nil
	}
}

// disabledRemote удаленное хранилище не настроено
type disabledRemote struct{}

func (disabledRemote) Ping(context.Context) error {
	return postgres.ErrUnavailable
}

func (disabledRemote) Create(context.Context, string, string, []byte, time.Time) (string, error) {
	return "", postgres.ErrUnavailable
}

func (disabledRemote) Update(context.Context, string, string, []byte, time.Time) error {
	return postgres.ErrUnavailable
}

func (disabledRemote) List(context.Context, string) ([]postgres.Record, error) {
	return nil, postgres.ErrUnavailable
}
