package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/internal/infra/remote/postgres"
	bookingRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/booking"
	waitlistRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/waitlist"
)

const tracerName = "github.com/m04kA/SMC-BayLedger/internal/service/sync"

// Config параметры цикла синхронизации
type Config struct {
	Interval       time.Duration
	ProbeInterval  time.Duration
	ProbeTimeout   time.Duration
	MaxRetries     uint
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BatchSize      int
	UnitMinutes    int
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.ProbeInterval <= 0 {
		c.ProbeInterval = 5 * time.Second
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 2 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	if c.UnitMinutes <= 0 {
		c.UnitMinutes = domain.DefaultTimeUnitMinutes
	}
}

// Reconciler сверяет локальный кэш с удаленным хранилищем
// Ошибки синхронизации не возвращаются вызывающему коду операций: они остаются в outbox и статусе
type Reconciler struct {
	remote       RemoteStore
	bookingRepo  BookingRepository
	waitlistRepo WaitlistRepository
	outboxRepo   OutboxRepository
	conflictRepo ConflictRepository
	waitlist     WaitlistMatcher
	txManager    TransactionManager
	trigger      *Trigger
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
	cfg          Config

	runMu stdsync.Mutex

	mu     stdsync.RWMutex
	status domain.SyncStatus
}

// NewReconciler создает новый экземпляр сверки
func NewReconciler(
	remote RemoteStore,
	bookingRepo BookingRepository,
	waitlistRepo WaitlistRepository,
	outboxRepo OutboxRepository,
	conflictRepo ConflictRepository,
	waitlist WaitlistMatcher,
	txManager TransactionManager,
	trigger *Trigger,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *Reconciler {
	cfg.applyDefaults()
	if trigger == nil {
		trigger = NewTrigger()
	}
	return &Reconciler{
		remote:       remote,
		bookingRepo:  bookingRepo,
		waitlistRepo: waitlistRepo,
		outboxRepo:   outboxRepo,
		conflictRepo: conflictRepo,
		waitlist:     waitlist,
		txManager:    txManager,
		trigger:      trigger,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		cfg:          cfg,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (r *Reconciler) WithTimeProvider(tp TimeProvider) *Reconciler {
	r.timeProvider = tp
	return r
}

// Trigger неблокирующий запрос внеочередного цикла
func (r *Reconciler) Trigger() {
	r.trigger.Kick()
}

// Run цикл синхронизации: по таймеру, по сигналу после локальных изменений
// и при восстановлении связи (offline -> online). Завершается с ctx
func (r *Reconciler) Run(ctx context.Context) {
	r.logger.Info("Sync: starting reconciler (interval=%s, probe=%s)", r.cfg.Interval, r.cfg.ProbeInterval)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	probe := time.NewTicker(r.cfg.ProbeInterval)
	defer probe.Stop()

	r.SyncOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Sync: reconciler stopped")
			return
		case <-ticker.C:
			r.SyncOnce(ctx)
		case <-r.trigger.C():
			r.SyncOnce(ctx)
		case <-probe.C:
			if r.isOnline() {
				continue
			}
			if err := r.ping(ctx); err == nil {
				r.logger.Info("Sync: remote store is reachable again, reconciling")
				r.SyncOnce(ctx)
			}
		}
	}
}

// SyncOnce один цикл: проверка связи, push, затем pull
func (r *Reconciler) SyncOnce(ctx context.Context) domain.SyncReport {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "sync.cycle")
	defer span.End()

	var report domain.SyncReport
	defer r.refreshGauges(ctx)

	// 1. Проверка связи
	if err := r.ping(ctx); err != nil {
		report.Err = err
		r.recordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report
	}

	// 2. Отправка локальных изменений
	pushed, failed, err := r.Push(ctx)
	report.Pushed, report.PushFailed = pushed, failed
	if err != nil {
		report.Err = err
		r.recordError(err)
	}

	// 3. Получение удаленных изменений
	stats, err := r.Pull(ctx)
	report.Pulled, report.Conflicts, report.SlotsReleased = stats.Pulled, stats.Conflicts, stats.SlotsReleased
	if err != nil {
		report.Err = errors.Join(report.Err, err)
		r.recordError(err)
	}

	if report.Err == nil {
		r.clearError()
	} else {
		span.SetStatus(codes.Error, report.Err.Error())
	}

	span.SetAttributes(
		attribute.Int("sync.pushed", report.Pushed),
		attribute.Int("sync.push_failed", report.PushFailed),
		attribute.Int("sync.pulled", report.Pulled),
		attribute.Int("sync.conflicts", report.Conflicts),
	)

	r.logger.Info("Sync: cycle finished pushed=%d failed=%d pulled=%d conflicts=%d released=%d",
		report.Pushed, report.PushFailed, report.Pulled, report.Conflicts, report.SlotsReleased)
	return report
}

// Status текущее состояние синхронизации
func (r *Reconciler) Status(ctx context.Context) (domain.SyncStatus, error) {
	r.mu.RLock()
	status := r.status
	r.mu.RUnlock()

	pending, err := r.outboxRepo.Count(ctx)
	if err != nil {
		return status, fmt.Errorf("sync status: count pending: %w", err)
	}
	open, err := r.conflictRepo.CountOpen(ctx)
	if err != nil {
		return status, fmt.Errorf("sync status: count conflicts: %w", err)
	}

	status.PendingChanges = pending
	status.OpenConflicts = open
	return status, nil
}

// pendingRecord записи outbox одной записи, сведенные к максимальному seq
type pendingRecord struct {
	collection string
	recordID   string
	maxSeq     int64
}

// Push отправляет каждую запись с непустым outbox
// Возвращает количество отправленных и неотправленных записей
func (r *Reconciler) Push(ctx context.Context) (pushed, failed int, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "sync.push")
	defer span.End()
	defer func() { r.observe("push", err) }()

	entries, err := r.outboxRepo.ListPending(ctx, r.cfg.BatchSize)
	if err != nil {
		r.logger.Error("Push: failed to list outbox: %v", err)
		return 0, 0, fmt.Errorf("%w: list outbox: %v", ErrPushFailed, err)
	}

	records := groupOutbox(entries)
	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}

		if pushErr := r.pushRecord(ctx, rec); pushErr != nil {
			failed++
			r.logger.Warn("Push: %s id=%s not sent: %v", rec.collection, rec.recordID, pushErr)
			if markErr := r.outboxRepo.MarkFailed(ctx, rec.collection, rec.recordID, rec.maxSeq, pushErr.Error()); markErr != nil {
				r.logger.Error("Push: failed to record attempt for %s id=%s: %v", rec.collection, rec.recordID, markErr)
			}
			continue
		}
		pushed++
		if r.metrics != nil {
			r.metrics.AddSyncRecords("push", rec.collection, "sent", 1)
		}
	}

	now := r.timeProvider.Now()
	r.mu.Lock()
	r.status.LastPushAt = &now
	r.mu.Unlock()

	span.SetAttributes(attribute.Int("sync.pushed", pushed), attribute.Int("sync.push_failed", failed))
	if failed > 0 {
		return pushed, failed, fmt.Errorf("%w: %d of %d records not sent", ErrPushFailed, failed, len(records))
	}
	return pushed, 0, nil
}

func (r *Reconciler) pushRecord(ctx context.Context, rec pendingRecord) error {
	// 1. Текущий снимок записи
	payload, remoteKey, updatedAt, found, err := r.snapshot(ctx, rec)
	if err != nil {
		return err
	}
	if !found {
		// запись удалена локально (purge): отправлять нечего
		r.logger.Info("Push: %s id=%s no longer exists locally, dropping outbox", rec.collection, rec.recordID)
		return r.outboxRepo.DeleteUpTo(ctx, rec.collection, rec.recordID, rec.maxSeq)
	}

	// 2. Сетевой вызов вне эксклюзивной секции
	key, err := r.send(ctx, rec.collection, rec.recordID, remoteKey, payload, updatedAt)
	if err != nil {
		return err
	}

	// 3. Фиксация: outbox до maxSeq очищается, pendingSync снимается только без более новых записей
	return r.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := r.outboxRepo.DeleteUpTo(txCtx, rec.collection, rec.recordID, rec.maxSeq); err != nil {
			return err
		}
		hasNewer, err := r.outboxRepo.HasEntries(txCtx, rec.collection, rec.recordID)
		if err != nil {
			return err
		}

		switch rec.collection {
		case domain.CollectionBookings:
			err = r.bookingRepo.MarkSynced(txCtx, rec.recordID, key, !hasNewer)
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return nil
			}
		case domain.CollectionWaitlist:
			err = r.waitlistRepo.MarkSynced(txCtx, rec.recordID, key, !hasNewer)
			if errors.Is(err, waitlistRepo.ErrEntryNotFound) {
				return nil
			}
		}
		return err
	})
}

func (r *Reconciler) snapshot(ctx context.Context, rec pendingRecord) ([]byte, *string, time.Time, bool, error) {
	switch rec.collection {
	case domain.CollectionBookings:
		b, err := r.bookingRepo.GetByID(ctx, rec.recordID)
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, nil, time.Time{}, false, nil
		}
		if err != nil {
			return nil, nil, time.Time{}, false, err
		}
		payload, err := encodeBooking(b)
		if err != nil {
			return nil, nil, time.Time{}, false, fmt.Errorf("%w: %v", ErrEncodeRecord, err)
		}
		return payload, b.RemoteKey, b.LastModified(), true, nil

	case domain.CollectionWaitlist:
		e, err := r.waitlistRepo.GetByID(ctx, rec.recordID)
		if errors.Is(err, waitlistRepo.ErrEntryNotFound) {
			return nil, nil, time.Time{}, false, nil
		}
		if err != nil {
			return nil, nil, time.Time{}, false, err
		}
		payload, err := encodeWaitlistEntry(e)
		if err != nil {
			return nil, nil, time.Time{}, false, fmt.Errorf("%w: %v", ErrEncodeRecord, err)
		}
		return payload, e.RemoteKey, e.LastModified(), true, nil
	}

	return nil, nil, time.Time{}, false, fmt.Errorf("unknown collection %q", rec.collection)
}

// send создает или обновляет запись удаленно, возвращает ключ удаленного хранилища
// Устаревшая запись (удаленная версия новее) считается доставленной
func (r *Reconciler) send(ctx context.Context, collection, businessID string, remoteKey *string, payload []byte, updatedAt time.Time) (string, error) {
	if remoteKey != nil {
		_, err := retry(ctx, r, "update", func() (struct{}, error) {
			err := r.remote.Update(ctx, collection, *remoteKey, payload, updatedAt)
			if errors.Is(err, postgres.ErrStaleWrite) || errors.Is(err, postgres.ErrRecordNotFound) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		})
		switch {
		case err == nil:
			return *remoteKey, nil
		case errors.Is(err, postgres.ErrStaleWrite):
			r.logger.Info("Push: %s id=%s remote copy is newer, local write superseded", collection, businessID)
			return *remoteKey, nil
		case errors.Is(err, postgres.ErrRecordNotFound):
			r.logger.Warn("Push: %s id=%s missing remotely, recreating", collection, businessID)
		default:
			return "", err
		}
	}

	// повторный Create с тем же businessID не создает дубликат
	return retry(ctx, r, "create", func() (string, error) {
		return r.remote.Create(ctx, collection, businessID, payload, updatedAt)
	})
}

// PullStats итоги получения удаленных изменений
type PullStats struct {
	Pulled        int
	Conflicts     int
	SlotsReleased int
}

// Pull получает удаленные коллекции и сливает их с локальным кэшем
func (r *Reconciler) Pull(ctx context.Context) (stats PullStats, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "sync.pull")
	defer span.End()
	defer func() { r.observe("pull", err) }()

	// 1. Чтение удаленных коллекций вне эксклюзивной секции
	remoteBookings, err := fetch(ctx, r, domain.CollectionBookings, decodeBooking)
	if err != nil {
		return stats, err
	}
	remoteEntries, err := fetch(ctx, r, domain.CollectionWaitlist, decodeWaitlistEntry)
	if err != nil {
		return stats, err
	}

	var freed []domain.Slot

	// 2. Слияние и обнаружение конфликтов в эксклюзивной секции
	err = r.txManager.Do(ctx, func(txCtx context.Context) error {
		localBookings, err := r.bookingRepo.ListAll(txCtx)
		if err != nil {
			return err
		}
		bookingsResult := MergeRecords(localBookings, remoteBookings)
		for _, item := range bookingsResult.Writes() {
			if err := r.bookingRepo.Upsert(txCtx, item.Result); err != nil {
				return err
			}
		}

		localEntries, err := r.waitlistRepo.ListAll(txCtx)
		if err != nil {
			return err
		}
		entriesResult := MergeRecords(localEntries, remoteEntries)
		for _, item := range entriesResult.Writes() {
			if err := r.waitlistRepo.Upsert(txCtx, item.Result); err != nil {
				return err
			}
		}

		merged, err := r.bookingRepo.ListAll(txCtx)
		if err != nil {
			return err
		}
		conflicts := 0
		for _, c := range detectConflicts(merged, r.cfg.UnitMinutes, r.timeProvider.Now()) {
			created, err := r.conflictRepo.Create(txCtx, c)
			if err != nil {
				return err
			}
			if created {
				conflicts++
				r.logger.Warn("Pull: conflict detected resource=%d date=%s bookings=%s,%s",
					c.ResourceID, c.Date.Format(domain.DateFormat), c.BookingA, c.BookingB)
			}
		}

		stats = PullStats{
			Pulled:    len(bookingsResult.Writes()) + len(entriesResult.Writes()),
			Conflicts: conflicts,
		}
		freed = freedSlots(bookingsResult.Items)
		r.observeDecisions(domain.CollectionBookings, bookingsResult.Count)
		r.observeDecisions(domain.CollectionWaitlist, entriesResult.Count)
		return nil
	})
	if err != nil {
		r.logger.Error("Pull: merge failed: %v", err)
		return PullStats{}, fmt.Errorf("%w: merge: %v", ErrPullFailed, err)
	}

	if r.metrics != nil {
		r.metrics.AddConflicts(stats.Conflicts)
	}

	// 3. Слоты, освобожденные удаленной отменой, предлагаем очереди
	for _, slot := range freed {
		if r.waitlist == nil {
			break
		}
		if _, err := r.waitlist.OnSlotFreed(ctx, slot); err != nil {
			r.logger.Error("Pull: failed to offer freed slot resource=%d date=%s start=%s: %v",
				slot.ResourceID, slot.Date.Format(domain.DateFormat), slot.StartTime, err)
			continue
		}
		stats.SlotsReleased++
	}

	now := r.timeProvider.Now()
	r.mu.Lock()
	r.status.LastPullAt = &now
	r.mu.Unlock()

	span.SetAttributes(attribute.Int("sync.pulled", stats.Pulled), attribute.Int("sync.conflicts", stats.Conflicts))
	return stats, nil
}

// fetch читает и разбирает удаленную коллекцию, неразборчивые записи пропускаются
func fetch[T any](ctx context.Context, r *Reconciler, collection string, decode func(postgres.Record) (T, error)) ([]T, error) {
	records, err := retry(ctx, r, "list", func() ([]postgres.Record, error) {
		return r.remote.List(ctx, collection)
	})
	if err != nil {
		r.logger.Error("Pull: failed to list remote %s: %v", collection, err)
		return nil, fmt.Errorf("%w: list %s: %v", ErrPullFailed, collection, err)
	}

	result := make([]T, 0, len(records))
	for _, rec := range records {
		item, err := decode(rec)
		if err != nil {
			r.logger.Warn("Pull: skipping remote record: %v", err)
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

// retry ограниченные повторы с экспоненциальной задержкой
func retry[T any](ctx context.Context, r *Reconciler, op string, fn backoff.Operation[T]) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialBackoff
	b.MaxInterval = r.cfg.MaxBackoff

	return backoff.Retry(ctx, fn,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.cfg.MaxRetries),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.logger.Warn("Sync: remote %s failed, retrying in %s: %v", op, next, err)
		}),
	)
}

func groupOutbox(entries []*domain.OutboxEntry) []pendingRecord {
	index := make(map[string]int)
	records := make([]pendingRecord, 0)
	for _, e := range entries {
		key := e.Collection + ":" + e.RecordID
		if i, ok := index[key]; ok {
			if e.Seq > records[i].maxSeq {
				records[i].maxSeq = e.Seq
			}
			continue
		}
		index[key] = len(records)
		records = append(records, pendingRecord{collection: e.Collection, recordID: e.RecordID, maxSeq: e.Seq})
	}
	return records
}

func (r *Reconciler) ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, r.cfg.ProbeTimeout)
	defer cancel()

	err := r.remote.Ping(pingCtx)
	r.setOnline(err == nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return nil
}

func (r *Reconciler) setOnline(online bool) {
	r.mu.Lock()
	changed := r.status.Online != online
	r.status.Online = online
	r.mu.Unlock()

	if changed {
		if online {
			r.logger.Info("Sync: remote store online")
		} else {
			r.logger.Warn("Sync: remote store offline, changes stay queued locally")
		}
	}
	if r.metrics != nil {
		r.metrics.SetRemoteOnline(online)
	}
}

func (r *Reconciler) isOnline() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status.Online
}

func (r *Reconciler) recordError(err error) {
	msg := err.Error()
	r.mu.Lock()
	r.status.LastError = &msg
	r.mu.Unlock()
}

func (r *Reconciler) clearError() {
	r.mu.Lock()
	r.status.LastError = nil
	r.mu.Unlock()
}

func (r *Reconciler) refreshGauges(ctx context.Context) {
	if r.metrics == nil {
		return
	}
	if pending, err := r.outboxRepo.Count(ctx); err == nil {
		r.metrics.SetPendingRecords(pending)
	}
}

func (r *Reconciler) observe(phase string, err error) {
	if r.metrics != nil {
		r.metrics.IncSyncRun(phase, err)
	}
}

func (r *Reconciler) observeDecisions(collection string, count func(Decision) int) {
	if r.metrics == nil {
		return
	}
	for _, d := range []Decision{DecisionLocalPending, DecisionRemoteNewer, DecisionNoop, DecisionRemoteOnly, DecisionLocalOnly} {
		r.metrics.AddSyncRecords("pull", collection, string(d), count(d))
	}
}
