package waitlist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/internal/infra/storage/sqlite"
	"github.com/m04kA/SMC-BayLedger/pkg/dbmetrics"
	"github.com/m04kA/SMC-BayLedger/pkg/sqlitebuilder"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

var columns = []string{
	"id",
	"customer_name",
	"customer_id",
	"entry_date",
	"preferred_resource_id",
	"preferred_start_time",
	"duration_units",
	"status",
	"notified_at",
	"notified_resource_id",
	"notified_start_time",
	"booking_id",
	"created_at",
	"updated_at",
	"remote_key",
	"pending_sync",
}

// Repository репозиторий очереди ожидания
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория очереди ожидания
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create добавляет запись в очередь
func (r *Repository) Create(ctx context.Context, e *domain.WaitlistEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Insert("waitlist_entries").
		Columns(columns...).
		Values(values(e)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// Update перезаписывает запись по id
func (r *Repository) Update(ctx context.Context, e *domain.WaitlistEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := sqlitebuilder.Update("waitlist_entries")
	vals := values(e)
	for i, col := range columns {
		if col == "id" {
			continue
		}
		builder = builder.Set(col, vals[i])
	}

	query, args, err := builder.Where(squirrel.Eq{"id": e.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Upsert вставляет или заменяет запись (только слияние)
func (r *Repository) Upsert(ctx context.Context, e *domain.WaitlistEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Insert("waitlist_entries").
		Options("OR REPLACE").
		Columns(columns...).
		Values(values(e)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Select(columns...).
		From("waitlist_entries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	e, err := scanEntry(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan entry: %v", ErrScanRow, err)
	}
	return e, nil
}

// List получает записи по фильтру в порядке FIFO (created_at, затем порядок вставки)
func (r *Repository) List(ctx context.Context, filter domain.WaitlistFilter) ([]*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := sqlitebuilder.Select(columns...).From("waitlist_entries")
	if filter.Date != nil {
		builder = builder.Where(squirrel.Eq{"entry_date": sqlite.FormatDate(*filter.Date)})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": string(*filter.Status)})
	}

	query, args, err := builder.OrderBy("created_at ASC", "rowid ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.WaitlistEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}
	return entries, nil
}

// ListAll получает все записи (для слияния)
func (r *Repository) ListAll(ctx context.Context) ([]*domain.WaitlistEntry, error) {
	return r.List(ctx, domain.WaitlistFilter{})
}

// MarkSynced сохраняет ключ удаленного хранилища и, если clearPending, снимает флаг pendingSync
func (r *Repository) MarkSynced(ctx context.Context, id, remoteKey string, clearPending bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := sqlitebuilder.Update("waitlist_entries").
		Set("remote_key", remoteKey).
		Where(squirrel.Eq{"id": id})
	if clearPending {
		builder = builder.Set("pending_sync", false)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkSynced - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkSynced - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkSynced - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func values(e *domain.WaitlistEntry) []interface{} {
	return []interface{}{
		e.ID,
		e.Customer.Name,
		e.Customer.ExternalID,
		sqlite.FormatDate(e.Date),
		e.PreferredResourceID,
		nullTime(e.PreferredStartTime),
		e.DurationUnits,
		string(e.Status),
		sqlite.NullTimestamp(e.NotifiedAt),
		e.NotifiedResourceID,
		nullTime(e.NotifiedStartTime),
		e.BookingID,
		sqlite.FormatTimestamp(e.CreatedAt),
		sqlite.FormatTimestamp(e.UpdatedAt),
		e.RemoteKey,
		e.PendingSync,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*domain.WaitlistEntry, error) {
	var (
		e                          domain.WaitlistEntry
		date, createdAt, updatedAt string
		status                     string
		preferredStart, notifiedTS sql.NullString
		notifiedAt                 sql.NullString
	)

	err := row.Scan(
		&e.ID,
		&e.Customer.Name,
		&e.Customer.ExternalID,
		&date,
		&e.PreferredResourceID,
		&preferredStart,
		&e.DurationUnits,
		&status,
		&notifiedAt,
		&e.NotifiedResourceID,
		&notifiedTS,
		&e.BookingID,
		&createdAt,
		&updatedAt,
		&e.RemoteKey,
		&e.PendingSync,
	)
	if err != nil {
		return nil, err
	}

	e.Status = domain.WaitlistStatus(status)
	if e.Date, err = sqlite.ParseDate(date); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = sqlite.ParseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = sqlite.ParseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	if e.NotifiedAt, err = sqlite.ParseNullTimestamp(notifiedAt); err != nil {
		return nil, err
	}
	if e.PreferredStartTime, err = parseNullTime(preferredStart); err != nil {
		return nil, err
	}
	if e.NotifiedStartTime, err = parseNullTime(notifiedTS); err != nil {
		return nil, err
	}

	return &e, nil
}

func nullTime(t *types.TimeString) interface{} {
	if t == nil {
		return nil
	}
	return t.String()
}

func parseNullTime(s sql.NullString) (*types.TimeString, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := types.NewTimeStringFromString(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
