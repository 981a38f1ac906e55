package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/internal/infra/storage/sqlite"
	"github.com/m04kA/SMC-BayLedger/pkg/dbmetrics"
	"github.com/m04kA/SMC-BayLedger/pkg/sqlitebuilder"
)

var columns = []string{
	"id",
	"resource_id",
	"booking_date",
	"start_time",
	"duration_units",
	"customer_name",
	"customer_id",
	"price_base",
	"price_peak_surcharge",
	"price_member_discount",
	"price_final",
	"is_peak",
	"member_tier",
	"status",
	"prepaid",
	"payment_ref",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
	"remote_key",
	"pending_sync",
}

// Repository репозиторий бронирований в локальном кэше
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create вставляет новое бронирование
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Insert("bookings").
		Columns(columns...).
		Values(values(b)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: id=%s", ErrBookingExists, b.ID)
		}
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// Update перезаписывает все поля бронирования по id
func (r *Repository) Update(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := sqlitebuilder.Update("bookings")
	vals := values(b)
	for i, col := range columns {
		if col == "id" {
			continue
		}
		builder = builder.Set(col, vals[i])
	}

	query, args, err := builder.Where(squirrel.Eq{"id": b.ID}).ToSql()
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
		return ErrBookingNotFound
	}

	return nil
}

// Upsert вставляет или целиком заменяет запись (используется только при слиянии)
func (r *Repository) Upsert(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Insert("bookings").
		Options("OR REPLACE").
		Columns(columns...).
		Values(values(b)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Select(columns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// List получает бронирования по фильтру
// Без IncludeCancelled и без явного статуса отмененные исключаются
func (r *Repository) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := sqlitebuilder.Select(columns...).From("bookings")

	if filter.Date != nil {
		builder = builder.Where(squirrel.Eq{"booking_date": sqlite.FormatDate(*filter.Date)})
	}
	if filter.ResourceID != nil {
		builder = builder.Where(squirrel.Eq{"resource_id": *filter.ResourceID})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": string(*filter.Status)})
	} else if !filter.IncludeCancelled {
		builder = builder.Where(squirrel.NotEq{"status": string(domain.StatusCancelled)})
	}

	query, args, err := builder.OrderBy("booking_date ASC", "start_time ASC", "resource_id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListActiveForDate получает активные бронирования на дату, опционально по ресурсу
func (r *Repository) ListActiveForDate(ctx context.Context, date time.Time, resourceID *int64) ([]*domain.Booking, error) {
	return r.List(ctx, domain.BookingFilter{Date: &date, ResourceID: resourceID})
}

// ListAll получает все бронирования включая отмененные (для слияния)
func (r *Repository) ListAll(ctx context.Context) ([]*domain.Booking, error) {
	return r.List(ctx, domain.BookingFilter{IncludeCancelled: true})
}

// MarkSynced сохраняет ключ удаленного хранилища и, если clearPending, снимает флаг pendingSync
func (r *Repository) MarkSynced(ctx context.Context, id, remoteKey string, clearPending bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := sqlitebuilder.Update("bookings").
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
		return ErrBookingNotFound
	}
	return nil
}

// Delete физически удаляет бронирование (только административная очистка)
func (r *Repository) Delete(ctx context.Context, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Delete("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func values(b *domain.Booking) []interface{} {
	return []interface{}{
		b.ID,
		b.ResourceID,
		sqlite.FormatDate(b.Date),
		b.StartTime.String(),
		b.DurationUnits,
		b.Customer.Name,
		b.Customer.ExternalID,
		b.Price.Base,
		b.Price.PeakSurcharge,
		b.Price.MemberDiscount,
		b.Price.Final,
		b.IsPeak,
		b.MemberTier,
		string(b.Status),
		b.Prepaid,
		b.PaymentRef,
		b.Notes,
		b.CancellationReason,
		sqlite.NullTimestamp(b.CancelledAt),
		sqlite.FormatTimestamp(b.CreatedAt),
		sqlite.FormatTimestamp(b.UpdatedAt),
		b.RemoteKey,
		b.PendingSync,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                          domain.Booking
		date, createdAt, updatedAt string
		status                     string
		cancelledAt                sql.NullString
	)

	err := row.Scan(
		&b.ID,
		&b.ResourceID,
		&date,
		&b.StartTime,
		&b.DurationUnits,
		&b.Customer.Name,
		&b.Customer.ExternalID,
		&b.Price.Base,
		&b.Price.PeakSurcharge,
		&b.Price.MemberDiscount,
		&b.Price.Final,
		&b.IsPeak,
		&b.MemberTier,
		&status,
		&b.Prepaid,
		&b.PaymentRef,
		&b.Notes,
		&b.CancellationReason,
		&cancelledAt,
		&createdAt,
		&updatedAt,
		&b.RemoteKey,
		&b.PendingSync,
	)
	if err != nil {
		return nil, err
	}

	b.Status = domain.BookingStatus(status)
	if b.Date, err = sqlite.ParseDate(date); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = sqlite.ParseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = sqlite.ParseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	if b.CancelledAt, err = sqlite.ParseNullTimestamp(cancelledAt); err != nil {
		return nil, err
	}

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
