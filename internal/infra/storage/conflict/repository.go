package conflict

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/internal/infra/storage/sqlite"
	"github.com/m04kA/SMC-BayLedger/pkg/dbmetrics"
	"github.com/m04kA/SMC-BayLedger/pkg/sqlitebuilder"
)

var columns = []string{
	"id",
	"booking_a",
	"booking_b",
	"resource_id",
	"booking_date",
	"status",
	"detected_at",
	"resolved_at",
	"resolution_note",
}

// Repository очередь конфликтов сверки для оператора
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфликтов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create регистрирует конфликт, если пара еще не зарегистрирована
// Возвращает false, если пара уже была в очереди (в т.ч. разрешенная)
func (r *Repository) Create(ctx context.Context, c *domain.ReconciliationConflict) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Insert("reconciliation_conflicts").
		Options("OR IGNORE").
		Columns("pair_key", "booking_a", "booking_b", "resource_id", "booking_date", "status", "detected_at").
		Values(
			c.PairKey(),
			c.BookingA,
			c.BookingB,
			c.ResourceID,
			sqlite.FormatDate(c.Date),
			string(c.Status),
			sqlite.FormatTimestamp(c.DetectedAt),
		).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: Create - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	if id, err := result.LastInsertId(); err == nil {
		c.ID = id
	}
	return true, nil
}

// List возвращает конфликты, onlyOpen оставляет только неразрешенные
func (r *Repository) List(ctx context.Context, onlyOpen bool) ([]*domain.ReconciliationConflict, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := sqlitebuilder.Select(columns...).From("reconciliation_conflicts")
	if onlyOpen {
		builder = builder.Where(squirrel.Eq{"status": string(domain.ConflictOpen)})
	}

	query, args, err := builder.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	conflicts := make([]*domain.ReconciliationConflict, 0)
	for rows.Next() {
		c, err := scanConflict(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		conflicts = append(conflicts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}
	return conflicts, nil
}

// GetByID получает конфликт по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ReconciliationConflict, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Select(columns...).
		From("reconciliation_conflicts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	c, err := scanConflict(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrConflictNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan conflict: %v", ErrScanRow, err)
	}
	return c, nil
}

// Resolve помечает конфликт разрешенным
func (r *Repository) Resolve(ctx context.Context, id int64, resolvedAt time.Time, note *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Update("reconciliation_conflicts").
		Set("status", string(domain.ConflictResolved)).
		Set("resolved_at", sqlite.FormatTimestamp(resolvedAt)).
		Set("resolution_note", note).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Resolve - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Resolve - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Resolve - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrConflictNotFound
	}
	return nil
}

// CountOpen количество неразрешенных конфликтов
func (r *Repository) CountOpen(ctx context.Context) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Select("COUNT(*)").
		From("reconciliation_conflicts").
		Where(squirrel.Eq{"status": string(domain.ConflictOpen)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountOpen - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountOpen - scan count: %v", ErrScanRow, err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConflict(row rowScanner) (*domain.ReconciliationConflict, error) {
	var (
		c                domain.ReconciliationConflict
		date, detectedAt string
		status           string
		resolvedAt       sql.NullString
	)

	if err := row.Scan(
		&c.ID,
		&c.BookingA,
		&c.BookingB,
		&c.ResourceID,
		&date,
		&status,
		&detectedAt,
		&resolvedAt,
		&c.ResolutionNote,
	); err != nil {
		return nil, err
	}

	var err error
	c.Status = domain.ConflictStatus(status)
	if c.Date, err = sqlite.ParseDate(date); err != nil {
		return nil, err
	}
	if c.DetectedAt, err = sqlite.ParseTimestamp(detectedAt); err != nil {
		return nil, err
	}
	if c.ResolvedAt, err = sqlite.ParseNullTimestamp(resolvedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
