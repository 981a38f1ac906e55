package outbox

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/internal/infra/storage/sqlite"
	"github.com/m04kA/SMC-BayLedger/pkg/dbmetrics"
	"github.com/m04kA/SMC-BayLedger/pkg/sqlitebuilder"
)

// Repository журнал локальных изменений, ожидающих отправки в удаленное хранилище
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр outbox
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет запись в журнал и возвращает ее порядковый номер
// Вызывается в той же транзакции, что и изменение записи
func (r *Repository) Append(ctx context.Context, entry *domain.OutboxEntry) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Insert("outbox").
		Columns("collection", "record_id", "operation", "created_at").
		Values(entry.Collection, entry.RecordID, string(entry.Operation), sqlite.FormatTimestamp(entry.CreatedAt)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: Append - get last insert id: %v", ErrExecQuery, err)
	}
	entry.Seq = seq
	return seq, nil
}

// ListPending возвращает записи в порядке seq, limit <= 0 означает без ограничения
func (r *Repository) ListPending(ctx context.Context, limit int) ([]*domain.OutboxEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := sqlitebuilder.Select("seq", "collection", "record_id", "operation", "created_at", "attempts", "last_error").
		From("outbox").
		OrderBy("seq ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPending - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.OutboxEntry, 0)
	for rows.Next() {
		var (
			e         domain.OutboxEntry
			operation string
			createdAt string
			lastError sql.NullString
		)
		if err := rows.Scan(&e.Seq, &e.Collection, &e.RecordID, &operation, &createdAt, &e.Attempts, &lastError); err != nil {
			return nil, fmt.Errorf("%w: ListPending - scan row: %v", ErrScanRow, err)
		}
		e.Operation = domain.OutboxOperation(operation)
		if e.CreatedAt, err = sqlite.ParseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("%w: ListPending - parse created_at: %v", ErrScanRow, err)
		}
		if lastError.Valid {
			msg := lastError.String
			e.LastError = &msg
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPending - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}

// DeleteUpTo удаляет записи по записи с seq <= maxSeq
// Записи, добавленные во время отправки, остаются в журнале
func (r *Repository) DeleteUpTo(ctx context.Context, collection, recordID string, maxSeq int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Delete("outbox").
		Where(squirrel.Eq{"collection": collection, "record_id": recordID}).
		Where(squirrel.LtOrEq{"seq": maxSeq}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteUpTo - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: DeleteUpTo - execute delete: %v", ErrExecQuery, err)
	}
	return nil
}

// DeleteByRecord удаляет все записи журнала по записи
func (r *Repository) DeleteByRecord(ctx context.Context, collection, recordID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Delete("outbox").
		Where(squirrel.Eq{"collection": collection, "record_id": recordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteByRecord - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: DeleteByRecord - execute delete: %v", ErrExecQuery, err)
	}
	return nil
}

// HasEntries проверяет, остались ли в журнале записи по записи
func (r *Repository) HasEntries(ctx context.Context, collection, recordID string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Select("COUNT(*)").
		From("outbox").
		Where(squirrel.Eq{"collection": collection, "record_id": recordID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: HasEntries - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: HasEntries - scan count: %v", ErrScanRow, err)
	}
	return count > 0, nil
}

// MarkFailed увеличивает счетчик попыток и сохраняет текст ошибки
func (r *Repository) MarkFailed(ctx context.Context, collection, recordID string, maxSeq int64, cause string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Update("outbox").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", cause).
		Where(squirrel.Eq{"collection": collection, "record_id": recordID}).
		Where(squirrel.LtOrEq{"seq": maxSeq}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkFailed - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkFailed - execute update: %v", ErrExecQuery, err)
	}
	return nil
}

// Count количество записей, ожидающих отправки
func (r *Repository) Count(ctx context.Context) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := sqlitebuilder.Select("COUNT(DISTINCT collection || ':' || record_id)").
		From("outbox").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Count - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: Count - scan count: %v", ErrScanRow, err)
	}
	return count, nil
}
