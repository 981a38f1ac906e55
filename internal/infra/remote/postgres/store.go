package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-BayLedger/pkg/psqlbuilder"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS remote_records (
    remote_key  TEXT        PRIMARY KEY,
    collection  TEXT        NOT NULL,
    business_id TEXT        NOT NULL,
    payload     JSONB       NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL,
    UNIQUE (collection, business_id)
)`

// PoolConfig настройки пула соединений
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open открывает пул соединений к удаленному хранилищу
// Соединение не проверяется: хранилище может быть недоступно на старте
func Open(dsn string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open remote database: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return db, nil
}

// Store удаленное хранилище записей (источник истины между устройствами)
type Store struct {
	db DB
}

// NewStore создает новый экземпляр удаленного хранилища
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// EnsureSchema создает таблицу, если ее нет
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%w: EnsureSchema - execute ddl: %v", ErrExecQuery, err)
	}
	return nil
}

// Ping проверяет доступность хранилища
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Create сохраняет запись и возвращает ее удаленный ключ
// Повторная отправка той же записи возвращает уже выданный ключ
func (s *Store) Create(ctx context.Context, collection, businessID string, payload []byte, updatedAt time.Time) (string, error) {
	query, args, err := psqlbuilder.Insert("remote_records").
		Columns("remote_key", "collection", "business_id", "payload", "updated_at").
		Values(
			uuid.NewString(),
			collection,
			businessID,
			squirrel.Expr("?::jsonb", string(payload)),
			updatedAt.UTC(),
		).
		Suffix(`ON CONFLICT (collection, business_id) DO UPDATE
			SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
			WHERE remote_records.updated_at <= EXCLUDED.updated_at
			RETURNING remote_key`).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var remoteKey string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&remoteKey)
	if errors.Is(err, sql.ErrNoRows) {
		// в хранилище более новая версия: возвращаем ее ключ, данные подтянутся при pull
		return s.keyOf(ctx, collection, businessID)
	}
	if err != nil {
		return "", fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return remoteKey, nil
}

// Update перезаписывает запись, если удаленная версия не новее
func (s *Store) Update(ctx context.Context, collection, remoteKey string, payload []byte, updatedAt time.Time) error {
	query, args, err := psqlbuilder.Update("remote_records").
		Set("payload", squirrel.Expr("?::jsonb", string(payload))).
		Set("updated_at", updatedAt.UTC()).
		Where(squirrel.Eq{"remote_key": remoteKey, "collection": collection}).
		Where(squirrel.LtOrEq{"updated_at": updatedAt.UTC()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	exists, err := s.exists(ctx, collection, remoteKey)
	if err != nil {
		return err
	}
	if exists {
		return ErrStaleWrite
	}
	return ErrRecordNotFound
}

// List возвращает все записи коллекции
func (s *Store) List(ctx context.Context, collection string) ([]Record, error) {
	query, args, err := psqlbuilder.Select("remote_key", "business_id", "payload", "updated_at").
		From("remote_records").
		Where(squirrel.Eq{"collection": collection}).
		OrderBy("business_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		rec := Record{Collection: collection}
		var payload []byte
		if err := rows.Scan(&rec.RemoteKey, &rec.BusinessID, &payload, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		rec.Payload = payload
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return records, nil
}

func (s *Store) keyOf(ctx context.Context, collection, businessID string) (string, error) {
	query, args, err := psqlbuilder.Select("remote_key").
		From("remote_records").
		Where(squirrel.Eq{"collection": collection, "business_id": businessID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: keyOf - build select query: %v", ErrBuildQuery, err)
	}

	var remoteKey string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&remoteKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrRecordNotFound
		}
		return "", fmt.Errorf("%w: keyOf - scan key: %v", ErrScanRow, err)
	}
	return remoteKey, nil
}

func (s *Store) exists(ctx context.Context, collection, remoteKey string) (bool, error) {
	query, args, err := psqlbuilder.Select("1").
		From("remote_records").
		Where(squirrel.Eq{"remote_key": remoteKey, "collection": collection}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: exists - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: exists - scan row: %v", ErrScanRow, err)
	}
	return true, nil
}
