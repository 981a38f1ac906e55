package postgres

import "errors"

var (
	// ErrRecordNotFound возвращается, когда записи нет в удаленном хранилище
	ErrRecordNotFound = errors.New("remote.store: record not found")

	// ErrStaleWrite возвращается, когда в удаленном хранилище уже лежит более новая версия
	ErrStaleWrite = errors.New("remote.store: stale write rejected")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("remote.store: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("remote.store: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("remote.store: failed to scan row")

	// ErrUnavailable возвращается, когда удаленное хранилище недоступно
	ErrUnavailable = errors.New("remote.store: unavailable")
)
