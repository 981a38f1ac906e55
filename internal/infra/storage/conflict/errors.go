package conflict

import "errors"

var (
	// ErrConflictNotFound возвращается, когда конфликт не найден
	ErrConflictNotFound = errors.New("conflict.repository: conflict not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("conflict.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("conflict.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("conflict.repository: failed to scan row")
)
