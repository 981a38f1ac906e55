package sync

import "errors"

var (
	// ErrRemoteUnavailable возвращается, когда удаленное хранилище недоступно
	ErrRemoteUnavailable = errors.New("sync: remote store unavailable")

	// ErrPushFailed возвращается, когда часть записей не удалось отправить
	ErrPushFailed = errors.New("sync: push failed")

	// ErrPullFailed возвращается при ошибке получения или слияния удаленных записей
	ErrPullFailed = errors.New("sync: pull failed")

	// ErrDecodeRecord возвращается, когда удаленную запись не удалось разобрать
	ErrDecodeRecord = errors.New("sync: failed to decode remote record")

	// ErrEncodeRecord возвращается, когда локальную запись не удалось сериализовать
	ErrEncodeRecord = errors.New("sync: failed to encode local record")
)
