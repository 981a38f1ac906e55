// Package remotetest предоставляет удаленное хранилище в памяти для тестов сверки
package remotetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BayLedger/internal/infra/remote/postgres"
)

// Store повторяет семантику postgres.Store: дедупликация по businessID и
// last-writer-wins по updatedAt. Может имитировать потерю связи
type Store struct {
	mu      sync.Mutex
	offline bool
	records map[string]*postgres.Record // remoteKey -> record
	calls   map[string]int
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		records: make(map[string]*postgres.Record),
		calls:   make(map[string]int),
	}
}

// SetOffline переключает имитацию недоступности
func (s *Store) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = offline
}

// Calls количество вызовов метода (Create, Update, List, Ping)
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Ping"]++
	if s.offline {
		return postgres.ErrUnavailable
	}
	return nil
}

func (s *Store) Create(_ context.Context, collection, businessID string, payload []byte, updatedAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Create"]++
	if s.offline {
		return "", postgres.ErrUnavailable
	}

	if existing := s.find(collection, businessID); existing != nil {
		if !updatedAt.Before(existing.UpdatedAt) {
			existing.Payload = append(json.RawMessage(nil), payload...)
			existing.UpdatedAt = updatedAt
		}
		return existing.RemoteKey, nil
	}

	key := uuid.NewString()
	s.records[key] = &postgres.Record{
		RemoteKey:  key,
		Collection: collection,
		BusinessID: businessID,
		Payload:    append(json.RawMessage(nil), payload...),
		UpdatedAt:  updatedAt,
	}
	return key, nil
}

func (s *Store) Update(_ context.Context, collection, remoteKey string, payload []byte, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Update"]++
	if s.offline {
		return postgres.ErrUnavailable
	}

	rec, ok := s.records[remoteKey]
	if !ok || rec.Collection != collection {
		return fmt.Errorf("%w: key=%s", postgres.ErrRecordNotFound, remoteKey)
	}
	if updatedAt.Before(rec.UpdatedAt) {
		return fmt.Errorf("%w: key=%s", postgres.ErrStaleWrite, remoteKey)
	}
	rec.Payload = append(json.RawMessage(nil), payload...)
	rec.UpdatedAt = updatedAt
	return nil
}

func (s *Store) List(_ context.Context, collection string) ([]postgres.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["List"]++
	if s.offline {
		return nil, postgres.ErrUnavailable
	}

	result := make([]postgres.Record, 0)
	for _, rec := range s.records {
		if rec.Collection == collection {
			result = append(result, *rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BusinessID < result[j].BusinessID })
	return result, nil
}

// Put записывает документ напрямую, имитируя изменение с другого устройства
func (s *Store) Put(collection, businessID string, payload []byte, updatedAt time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.find(collection, businessID); existing != nil {
		existing.Payload = append(json.RawMessage(nil), payload...)
		existing.UpdatedAt = updatedAt
		return existing.RemoteKey
	}
	key := uuid.NewString()
	s.records[key] = &postgres.Record{
		RemoteKey:  key,
		Collection: collection,
		BusinessID: businessID,
		Payload:    append(json.RawMessage(nil), payload...),
		UpdatedAt:  updatedAt,
	}
	return key
}

// Get документ по businessID
func (s *Store) Get(collection, businessID string) (postgres.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec := s.find(collection, businessID); rec != nil {
		return *rec, true
	}
	return postgres.Record{}, false
}

// Len количество документов коллекции
func (s *Store) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, rec := range s.records {
		if rec.Collection == collection {
			n++
		}
	}
	return n
}

func (s *Store) find(collection, businessID string) *postgres.Record {
	for _, rec := range s.records {
		if rec.Collection == collection && rec.BusinessID == businessID {
			return rec
		}
	}
	return nil
}
