package conflicts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	conflictRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/conflict"
	"github.com/m04kA/SMC-BayLedger/internal/service/conflicts/models"
)

// Service очередь конфликтов сверки для оператора
// Конфликты не разрешаются автоматически: оба бронирования остаются активными
type Service struct {
	conflictRepo ConflictRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса конфликтов
func NewService(conflictRepo ConflictRepository, logger Logger) *Service {
	return &Service{
		conflictRepo: conflictRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// List возвращает очередь конфликтов и число открытых
func (s *Service) List(ctx context.Context, req *models.ListConflictsRequest) (*models.ConflictListResponse, error) {
	s.logger.Info("List: fetching conflicts (onlyOpen=%t)", req.OnlyOpen)

	conflicts, err := s.conflictRepo.List(ctx, req.OnlyOpen)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	open, err := s.conflictRepo.CountOpen(ctx)
	if err != nil {
		s.logger.Error("List: failed to count open conflicts: %v", err)
		return nil, fmt.Errorf("%w: List - count open: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d conflicts, open=%d", len(conflicts), open)
	return models.FromDomainConflictList(conflicts, open), nil
}

// Resolve помечает конфликт разрешенным с необязательной заметкой оператора
func (s *Service) Resolve(ctx context.Context, id int64, req *models.ResolveConflictRequest) (*models.ConflictResponse, error) {
	s.logger.Info("Resolve: resolving conflict id=%d", id)

	// 1. Валидация заметки
	var note *string
	if req.Note != nil {
		trimmed := strings.TrimSpace(*req.Note)
		if utf8.RuneCountInString(trimmed) > domain.MaxResolutionNoteLength {
			s.logger.Warn("Resolve: note too long for conflict id=%d", id)
			return nil, fmt.Errorf("%w: note is longer than %d characters", ErrInvalidInput, domain.MaxResolutionNoteLength)
		}
		if trimmed != "" {
			note = &trimmed
		}
	}

	// 2. Проверяем текущее состояние
	conflict, err := s.conflictRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("Resolve", id, err)
	}
	if conflict.Status == domain.ConflictResolved {
		s.logger.Warn("Resolve: conflict id=%d already resolved", id)
		return nil, ErrAlreadyResolved
	}

	// 3. Разрешаем
	resolvedAt := s.timeProvider.Now()
	if err := s.conflictRepo.Resolve(ctx, id, resolvedAt, note); err != nil {
		return nil, s.mapRepoError("Resolve", id, err)
	}

	conflict.Status = domain.ConflictResolved
	conflict.ResolvedAt = &resolvedAt
	conflict.ResolutionNote = note

	s.logger.Info("Resolve: successfully resolved conflict id=%d", id)
	return models.FromDomainConflict(conflict), nil
}

func (s *Service) mapRepoError(operation string, id int64, err error) error {
	if errors.Is(err, conflictRepo.ErrConflictNotFound) {
		s.logger.Warn("%s: conflict id=%d not found", operation, id)
		return fmt.Errorf("%w: id=%d", ErrConflictNotFound, id)
	}
	s.logger.Error("%s: repository error for conflict id=%d: %v", operation, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, operation, err)
}
