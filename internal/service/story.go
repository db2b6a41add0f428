// story.go — сервис вех истории пары.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"wedding-backend/internal/domain/model"
	"wedding-backend/internal/repository"
)

// StoryService — бизнес-логика вех истории.
type StoryService struct {
	repo   repository.MilestoneRepository
	tx     TxManager
	logger *slog.Logger
}

// NewStoryService создаёт сервис вех истории.
func NewStoryService(repo repository.MilestoneRepository, tx TxManager, logger *slog.Logger) *StoryService {
	return &StoryService{
		repo:   repo,
		tx:     tx,
		logger: logger.With(slog.String("component", "story_service")),
	}
}

// Create создаёт веху. При отсутствии sort_order значение вычисляется
// в транзакции как следующее по таблице.
func (s *StoryService) Create(ctx context.Context, p model.MilestoneCreate) (*model.Milestone, error) {
	if p.Title == "" || p.Description == "" || p.Date == "" {
		return nil, fmt.Errorf("%w: title, description и date обязательны", ErrValidation)
	}
	if p.SortOrder != nil && *p.SortOrder < 0 {
		return nil, fmt.Errorf("%w: sort_order не может быть отрицательным", ErrValidation)
	}

	var m *model.Milestone
	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		m, txErr = s.repo.WithTx(tx).Create(ctx, p)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("создание вехи: %w", err)
	}

	s.logger.Info("Веха создана",
		slog.String("id", m.ID.String()),
		slog.String("title", m.Title),
	)
	return m, nil
}

// List возвращает все вехи в хронологическом порядке отображения.
func (s *StoryService) List(ctx context.Context) ([]*model.Milestone, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка вех: %w", err)
	}
	if items == nil {
		items = []*model.Milestone{}
	}
	return items, nil
}

// Update обновляет веху (частичное обновление).
func (s *StoryService) Update(ctx context.Context, id string, p model.MilestoneUpdate) (*model.Milestone, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id обязателен", ErrValidation)
	}
	if p.Title != nil && *p.Title == "" {
		return nil, fmt.Errorf("%w: title не может быть пустым", ErrValidation)
	}
	if p.SortOrder != nil && *p.SortOrder < 0 {
		return nil, fmt.Errorf("%w: sort_order не может быть отрицательным", ErrValidation)
	}

	m, err := s.repo.Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление вехи: %w", err)
	}

	s.logger.Info("Веха обновлена", slog.String("id", id))
	return m, nil
}

// Delete удаляет веху по ID.
func (s *StoryService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id обязателен", ErrValidation)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление вехи: %w", err)
	}

	s.logger.Info("Веха удалена", slog.String("id", id))
	return nil
}
