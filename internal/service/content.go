// content.go — сервис редактируемого контента сайта.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"wedding-backend/internal/domain/model"
	"wedding-backend/internal/repository"
)

// ContentService — бизнес-логика контента сайта.
type ContentService struct {
	repo   repository.ContentRepository
	logger *slog.Logger
}

// NewContentService создаёт сервис контента.
func NewContentService(repo repository.ContentRepository, logger *slog.Logger) *ContentService {
	return &ContentService{
		repo:   repo,
		logger: logger.With(slog.String("component", "content_service")),
	}
}

// validateUpsert проверяет обязательные поля и валидность JSON-значения.
func validateUpsert(p model.ContentUpsert) error {
	if p.Section == "" || p.ContentKey == "" {
		return fmt.Errorf("%w: section и content_key обязательны", ErrValidation)
	}
	if len(p.ContentValue) == 0 {
		return fmt.Errorf("%w: content_value обязателен", ErrValidation)
	}
	if !json.Valid(p.ContentValue) {
		return fmt.Errorf("%w: content_value не является валидным JSON", ErrValidation)
	}
	return nil
}

// Upsert создаёт или обновляет контент по паре (section, content_key).
// Повторный вызов с теми же аргументами идемпотентен.
func (s *ContentService) Upsert(ctx context.Context, p model.ContentUpsert) (*model.ContentItem, error) {
	if err := validateUpsert(p); err != nil {
		return nil, err
	}

	c, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("сохранение контента: %w", err)
	}

	s.logger.Info("Контент сохранён",
		slog.String("section", c.Section),
		slog.String("content_key", c.ContentKey),
	)
	return c, nil
}

// Update перезаписывает все изменяемые поля записи по ID.
func (s *ContentService) Update(ctx context.Context, id string, p model.ContentUpsert) (*model.ContentItem, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id обязателен", ErrValidation)
	}
	if err := validateUpsert(p); err != nil {
		return nil, err
	}

	c, err := s.repo.UpdateByID(ctx, id, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: пара (%s, %s) уже занята", ErrConflict, p.Section, p.ContentKey)
		}
		return nil, fmt.Errorf("обновление контента: %w", err)
	}

	s.logger.Info("Контент обновлён", slog.String("id", id))
	return c, nil
}

// Get возвращает контент по паре (section, content_key).
func (s *ContentService) Get(ctx context.Context, section, key string) (*model.ContentItem, error) {
	if section == "" || key == "" {
		return nil, fmt.Errorf("%w: section и key обязательны", ErrValidation)
	}

	c, err := s.repo.GetBySectionKey(ctx, section, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение контента: %w", err)
	}
	return c, nil
}

// List возвращает контент, опционально отфильтрованный по секции.
// Пустой результат — пустой срез, не ошибка.
func (s *ContentService) List(ctx context.Context, section string) ([]*model.ContentItem, error) {
	items, err := s.repo.List(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("получение списка контента: %w", err)
	}
	if items == nil {
		items = []*model.ContentItem{}
	}
	return items, nil
}

// Delete удаляет контент по ID.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id обязателен", ErrValidation)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление контента: %w", err)
	}

	s.logger.Info("Контент удалён", slog.String("id", id))
	return nil
}
