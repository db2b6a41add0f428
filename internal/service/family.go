// family.go — сервис членов семьи и свадебной команды.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jackc/pgx/v5"

	"wedding-backend/internal/domain/model"
	"wedding-backend/internal/repository"
)

// FamilyService — бизнес-логика членов семьи.
type FamilyService struct {
	repo   repository.FamilyRepository
	tx     TxManager
	logger *slog.Logger
}

// NewFamilyService создаёт сервис членов семьи.
func NewFamilyService(repo repository.FamilyRepository, tx TxManager, logger *slog.Logger) *FamilyService {
	return &FamilyService{
		repo:   repo,
		tx:     tx,
		logger: logger.With(slog.String("component", "family_service")),
	}
}

// Create добавляет члена семьи. При отсутствии sort_order значение
// вычисляется в транзакции как следующее по таблице.
func (s *FamilyService) Create(ctx context.Context, p model.FamilyMemberCreate) (*model.FamilyMember, error) {
	if p.Name == "" || p.Role == "" {
		return nil, fmt.Errorf("%w: name и role обязательны", ErrValidation)
	}
	if !slices.Contains(model.FamilyRoles, p.Role) {
		return nil, fmt.Errorf("%w: недопустимая роль '%s'", ErrValidation, p.Role)
	}
	if p.SortOrder != nil && *p.SortOrder < 0 {
		return nil, fmt.Errorf("%w: sort_order не может быть отрицательным", ErrValidation)
	}

	var f *model.FamilyMember
	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		f, txErr = s.repo.WithTx(tx).Create(ctx, p)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("добавление члена семьи: %w", err)
	}

	s.logger.Info("Член семьи добавлен",
		slog.String("id", f.ID.String()),
		slog.String("name", f.Name),
		slog.String("role", f.Role),
	)
	return f, nil
}

// List возвращает членов семьи, опционально отфильтрованных по роли.
func (s *FamilyService) List(ctx context.Context, role string) ([]*model.FamilyMember, error) {
	if role != "" && !slices.Contains(model.FamilyRoles, role) {
		return nil, fmt.Errorf("%w: недопустимая роль '%s'", ErrValidation, role)
	}

	items, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("получение списка членов семьи: %w", err)
	}
	if items == nil {
		items = []*model.FamilyMember{}
	}
	return items, nil
}

// Update обновляет члена семьи (частичное обновление).
func (s *FamilyService) Update(ctx context.Context, id string, p model.FamilyMemberUpdate) (*model.FamilyMember, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id обязателен", ErrValidation)
	}
	if p.Name != nil && *p.Name == "" {
		return nil, fmt.Errorf("%w: name не может быть пустым", ErrValidation)
	}
	if p.Role != nil && !slices.Contains(model.FamilyRoles, *p.Role) {
		return nil, fmt.Errorf("%w: недопустимая роль '%s'", ErrValidation, *p.Role)
	}
	if p.SortOrder != nil && *p.SortOrder < 0 {
		return nil, fmt.Errorf("%w: sort_order не может быть отрицательным", ErrValidation)
	}

	f, err := s.repo.Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление члена семьи: %w", err)
	}

	s.logger.Info("Член семьи обновлён", slog.String("id", id))
	return f, nil
}

// Delete удаляет члена семьи по ID.
func (s *FamilyService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id обязателен", ErrValidation)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление члена семьи: %w", err)
	}

	s.logger.Info("Член семьи удалён", slog.String("id", id))
	return nil
}
