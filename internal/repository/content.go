package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wedding-backend/internal/domain/model"
)

// ContentRepository — интерфейс доступа к таблице wedding_content.
type ContentRepository interface {
	// Upsert создаёт или обновляет контент по паре (section, content_key).
	Upsert(ctx context.Context, p model.ContentUpsert) (*model.ContentItem, error)
	// UpdateByID перезаписывает все изменяемые поля записи по ID.
	UpdateByID(ctx context.Context, id string, p model.ContentUpsert) (*model.ContentItem, error)
	// GetBySectionKey возвращает контент по паре (section, content_key).
	GetBySectionKey(ctx context.Context, section, key string) (*model.ContentItem, error)
	// List возвращает весь контент, опционально отфильтрованный по секции.
	List(ctx context.Context, section string) ([]*model.ContentItem, error)
	// Delete удаляет контент по ID.
	Delete(ctx context.Context, id string) error
}

// contentRepo — реализация ContentRepository.
type contentRepo struct {
	db DBTX
}

// NewContentRepository создаёт репозиторий контента.
func NewContentRepository(db DBTX) ContentRepository {
	return &contentRepo{db: db}
}

const contentColumns = `id, section, content_key, content_value, created_at, updated_at`

func scanContent(row pgx.Row) (*model.ContentItem, error) {
	c := &model.ContentItem{}
	err := row.Scan(&c.ID, &c.Section, &c.ContentKey, &c.ContentValue,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Upsert — INSERT ON CONFLICT (section, content_key) DO UPDATE.
// Повторный вызов с теми же section/key заменяет значение и
// обновляет updated_at; операция идемпотентна.
func (r *contentRepo) Upsert(ctx context.Context, p model.ContentUpsert) (*model.ContentItem, error) {
	query := `
		INSERT INTO wedding_content (section, content_key, content_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (section, content_key) DO UPDATE SET
			content_value = EXCLUDED.content_value,
			updated_at = NOW()
		RETURNING ` + contentColumns

	c, err := scanContent(r.db.QueryRow(ctx, query,
		p.Section, p.ContentKey, p.ContentValue))
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения контента: %w", err)
	}
	return c, nil
}

// UpdateByID перезаписывает section, content_key и content_value.
// Конфликт новой пары (section, content_key) с другой записью — ErrConflict.
func (r *contentRepo) UpdateByID(ctx context.Context, id string, p model.ContentUpsert) (*model.ContentItem, error) {
	query := `
		UPDATE wedding_content
		SET section = $2, content_key = $3, content_value = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + contentColumns

	c, err := scanContent(r.db.QueryRow(ctx, query,
		id, p.Section, p.ContentKey, p.ContentValue))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: пара (%s, %s) уже занята", ErrConflict, p.Section, p.ContentKey)
		}
		return nil, fmt.Errorf("ошибка обновления контента: %w", err)
	}
	return c, nil
}

func (r *contentRepo) GetBySectionKey(ctx context.Context, section, key string) (*model.ContentItem, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM wedding_content
		WHERE section = $1 AND content_key = $2`

	c, err := scanContent(r.db.QueryRow(ctx, query, section, key))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения контента: %w", err)
	}
	return c, nil
}

func (r *contentRepo) List(ctx context.Context, section string) ([]*model.ContentItem, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM wedding_content
		ORDER BY section, content_key`
	args := []any{}

	if section != "" {
		query = `
			SELECT ` + contentColumns + `
			FROM wedding_content
			WHERE section = $1
			ORDER BY content_key`
		args = append(args, section)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка контента: %w", err)
	}
	defer rows.Close()

	var result []*model.ContentItem
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования контента: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *contentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM wedding_content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления контента: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
