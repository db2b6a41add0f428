package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"wedding-backend/internal/domain/model"
)

// MediaRepository — интерфейс доступа к таблице media.
type MediaRepository interface {
	// WithTx возвращает репозиторий, привязанный к транзакции.
	WithTx(tx pgx.Tx) MediaRepository
	// Create регистрирует медиафайл. SortOrder вычисляется как
	// следующий по категории внутри той же транзакции.
	Create(ctx context.Context, p model.MediaCreate) (*model.Media, error)
	// GetByID возвращает медиафайл по UUID.
	GetByID(ctx context.Context, id string) (*model.Media, error)
	// List возвращает медиафайлы с опциональными фильтрами
	// по категории и признаку featured.
	List(ctx context.Context, category string, featuredOnly bool) ([]*model.Media, error)
	// Update обновляет метаданные медиафайла (частичное обновление).
	Update(ctx context.Context, id string, p model.MediaUpdate) (*model.Media, error)
	// Delete удаляет запись и возвращает её для последующей очистки блоба.
	Delete(ctx context.Context, id string) (*model.Media, error)
}

// mediaRepo — реализация MediaRepository.
type mediaRepo struct {
	db DBTX
}

// NewMediaRepository создаёт репозиторий медиафайлов.
func NewMediaRepository(db DBTX) MediaRepository {
	return &mediaRepo{db: db}
}

// WithTx возвращает копию репозитория, работающую через tx.
func (r *mediaRepo) WithTx(tx pgx.Tx) MediaRepository {
	return &mediaRepo{db: tx}
}

const mediaColumns = `id, filename, original_filename, url, blob_url, mime_type, size,
		width, height, COALESCE(alt_text, ''), category, sort_order, is_featured,
		created_at, updated_at`

func scanMedia(row pgx.Row) (*model.Media, error) {
	m := &model.Media{}
	err := row.Scan(&m.ID, &m.Filename, &m.OriginalFilename, &m.URL, &m.BlobURL,
		&m.MimeType, &m.Size, &m.Width, &m.Height, &m.AltText, &m.Category,
		&m.SortOrder, &m.IsFeatured, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create вычисляет sort_order подзапросом в том же INSERT:
// для пустой категории первый файл получает значение 1.
func (r *mediaRepo) Create(ctx context.Context, p model.MediaCreate) (*model.Media, error) {
	query := `
		INSERT INTO media (filename, original_filename, url, blob_url, mime_type, size,
			width, height, alt_text, category, is_featured, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM media WHERE category = $10))
		RETURNING ` + mediaColumns

	m, err := scanMedia(r.db.QueryRow(ctx, query,
		p.Filename, p.OriginalFilename, p.URL, p.BlobURL, p.MimeType, p.Size,
		p.Width, p.Height, p.AltText, p.Category, p.IsFeatured))
	if err != nil {
		return nil, fmt.Errorf("ошибка регистрации медиафайла: %w", err)
	}
	return m, nil
}

func (r *mediaRepo) GetByID(ctx context.Context, id string) (*model.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE id = $1`

	m, err := scanMedia(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения медиафайла: %w", err)
	}
	return m, nil
}

func (r *mediaRepo) List(ctx context.Context, category string, featuredOnly bool) ([]*model.Media, error) {
	var conds []string
	args := []any{}

	if category != "" {
		args = append(args, category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if featuredOnly {
		conds = append(conds, "is_featured = TRUE")
	}

	query := `SELECT ` + mediaColumns + ` FROM media`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY sort_order ASC, created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка медиафайлов: %w", err)
	}
	defer rows.Close()

	var result []*model.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования медиафайла: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// Update собирает SET-часть только из переданных (не nil) полей.
func (r *mediaRepo) Update(ctx context.Context, id string, p model.MediaUpdate) (*model.Media, error) {
	var sets []string
	args := []any{id}
	argNum := 2

	if p.AltText != nil {
		sets = append(sets, fmt.Sprintf("alt_text = NULLIF($%d, '')", argNum))
		args = append(args, *p.AltText)
		argNum++
	}
	if p.Category != nil {
		sets = append(sets, fmt.Sprintf("category = $%d", argNum))
		args = append(args, *p.Category)
		argNum++
	}
	if p.IsFeatured != nil {
		sets = append(sets, fmt.Sprintf("is_featured = $%d", argNum))
		args = append(args, *p.IsFeatured)
		argNum++
	}
	if p.SortOrder != nil {
		sets = append(sets, fmt.Sprintf("sort_order = $%d", argNum))
		args = append(args, *p.SortOrder)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE media
		SET %s
		WHERE id = $1
		RETURNING `+mediaColumns, strings.Join(sets, ", "))

	m, err := scanMedia(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления медиафайла: %w", err)
	}
	return m, nil
}

func (r *mediaRepo) Delete(ctx context.Context, id string) (*model.Media, error) {
	query := `DELETE FROM media WHERE id = $1 RETURNING ` + mediaColumns

	m, err := scanMedia(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка удаления медиафайла: %w", err)
	}
	return m, nil
}
