package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"wedding-backend/internal/domain/model"
)

// MilestoneRepository — интерфейс доступа к таблице story_milestones.
type MilestoneRepository interface {
	// WithTx возвращает репозиторий, привязанный к транзакции.
	WithTx(tx pgx.Tx) MilestoneRepository
	// Create создаёт веху. При nil SortOrder значение вычисляется как
	// следующее глобально по таблице внутри той же транзакции.
	Create(ctx context.Context, p model.MilestoneCreate) (*model.Milestone, error)
	// GetByID возвращает веху по UUID.
	GetByID(ctx context.Context, id string) (*model.Milestone, error)
	// List возвращает все вехи в порядке sort_order ASC, created_at ASC.
	List(ctx context.Context) ([]*model.Milestone, error)
	// Update обновляет веху (частичное обновление).
	Update(ctx context.Context, id string, p model.MilestoneUpdate) (*model.Milestone, error)
	// Delete удаляет веху по ID.
	Delete(ctx context.Context, id string) error
}

// milestoneRepo — реализация MilestoneRepository.
type milestoneRepo struct {
	db DBTX
}

// NewMilestoneRepository создаёт репозиторий вех истории.
func NewMilestoneRepository(db DBTX) MilestoneRepository {
	return &milestoneRepo{db: db}
}

// WithTx возвращает копию репозитория, работающую через tx.
func (r *milestoneRepo) WithTx(tx pgx.Tx) MilestoneRepository {
	return &milestoneRepo{db: tx}
}

const milestoneColumns = `id, title, description, date, COALESCE(image_url, ''),
		sort_order, created_at, updated_at`

func scanMilestone(row pgx.Row) (*model.Milestone, error) {
	m := &model.Milestone{}
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Date,
		&m.ImageURL, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create использует переданный sort_order, а при nil вычисляет его
// подзапросом: для пустой таблицы — 1.
func (r *milestoneRepo) Create(ctx context.Context, p model.MilestoneCreate) (*model.Milestone, error) {
	query := `
		INSERT INTO story_milestones (title, description, date, image_url, sort_order)
		VALUES ($1, $2, $3, NULLIF($4, ''), COALESCE($5::int,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM story_milestones)))
		RETURNING ` + milestoneColumns

	m, err := scanMilestone(r.db.QueryRow(ctx, query,
		p.Title, p.Description, p.Date, p.ImageURL, p.SortOrder))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания вехи: %w", err)
	}
	return m, nil
}

func (r *milestoneRepo) GetByID(ctx context.Context, id string) (*model.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM story_milestones WHERE id = $1`

	m, err := scanMilestone(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения вехи: %w", err)
	}
	return m, nil
}

func (r *milestoneRepo) List(ctx context.Context) ([]*model.Milestone, error) {
	query := `
		SELECT ` + milestoneColumns + `
		FROM story_milestones
		ORDER BY sort_order ASC, created_at ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка вех: %w", err)
	}
	defer rows.Close()

	var result []*model.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования вехи: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *milestoneRepo) Update(ctx context.Context, id string, p model.MilestoneUpdate) (*model.Milestone, error) {
	var sets []string
	args := []any{id}
	argNum := 2

	if p.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argNum))
		args = append(args, *p.Title)
		argNum++
	}
	if p.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argNum))
		args = append(args, *p.Description)
		argNum++
	}
	if p.Date != nil {
		sets = append(sets, fmt.Sprintf("date = $%d", argNum))
		args = append(args, *p.Date)
		argNum++
	}
	if p.ImageURL != nil {
		sets = append(sets, fmt.Sprintf("image_url = NULLIF($%d, '')", argNum))
		args = append(args, *p.ImageURL)
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
		UPDATE story_milestones
		SET %s
		WHERE id = $1
		RETURNING `+milestoneColumns, strings.Join(sets, ", "))

	m, err := scanMilestone(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления вехи: %w", err)
	}
	return m, nil
}

func (r *milestoneRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM story_milestones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления вехи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
