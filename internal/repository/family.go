package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"wedding-backend/internal/domain/model"
)

// FamilyRepository — интерфейс доступа к таблице family_members.
type FamilyRepository interface {
	// WithTx возвращает репозиторий, привязанный к транзакции.
	WithTx(tx pgx.Tx) FamilyRepository
	// Create добавляет члена семьи. При nil SortOrder значение вычисляется
	// как следующее по таблице внутри той же транзакции.
	Create(ctx context.Context, p model.FamilyMemberCreate) (*model.FamilyMember, error)
	// GetByID возвращает члена семьи по UUID.
	GetByID(ctx context.Context, id string) (*model.FamilyMember, error)
	// List возвращает членов семьи, опционально отфильтрованных по роли.
	List(ctx context.Context, role string) ([]*model.FamilyMember, error)
	// Update обновляет члена семьи (частичное обновление).
	Update(ctx context.Context, id string, p model.FamilyMemberUpdate) (*model.FamilyMember, error)
	// Delete удаляет члена семьи по ID.
	Delete(ctx context.Context, id string) error
}

// familyRepo — реализация FamilyRepository.
type familyRepo struct {
	db DBTX
}

// NewFamilyRepository создаёт репозиторий членов семьи.
func NewFamilyRepository(db DBTX) FamilyRepository {
	return &familyRepo{db: db}
}

// WithTx возвращает копию репозитория, работающую через tx.
func (r *familyRepo) WithTx(tx pgx.Tx) FamilyRepository {
	return &familyRepo{db: tx}
}

const familyColumns = `id, name, role, COALESCE(description, ''), COALESCE(image_url, ''),
		sort_order, created_at, updated_at`

func scanFamilyMember(row pgx.Row) (*model.FamilyMember, error) {
	f := &model.FamilyMember{}
	err := row.Scan(&f.ID, &f.Name, &f.Role, &f.Description,
		&f.ImageURL, &f.SortOrder, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Create использует переданный sort_order, а при nil вычисляет его
// подзапросом: для пустой таблицы — 1.
func (r *familyRepo) Create(ctx context.Context, p model.FamilyMemberCreate) (*model.FamilyMember, error) {
	query := `
		INSERT INTO family_members (name, role, description, image_url, sort_order)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), COALESCE($5::int,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM family_members)))
		RETURNING ` + familyColumns

	f, err := scanFamilyMember(r.db.QueryRow(ctx, query,
		p.Name, p.Role, p.Description, p.ImageURL, p.SortOrder))
	if err != nil {
		return nil, fmt.Errorf("ошибка добавления члена семьи: %w", err)
	}
	return f, nil
}

func (r *familyRepo) GetByID(ctx context.Context, id string) (*model.FamilyMember, error) {
	query := `SELECT ` + familyColumns + ` FROM family_members WHERE id = $1`

	f, err := scanFamilyMember(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения члена семьи: %w", err)
	}
	return f, nil
}

func (r *familyRepo) List(ctx context.Context, role string) ([]*model.FamilyMember, error) {
	query := `
		SELECT ` + familyColumns + `
		FROM family_members
		ORDER BY sort_order ASC, created_at ASC`
	args := []any{}

	if role != "" {
		query = `
			SELECT ` + familyColumns + `
			FROM family_members
			WHERE role = $1
			ORDER BY sort_order ASC, created_at ASC`
		args = append(args, role)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка членов семьи: %w", err)
	}
	defer rows.Close()

	var result []*model.FamilyMember
	for rows.Next() {
		f, err := scanFamilyMember(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования члена семьи: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *familyRepo) Update(ctx context.Context, id string, p model.FamilyMemberUpdate) (*model.FamilyMember, error) {
	var sets []string
	args := []any{id}
	argNum := 2

	if p.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argNum))
		args = append(args, *p.Name)
		argNum++
	}
	if p.Role != nil {
		sets = append(sets, fmt.Sprintf("role = $%d", argNum))
		args = append(args, *p.Role)
		argNum++
	}
	if p.Description != nil {
		sets = append(sets, fmt.Sprintf("description = NULLIF($%d, '')", argNum))
		args = append(args, *p.Description)
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
		UPDATE family_members
		SET %s
		WHERE id = $1
		RETURNING `+familyColumns, strings.Join(sets, ", "))

	f, err := scanFamilyMember(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления члена семьи: %w", err)
	}
	return f, nil
}

func (r *familyRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM family_members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления члена семьи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
