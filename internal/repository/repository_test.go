package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"wedding-backend/internal/config"
	"wedding-backend/internal/database"
	"wedding-backend/internal/domain/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
// Возвращает pgxpool.Pool, контейнер останавливается через t.Cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("wedding_test"),
		postgres.WithUsername("wedding"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	// Настраиваем env для config.Load()
	os.Setenv("WB_DB_HOST", host)
	os.Setenv("WB_DB_PORT", port.Port())
	os.Setenv("WB_DB_NAME", "wedding_test")
	os.Setenv("WB_DB_USER", "wedding")
	os.Setenv("WB_DB_PASSWORD", "test-password")
	os.Setenv("WB_DB_SSL_MODE", "disable")
	os.Setenv("WB_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Применяем миграции
	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	// Подключаемся
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

// --- Тесты ContentRepository ---

func TestContentUpsert(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewContentRepository(pool)

	// Первый upsert — вставка
	created, err := repo.Upsert(ctx, model.ContentUpsert{
		Section:      "hero",
		ContentKey:   "couple_names",
		ContentValue: []byte(`{"bride":"Анна","groom":"Иван"}`),
	})
	if err != nil {
		t.Fatalf("Upsert() ошибка: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("ID не установлен")
	}

	// Повторный upsert с теми же section/key — обновление, ID сохраняется
	updated, err := repo.Upsert(ctx, model.ContentUpsert{
		Section:      "hero",
		ContentKey:   "couple_names",
		ContentValue: []byte(`{"bride":"Мария","groom":"Пётр"}`),
	})
	if err != nil {
		t.Fatalf("повторный Upsert() ошибка: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("ID изменился при upsert: %s -> %s", created.ID, updated.ID)
	}

	// Всего одна запись для пары, значение заменено
	got, err := repo.GetBySectionKey(ctx, "hero", "couple_names")
	if err != nil {
		t.Fatalf("GetBySectionKey() ошибка: %v", err)
	}
	if string(got.ContentValue) != `{"bride": "Мария", "groom": "Пётр"}` &&
		string(got.ContentValue) != `{"bride":"Мария","groom":"Пётр"}` {
		t.Errorf("после upsert ContentValue = %s", got.ContentValue)
	}
}

func TestContentUpdateByID(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewContentRepository(pool)

	c, err := repo.Upsert(ctx, model.ContentUpsert{
		Section:      "venue",
		ContentKey:   "address",
		ContentValue: []byte(`"Старый адрес"`),
	})
	if err != nil {
		t.Fatalf("Upsert() ошибка: %v", err)
	}

	updated, err := repo.UpdateByID(ctx, c.ID.String(), model.ContentUpsert{
		Section:      "venue",
		ContentKey:   "full_address",
		ContentValue: []byte(`"Новый адрес"`),
	})
	if err != nil {
		t.Fatalf("UpdateByID() ошибка: %v", err)
	}
	if updated.ContentKey != "full_address" {
		t.Errorf("ContentKey = %q, хотели full_address", updated.ContentKey)
	}
	if string(updated.ContentValue) != `"Новый адрес"` {
		t.Errorf("ContentValue = %s", updated.ContentValue)
	}

	// Несуществующий ID — ErrNotFound
	if _, err := repo.UpdateByID(ctx, uuid.NewString(), model.ContentUpsert{
		Section:      "venue",
		ContentKey:   "x",
		ContentValue: []byte(`1`),
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateByID() несуществующего = %v, хотели ErrNotFound", err)
	}

	// Переименование в занятую пару — ErrConflict
	other, err := repo.Upsert(ctx, model.ContentUpsert{
		Section:      "venue",
		ContentKey:   "map_link",
		ContentValue: []byte(`"https://maps.example"`),
	})
	if err != nil {
		t.Fatalf("Upsert() ошибка: %v", err)
	}
	if _, err := repo.UpdateByID(ctx, other.ID.String(), model.ContentUpsert{
		Section:      "venue",
		ContentKey:   "full_address",
		ContentValue: []byte(`"dup"`),
	}); !errors.Is(err, ErrConflict) {
		t.Errorf("UpdateByID() в занятую пару = %v, хотели ErrConflict", err)
	}
}

func TestContentListAndDelete(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewContentRepository(pool)

	seed := []model.ContentUpsert{
		{Section: "hero", ContentKey: "title", ContentValue: []byte(`"t"`)},
		{Section: "hero", ContentKey: "subtitle", ContentValue: []byte(`"s"`)},
		{Section: "venue", ContentKey: "address", ContentValue: []byte(`"a"`)},
	}
	var lastID uuid.UUID
	for _, p := range seed {
		c, err := repo.Upsert(ctx, p)
		if err != nil {
			t.Fatalf("Upsert(%s/%s) ошибка: %v", p.Section, p.ContentKey, err)
		}
		lastID = c.ID
	}

	// Фильтр по секции
	heroItems, err := repo.List(ctx, "hero")
	if err != nil {
		t.Fatalf("List(hero) ошибка: %v", err)
	}
	if len(heroItems) != 2 {
		t.Errorf("List(hero) вернул %d записей, хотели 2", len(heroItems))
	}

	// Без фильтра
	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List() вернул %d записей, хотели 3", len(all))
	}

	// Delete
	if err := repo.Delete(ctx, lastID.String()); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if err := repo.Delete(ctx, lastID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный Delete() = %v, хотели ErrNotFound", err)
	}
}

// --- Тесты MediaRepository ---

func TestMediaSortOrderPerCategory(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewMediaRepository(pool)

	mk := func(name, category string) *model.Media {
		t.Helper()
		m, err := repo.Create(ctx, model.MediaCreate{
			Filename:         name + ".jpg",
			OriginalFilename: name + ".jpg",
			URL:              "/uploads/" + name + ".jpg",
			BlobURL:          "/uploads/" + name + ".jpg",
			MimeType:         "image/jpeg",
			Size:             1024,
			Category:         category,
		})
		if err != nil {
			t.Fatalf("Create(%s) ошибка: %v", name, err)
		}
		return m
	}

	// Первый файл в пустой категории получает sort_order = 1
	g1 := mk("g1", model.MediaCategoryGallery)
	if g1.SortOrder != 1 {
		t.Errorf("первый sort_order = %d, хотели 1", g1.SortOrder)
	}

	g2 := mk("g2", model.MediaCategoryGallery)
	if g2.SortOrder != 2 {
		t.Errorf("второй sort_order = %d, хотели 2", g2.SortOrder)
	}

	// Счётчик независим по категориям
	h1 := mk("h1", model.MediaCategoryHero)
	if h1.SortOrder != 1 {
		t.Errorf("sort_order в другой категории = %d, хотели 1", h1.SortOrder)
	}
}

func TestMediaCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewMediaRepository(pool)

	width, height := 1920, 1080
	m, err := repo.Create(ctx, model.MediaCreate{
		Filename:         "photo.jpg",
		OriginalFilename: "наша фотография.jpg",
		URL:              "/uploads/photo.jpg",
		BlobURL:          "/uploads/photo.jpg",
		MimeType:         "image/jpeg",
		Size:             2048,
		Width:            &width,
		Height:           &height,
		AltText:          "Пара на берегу",
		Category:         model.MediaCategoryGallery,
	})
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}

	got, err := repo.GetByID(ctx, m.ID.String())
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.AltText != "Пара на берегу" {
		t.Errorf("AltText = %q", got.AltText)
	}
	if got.Width == nil || *got.Width != 1920 {
		t.Errorf("Width = %v, хотели 1920", got.Width)
	}
	if got.IsFeatured {
		t.Error("IsFeatured по умолчанию должен быть false")
	}

	// Частичное обновление: меняем только категорию и флаг featured
	newCat := model.MediaCategoryHero
	featured := true
	updated, err := repo.Update(ctx, m.ID.String(), model.MediaUpdate{
		Category:   &newCat,
		IsFeatured: &featured,
	})
	if err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}
	if updated.Category != model.MediaCategoryHero {
		t.Errorf("Category = %q, хотели hero", updated.Category)
	}
	if !updated.IsFeatured {
		t.Error("IsFeatured не обновился")
	}
	if updated.AltText != "Пара на берегу" {
		t.Errorf("AltText изменился при частичном обновлении: %q", updated.AltText)
	}

	// Delete возвращает удалённую запись
	deleted, err := repo.Delete(ctx, m.ID.String())
	if err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if deleted.Filename != "photo.jpg" {
		t.Errorf("Delete() вернул Filename = %q", deleted.Filename)
	}
	if _, err := repo.GetByID(ctx, m.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() после удаления = %v, хотели ErrNotFound", err)
	}
}

func TestMediaListFilters(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewMediaRepository(pool)

	mk := func(name, category string, featured bool) {
		t.Helper()
		if _, err := repo.Create(ctx, model.MediaCreate{
			Filename:         name + ".jpg",
			OriginalFilename: name + ".jpg",
			URL:              "/uploads/" + name + ".jpg",
			BlobURL:          "/uploads/" + name + ".jpg",
			MimeType:         "image/jpeg",
			Size:             1,
			Category:         category,
			IsFeatured:       featured,
		}); err != nil {
			t.Fatalf("Create(%s) ошибка: %v", name, err)
		}
	}

	mk("a", model.MediaCategoryGallery, false)
	mk("b", model.MediaCategoryGallery, true)
	mk("c", model.MediaCategoryHero, true)

	// Фильтр по категории
	gallery, err := repo.List(ctx, model.MediaCategoryGallery, false)
	if err != nil {
		t.Fatalf("List(gallery) ошибка: %v", err)
	}
	if len(gallery) != 2 {
		t.Errorf("List(gallery) вернул %d записей, хотели 2", len(gallery))
	}
	for i := 1; i < len(gallery); i++ {
		if gallery[i-1].SortOrder > gallery[i].SortOrder {
			t.Errorf("нарушен порядок sort_order: %d перед %d",
				gallery[i-1].SortOrder, gallery[i].SortOrder)
		}
	}

	// Только featured
	featured, err := repo.List(ctx, "", true)
	if err != nil {
		t.Fatalf("List(featured) ошибка: %v", err)
	}
	if len(featured) != 2 {
		t.Errorf("List(featured) вернул %d записей, хотели 2", len(featured))
	}

	// Комбинация фильтров
	both, err := repo.List(ctx, model.MediaCategoryGallery, true)
	if err != nil {
		t.Fatalf("List(gallery, featured) ошибка: %v", err)
	}
	if len(both) != 1 {
		t.Errorf("List(gallery, featured) вернул %d записей, хотели 1", len(both))
	}
}

// --- Тесты MilestoneRepository ---

func TestMilestoneSortOrderGlobal(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewMilestoneRepository(pool)

	m1, err := repo.Create(ctx, model.MilestoneCreate{
		Title:       "Знакомство",
		Description: "Мы познакомились",
		Date:        "Июнь 2019",
	})
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if m1.SortOrder != 1 {
		t.Errorf("первый sort_order = %d, хотели 1", m1.SortOrder)
	}

	m2, err := repo.Create(ctx, model.MilestoneCreate{
		Title:       "Помолвка",
		Description: "Предложение на закате",
		Date:        "Март 2024",
		ImageURL:    "/uploads/proposal.jpg",
	})
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if m2.SortOrder != 2 {
		t.Errorf("второй sort_order = %d, хотели 2", m2.SortOrder)
	}

	// Явный sort_order имеет приоритет над вычисленным
	explicit := 10
	m3, err := repo.Create(ctx, model.MilestoneCreate{
		Title:       "Свадьба",
		Description: "Главный день",
		Date:        "Июнь 2026",
		SortOrder:   &explicit,
	})
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if m3.SortOrder != 10 {
		t.Errorf("явный sort_order = %d, хотели 10", m3.SortOrder)
	}
}

func TestMilestoneUpdateAndList(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewMilestoneRepository(pool)

	m, err := repo.Create(ctx, model.MilestoneCreate{
		Title:       "Первое свидание",
		Description: "Кино и прогулка",
		Date:        "Июль 2019",
	})
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}

	newTitle := "Первое настоящее свидание"
	newOrder := 5
	updated, err := repo.Update(ctx, m.ID.String(), model.MilestoneUpdate{
		Title:     &newTitle,
		SortOrder: &newOrder,
	})
	if err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}
	if updated.Title != newTitle {
		t.Errorf("Title = %q", updated.Title)
	}
	if updated.SortOrder != 5 {
		t.Errorf("SortOrder = %d, хотели 5", updated.SortOrder)
	}
	if updated.Description != "Кино и прогулка" {
		t.Errorf("Description изменился при частичном обновлении: %q", updated.Description)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List() вернул %d записей, хотели 1", len(list))
	}

	if err := repo.Delete(ctx, m.ID.String()); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if err := repo.Delete(ctx, m.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный Delete() = %v, хотели ErrNotFound", err)
	}
}

// --- Тесты FamilyRepository ---

func TestFamilyMemberCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewFamilyRepository(pool)

	f, err := repo.Create(ctx, model.FamilyMemberCreate{
		Name:        "Ольга Иванова",
		Role:        model.FamilyRoleParent,
		Description: "Мама невесты",
	})
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if f.SortOrder != 1 {
		t.Errorf("первый sort_order = %d, хотели 1", f.SortOrder)
	}

	g, err := repo.Create(ctx, model.FamilyMemberCreate{
		Name: "Мария Сидорова",
		Role: model.FamilyRoleBridesmaid,
	})
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if g.SortOrder != 2 {
		t.Errorf("второй sort_order = %d, хотели 2", g.SortOrder)
	}

	// Фильтр по роли
	parents, err := repo.List(ctx, model.FamilyRoleParent)
	if err != nil {
		t.Fatalf("List(parent) ошибка: %v", err)
	}
	if len(parents) != 1 {
		t.Errorf("List(parent) вернул %d записей, хотели 1", len(parents))
	}

	newRole := model.FamilyRoleFamily
	updated, err := repo.Update(ctx, f.ID.String(), model.FamilyMemberUpdate{Role: &newRole})
	if err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}
	if updated.Role != newRole {
		t.Errorf("Role = %q", updated.Role)
	}
	if updated.Description != "Мама невесты" {
		t.Errorf("Description изменился при частичном обновлении: %q", updated.Description)
	}

	if err := repo.Delete(ctx, f.ID.String()); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
}

// --- Тесты UserRepository ---

func TestUserCreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	u, err := repo.Create(ctx, "admin@wedding.example", "$2a$12$hash", model.RoleAdmin)
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("Role = %q, хотели admin", u.Role)
	}

	// Дубликат email — ErrConflict
	if _, err := repo.Create(ctx, "admin@wedding.example", "$2a$12$hash", model.RoleAdmin); !errors.Is(err, ErrConflict) {
		t.Errorf("Create() с дубликатом email = %v, хотели ErrConflict", err)
	}

	got, err := repo.GetByEmail(ctx, "admin@wedding.example")
	if err != nil {
		t.Fatalf("GetByEmail() ошибка: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail() ID = %s, хотели %s", got.ID, u.ID)
	}

	if _, err := repo.GetByEmail(ctx, "nobody@wedding.example"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByEmail() несуществующего = %v, хотели ErrNotFound", err)
	}
}

// --- Тест TxRunner ---

func TestTxRunnerRollback(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runner := NewTxRunner(pool)

	wantErr := errors.New("ошибка внутри транзакции")
	err := runner.RunInTx(ctx, func(tx pgx.Tx) error {
		repo := NewMilestoneRepository(tx)
		if _, err := repo.Create(ctx, model.MilestoneCreate{
			Title:       "Не должна сохраниться",
			Description: "откат",
			Date:        "2024",
		}); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("RunInTx() = %v, хотели wantErr", err)
	}

	// После отката таблица пуста
	list, err := NewMilestoneRepository(pool).List(ctx)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("после отката в таблице %d записей, хотели 0", len(list))
	}
}
