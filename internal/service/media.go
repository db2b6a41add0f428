// media.go — сервис медиакаталога: загрузка файлов,
// метаданные, удаление вместе с блобом.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/jackc/pgx/v5"

	"wedding-backend/internal/domain/model"
	"wedding-backend/internal/repository"
	"wedding-backend/internal/storage"
)

// Максимальный размер загружаемого файла — 50 MB.
const MaxUploadSize = 50 << 20

// allowedMimeTypes — разрешённые MIME-типы загружаемых медиафайлов.
var allowedMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/avif",
	"video/mp4",
	"video/webm",
}

// MediaUpload — параметры загрузки медиафайла.
// Width и Height опциональны — их определяет клиент при загрузке изображения.
type MediaUpload struct {
	Reader           io.Reader
	OriginalFilename string
	MimeType         string
	Category         string
	AltText          string
	Width            *int
	Height           *int
	IsFeatured       bool
}

// MediaService — бизнес-логика медиакаталога.
type MediaService struct {
	repo   repository.MediaRepository
	tx     TxManager
	blobs  storage.BlobStore
	logger *slog.Logger
}

// NewMediaService создаёт сервис медиакаталога.
func NewMediaService(
	repo repository.MediaRepository,
	tx TxManager,
	blobs storage.BlobStore,
	logger *slog.Logger,
) *MediaService {
	return &MediaService{
		repo:   repo,
		tx:     tx,
		blobs:  blobs,
		logger: logger.With(slog.String("component", "media_service")),
	}
}

// Upload сохраняет блоб в хранилище и регистрирует метаданные.
// Порядок: сначала блоб, затем запись в БД внутри транзакции —
// при ошибке БД загруженный блоб удаляется.
func (s *MediaService) Upload(ctx context.Context, p MediaUpload) (*model.Media, error) {
	if p.Reader == nil || p.OriginalFilename == "" {
		return nil, fmt.Errorf("%w: файл обязателен", ErrValidation)
	}
	if p.Category == "" {
		p.Category = model.MediaCategoryGallery
	}
	if !slices.Contains(model.MediaCategories, p.Category) {
		return nil, fmt.Errorf("%w: недопустимая категория '%s'", ErrValidation, p.Category)
	}
	if !slices.Contains(allowedMimeTypes, p.MimeType) {
		return nil, fmt.Errorf("%w: недопустимый тип файла '%s'", ErrValidation, p.MimeType)
	}

	saved, err := s.blobs.Save(ctx, p.Reader, p.OriginalFilename, p.MimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// sort_order вычисляется в той же транзакции, что и вставка
	var m *model.Media
	err = s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		m, txErr = s.repo.WithTx(tx).Create(ctx, model.MediaCreate{
			Filename:         saved.Filename,
			OriginalFilename: p.OriginalFilename,
			URL:              saved.URL,
			BlobURL:          saved.BlobURL,
			MimeType:         p.MimeType,
			Size:             saved.Size,
			Width:            p.Width,
			Height:           p.Height,
			AltText:          p.AltText,
			Category:         p.Category,
			IsFeatured:       p.IsFeatured,
		})
		return txErr
	})
	if err != nil {
		// Запись не создана — убираем осиротевший блоб
		if delErr := s.blobs.Delete(ctx, saved.Filename); delErr != nil {
			s.logger.Warn("Не удалось удалить блоб после ошибки регистрации",
				slog.String("filename", saved.Filename),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("регистрация медиафайла: %w", err)
	}

	s.logger.Info("Медиафайл загружен",
		slog.String("id", m.ID.String()),
		slog.String("filename", m.Filename),
		slog.String("category", m.Category),
		slog.Int64("size", m.Size),
	)
	return m, nil
}

// Get возвращает медиафайл по ID.
func (s *MediaService) Get(ctx context.Context, id string) (*model.Media, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id обязателен", ErrValidation)
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение медиафайла: %w", err)
	}
	return m, nil
}

// List возвращает медиафайлы с опциональными фильтрами
// по категории и признаку featured.
func (s *MediaService) List(ctx context.Context, category string, featuredOnly bool) ([]*model.Media, error) {
	if category != "" && !slices.Contains(model.MediaCategories, category) {
		return nil, fmt.Errorf("%w: недопустимая категория '%s'", ErrValidation, category)
	}

	items, err := s.repo.List(ctx, category, featuredOnly)
	if err != nil {
		return nil, fmt.Errorf("получение списка медиафайлов: %w", err)
	}
	if items == nil {
		items = []*model.Media{}
	}
	return items, nil
}

// Update обновляет метаданные медиафайла (частичное обновление).
func (s *MediaService) Update(ctx context.Context, id string, p model.MediaUpdate) (*model.Media, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id обязателен", ErrValidation)
	}
	if p.Category != nil && !slices.Contains(model.MediaCategories, *p.Category) {
		return nil, fmt.Errorf("%w: недопустимая категория '%s'", ErrValidation, *p.Category)
	}
	if p.SortOrder != nil && *p.SortOrder < 0 {
		return nil, fmt.Errorf("%w: sort_order не может быть отрицательным", ErrValidation)
	}

	m, err := s.repo.Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление медиафайла: %w", err)
	}

	s.logger.Info("Метаданные медиафайла обновлены", slog.String("id", id))
	return m, nil
}

// Delete удаляет запись и блоб. Ошибка удаления блоба не откатывает
// удаление записи — блоб зачищается best-effort с записью в лог.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id обязателен", ErrValidation)
	}

	m, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление медиафайла: %w", err)
	}

	if err := s.blobs.Delete(ctx, m.Filename); err != nil {
		s.logger.Warn("Не удалось удалить блоб медиафайла",
			slog.String("id", id),
			slog.String("filename", m.Filename),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("Медиафайл удалён",
		slog.String("id", id),
		slog.String("filename", m.Filename),
	)
	return nil
}
