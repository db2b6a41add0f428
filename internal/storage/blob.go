// Пакет storage — бэкенды хранения медиафайлов.
// Поддерживаются два бэкенда: локальный диск и S3-совместимое
// объектное хранилище. Выбор — через конфигурацию.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"wedding-backend/internal/config"
)

// SaveResult — результат сохранения блоба.
type SaveResult struct {
	// Filename — сгенерированное имя (ключ) блоба в хранилище
	Filename string
	// URL — публичный URL для отдачи клиентам
	URL string
	// BlobURL — внутренний адрес блоба для операций удаления
	BlobURL string
	// Size — размер записанных данных в байтах
	Size int64
}

// BlobStore — интерфейс бэкенда хранения блобов.
type BlobStore interface {
	// Save сохраняет содержимое reader под сгенерированным именем.
	Save(ctx context.Context, reader io.Reader, originalFilename, contentType string) (*SaveResult, error)
	// Delete удаляет блоб. Отсутствующий блоб — не ошибка.
	Delete(ctx context.Context, filename string) error
}

// New создаёт BlobStore согласно конфигурации.
func New(cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		return NewS3Store(cfg)
	case config.StorageBackendLocal:
		return NewLocalStore(cfg.LocalDataDir, cfg.LocalBaseURL)
	default:
		return nil, fmt.Errorf("неизвестный бэкенд хранения: %s", cfg.StorageBackend)
	}
}

// generateStorageName генерирует имя блоба для хранения.
// Формат: {name}_{timestamp}_{uuid}.{ext}
// Пример: photo_20260901150405_a1b2c3d4.jpg
func generateStorageName(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	name := strings.TrimSuffix(filepath.Base(originalFilename), ext)

	name = sanitize(name)
	if len(name) > 50 {
		name = name[:50]
	}

	ts := time.Now().UTC().Format("20060102150405")
	uid := uuid.New().String()[:8] // Короткий UUID для уникальности

	if ext != "" {
		return fmt.Sprintf("%s_%s_%s%s", name, ts, uid, strings.ToLower(ext))
	}
	return fmt.Sprintf("%s_%s_%s", name, ts, uid)
}

// sanitize убирает небезопасные символы из строки для использования в имени файла.
// Оставляет только буквы, цифры, дефис и подчёркивание.
func sanitize(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' ||
			(r >= 0x0400 && r <= 0x04FF) { // Кириллица
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "file"
	}
	return result.String()
}
