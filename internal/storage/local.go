package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore — хранение блобов на локальном диске.
// Файлы отдаются клиентам через статический маршрут сервера.
type LocalStore struct {
	// dataDir — корневая директория хранения файлов
	dataDir string
	// baseURL — префикс публичных URL (например /uploads)
	baseURL string
}

// NewLocalStore создаёт LocalStore. Создаёт директорию данных,
// если она не существует.
func NewLocalStore(dataDir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", dataDir, err)
	}

	return &LocalStore{
		dataDir: dataDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save записывает данные из reader на диск.
// Паттерн: temp файл → запись → fsync → atomic rename.
// При ошибке temp файл удаляется.
func (s *LocalStore) Save(ctx context.Context, reader io.Reader, originalFilename, contentType string) (*SaveResult, error) {
	storageName := generateStorageName(originalFilename)
	fullPath := filepath.Join(s.dataDir, storageName)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	// fsync для гарантии записи на диск
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	// Атомарный rename
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	url := s.baseURL + "/" + storageName
	return &SaveResult{
		Filename: storageName,
		URL:      url,
		BlobURL:  url,
		Size:     size,
	}, nil
}

// Delete удаляет блоб с диска. Отсутствующий файл — не ошибка.
func (s *LocalStore) Delete(ctx context.Context, filename string) error {
	// Защита от выхода за пределы dataDir
	fullPath := filepath.Join(s.dataDir, filepath.Base(filename))

	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", filename, err)
	}
	return nil
}

// DataDir возвращает путь к директории данных.
func (s *LocalStore) DataDir() string {
	return s.dataDir
}
