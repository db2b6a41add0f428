// Пакет config — загрузка и валидация конфигурации wedding-backend
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Бэкенды хранения бинарных файлов.
const (
	StorageBackendS3    = "s3"
	StorageBackendLocal = "local"
)

// Config содержит все параметры конфигурации wedding-backend.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Разрешённые Origin для CORS (через запятую)
	CORSOrigins []string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Аутентификация ---

	// Секрет для подписи токенов (HS256). Потеря секрета инвалидирует
	// все выданные токены — пользователи перелогиниваются.
	JWTSecret string
	// Время жизни токена (по умолчанию 168h = 7 суток)
	TokenTTL time.Duration

	// --- Хранилище медиафайлов ---

	// Бэкенд хранения: s3 или local
	StorageBackend string
	// Endpoint S3-совместимого хранилища (MinIO и т.п.)
	S3Endpoint string
	// Регион S3
	S3Region string
	// Имя бакета
	S3Bucket string
	// Access key
	S3AccessKey string
	// Secret key
	S3SecretKey string
	// Публичный базовый URL бакета (CDN или публичный endpoint)
	S3PublicURL string
	// Директория хранения файлов для local-бэкенда
	LocalDataDir string
	// Базовый URL, под которым сервер раздаёт локальные файлы
	LocalBaseURL string

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// WB_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("WB_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("WB_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("WB_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// WB_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("WB_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("WB_LOG_LEVEL: %w", err)
	}

	// WB_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("WB_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("WB_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// WB_CORS_ORIGINS — разрешённые Origin (по умолчанию * — API публичного сайта)
	cfg.CORSOrigins = parseCSV(getEnvDefault("WB_CORS_ORIGINS", "*"))

	// --- PostgreSQL ---

	// WB_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("WB_DB_HOST")
	if err != nil {
		return nil, err
	}

	// WB_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("WB_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("WB_DB_PORT: %w", err)
	}

	// WB_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("WB_DB_NAME")
	if err != nil {
		return nil, err
	}

	// WB_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("WB_DB_USER")
	if err != nil {
		return nil, err
	}

	// WB_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("WB_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// WB_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("WB_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("WB_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Аутентификация ---

	// WB_JWT_SECRET — обязательный
	cfg.JWTSecret, err = getEnvRequired("WB_JWT_SECRET")
	if err != nil {
		return nil, err
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("WB_JWT_SECRET: секрет короче 32 символов")
	}

	// WB_TOKEN_TTL — время жизни токена (по умолчанию 168h)
	cfg.TokenTTL, err = getEnvDuration("WB_TOKEN_TTL", 168*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("WB_TOKEN_TTL: %w", err)
	}

	// --- Хранилище медиафайлов ---

	// WB_STORAGE_BACKEND — бэкенд хранения (по умолчанию local)
	cfg.StorageBackend = getEnvDefault("WB_STORAGE_BACKEND", StorageBackendLocal)
	switch cfg.StorageBackend {
	case StorageBackendS3:
		// Для S3 обязательны endpoint, бакет и ключи
		if cfg.S3Endpoint, err = getEnvRequired("WB_S3_ENDPOINT"); err != nil {
			return nil, err
		}
		cfg.S3Region = getEnvDefault("WB_S3_REGION", "us-east-1")
		if cfg.S3Bucket, err = getEnvRequired("WB_S3_BUCKET"); err != nil {
			return nil, err
		}
		if cfg.S3AccessKey, err = getEnvRequired("WB_S3_ACCESS_KEY"); err != nil {
			return nil, err
		}
		if cfg.S3SecretKey, err = getEnvRequired("WB_S3_SECRET_KEY"); err != nil {
			return nil, err
		}
		// WB_S3_PUBLIC_URL — по умолчанию endpoint/bucket
		cfg.S3PublicURL = getEnvDefault("WB_S3_PUBLIC_URL",
			fmt.Sprintf("%s/%s", strings.TrimRight(cfg.S3Endpoint, "/"), cfg.S3Bucket))
		cfg.S3PublicURL = strings.TrimRight(cfg.S3PublicURL, "/")
	case StorageBackendLocal:
		cfg.LocalDataDir = getEnvDefault("WB_LOCAL_DATA_DIR", "./uploads")
		cfg.LocalBaseURL = strings.TrimRight(getEnvDefault("WB_LOCAL_BASE_URL", "/uploads"), "/")
	default:
		return nil, fmt.Errorf("WB_STORAGE_BACKEND: недопустимое значение %q, допустимые: s3, local", cfg.StorageBackend)
	}

	// --- Graceful shutdown ---

	// WB_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("WB_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("WB_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 168h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пробелы вокруг элементов убираются, пустые элементы игнорируются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
