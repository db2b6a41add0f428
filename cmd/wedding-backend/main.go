// Точка входа backend свадебного сайта.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// инициализирует хранилище блобов, сервисный слой и API handlers,
// запускает HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"wedding-backend/internal/api/handlers"
	"wedding-backend/internal/api/middleware"
	"wedding-backend/internal/config"
	"wedding-backend/internal/database"
	"wedding-backend/internal/repository"
	"wedding-backend/internal/server"
	"wedding-backend/internal/service"
	"wedding-backend/internal/storage"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Backend запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Хранилище блобов (S3 или локальный диск)
	blobs, err := storage.New(cfg)
	if err != nil {
		logger.Error("Ошибка инициализации хранилища блобов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Repositories
	txRunner := repository.NewTxRunner(pool)
	userRepo := repository.NewUserRepository(pool)
	contentRepo := repository.NewContentRepository(pool)
	mediaRepo := repository.NewMediaRepository(pool)
	milestoneRepo := repository.NewMilestoneRepository(pool)
	familyRepo := repository.NewFamilyRepository(pool)

	// 7. Services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, logger)
	contentSvc := service.NewContentService(contentRepo, logger)
	mediaSvc := service.NewMediaService(mediaRepo, txRunner, blobs, logger)
	storySvc := service.NewStoryService(milestoneRepo, txRunner, logger)
	familySvc := service.NewFamilyService(familyRepo, txRunner, logger)

	// 8. Readiness checker PostgreSQL
	pgChecker := database.NewReadinessChecker(pool)

	// 9. API handlers
	h := server.Handlers{
		Health:  handlers.NewHealthHandler(pgChecker),
		Auth:    handlers.NewAuthHandler(authSvc, logger),
		Content: handlers.NewContentHandler(contentSvc, logger),
		Media:   handlers.NewMediaHandler(mediaSvc, logger),
		Story:   handlers.NewStoryHandler(storySvc, logger),
		Family:  handlers.NewFamilyHandler(familySvc, logger),
	}

	// 10. JWT middleware
	jwtAuth := middleware.NewJWTAuth(authSvc)

	// 11. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, h, jwtAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Backend остановлен")
}
