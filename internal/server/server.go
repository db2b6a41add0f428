// Пакет server — HTTP-сервер с маршрутизацией и graceful shutdown.
// Без TLS — TLS termination на reverse proxy.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"wedding-backend/internal/api/handlers"
	"wedding-backend/internal/api/middleware"
	"wedding-backend/internal/config"
	"wedding-backend/internal/domain/model"
)

// Handlers — набор обработчиков API для сборки маршрутов.
type Handlers struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Content *handlers.ContentHandler
	Media   *handlers.MediaHandler
	Story   *handlers.StoryHandler
	Family  *handlers.FamilyHandler
}

// Server — HTTP-сервер backend.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// Чтение — публичное, мутации — за JWT middleware с ролью editor или admin.
func New(cfg *config.Config, logger *slog.Logger, h Handlers, jwtAuth *middleware.JWTAuth) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	// Служебные endpoints
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)

	requireAuth := jwtAuth.Middleware()
	requireEditor := middleware.RequireRole(model.RoleEditor)

	router.Route("/api/v1", func(r chi.Router) {
		// Аутентификация
		r.Post("/auth/login", h.Auth.Login)
		r.With(requireAuth).Get("/auth/verify", h.Auth.Verify)

		// Контент: чтение публичное, мутации — editor или admin
		r.Get("/content", h.Content.List)
		r.With(requireAuth, requireEditor).Post("/content", h.Content.Upsert)
		r.With(requireAuth, requireEditor).Put("/content", h.Content.Update)
		r.With(requireAuth, requireEditor).Delete("/content", h.Content.Delete)

		// Медиакаталог
		r.Get("/media", h.Media.List)
		r.With(requireAuth, requireEditor).Post("/media", h.Media.Upload)
		r.With(requireAuth, requireEditor).Put("/media", h.Media.Update)
		r.With(requireAuth, requireEditor).Delete("/media", h.Media.Delete)

		// Вехи истории
		r.Get("/story", h.Story.List)
		r.With(requireAuth, requireEditor).Post("/story", h.Story.Create)
		r.With(requireAuth, requireEditor).Put("/story", h.Story.Update)
		r.With(requireAuth, requireEditor).Delete("/story", h.Story.Delete)

		// Члены семьи
		r.Get("/family", h.Family.List)
		r.With(requireAuth, requireEditor).Post("/family", h.Family.Create)
		r.With(requireAuth, requireEditor).Put("/family", h.Family.Update)
		r.With(requireAuth, requireEditor).Delete("/family", h.Family.Delete)
	})

	// Статическая отдача загруженных файлов при локальном бэкенде хранения
	if cfg.StorageBackend == config.StorageBackendLocal {
		fileServer := http.StripPrefix(cfg.LocalBaseURL,
			http.FileServer(http.Dir(cfg.LocalDataDir)))
		router.Get(cfg.LocalBaseURL+"/*", fileServer.ServeHTTP)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
