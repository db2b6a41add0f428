// Утилита для создания пользователя-администратора.
// Используется при первичном развёртывании: API не предоставляет
// публичной регистрации, поэтому первый пользователь создаётся напрямую.
//
// Пример:
//
//	create-admin -email admin@example.com -password 'секретный-пароль'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"wedding-backend/internal/config"
	"wedding-backend/internal/database"
	"wedding-backend/internal/domain/model"
	"wedding-backend/internal/repository"
	"wedding-backend/internal/service"
)

func main() {
	email := flag.String("email", "", "email администратора")
	password := flag.String("password", "", "пароль (минимум 8 символов)")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "использование: create-admin -email <email> -password <пароль>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := config.SetupLogger(cfg)

	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	authSvc := service.NewAuthService(repository.NewUserRepository(pool), cfg.JWTSecret, cfg.TokenTTL, logger)

	user, err := authSvc.CreateUser(ctx, *email, *password, model.RoleAdmin)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			logger.Error("Пользователь с таким email уже существует", slog.String("email", *email))
		} else {
			logger.Error("Ошибка создания пользователя", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}

	logger.Info("Администратор создан",
		slog.String("id", user.ID.String()),
		slog.String("email", user.Email),
		slog.String("role", user.Role),
	)
}
