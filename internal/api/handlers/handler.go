// handler.go — общие вспомогательные функции обработчиков API.
// Маппинг ошибок сервисного слоя в HTTP-статусы, разбор JSON-тел.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "wedding-backend/internal/api/errors"
	"wedding-backend/internal/service"
)

// maxBodySize — максимальный размер JSON-тела запроса (1 MB).
const maxBodySize = 1 << 20

// decodeJSON разбирает JSON-тело запроса в dst.
// Неизвестные поля игнорируются, размер тела ограничен.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(dst)
}

// handleServiceError маппит ошибку сервисного слоя в HTTP-ответ.
// Неизвестные ошибки логируются и возвращаются как 500 без деталей.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "ресурс не найден")
	case errors.Is(err, service.ErrInvalidCredentials):
		apierrors.Unauthorized(w, "неверный email или пароль")
	case errors.Is(err, service.ErrInvalidToken):
		apierrors.Unauthorized(w, "недействительный токен")
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrStorage):
		logger.Error("Ошибка хранилища", slog.String("error", err.Error()))
		apierrors.InternalError(w, "ошибка хранилища файлов")
	default:
		logger.Error("Внутренняя ошибка", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка сервера")
	}
}

// idFromQuery извлекает обязательный параметр ?id= из запроса.
// При отсутствии пишет 400 и возвращает false.
func idFromQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		apierrors.ValidationError(w, "параметр id обязателен")
		return "", false
	}
	return id, true
}
