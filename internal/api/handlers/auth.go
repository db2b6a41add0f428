// auth.go — обработчики аутентификации: вход и проверка токена.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "wedding-backend/internal/api/errors"
	"wedding-backend/internal/api/middleware"
	"wedding-backend/internal/service"
)

// AuthHandler — обработчик endpoints аутентификации.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler создаёт обработчик аутентификации.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// loginRequest — тело запроса POST /api/v1/auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login обрабатывает POST /api/v1/auth/login.
// При успехе возвращает JWT и данные пользователя.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "некорректное JSON-тело запроса")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, res)
}

// verifyResponse — тело ответа GET /api/v1/auth/verify.
type verifyResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Verify обрабатывает GET /api/v1/auth/verify.
// Токен уже проверен JWT middleware — возвращаем claims из контекста.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "недействительный токен")
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, verifyResponse{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	})
}
