// auth.go — JWT middleware для аутентификации и авторизации.
// Извлекает Bearer token, проверяет его через AuthService
// и помещает claims в контекст запроса.
package middleware

import (
	"context"
	"net/http"
	"strings"

	apierrors "wedding-backend/internal/api/errors"
	"wedding-backend/internal/service"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeyClaims — извлечённые claims в контексте запроса.
const ContextKeyClaims contextKey = "jwt_claims"

// TokenVerifier — интерфейс проверки токена.
// Реализуется service.AuthService.
type TokenVerifier interface {
	Verify(tokenString string) (*service.TokenClaims, error)
}

// JWTAuth — middleware для JWT-аутентификации.
type JWTAuth struct {
	verifier TokenVerifier
}

// NewJWTAuth создаёт JWT middleware.
func NewJWTAuth(verifier TokenVerifier) *JWTAuth {
	return &JWTAuth{verifier: verifier}
}

// Middleware возвращает HTTP middleware для JWT-аутентификации.
// Извлекает Bearer token, валидирует подпись и срок действия,
// помещает claims в контекст. Любая причина отказа — 401.
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apierrors.Unauthorized(w, "Отсутствует заголовок Authorization")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				apierrors.Unauthorized(w, "Неверный формат Authorization: ожидается Bearer <token>")
				return
			}

			claims, err := j.verifier.Verify(parts[1])
			if err != nil {
				apierrors.Unauthorized(w, "Невалидный или просроченный токен")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole возвращает middleware, требующий указанную роль.
// Роль admin пропускается всегда.
// Должен использоваться ПОСЛЕ JWTAuth.Middleware().
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
				return
			}

			if !service.Authorize(claims.Role, role) {
				apierrors.Forbidden(w, "Недостаточно прав: требуется роль "+role)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// --- Context helpers ---

// ClaimsFromContext извлекает claims из контекста запроса.
// Возвращает nil, если claims не найдены.
func ClaimsFromContext(ctx context.Context) *service.TokenClaims {
	claims, _ := ctx.Value(ContextKeyClaims).(*service.TokenClaims)
	return claims
}

// UserIDFromContext извлекает ID пользователя из контекста запроса.
// Возвращает пустую строку, если claims не найдены.
func UserIDFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserID
}
