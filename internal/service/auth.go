// auth.go — сервис аутентификации: вход по email/паролю,
// выпуск и проверка JWT (HS256).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"wedding-backend/internal/domain/model"
	"wedding-backend/internal/repository"
)

// bcryptCost — стоимость хэширования паролей.
const bcryptCost = 12

// TokenClaims — полезная нагрузка JWT.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// LoginResult — результат успешного входа.
type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AuthService — бизнес-логика аутентификации.
type AuthService struct {
	repo      repository.UserRepository
	secret    []byte
	tokenTTL  time.Duration
	dummyHash []byte
	logger    *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo repository.UserRepository, secret string, tokenTTL time.Duration, logger *slog.Logger) *AuthService {
	// Фиктивный хэш для выравнивания времени ответа при
	// несуществующем email: bcrypt выполняется в обеих ветках.
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcryptCost)

	return &AuthService{
		repo:      repo,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		dummyHash: dummyHash,
		logger:    logger.With(slog.String("component", "auth_service")),
	}
}

// Login проверяет email и пароль, при успехе выпускает JWT.
// Email сравнивается точно, с учётом регистра.
// Неизвестный email и неверный пароль неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email и password обязательны", ErrValidation)
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Сравнение с фиктивным хэшем — время ответа как при неверном пароле
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Неудачная попытка входа", slog.String("email", email))
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, fmt.Errorf("выпуск токена: %w", err)
	}

	s.logger.Info("Пользователь вошёл в систему",
		slog.String("user_id", u.ID.String()),
		slog.String("email", u.Email),
	)
	return &LoginResult{Token: token, User: u}, nil
}

// issueToken выпускает подписанный HS256 JWT со сроком tokenTTL.
func (s *AuthService) issueToken(u *model.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: u.ID.String(),
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			Subject:   u.ID.String(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify проверяет подпись и срок действия токена.
// Любая причина отказа (подпись, срок, формат) — ErrInvalidToken.
func (s *AuthService) Verify(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authorize проверяет, достаточно ли роли для требуемой.
// Пустая требуемая роль означает отсутствие ограничения;
// роль admin авторизует любые операции.
func Authorize(userRole, requiredRole string) bool {
	if requiredRole == "" || userRole == model.RoleAdmin {
		return true
	}
	return userRole == requiredRole
}

// CreateUser создаёт пользователя с хэшированием пароля.
// Email сохраняется как введён, без нормализации регистра.
// Используется утилитой начальной настройки.
func (s *AuthService) CreateUser(ctx context.Context, email, password, role string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: некорректный email", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: пароль короче 8 символов", ErrValidation)
	}
	if role == "" {
		role = model.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}

	u, err := s.repo.Create(ctx, email, string(hash), role)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: пользователь '%s' уже существует", ErrConflict, email)
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	s.logger.Info("Пользователь создан",
		slog.String("user_id", u.ID.String()),
		slog.String("email", u.Email),
		slog.String("role", u.Role),
	)
	return u, nil
}
