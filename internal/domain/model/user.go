// Пакет model — доменные модели сервиса.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей. Admin авторизует любые операции,
// editor — только операции своей роли.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User — учётная запись администратора сайта.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
