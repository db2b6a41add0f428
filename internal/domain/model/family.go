package model

import (
	"time"

	"github.com/google/uuid"
)

// Роли членов свадебной команды.
const (
	FamilyRoleBride      = "bride"
	FamilyRoleGroom      = "groom"
	FamilyRoleBridesmaid = "bridesmaid"
	FamilyRoleGroomsman  = "groomsman"
	FamilyRoleParent     = "parent"
	FamilyRoleFamily     = "family"
)

// FamilyRoles — допустимые роли членов семьи.
var FamilyRoles = []string{
	FamilyRoleBride,
	FamilyRoleGroom,
	FamilyRoleBridesmaid,
	FamilyRoleGroomsman,
	FamilyRoleParent,
	FamilyRoleFamily,
}

// FamilyMember — член семьи или участник свадебной команды.
type FamilyMember struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FamilyMemberCreate — параметры добавления члена семьи.
// При nil SortOrder значение вычисляется репозиторием внутри транзакции.
type FamilyMemberCreate struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	SortOrder   *int   `json:"sort_order"`
}

// FamilyMemberUpdate — параметры обновления. Nil-поля не изменяются.
type FamilyMemberUpdate struct {
	Name        *string `json:"name"`
	Role        *string `json:"role"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	SortOrder   *int    `json:"sort_order"`
}
