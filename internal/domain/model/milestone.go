package model

import (
	"time"

	"github.com/google/uuid"
)

// Milestone — веха истории пары на странице "Наша история".
// Date хранится как свободный текст ("Июнь 2019", "12.06.2024").
type Milestone struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	ImageURL    string    `json:"image_url,omitempty"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MilestoneCreate — параметры создания вехи.
// При nil SortOrder значение вычисляется репозиторием внутри транзакции.
type MilestoneCreate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	ImageURL    string `json:"image_url"`
	SortOrder   *int   `json:"sort_order"`
}

// MilestoneUpdate — параметры обновления вехи. Nil-поля не изменяются.
type MilestoneUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	ImageURL    *string `json:"image_url"`
	SortOrder   *int    `json:"sort_order"`
}
