package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContentItem — единица редактируемого контента сайта.
// Значение — произвольный JSON (имена пары, адрес площадки, тексты hero).
// Уникальность определяется парой (Section, ContentKey).
type ContentItem struct {
	ID           uuid.UUID       `json:"id"`
	Section      string          `json:"section"`
	ContentKey   string          `json:"content_key"`
	ContentValue json.RawMessage `json:"content_value"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ContentUpsert — параметры создания или обновления контента.
type ContentUpsert struct {
	Section      string          `json:"section"`
	ContentKey   string          `json:"content_key"`
	ContentValue json.RawMessage `json:"content_value"`
}
