package model

import (
	"time"

	"github.com/google/uuid"
)

// Категории медиафайлов.
const (
	MediaCategoryHero    = "hero"
	MediaCategoryGallery = "gallery"
	MediaCategoryStory   = "story"
	MediaCategoryVenue   = "venue"
	MediaCategoryCouple  = "couple"
	MediaCategoryFamily  = "family"
)

// MediaCategories — допустимые категории медиафайлов.
var MediaCategories = []string{
	MediaCategoryHero,
	MediaCategoryGallery,
	MediaCategoryStory,
	MediaCategoryVenue,
	MediaCategoryCouple,
	MediaCategoryFamily,
}

// Media — запись о загруженном медиафайле.
// Width и Height заполняются для изображений, для видео — nil.
type Media struct {
	ID               uuid.UUID `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	URL              string    `json:"url"`
	BlobURL          string    `json:"blob_url"`
	MimeType         string    `json:"mime_type"`
	Size             int64     `json:"size"`
	Width            *int      `json:"width,omitempty"`
	Height           *int      `json:"height,omitempty"`
	AltText          string    `json:"alt_text,omitempty"`
	Category         string    `json:"category"`
	SortOrder        int       `json:"sort_order"`
	IsFeatured       bool      `json:"is_featured"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MediaCreate — параметры регистрации загруженного файла.
// SortOrder вычисляется репозиторием внутри транзакции.
type MediaCreate struct {
	Filename         string
	OriginalFilename string
	URL              string
	BlobURL          string
	MimeType         string
	Size             int64
	Width            *int
	Height           *int
	AltText          string
	Category         string
	IsFeatured       bool
}

// MediaUpdate — параметры обновления метаданных медиафайла.
// Nil-поля не изменяются.
type MediaUpdate struct {
	AltText    *string `json:"alt_text"`
	Category   *string `json:"category"`
	IsFeatured *bool   `json:"is_featured"`
	SortOrder  *int    `json:"sort_order"`
}
