package models

import (
	"time"

	"github.com/google/uuid"
)

// GalleryItem представляет один элемент фотогалереи.
// Источник данных — записи медиа с заполненной категорией,
// Category сравнивается как точная строка.
type GalleryItem struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	ThumbURL  string    `json:"thumb_url,omitempty"`
	Category  string    `json:"category"`
	RegionID  *int64    `json:"region_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AlbumSummary агрегат по одной категории. Не хранится в базе,
// пересчитывается на каждый запрос каталога.
type AlbumSummary struct {
	Category string `json:"category"`
	Count    int    `json:"count"`               // Всегда >= 1, пустые альбомы не представлены
	CoverURL string `json:"cover_url,omitempty"` // URL самого свежего элемента группы
}
