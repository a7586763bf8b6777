package dto

import "woreda_portal/internal/domain/models"

// AlbumListResponse список сводок альбомов
type AlbumListResponse struct {
	Albums []models.AlbumSummary `json:"albums"`
	Total  int                   `json:"total"`
}

// AlbumItemsResponse упорядоченный список элементов одной категории
type AlbumItemsResponse struct {
	Category string               `json:"category"`
	Items    []models.GalleryItem `json:"items"`
	Count    int                  `json:"count"`
}
