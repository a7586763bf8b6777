package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"woreda_portal/internal/domain/models"
	"woreda_portal/internal/repository"

	"github.com/patrickmn/go-cache"
)

const (
	albumsCacheTTL     = 30 * time.Second
	albumsCacheCleanup = time.Minute
)

type GalleryService struct {
	log   *slog.Logger
	repo  repository.GalleryRepository
	cache *cache.Cache
}

func NewGalleryService(log *slog.Logger, repo repository.GalleryRepository) *GalleryService {
	return &GalleryService{
		log:   log,
		repo:  repo,
		cache: cache.New(albumsCacheTTL, albumsCacheCleanup),
	}
}

// ListAlbums возвращает по одной сводке на каждую категорию,
// присутствующую в снимках региона (или всех регионов)
func (s *GalleryService) ListAlbums(ctx context.Context, regionID *int64) ([]models.AlbumSummary, error) {
	const op = "service.GalleryService.ListAlbums"
	log := s.log.With(
		slog.String("op", op),
	)

	key := albumsCacheKey(regionID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]models.AlbumSummary), nil
	}

	items, err := s.repo.ListItems(ctx, regionID)
	if err != nil {
		log.Error("failed to list gallery items", slog.Any("err", err))
		return nil, fmt.Errorf("failed to list gallery items: %w", err)
	}

	albums := BuildAlbums(items)
	s.cache.Set(key, albums, cache.DefaultExpiration)

	log.Info("albums listed", slog.Int("albums", len(albums)), slog.Int("items", len(items)))
	return albums, nil
}

// ListAlbumItems возвращает упорядоченный список элементов категории.
// Нулевой результат — пустой список, не ошибка.
func (s *GalleryService) ListAlbumItems(ctx context.Context, category string, regionID *int64) ([]models.GalleryItem, error) {
	const op = "service.GalleryService.ListAlbumItems"
	log := s.log.With(
		slog.String("op", op),
		slog.String("category", category),
	)

	items, err := s.repo.ListItemsByCategory(ctx, category, regionID)
	if err != nil {
		log.Error("failed to list album items", slog.Any("err", err))
		return nil, fmt.Errorf("failed to list album items: %w", err)
	}

	return items, nil
}

// Invalidate сбрасывает кэш каталога; вызывается после загрузки
func (s *GalleryService) Invalidate() {
	s.cache.Flush()
}

// BuildAlbums группирует снимки по категории: порядок альбомов — по
// первому вхождению категории, счётчик — размер группы, обложка —
// самый свежий элемент группы. Вход приходит упорядоченным по убыванию
// created_at, поэтому обложка это первый встреченный элемент; результат
// детерминирован для фиксированного набора.
func BuildAlbums(items []models.GalleryItem) []models.AlbumSummary {
	var (
		albums  []models.AlbumSummary
		indexBy = make(map[string]int)
	)

	for _, item := range items {
		idx, ok := indexBy[item.Category]
		if !ok {
			indexBy[item.Category] = len(albums)
			albums = append(albums, models.AlbumSummary{
				Category: item.Category,
				Count:    1,
				CoverURL: item.ImageURL,
			})
			continue
		}
		albums[idx].Count++
	}

	return albums
}

func albumsCacheKey(regionID *int64) string {
	if regionID == nil {
		return "albums:all"
	}
	return "albums:region:" + strconv.FormatInt(*regionID, 10)
}
