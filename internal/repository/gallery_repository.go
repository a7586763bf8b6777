package repository

import (
	"context"
	"fmt"
	"strings"

	"woreda_portal/internal/domain/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"
)

// GalleryRepo читает элементы галереи из таблицы media.
// Порядок всегда детерминирован: свежие записи первыми,
// при равном created_at решает id.
type GalleryRepo struct {
	db      *pgxpool.Pool
	sb      sq.StatementBuilderType
	baseURL string
}

func NewGalleryRepo(db *pgxpool.Pool, baseURL string) *GalleryRepo {
	return &GalleryRepo{
		db:      db,
		sb:      sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ListItems возвращает все элементы галереи, при необходимости
// ограниченные одним регионом (woreda)
func (r *GalleryRepo) ListItems(ctx context.Context, regionID *int64) ([]models.GalleryItem, error) {
	const op = "repository.GalleryRepo.ListItems"

	builder := r.itemsQuery()
	if regionID != nil {
		builder = builder.Where(sq.Eq{"region_id": *regionID})
	}

	return r.queryItems(ctx, op, builder)
}

// ListItemsByCategory возвращает упорядоченный список элементов одной
// категории. Пустая категория — пустой результат, не ошибка.
func (r *GalleryRepo) ListItemsByCategory(ctx context.Context, category string, regionID *int64) ([]models.GalleryItem, error) {
	const op = "repository.GalleryRepo.ListItemsByCategory"

	builder := r.itemsQuery().Where(sq.Eq{"category": category})
	if regionID != nil {
		builder = builder.Where(sq.Eq{"region_id": *regionID})
	}

	return r.queryItems(ctx, op, builder)
}

func (r *GalleryRepo) itemsQuery() sq.SelectBuilder {
	return r.sb.Select(
		"id",
		"title",
		"storage_path",
		"thumbnail_path",
		"category",
		"region_id",
		"created_at",
	).
		From("media").
		Where(sq.Eq{"media_kind": models.MediaKindImage}).
		Where(sq.NotEq{"category": ""}).
		OrderBy("created_at DESC", "id DESC")
}

func (r *GalleryRepo) queryItems(ctx context.Context, op string, builder sq.SelectBuilder) ([]models.GalleryItem, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.GalleryItem
	for rows.Next() {
		var (
			item        models.GalleryItem
			storagePath string
			thumbPath   string
		)
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&storagePath,
			&thumbPath,
			&item.Category,
			&item.RegionID,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		item.ImageURL = r.baseURL + "/" + storagePath
		if thumbPath != "" {
			item.ThumbURL = r.baseURL + "/" + thumbPath
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}
