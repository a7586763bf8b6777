package repository

import (
	"context"
	"errors"
	"fmt"

	"woreda_portal/internal/domain/models"
	"woreda_portal/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type MediaRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewMediaRepository(db *pgxpool.Pool) *MediaRepo {
	return &MediaRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *MediaRepo) CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error) {
	const op = "repository.media_repository.CreateMedia"

	query, args, err := r.sb.Insert("media").
		Columns(
			"id",
			"uploader_id",
			"created_at",
			"media_kind",
			"original_filename",
			"generated_name",
			"extension",
			"storage_path",
			"thumbnail_path",
			"file_size",
			"mime_type",
			"title",
			"category",
			"region_id",
		).
		Values(
			media.ID,
			media.UploaderID,
			media.CreatedAt,
			media.MediaKind,
			media.OriginalFilename,
			media.GeneratedName,
			media.Extension,
			media.StoragePath,
			media.ThumbnailPath,
			media.FileSize,
			media.MimeType,
			media.Title,
			media.Category,
			media.RegionID,
		).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query:%s %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)

	var createdMedia models.Media
	err = row.Scan(
		&createdMedia.ID,
		&createdMedia.UploaderID,
		&createdMedia.CreatedAt,
		&createdMedia.MediaKind,
		&createdMedia.OriginalFilename,
		&createdMedia.GeneratedName,
		&createdMedia.Extension,
		&createdMedia.StoragePath,
		&createdMedia.ThumbnailPath,
		&createdMedia.FileSize,
		&createdMedia.MimeType,
		&createdMedia.Title,
		&createdMedia.Category,
		&createdMedia.RegionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create media: %s %w", op, err)
	}

	return &createdMedia, nil
}

func (r *MediaRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	const op = "repository.media_repository.FindByID"

	query, args, err := r.sb.Select("*").
		From("media").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %s %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)

	var media models.Media
	err = row.Scan(
		&media.ID,
		&media.UploaderID,
		&media.CreatedAt,
		&media.MediaKind,
		&media.OriginalFilename,
		&media.GeneratedName,
		&media.Extension,
		&media.StoragePath,
		&media.ThumbnailPath,
		&media.FileSize,
		&media.MimeType,
		&media.Title,
		&media.Category,
		&media.RegionID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to get media: %s %w", op, err)
	}

	return &media, nil
}
