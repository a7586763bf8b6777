package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"woreda_portal/internal/domain/models"
	"woreda_portal/internal/lib/logger/sl"
	"woreda_portal/internal/metrics"
	"woreda_portal/internal/repository"
	apperrors "woreda_portal/internal/storage"
	storage "woreda_portal/internal/storage/filestorage"
	"woreda_portal/internal/transport/http/dto"

	"github.com/google/uuid"
)

// Разрешённые расширения, сравнение без учёта регистра
var allowedExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".mp4":  {},
	".webm": {},
	".mov":  {},
}

// CatalogInvalidator сбрасывает кэш каталога после успешной загрузки
type CatalogInvalidator interface {
	Invalidate()
}

type UploadService struct {
	log         *slog.Logger
	repo        repository.MediaRepository
	fileStorage storage.FileStorage
	catalog     CatalogInvalidator
}

func NewUploadService(log *slog.Logger, repo repository.MediaRepository, fileStorage storage.FileStorage, catalog CatalogInvalidator) *UploadService {
	return &UploadService{
		log:         log,
		repo:        repo,
		fileStorage: fileStorage,
		catalog:     catalog,
	}
}

// CheckUploadPolicy проверяет имя файла и заявленный content-type.
// Проверки по содержимому файла нет — контракт повторяет поведение
// исходного портала, тип определяется только декларацией клиента.
func CheckUploadPolicy(filename, contentType string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return apperrors.ErrUnsupportedMediaType
	}

	switch {
	case strings.HasPrefix(contentType, "image/"),
		strings.HasPrefix(contentType, "video/"),
		contentType == "application/pdf",
		contentType == "application/msword",
		strings.HasPrefix(contentType, "application/vnd."):
		return nil
	default:
		return apperrors.ErrUnsupportedMediaType
	}
}

// UploadMedia принимает файл: политика типа и размера, генерация
// имени хранения, запись на диск и регистрация записи в базе.
// При отказе на любом шаге на диске не остаётся ни байта.
func (s *UploadService) UploadMedia(ctx context.Context, input dto.MediaUploadInput) (*models.Media, error) {
	const op = "upload_service.UploadMedia"

	log := s.log.With(
		slog.String("op", op),
		slog.String("filename", input.File.Filename),
	)

	log.Info("upload media")

	contentType := input.File.Header.Get("Content-Type")

	// Заявленный размер проверяем до чтения тела; потолок ещё раз
	// контролируется потоково при копировании
	if input.File.Size > s.fileStorage.MaxFileSize() {
		metrics.MediaUploadsTotal.WithLabelValues("too_large").Inc()
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrPayloadTooLarge)
	}

	if err := CheckUploadPolicy(input.File.Filename, contentType); err != nil {
		log.Warn("upload rejected by policy",
			slog.String("content_type", contentType))
		metrics.MediaUploadsTotal.WithLabelValues("unsupported").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	storedName := storage.NewStoredName(input.File.Filename)

	filePath, fileSize, err := s.fileStorage.Save(ctx, input.File, storedName)
	if err != nil {
		log.Error("failed to save file", sl.Err(err))
		metrics.MediaUploadsTotal.WithLabelValues("storage_error").Inc()

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	kind := models.KindFromContentType(contentType)

	// Миниатюра для изображений, сбой не прерывает загрузку
	var thumbPath string
	if kind == models.MediaKindImage {
		thumbPath = s.renderThumbnail(ctx, log, input, storedName)
	}

	media := &models.Media{
		ID:               uuid.New(),
		UploaderID:       input.UploaderID,
		CreatedAt:        time.Now().UTC(),
		MediaKind:        kind,
		OriginalFilename: input.File.Filename,
		GeneratedName:    storedName,
		Extension:        strings.ToLower(strings.TrimPrefix(filepath.Ext(input.File.Filename), ".")),
		StoragePath:      filePath,
		ThumbnailPath:    thumbPath,
		FileSize:         fileSize,
		MimeType:         contentType,
		Title:            input.Title,
		Category:         input.Category,
		RegionID:         input.RegionID,
	}

	if err := media.Validate(); err != nil {
		s.cleanup(ctx, filePath, thumbPath)
		log.Error("media validation failed", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	createdMedia, err := s.repo.CreateMedia(ctx, media)
	if err != nil {
		// Удаляем файл если не удалось сохранить в БД
		s.cleanup(ctx, filePath, thumbPath)
		log.Error("failed to save media to database", sl.Err(err))
		metrics.MediaUploadsTotal.WithLabelValues("db_error").Inc()

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.catalog != nil {
		s.catalog.Invalidate()
	}

	metrics.MediaUploadsTotal.WithLabelValues("accepted").Inc()
	log.Info("media uploaded",
		slog.String("media_id", createdMedia.ID.String()),
		slog.Int64("file_size", createdMedia.FileSize))

	return createdMedia, nil
}

func (s *UploadService) renderThumbnail(ctx context.Context, log *slog.Logger, input dto.MediaUploadInput, storedName string) string {
	src, err := input.File.Open()
	if err != nil {
		log.Warn("failed to reopen file for thumbnail", sl.Err(err))
		return ""
	}
	defer src.Close()

	data, err := storage.RenderThumbnail(src)
	if err != nil {
		log.Warn("failed to render thumbnail", sl.Err(err))
		return ""
	}

	thumbPath, err := s.fileStorage.SaveBytes(ctx, storage.ThumbName(storedName), data)
	if err != nil {
		log.Warn("failed to save thumbnail", sl.Err(err))
		return ""
	}

	return thumbPath
}

func (s *UploadService) cleanup(ctx context.Context, filePath, thumbPath string) {
	_ = s.fileStorage.Delete(ctx, filePath)
	if thumbPath != "" {
		_ = s.fileStorage.Delete(ctx, thumbPath)
	}
}
