package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MediaKind string

const (
	MediaKindImage    MediaKind = "image"
	MediaKindVideo    MediaKind = "video"
	MediaKindDocument MediaKind = "document"
)

// Media представляет загруженный файл в хранилище портала.
// Запись неизменяема после создания, удаляется только административно.
type Media struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UploaderID       uuid.UUID `json:"uploader_id" db:"uploader_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	MediaKind        MediaKind `json:"media_kind" db:"media_kind"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	GeneratedName    string    `json:"generated_name" db:"generated_name"`
	Extension        string    `json:"extension" db:"extension"`
	StoragePath      string    `json:"storage_path" db:"storage_path"`
	ThumbnailPath    string    `json:"thumbnail_path,omitempty" db:"thumbnail_path"`
	FileSize         int64     `json:"file_size" db:"file_size"`
	MimeType         string    `json:"mime_type,omitempty" db:"mime_type"`
	Title            string    `json:"title" db:"title"`
	Category         string    `json:"category" db:"category"`
	RegionID         *int64    `json:"region_id,omitempty" db:"region_id"`
}

// KindFromContentType выводит класс медиа из заявленного content-type.
// Всё, что не изображение и не видео, считается документом.
func KindFromContentType(contentType string) MediaKind {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return MediaKindImage
	case strings.HasPrefix(contentType, "video/"):
		return MediaKindVideo
	default:
		return MediaKindDocument
	}
}

// Validate проверяет корректность записи медиафайла
func (m *Media) Validate() error {
	var validationErrors []string

	if m.UploaderID == uuid.Nil {
		validationErrors = append(validationErrors, "uploader ID is required")
	}
	if m.OriginalFilename == "" {
		validationErrors = append(validationErrors, "original filename is required")
	}
	if len(m.OriginalFilename) > 255 {
		validationErrors = append(validationErrors, "original filename must be 255 characters or less")
	}
	if m.GeneratedName == "" {
		validationErrors = append(validationErrors, "generated name is required")
	}
	if m.StoragePath == "" {
		validationErrors = append(validationErrors, "storage path is required")
	}
	if m.FileSize <= 0 {
		validationErrors = append(validationErrors, "file size must be positive")
	}

	switch m.MediaKind {
	case MediaKindImage, MediaKindVideo, MediaKindDocument:
	default:
		validKinds := []string{
			string(MediaKindImage),
			string(MediaKindVideo),
			string(MediaKindDocument),
		}
		validationErrors = append(validationErrors,
			fmt.Sprintf("invalid media kind '%s', must be one of: %v",
				m.MediaKind, validKinds))
	}

	if m.MimeType != "" && len(m.MimeType) > 100 {
		validationErrors = append(validationErrors, "mime type must be 100 characters or less")
	}

	if len(validationErrors) > 0 {
		return &MediaValidationError{
			Errors: validationErrors,
		}
	}

	return nil
}

// MediaValidationError кастомный тип ошибки для валидации
type MediaValidationError struct {
	Errors []string
}

func (e *MediaValidationError) Error() string {
	return fmt.Sprintf("media validation failed: %s", strings.Join(e.Errors, "; "))
}

// IsMediaValidationError проверяет, является ли ошибка ошибкой валидации
func IsMediaValidationError(err error) bool {
	_, ok := err.(*MediaValidationError)
	return ok
}
