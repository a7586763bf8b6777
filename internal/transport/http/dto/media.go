package dto

import (
	"mime/multipart"

	"github.com/google/uuid"
)

type MediaUploadInput struct {
	UploaderID uuid.UUID             `json:"uploader_id" validate:"required"`
	File       *multipart.FileHeader `json:"-" form:"file" validate:"required"`
	Title      string                `json:"title" validate:"max=255"`
	Category   string                `json:"category" validate:"max=100"`
	RegionID   *int64                `json:"region_id,omitempty" validate:"omitempty,min=1"`
}
