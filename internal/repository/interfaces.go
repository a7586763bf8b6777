package repository

import (
	"context"
	"time"

	"woreda_portal/internal/domain/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	UserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserById(ctx context.Context, userID uuid.UUID) (models.User, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error
}

type SessionRepository interface {
	SaveRefreshToken(ctx context.Context, userID, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, userID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID, token string) error
	DeleteAllUserTokens(ctx context.Context, userID string) error
}

type MediaRepository interface {
	CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
}

type GalleryRepository interface {
	ListItems(ctx context.Context, regionID *int64) ([]models.GalleryItem, error)
	ListItemsByCategory(ctx context.Context, category string, regionID *int64) ([]models.GalleryItem, error)
}
