package app

import (
	"context"
	"log/slog"

	"woreda_portal/internal/config"
	"woreda_portal/internal/repository"
	authservice "woreda_portal/internal/services/auth_service"
	galleryservice "woreda_portal/internal/services/gallery_service"
	uploadservice "woreda_portal/internal/services/upload_service"
	filestorage "woreda_portal/internal/storage/filestorage"
	"woreda_portal/internal/storage/postgresql"
	redisapp "woreda_portal/internal/storage/redis"
	httprouters "woreda_portal/internal/transport/http"

	httpapp "woreda_portal/internal/app/http"
)

type App struct {
	HTTPServer *httpapp.Server
	Postgres   *postgresql.Storage
	Redis      *redisapp.Client
}

func New(log *slog.Logger, cfg *config.Config) *App {
	pg, err := postgresql.New(context.Background(), cfg.DSN)
	if err != nil {
		panic(err)
	}

	redisClient := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL, cfg.FileStorage.MaxSize)
	if err != nil {
		panic(err)
	}

	userRepo := repository.NewUserRepository(pg.DB)
	sessionRepo := repository.NewRedisSessionRepo(redisClient)
	mediaRepo := repository.NewMediaRepository(pg.DB)
	galleryRepo := repository.NewGalleryRepo(pg.DB, cfg.FileStorage.BaseURL)

	authService := authservice.NewAuthService(log, userRepo, sessionRepo, cfg.TokenSecret)
	galleryService := galleryservice.NewGalleryService(log, galleryRepo)
	uploadService := uploadservice.NewUploadService(log, mediaRepo, fileStorage, galleryService)

	routers := httprouters.NewRouter(log, authService, uploadService, galleryService, mediaRepo)

	server := httpapp.New(log, cfg, routers)

	return &App{
		HTTPServer: server,
		Postgres:   pg,
		Redis:      redisClient,
	}
}

func (a *App) Stop() {
	_ = a.HTTPServer.Stop()
	a.Postgres.Stop()
	_ = a.Redis.Close()
}
