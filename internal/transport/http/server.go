package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"woreda_portal/internal/domain/models"
	"woreda_portal/internal/lib/logger/sl"
	appmw "woreda_portal/internal/middleware"
	apperrors "woreda_portal/internal/storage"
	"woreda_portal/internal/transport/http/dto"
	"woreda_portal/internal/transport/http/dto/request"
	"woreda_portal/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	_ "woreda_portal/docs"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID string) error
}

type UploadService interface {
	UploadMedia(ctx context.Context, input dto.MediaUploadInput) (*models.Media, error)
}

type GalleryService interface {
	ListAlbums(ctx context.Context, regionID *int64) ([]models.AlbumSummary, error)
	ListAlbumItems(ctx context.Context, category string, regionID *int64) ([]models.GalleryItem, error)
}

type MediaProvider interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
}

type Routers struct {
	log            *slog.Logger
	AuthService    AuthService
	UploadService  UploadService
	GalleryService GalleryService
	MediaProvider  MediaProvider
}

func NewRouter(log *slog.Logger, authService AuthService, uploadService UploadService, galleryService GalleryService, mediaProvider MediaProvider) *Routers {
	return &Routers{
		log:            log,
		AuthService:    authService,
		UploadService:  uploadService,
		GalleryService: galleryService,
		MediaProvider:  mediaProvider,
	}
}

// Login godoc
// @Summary Аутентификация администратора
// @Description Вход по имени пользователя и паролю. Возвращает пару токенов и кладёт access-токен в cookie-сессию.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Данные для входа"
// @Success 200 {object} response.Response{data=models.TokenPair} "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} response.ErrorResponse "Ошибка аутентификации"
// @Router /api/v1/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", slog.String("username", req.Username))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	tokens, err := r.AuthService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		log.Warn("login failed", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	// Явный жизненный цикл учётных данных: значение кладётся в сессию
	// на входе и чистится на выходе
	if err := r.saveSessionToken(c, tokens.AccessToken); err != nil {
		log.Error("failed to save session", sl.Err(err))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(tokens))
}

// Refresh godoc
// @Summary Обмен refresh-токена на новую пару
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RefreshRequest true "Действующий refresh-токен"
// @Success 200 {object} response.Response{data=models.TokenPair}
// @Failure 401 {object} response.ErrorResponse "Недействительный refresh-токен"
// @Router /api/v1/refresh [post]
func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.RefreshRequest

	if err := c.Bind(&req); err != nil {
		log.Error("validation bind", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	newTokens, err := r.AuthService.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		log.Error("error refresh tokens", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	if err := r.saveSessionToken(c, newTokens.AccessToken); err != nil {
		log.Error("failed to save session", sl.Err(err))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(newTokens))
}

// Logout godoc
// @Summary Выход: отзыв refresh-токенов и очистка сессии
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	log := r.log.With(
		slog.String("op", op),
	)

	var req struct {
		UserID string `json:"user_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("validation bind", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if req.UserID != "" {
		if err := r.AuthService.Logout(c.Request().Context(), req.UserID); err != nil {
			log.Error("failed to revoke tokens", sl.Err(err))
		}
	}

	if err := r.clearSessionToken(c); err != nil {
		log.Error("failed to clear session", sl.Err(err))
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "logged out"})
}

// UploadMedia godoc
// @Summary Загрузка файла в хранилище портала
// @Description Принимает один файл формой. Допустимы jpeg/jpg/png/gif/pdf/doc/docx/mp4/webm/mov до 20 MiB. В ответе относительный путь хранения.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл для загрузки"
// @Param uploader_id formData string true "UUID загружающего администратора" format(uuid)
// @Param title formData string false "Подпись"
// @Param category formData string false "Категория (альбом) для фотогалереи"
// @Param region_id formData integer false "Идентификатор региона (woreda)"
// @Success 201 {object} models.Media "Созданная запись медиа"
// @Failure 400 {object} response.ErrorResponse "Некорректные входные данные"
// @Failure 413 {object} response.ErrorResponse "Превышен потолок размера"
// @Failure 415 {object} response.ErrorResponse "Недопустимый тип файла"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Security ApiKeyAuth
// @Router /api/v1/media/upload [post]
func (r *Routers) UploadMedia(c echo.Context) error {
	const op = "http.routers.UploadMedia"

	log := r.log.With(
		slog.String("op", op),
	)

	startTime := time.Now()
	defer func() {
		log.Info("Request completed",
			"duration", time.Since(startTime))
	}()

	file, err := c.FormFile("file")
	if err != nil {
		log.Warn("Empty file in request",
			"error", err.Error())
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "File is required"))
	}

	log.Debug("Got file for upload",
		"filename", file.Filename,
		"size", file.Size,
		"mime_type", file.Header.Get("Content-Type"))

	input, err := r.parseMediaUploadInput(c)
	if err != nil {
		log.Warn("Error parsing data",
			"error", err.Error(),
			"uploader_id", c.FormValue("uploader_id"))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}
	input.File = file

	media, err := r.UploadService.UploadMedia(c.Request().Context(), *input)
	if err != nil {
		log.Error("Error upload media",
			"error", err.Error(),
			"filename", file.Filename)
		return r.uploadError(c, err)
	}

	log.Info("Upload successfull",
		"media_id", media.ID,
		"storage_path", media.StoragePath,
		"file_size", media.FileSize,
		"duration", time.Since(startTime))

	return c.JSON(http.StatusCreated, media)
}

// uploadError переводит таксономию ошибок приёма в HTTP-статусы
func (r *Routers) uploadError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrUnsupportedMediaType):
		return c.JSON(http.StatusUnsupportedMediaType, response.ErrUnsupportedMedia)
	case errors.Is(err, apperrors.ErrPayloadTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, response.ErrPayloadTooLarge)
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, response.ErrStorageUnavailable)
	default:
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}
}

// GetMedia godoc
// @Summary Запись медиа по идентификатору
// @Tags media
// @Produce json
// @Param id path string true "UUID записи" format(uuid)
// @Success 200 {object} models.Media
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/media/{id} [get]
func (r *Routers) GetMedia(c echo.Context) error {
	const op = "http.routers.GetMedia"

	log := r.log.With(
		slog.String("op", op),
	)

	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Error("error parse uuid", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid media ID format"))
	}

	media, err := r.MediaProvider.FindByID(c.Request().Context(), mediaID)
	if err != nil {
		if errors.Is(err, apperrors.ErrMediaNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrorResponseWithDetails("not_found", "media not found"))
		}
		log.Error("failed to get media", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Status: "error", Error: "internal_error"})
	}

	return c.JSON(http.StatusOK, media)
}

// ListAlbums godoc
// @Summary Каталог фотоальбомов
// @Description По одной сводке на категорию: количество снимков и обложка (самый свежий снимок). Пустые альбомы не представлены.
// @Tags gallery
// @Produce json
// @Param region_id query integer false "Ограничить одним регионом (woreda)"
// @Success 200 {object} dto.AlbumListResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/gallery/albums [get]
func (r *Routers) ListAlbums(c echo.Context) error {
	const op = "http.routers.ListAlbums"

	log := r.log.With(
		slog.String("op", op),
	)

	regionID, err := parseRegionID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid region_id"))
	}

	albums, err := r.GalleryService.ListAlbums(c.Request().Context(), regionID)
	if err != nil {
		log.Error("failed to list albums", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Status: "error", Error: "internal_error"})
	}

	return c.JSON(http.StatusOK, dto.AlbumListResponse{
		Albums: albums,
		Total:  len(albums),
	})
}

// ListAlbumItems godoc
// @Summary Снимки одной категории в порядке убывания даты
// @Description Пустой альбом — пустой список со статусом 200, не ошибка.
// @Tags gallery
// @Produce json
// @Param category path string true "Название категории (точное совпадение)"
// @Param region_id query integer false "Ограничить одним регионом (woreda)"
// @Success 200 {object} dto.AlbumItemsResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/gallery/albums/{category}/items [get]
func (r *Routers) ListAlbumItems(c echo.Context) error {
	const op = "http.routers.ListAlbumItems"

	log := r.log.With(
		slog.String("op", op),
	)

	category := c.Param("category")

	regionID, err := parseRegionID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid region_id"))
	}

	items, err := r.GalleryService.ListAlbumItems(c.Request().Context(), category, regionID)
	if err != nil {
		log.Error("failed to list album items", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Status: "error", Error: "internal_error"})
	}

	return c.JSON(http.StatusOK, dto.AlbumItemsResponse{
		Category: category,
		Items:    items,
		Count:    len(items),
	})
}

// AdminLogin точка входа учётных данных. Принимает параметр redirect
// с исходно запрошенным путём, чтобы вернуть администратора обратно.
func (r *Routers) AdminLogin(c echo.Context) error {
	return c.JSON(http.StatusOK, response.Response{
		Status:  "success",
		Message: "credential entry",
		Data: map[string]string{
			"redirect": c.QueryParam("redirect"),
		},
	})
}

// AdminDashboard защищённое представление; до него навигация доходит
// только через RouteGuard
func (r *Routers) AdminDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, response.Response{
		Status:  "success",
		Message: "admin dashboard",
	})
}

func (r *Routers) parseMediaUploadInput(c echo.Context) (*dto.MediaUploadInput, error) {
	uploaderID, err := uuid.Parse(c.FormValue("uploader_id"))
	if err != nil {
		return nil, err
	}

	input := &dto.MediaUploadInput{
		UploaderID: uploaderID,
		Title:      c.FormValue("title"),
		Category:   c.FormValue("category"),
	}

	if regionStr := c.FormValue("region_id"); regionStr != "" {
		region, err := strconv.ParseInt(regionStr, 10, 64)
		if err != nil {
			return nil, err
		}
		input.RegionID = &region
	}

	return input, nil
}

func parseRegionID(c echo.Context) (*int64, error) {
	regionStr := c.QueryParam("region_id")
	if regionStr == "" {
		return nil, nil
	}

	region, err := strconv.ParseInt(regionStr, 10, 64)
	if err != nil {
		return nil, err
	}
	return &region, nil
}

func (r *Routers) saveSessionToken(c echo.Context, accessToken string) error {
	sess, err := session.Get(appmw.SessionName, c)
	if err != nil {
		return err
	}
	sess.Values[appmw.SessionTokenKey] = accessToken
	return sess.Save(c.Request(), c.Response())
}

func (r *Routers) clearSessionToken(c echo.Context) error {
	sess, err := session.Get(appmw.SessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, appmw.SessionTokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}
