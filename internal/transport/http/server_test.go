package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"woreda_portal/internal/domain/models"
	apperrors "woreda_portal/internal/storage"
	httpapp "woreda_portal/internal/transport/http"
	"woreda_portal/internal/transport/http/dto"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) UploadMedia(ctx context.Context, input dto.MediaUploadInput) (*models.Media, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*models.Media), args.Error(1)
}

type MockGalleryService struct {
	mock.Mock
}

func (m *MockGalleryService) ListAlbums(ctx context.Context, regionID *int64) ([]models.AlbumSummary, error) {
	args := m.Called(ctx, regionID)
	return args.Get(0).([]models.AlbumSummary), args.Error(1)
}

func (m *MockGalleryService) ListAlbumItems(ctx context.Context, category string, regionID *int64) ([]models.GalleryItem, error) {
	args := m.Called(ctx, category, regionID)
	return args.Get(0).([]models.GalleryItem), args.Error(1)
}

type MockMediaProvider struct {
	mock.Mock
}

func (m *MockMediaProvider) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Media), args.Error(1)
}

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type testEnv struct {
	echo    *echo.Echo
	routers *httpapp.Routers
	auth    *MockAuthService
	upload  *MockUploadService
	gallery *MockGalleryService
	media   *MockMediaProvider
}

func newTestEnv() *testEnv {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	auth := new(MockAuthService)
	upload := new(MockUploadService)
	gallery := new(MockGalleryService)
	media := new(MockMediaProvider)

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	return &testEnv{
		echo:    e,
		routers: httpapp.NewRouter(log, auth, upload, gallery, media),
		auth:    auth,
		upload:  upload,
		gallery: gallery,
		media:   media,
	}
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestRouters_Login(t *testing.T) {
	t.Run("successful login", func(t *testing.T) {
		env := newTestEnv()

		tokens := &models.TokenPair{
			UserID:       uuid.New().String(),
			AccessToken:  "access",
			RefreshToken: "refresh",
		}
		env.auth.On("Login", mock.Anything, "admin", "secret-password").
			Return(tokens, nil).Once()

		body := `{"username":"admin","password":"secret-password"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)

		require.NoError(t, env.routers.Login(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "access")
		env.auth.AssertExpectations(t)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		env := newTestEnv()

		env.auth.On("Login", mock.Anything, "admin", "wrong-password").
			Return((*models.TokenPair)(nil), errors.New("invalid credentials")).Once()

		body := `{"username":"admin","password":"wrong-password"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)

		require.NoError(t, env.routers.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("short password fails validation", func(t *testing.T) {
		env := newTestEnv()

		body := `{"username":"admin","password":"short"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)

		require.NoError(t, env.routers.Login(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRouters_UploadMedia(t *testing.T) {
	uploaderID := uuid.New()

	newUploadContext := func(t *testing.T, env *testEnv, filename, contentType string, content []byte) (echo.Context, *httptest.ResponseRecorder) {
		body, formType := multipartUpload(t, filename, contentType, content, map[string]string{
			"uploader_id": uploaderID.String(),
			"title":       "Подпись",
			"category":    "Events",
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/upload", body)
		req.Header.Set(echo.HeaderContentType, formType)
		rec := httptest.NewRecorder()
		return env.echo.NewContext(req, rec), rec
	}

	t.Run("accepted upload returns 201", func(t *testing.T) {
		env := newTestEnv()

		created := &models.Media{
			ID:          uuid.New(),
			StoragePath: "abc.png",
			FileSize:    11,
		}
		env.upload.On("UploadMedia", mock.Anything, mock.AnythingOfType("dto.MediaUploadInput")).
			Return(created, nil).Once()

		c, rec := newUploadContext(t, env, "photo.png", "image/png", []byte("png payload"))
		require.NoError(t, env.routers.UploadMedia(c))

		assert.Equal(t, http.StatusCreated, rec.Code)

		var got models.Media
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "abc.png", got.StoragePath)
	})

	t.Run("unsupported type maps to 415", func(t *testing.T) {
		env := newTestEnv()

		env.upload.On("UploadMedia", mock.Anything, mock.AnythingOfType("dto.MediaUploadInput")).
			Return((*models.Media)(nil), fmt.Errorf("upload_service.UploadMedia: %w", apperrors.ErrUnsupportedMediaType)).Once()

		c, rec := newUploadContext(t, env, "malware.exe", "application/octet-stream", []byte("MZ"))
		require.NoError(t, env.routers.UploadMedia(c))

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("oversized payload maps to 413", func(t *testing.T) {
		env := newTestEnv()

		env.upload.On("UploadMedia", mock.Anything, mock.AnythingOfType("dto.MediaUploadInput")).
			Return((*models.Media)(nil), fmt.Errorf("upload_service.UploadMedia: %w", apperrors.ErrPayloadTooLarge)).Once()

		c, rec := newUploadContext(t, env, "huge.mp4", "video/mp4", bytes.Repeat([]byte("a"), 64))
		require.NoError(t, env.routers.UploadMedia(c))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("storage outage maps to 503", func(t *testing.T) {
		env := newTestEnv()

		env.upload.On("UploadMedia", mock.Anything, mock.AnythingOfType("dto.MediaUploadInput")).
			Return((*models.Media)(nil), fmt.Errorf("upload_service.UploadMedia: %w", apperrors.ErrStorageUnavailable)).Once()

		c, rec := newUploadContext(t, env, "photo.jpg", "image/jpeg", []byte("jpg"))
		require.NoError(t, env.routers.UploadMedia(c))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("missing file returns 400", func(t *testing.T) {
		env := newTestEnv()

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		require.NoError(t, writer.WriteField("uploader_id", uploaderID.String()))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/upload", body)
		req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)

		require.NoError(t, env.routers.UploadMedia(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.upload.AssertNotCalled(t, "UploadMedia", mock.Anything, mock.Anything)
	})

	t.Run("bad uploader id returns 400", func(t *testing.T) {
		env := newTestEnv()

		body, formType := multipartUpload(t, "photo.png", "image/png", []byte("png"), map[string]string{
			"uploader_id": "not-a-uuid",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/upload", body)
		req.Header.Set(echo.HeaderContentType, formType)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)

		require.NoError(t, env.routers.UploadMedia(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouters_GetMedia(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		env := newTestEnv()

		mediaID := uuid.New()
		env.media.On("FindByID", mock.Anything, mediaID).
			Return(&models.Media{ID: mediaID, StoragePath: "abc.png"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/media/"+mediaID.String(), nil)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(mediaID.String())

		require.NoError(t, env.routers.GetMedia(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		env := newTestEnv()

		mediaID := uuid.New()
		env.media.On("FindByID", mock.Anything, mediaID).
			Return((*models.Media)(nil), apperrors.ErrMediaNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/media/"+mediaID.String(), nil)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(mediaID.String())

		require.NoError(t, env.routers.GetMedia(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		env := newTestEnv()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/media/xyz", nil)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("xyz")

		require.NoError(t, env.routers.GetMedia(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouters_ListAlbums(t *testing.T) {
	t.Run("albums with totals", func(t *testing.T) {
		env := newTestEnv()

		albums := []models.AlbumSummary{
			{Category: "Events", Count: 2, CoverURL: "http://cdn/e2.jpg"},
			{Category: "Roads", Count: 1, CoverURL: "http://cdn/r1.jpg"},
		}
		env.gallery.On("ListAlbums", mock.Anything, (*int64)(nil)).
			Return(albums, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/gallery/albums", nil)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)

		require.NoError(t, env.routers.ListAlbums(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var got dto.AlbumListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 2, got.Total)
		assert.Equal(t, "Events", got.Albums[0].Category)
	})

	t.Run("empty catalog is 200 with empty list", func(t *testing.T) {
		env := newTestEnv()

		env.gallery.On("ListAlbums", mock.Anything, (*int64)(nil)).
			Return([]models.AlbumSummary{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/gallery/albums", nil)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)

		require.NoError(t, env.routers.ListAlbums(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var got dto.AlbumListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Zero(t, got.Total)
	})

	t.Run("region filter passed through", func(t *testing.T) {
		env := newTestEnv()

		region := int64(4)
		env.gallery.On("ListAlbums", mock.Anything, &region).
			Return([]models.AlbumSummary{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/gallery/albums?region_id=4", nil)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)

		require.NoError(t, env.routers.ListAlbums(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		env.gallery.AssertExpectations(t)
	})

	t.Run("bad region filter returns 400", func(t *testing.T) {
		env := newTestEnv()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/gallery/albums?region_id=abc", nil)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)

		require.NoError(t, env.routers.ListAlbums(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouters_ListAlbumItems(t *testing.T) {
	t.Run("category items", func(t *testing.T) {
		env := newTestEnv()

		items := []models.GalleryItem{
			{ID: uuid.New(), Category: "Events", ImageURL: "http://cdn/a.jpg"},
		}
		env.gallery.On("ListAlbumItems", mock.Anything, "Events", (*int64)(nil)).
			Return(items, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/gallery/albums/Events/items", nil)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)
		c.SetParamNames("category")
		c.SetParamValues("Events")

		require.NoError(t, env.routers.ListAlbumItems(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var got dto.AlbumItemsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Events", got.Category)
		assert.Equal(t, 1, got.Count)
	})

	t.Run("unknown category is 200 with empty list", func(t *testing.T) {
		env := newTestEnv()

		env.gallery.On("ListAlbumItems", mock.Anything, "Ghost", (*int64)(nil)).
			Return([]models.GalleryItem{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/gallery/albums/Ghost/items", nil)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)
		c.SetParamNames("category")
		c.SetParamValues("Ghost")

		require.NoError(t, env.routers.ListAlbumItems(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var got dto.AlbumItemsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Zero(t, got.Count)
	})
}

func TestRouters_AdminLogin(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/admin/login?redirect=%2Fadmin%2Fdashboard", nil)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)

	require.NoError(t, env.routers.AdminLogin(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/admin/dashboard")
}
