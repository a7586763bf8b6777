package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"woreda_portal/internal/config"
	appmw "woreda_portal/internal/middleware"
	httprouters "woreda_portal/internal/transport/http"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m           *http.ServeMux
	log         *slog.Logger
	e           *echo.Echo
	routers     *httprouters.Routers
	guard       *appmw.RouteGuard
	mediaDir    string
	maxFileSize int64
	host        string
	port        string
}

func New(log *slog.Logger, cfg *config.Config, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Use(session.Middleware(newSessionStore(cfg.HTTP.SessionSecret)))

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(appmw.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	// Медиа встраивается фронтом с другого origin, политика ресурсов
	// не должна это блокировать
	e.Use(mediaHeadersMiddleware)

	mux := http.NewServeMux()
	err := statsviz.Register(mux)
	if err != nil {
		log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
	}

	guard := appmw.NewRouteGuard(cfg.Guard.ProtectedPrefixes, cfg.Guard.LoginPath, cfg.Guard.RedirectParam)

	return &Server{
		m:           mux,
		log:         log,
		e:           e,
		routers:     routers,
		guard:       guard,
		mediaDir:    cfg.FileStorage.BaseDir,
		maxFileSize: cfg.FileStorage.MaxSize,
		host:        cfg.HTTP.Host,
		port:        cfg.HTTP.Port,
	}
}

func newSessionStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Запас поверх потолка файла: границы multipart-формы и
// сопутствующие текстовые поля
const uploadFormOverhead = 1 << 20

// uploadBodyLimit отсекает оверсайз-запрос до разбора multipart-тела:
// по заявленному Content-Length сразу, без него — в процессе чтения.
// Потолок самого файла контролируется дальше в хранилище.
func uploadBodyLimit(maxFileSize int64) echo.MiddlewareFunc {
	return middleware.BodyLimit(fmt.Sprintf("%d", maxFileSize+uploadFormOverhead))
}

func mediaHeadersMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if strings.HasPrefix(c.Request().URL.Path, "/uploads/") {
			h := c.Response().Header()
			h.Set("Cross-Origin-Resource-Policy", "cross-origin")
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Cache-Control", "public, max-age=86400")
		}
		return next(c)
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf("%s:%s", s.host, s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	// Загруженные файлы раздаются как есть по стабильному префиксу
	s.e.Static("/uploads", s.mediaDir)

	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.e.Group("/api/v1")
	{
		api.POST("/login", s.routers.Login)
		api.POST("/refresh", s.routers.Refresh)
		api.POST("/logout", s.routers.Logout)

		galleryGroup := api.Group("/gallery")
		{
			galleryGroup.GET("/albums", s.routers.ListAlbums)
			galleryGroup.GET("/albums/:category/items", s.routers.ListAlbumItems)
		}

		mediaGroup := api.Group("/media",
			uploadBodyLimit(s.maxFileSize),
			appmw.RequireCredential(appmw.SessionCredential),
		)
		{
			mediaGroup.POST("/upload", s.routers.UploadMedia)
			mediaGroup.GET("/:id", s.routers.GetMedia)
		}
	}

	// Навигация по административным путям идёт через RouteGuard:
	// без учётных данных — редирект на вход с исходным путём
	s.e.GET(s.guardLoginPath(), s.routers.AdminLogin)

	adminGroup := s.e.Group("/admin", s.guard.Middleware(appmw.SessionCredential))
	{
		adminGroup.GET("/dashboard", s.routers.AdminDashboard)
	}

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}
}

func (s *Server) guardLoginPath() string {
	return s.guard.LoginPath()
}
