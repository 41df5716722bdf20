package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shinyyama/broadcast-feed/internal/handler"
	"github.com/shinyyama/broadcast-feed/internal/media"
	appmw "github.com/shinyyama/broadcast-feed/internal/middleware"
	"github.com/shinyyama/broadcast-feed/internal/repository"
	"github.com/shinyyama/broadcast-feed/internal/service"
	"gorm.io/gorm"
)

type Options struct {
	GitSHA            string
	BuildTime         string
	CORSAllowedSuffix string
	Auth              *appmw.AuthMiddleware
	Uploader          media.Uploader
}

type Server struct {
	e      *echo.Echo
	handle *repository.Handle
	opts   Options
}

// New builds the HTTP server. db may be nil; requests touching storage fail
// with a storage error until SetDB is called.
func New(db *gorm.DB, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(appmw.CorrelationID)
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", echo.HeaderXRequestID},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(opts.CORSAllowedSuffix),
	}))

	handle := repository.NewHandle(db)

	msgSvc := service.NewMessageService(repository.NewMessageRepository(handle))
	msgHandler := handler.NewMessageHandler(msgSvc)

	profileSvc := service.NewProfileService(repository.NewProfileRepository(handle))
	profileHandler := handler.NewProfileHandler(profileSvc)

	mediaHandler := handler.NewMediaHandler(opts.Uploader)

	s := &Server{e: e, handle: handle, opts: opts}

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	protect := opts.Auth.Protect()
	api := e.Group("/api/v1")
	api.POST("/messages", msgHandler.Create, protect...)
	api.POST("/messages/images", mediaHandler.UploadImage, protect...)
	api.POST("/messages/:id/responses", msgHandler.Respond, protect...)
	api.GET("/messages", msgHandler.Feed)
	api.GET("/messages/:id", msgHandler.Get)
	api.GET("/messages/:id/responses", msgHandler.ListResponses)

	api.POST("/profile", profileHandler.Create, protect...)
	api.PUT("/profile/:id/avatar", profileHandler.UpdateAvatar, protect...)
	api.POST("/profile/:id/follow", profileHandler.Follow, protect...)
	api.GET("/profile/:id", profileHandler.Get)
	api.GET("/profile/username/:userName", profileHandler.GetByUserName)

	return s
}

func (s *Server) healthz(c echo.Context) error {
	status := http.StatusOK
	if !s.handle.Ready() {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]any{
		"ok":         status == http.StatusOK,
		"db_ready":   s.handle.Ready(),
		"git_sha":    s.opts.GitSHA,
		"build_time": s.opts.BuildTime,
	})
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.e
}

// SetDB swaps the storage connection used by every repository.
func (s *Server) SetDB(db *gorm.DB) {
	s.handle.SetDB(db)
}

func allowOrigin(suffix string) func(origin string) (bool, error) {
	return func(origin string) (bool, error) {
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		host := strings.ToLower(u.Hostname())
		if host == "localhost" || host == "127.0.0.1" {
			return true, nil
		}
		if suffix != "" && strings.HasSuffix(host, strings.ToLower(suffix)) {
			return true, nil
		}
		return false, nil
	}
}
