// server.go - Local stand-in for the zip processing backend
package stubserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Route paths served by the stub; they match the production backend.
const (
	UploadRoute  = "/upload_zip"
	ExampleRoute = "/zip_example_handle"
	HealthRoute  = "/health"
)

const (
	uploadField    = "file"
	zipContentType = "application/zip"
)

// DefaultBodyLimit caps request bodies when Config.BodyLimit is empty
const DefaultBodyLimit = "32M"

// Config controls the stub backend
type Config struct {
	// ExamplePath is the archive served by the example route
	ExamplePath string
	// BodyLimit caps request bodies, in echo's size notation ("32M")
	BodyLimit string
	// AllowOrigins lists CORS origins; empty means "*"
	AllowOrigins []string
}

// Server mirrors the processing backend's HTTP contract without doing any
// processing: uploads are echoed back and the example route serves a file.
type Server struct {
	echo   *echo.Echo
	cfg    Config
	logger *zap.Logger
}

// New creates a stub backend with routes and middleware registered
func New(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = DefaultBodyLimit
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, cfg: cfg, logger: logger}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			s.logger.Info("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))

	e.GET(HealthRoute, s.HandleHealth)
	e.POST(UploadRoute, s.HandleUploadZip)
	e.POST(ExampleRoute, s.HandleExample)

	return s
}

// Handler exposes the router, mainly for httptest servers
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.logger.Info("stub backend listening", zap.String("addr", addr), zap.String("example", s.cfg.ExamplePath))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("stub backend stopped: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// HandleHealth reports liveness
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleUploadZip echoes the uploaded archive back as the processed result
func (s *Server) HandleUploadZip(c echo.Context) error {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"detail": "field 'file' is required",
		})
	}

	if !strings.HasSuffix(fh.Filename, ".zip") {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"detail": "Uploaded file must be a .zip file",
		})
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filepath.Base(fh.Filename)))
	return c.Stream(http.StatusOK, zipContentType, src)
}

// HandleExample serves the configured example archive
func (s *Server) HandleExample(c echo.Context) error {
	// an empty body binds without error and leaves body nil
	var body map[string]any
	if err := c.Bind(&body); err != nil || body == nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"detail": "request body must be a JSON object",
		})
	}

	if s.cfg.ExamplePath == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "not found file"})
	}
	if _, err := os.Stat(s.cfg.ExamplePath); err != nil {
		s.logger.Warn("example archive missing", zap.String("path", s.cfg.ExamplePath), zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "not found file"})
	}

	return c.Attachment(s.cfg.ExamplePath, filepath.Base(s.cfg.ExamplePath))
}
