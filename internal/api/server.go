// Package api serves the inspector and the blur filter over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/gobeaver/imagekit"
	"github.com/gobeaver/imagekit/blur"
	"github.com/gobeaver/imagekit/internal/logger"
)

// Config configures a Server.
type Config struct {
	// MaxUploadSize bounds request bodies; 0 means unlimited.
	MaxUploadSize int64

	// BlurMaxRadius is the largest radius accepted by /v1/blur.
	BlurMaxRadius int

	// BlurMaxPixels is the largest image /v1/blur decodes. It applies on top
	// of the inspector limits; 0 means blur.DefaultMaxPixels.
	BlurMaxPixels int64
}

type Server struct {
	inspector *imagekit.Inspector
	cfg       Config
	log       logger.Logger
	clock     func() time.Time
}

func NewServer(in *imagekit.Inspector, cfg Config, log logger.Logger) *Server {
	if cfg.BlurMaxRadius <= 0 {
		cfg.BlurMaxRadius = blur.MaxRadius
	}
	if cfg.BlurMaxPixels <= 0 {
		cfg.BlurMaxPixels = blur.DefaultMaxPixels
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		inspector: in,
		cfg:       cfg,
		log:       log,
		clock:     time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)

	// Identification
	e.GET("/v1/formats", s.handleFormats)
	e.GET("/v1/formats/:name", s.handleFormat)
	e.POST("/v1/inspect", s.handleInspect)
	e.GET("/v1/files/*", s.handleInspectFile)
	e.POST("/v1/scan", s.handleScan)

	// Filters
	e.POST("/v1/blur", s.handleBlur)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   s.clock().UTC(),
	})
}
