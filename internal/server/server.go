package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alkime/intake/internal/analysis"
	"github.com/alkime/intake/internal/config"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// ServiceName is reported by the health check.
const ServiceName = "intake"

// Analyzer runs the intake analysis for one request.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	logger   *slog.Logger
	router   *gin.Engine
	analyzer Analyzer
}

// New creates a new Server instance
func New(cfg *config.Config, logger *slog.Logger, analyzer Analyzer) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(logger))

	if len(cfg.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			logger.Error("Failed to set trusted proxies", "error", err)
		}
	}

	server := &Server{
		config:   cfg,
		logger:   logger,
		router:   router,
		analyzer: analyzer,
	}

	setupSecurityMiddleware(router, cfg, logger)
	server.setupRoutes()

	return server
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts the HTTP server
func Run(s *Server) error {
	s.logger.Info("Server listening", "port", s.config.Port)
	return s.router.Run(":" + s.config.Port)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.POST("/intake", s.handleIntake)

	// browser client, if one is deployed alongside
	if s.config.StaticDir != "" {
		s.router.Use(static.Serve("/", static.LocalFile(s.config.StaticDir, true)))
		s.logger.Debug("Serving static files", "dir", s.config.StaticDir)
	}
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info("request",
			"request_id", RequestID(c.Request.Context()),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}
