package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guild_warden/pkg/config"
)

// Status is the live engine summary served on /healthz.
type Status struct {
	ActivePolls    int `json:"active_polls"`
	OpenTickets    int `json:"open_tickets"`
	ActiveSessions int `json:"active_sessions"`
	TrackedUsers   int `json:"tracked_users"`
}

// Server is the keep-alive HTTP endpoint hosting platforms ping to keep
// the process awake.
type Server struct {
	srv      *http.Server
	logger   *zap.Logger
	statusFn func() Status
	started  time.Time
}

// NewServer creates the keep-alive server. statusFn is polled on every
// /healthz request.
func NewServer(cfg config.HealthConfig, statusFn func() Status, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		logger:   logger,
		statusFn: statusFn,
		started:  time.Now(),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/", s.handleRoot)
	router.GET("/healthz", s.handleHealthz)

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	return s
}

func (s *Server) handleRoot(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uptime": time.Since(s.started).String(),
		"status": s.statusFn(),
	})
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Keep-alive server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("keep-alive server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
