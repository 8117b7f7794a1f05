package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/collision-dashboard/internal/dashboard"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Dashboard computes the views served by the page and the JSON API.
type Dashboard interface {
	ReadinessChecker
	Build(ctx context.Context, c dashboard.Controls) (*dashboard.Page, error)
	InjuryMap(ctx context.Context, minInjured int) (*dashboard.InjuryView, error)
	Hour(ctx context.Context, hour int) (*dashboard.HourView, error)
	Minutes(ctx context.Context, hour int) ([]dashboard.MinuteBin, error)
	Streets(ctx context.Context, c domain.Category, n int) (*dashboard.StreetsView, error)
}

// ChartRenderer draws the minute histogram as an image.
type ChartRenderer interface {
	RenderMinutes(w io.Writer, title string, bins []dashboard.MinuteBin) error
}

// Options configures the page and cross-origin access.
type Options struct {
	// MapboxToken is handed to the page for the base map tiles.
	MapboxToken string
	// AllowedOrigins restricts CORS. Empty allows every origin.
	AllowedOrigins []string
}

// Server serves the dashboard page, the JSON view API, and the health,
// readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dash       Dashboard
	charts     ChartRenderer
	opts       Options
	logger     *slog.Logger
}

// NewServer creates an HTTP server with every dashboard route registered.
func NewServer(addr string, dash Dashboard, charts ChartRenderer, opts Options, logger *slog.Logger) *Server {
	router := gin.New()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dash:   dash,
		charts: charts,
		opts:   opts,
		logger: logger,
	}

	router.Use(gin.Recovery(), requestID(), requestLogger(logger), cors.New(corsConfig(opts.AllowedOrigins)))

	router.GET("/", s.handlePage)
	router.GET("/chart/minutes.png", s.handleMinutesChart)

	api := router.Group("/api/v1")
	{
		api.GET("/views", s.handleViews)
		api.GET("/injuries", s.handleInjuries)
		api.GET("/hours/:hour", s.handleHour)
		api.GET("/hours/:hour/minutes", s.handleMinutes)
		api.GET("/streets", s.handleStreets)
	}

	router.GET("/healthz", s.handleHealth)
	router.GET("/readyz", handleReady(dash))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
