package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/hydro-explorer-service/internal/adapter/echarts"
	"github.com/couchcryptid/hydro-explorer-service/internal/dashboard"
	"github.com/couchcryptid/hydro-explorer-service/internal/domain"
)

// categorySuperseded and categoryInternal extend the domain taxonomy for
// failures that are not a backend or selection problem.
const (
	categorySuperseded = "Superseded"
	categoryInternal   = "Internal"
)

// Server exposes the dashboard API alongside health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	store      *dashboard.Store
	chartOpts  echarts.Options
	logger     *slog.Logger
}

// NewServer creates the gin engine and registers every route.
func NewServer(addr string, store *dashboard.Store, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		engine:    engine,
		store:     store,
		chartOpts: echarts.DefaultOptions(),
		logger:    logger,
	}

	engine.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	engine.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(ready)))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api/sessions")
	api.POST("", s.handleCreateSession)
	api.GET("/:id", s.withSession(s.handleState))
	api.DELETE("/:id", s.handleDeleteSession)

	api.PUT("/:id/data-type", s.withSession(s.handleDataType))
	api.PUT("/:id/water-level-type", s.withSession(s.handleWaterLevelType))
	api.POST("/:id/load", s.withSession(s.handleLoad))
	api.PUT("/:id/river", s.withSession(s.handleRiver))
	api.PUT("/:id/station", s.withSession(s.handleStation))
	api.PUT("/:id/year", s.withSession(s.handleYear))
	api.PUT("/:id/comparison-years", s.withSession(s.handleComparisonYears))
	api.PUT("/:id/date-range", s.withSession(s.handleDateRange))
	api.PUT("/:id/sediment-column", s.withSession(s.handleSedimentColumn))

	api.POST("/:id/plot", s.withSession(s.handlePlot))
	api.GET("/:id/chart.html", s.withSession(s.handleChartHTML))
	api.POST("/:id/map", s.withSession(s.handleMap))
	api.GET("/:id/download", s.withSession(s.handleDownload))
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
	s.engine.ServeHTTP(w, r)
}

type sessionHandler func(c *gin.Context, sess *dashboard.Session)

// withSession resolves the :id path parameter or answers 404.
func (s *Server) withSession(h sessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.store.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found", "category": "UnknownSession"})
			return
		}
		h(c, sess)
	}
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess := s.store.Create()
	c.JSON(http.StatusCreated, gin.H{"session_id": sess.ID(), "state": sess.State()})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if !s.store.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found", "category": "UnknownSession"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleState(c *gin.Context, sess *dashboard.Session) {
	c.JSON(http.StatusOK, sess.State())
}

func (s *Server) handleDataType(c *gin.Context, sess *dashboard.Session) {
	var req struct {
		DataType string `json:"data_type" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	state, err := sess.ChangeDataType(req.DataType)
	respondState(c, state, err)
}

func (s *Server) handleWaterLevelType(c *gin.Context, sess *dashboard.Session) {
	var req struct {
		WaterLevelType string `json:"water_level_type"`
	}
	if !bind(c, &req) {
		return
	}
	state, err := sess.ChangeWaterLevelType(req.WaterLevelType)
	respondState(c, state, err)
}

func (s *Server) handleLoad(c *gin.Context, sess *dashboard.Session) {
	state, err := sess.Load(c.Request.Context())
	respondState(c, state, err)
}

func (s *Server) handleRiver(c *gin.Context, sess *dashboard.Session) {
	var req struct {
		River string `json:"river"`
	}
	if !bind(c, &req) {
		return
	}
	state, err := sess.ChangeRiver(c.Request.Context(), req.River)
	respondState(c, state, err)
}

func (s *Server) handleStation(c *gin.Context, sess *dashboard.Session) {
	var req struct {
		Station string `json:"station"`
	}
	if !bind(c, &req) {
		return
	}
	state, err := sess.ChangeStation(c.Request.Context(), req.Station)
	respondState(c, state, err)
}

func (s *Server) handleYear(c *gin.Context, sess *dashboard.Session) {
	var req struct {
		Year string `json:"year"`
	}
	if !bind(c, &req) {
		return
	}
	state, err := sess.SetYear(req.Year)
	respondState(c, state, err)
}

func (s *Server) handleComparisonYears(c *gin.Context, sess *dashboard.Session) {
	var req struct {
		Year1 string `json:"year1"`
		Year2 string `json:"year2"`
	}
	if !bind(c, &req) {
		return
	}
	state, err := sess.SetComparisonYears(req.Year1, req.Year2)
	respondState(c, state, err)
}

func (s *Server) handleDateRange(c *gin.Context, sess *dashboard.Session) {
	var req struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if !bind(c, &req) {
		return
	}
	state, err := sess.SetDateRange(req.StartDate, req.EndDate)
	respondState(c, state, err)
}

func (s *Server) handleSedimentColumn(c *gin.Context, sess *dashboard.Session) {
	var req struct {
		Column string `json:"column"`
	}
	if !bind(c, &req) {
		return
	}
	state, err := sess.SetSedimentColumn(req.Column)
	respondState(c, state, err)
}

func (s *Server) handlePlot(c *gin.Context, sess *dashboard.Session) {
	cfg, err := sess.Plot(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) handleChartHTML(c *gin.Context, sess *dashboard.Session) {
	rc, ok := sess.Chart()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "nothing has been plotted yet", "category": string(domain.KindEmptyResult)})
		return
	}
	var buf bytes.Buffer
	if err := echarts.Render(&buf, rc.Title, rc.Chart, s.chartOpts); err != nil {
		s.logger.Error("chart render failed", "session_id", sess.ID(), "error", err)
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleMap(c *gin.Context, sess *dashboard.Session) {
	cfg, err := sess.ShowMap(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) handleDownload(c *gin.Context, sess *dashboard.Session) {
	data, err := sess.Download(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+domain.DownloadFilename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "category": string(domain.KindInvalidSelection)})
		return false
	}
	return true
}

func respondState(c *gin.Context, state dashboard.State, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// writeError maps a failure onto its status code and a single notification.
func writeError(c *gin.Context, err error) {
	status, category := classify(err)
	c.JSON(status, gin.H{"error": err.Error(), "category": category})
}

func classify(err error) (int, string) {
	if errors.Is(err, dashboard.ErrSuperseded) {
		return http.StatusConflict, categorySuperseded
	}
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindInvalidSelection:
		return http.StatusBadRequest, string(kind)
	case domain.KindEmptyResult, domain.KindNoStations:
		return http.StatusNotFound, string(kind)
	case domain.KindServerReportedError:
		return http.StatusUnprocessableEntity, string(kind)
	case domain.KindTransport, domain.KindMalformedResponse:
		return http.StatusBadGateway, string(kind)
	}
	return http.StatusInternalServerError, categoryInternal
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
