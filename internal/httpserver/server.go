package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/seaguardian/seaguardian/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FleetStore is the store contract required by the HTTP API.
type FleetStore interface {
	model.StateProvider
	model.FleetWriter
	RaiseAlert(ctx context.Context, a model.Alert) (model.Alert, error)
	ListVessels(ctx context.Context) ([]model.Vessel, error)
	ListAlerts(ctx context.Context, limit int) ([]model.Alert, error)
	ListCatches(ctx context.Context, limit int) ([]model.CatchRecord, error)
	UnacknowledgedAlertCount(ctx context.Context) (int64, error)
}

// Server provides an HTTP API over the fleet state for shore-side tools and feeds.
type Server struct {
	addr      string
	store     FleetStore
	log       *zap.Logger
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, store FleetStore, logger *zap.Logger) *Server {
	if addr == "" {
		addr = "127.0.0.1:3080"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   addr,
		store:  store,
		log:    logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Handler builds the gin engine with every API route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/snapshot", s.handleSnapshot)
	api.GET("/vessels", s.handleListVessels)
	api.GET("/alerts", s.handleListAlerts)
	api.GET("/catches", s.handleListCatches)
	api.POST("/sos", s.handleSOS)
	api.POST("/alerts", s.handleRaiseAlert)
	api.POST("/alerts/:id/ack", s.handleAcknowledge)
	api.POST("/catches", s.handleAddCatch)
	api.POST("/vessels/:id/position", s.handlePosition)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.startTime = time.Now()
	s.log.Info("httpserver: listening", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("httpserver: serve failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("httpserver: request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

// writeError maps provider errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrAlertNotFound), errors.Is(err, model.ErrVesselNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidCatch), errors.Is(err, model.ErrInvalidAlert):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	open, err := s.store.UnacknowledgedAlertCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"uptime":      time.Since(s.startTime).String(),
		"open_alerts": open,
	})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	snap, err := s.store.Snapshot(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// queryLimit reads the optional ?limit= parameter. Zero means no limit.
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return 0, false
	}
	return limit, true
}

func (s *Server) handleListVessels(c *gin.Context) {
	vessels, err := s.store.ListVessels(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vessels)
}

func (s *Server) handleListAlerts(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	alerts, err := s.store.ListAlerts(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (s *Server) handleListCatches(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	catches, err := s.store.ListCatches(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, catches)
}

func (s *Server) handleSOS(c *gin.Context) {
	var req struct {
		VesselID string `json:"vessel_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing vessel_id field"})
		return
	}

	alert, err := s.store.TriggerSOS(c.Request.Context(), req.VesselID)
	if err != nil {
		writeError(c, err)
		return
	}
	s.log.Warn("httpserver: sos raised", zap.String("vessel_id", req.VesselID), zap.Int64("alert_id", alert.ID))
	c.JSON(http.StatusCreated, alert)
}

func (s *Server) handleRaiseAlert(c *gin.Context) {
	var req struct {
		VesselID string `json:"vessel_id"`
		Kind     string `json:"kind"`
		Severity string `json:"severity"`
		Message  string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing message field"})
		return
	}

	kind := model.AlertKind(strings.ToLower(req.Kind))
	switch kind {
	case "", model.AlertWeather, model.AlertGeofence, model.AlertSystem:
	default:
		// SOS alerts only come from POST /api/sos so the vessel gets flagged.
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be weather, geofence or system"})
		return
	}
	severity := model.Severity(strings.ToLower(req.Severity))
	switch severity {
	case "", model.SeverityCritical, model.SeverityWarning, model.SeverityInfo:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "severity must be critical, warning or info"})
		return
	}

	alert, err := s.store.RaiseAlert(c.Request.Context(), model.Alert{
		VesselID: req.VesselID,
		Kind:     kind,
		Severity: severity,
		Message:  req.Message,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

func (s *Server) handleAcknowledge(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alert id must be an integer"})
		return
	}

	if err := s.store.AcknowledgeAlert(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "acknowledged": true})
}

func (s *Server) handleAddCatch(c *gin.Context) {
	var rec model.CatchRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	saved, err := s.store.AddCatch(c.Request.Context(), rec)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (s *Server) handlePosition(c *gin.Context) {
	var req struct {
		Lat        *float64 `json:"lat" binding:"required"`
		Lon        *float64 `json:"lon" binding:"required"`
		SpeedKnots float64  `json:"speed_knots"`
		Heading    float64  `json:"heading"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing lat/lon"})
		return
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lon < -180 || *req.Lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat/lon out of range"})
		return
	}

	id := c.Param("id")
	if err := s.store.UpdateVesselPosition(c.Request.Context(), id, *req.Lat, *req.Lon, req.SpeedKnots, req.Heading); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
