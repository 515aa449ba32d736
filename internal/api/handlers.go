// Package api assembles the gin HTTP surface: request validation, the auth
// gate, URL masking for unauthenticated reads, and translation of
// internal/apperr into HTTP responses.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/last-emo-boy/uptime-core/internal/apperr"
	"github.com/last-emo-boy/uptime-core/internal/auth"
	"github.com/last-emo-boy/uptime-core/internal/config"
	"github.com/last-emo-boy/uptime-core/internal/queryapi"
	"github.com/last-emo-boy/uptime-core/internal/store"
)

// Server holds the dependencies every handler needs.
type Server struct {
	store  *store.Store
	query  *queryapi.API
	auth   *auth.Auth
	cfg    *config.Config
	engine *gin.Engine
}

// New builds a gin engine with every route wired, ready to serve.
func New(s *store.Store, authSvc *auth.Auth, cfg *config.Config) *Server {
	if cfg.AuthEnabled && authSvc == nil {
		panic("api: authSvc is required when auth is enabled")
	}

	srv := &Server{
		store: s,
		query: queryapi.New(s),
		auth:  authSvc,
		cfg:   cfg,
	}
	srv.engine = srv.buildEngine()
	return srv
}

// Engine returns the underlying gin engine for http.Server.Handler.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) buildEngine() *gin.Engine {
	r := gin.New()
	r.Use(loggingMiddleware())
	r.Use(recoveryMiddleware())
	r.Use(corsMiddleware())
	if s.auth != nil {
		r.Use(sessionMiddleware(s.auth))
	}

	r.GET("/healthz", s.handleHealthz)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/config", s.handleConfig)

		authGroup := apiGroup.Group("/auth")
		{
			authGroup.GET("/me", s.handleAuthMe)
			authGroup.POST("/login", s.handleLogin)
			authGroup.POST("/logout", s.handleLogout)
		}

		targets := apiGroup.Group("/targets")
		{
			targets.GET("", s.handleListTargets)
			targets.POST("", requireAuth(s.cfg.AuthEnabled), s.handleCreateTarget)
			targets.GET("/:id", s.handleGetTarget)
			targets.PATCH("/:id", requireAuth(s.cfg.AuthEnabled), s.handleUpdateTarget)
			targets.DELETE("/:id", requireAuth(s.cfg.AuthEnabled), s.handleDeleteTarget)
			targets.GET("/:id/history", s.handleTargetHistory)
			targets.GET("/:id/uptime", s.handleTargetUptime)
			targets.GET("/:id/daily", s.handleTargetDaily)
		}

		apiGroup.GET("/status", s.handleStatus)
		apiGroup.GET("/history", s.handleHistory)
	}

	return r
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, ConfigResponse{AppTimezone: s.cfg.AppTimezone})
}

// handleAuthMe reports the session state. With auth disabled every request
// counts as authenticated.
func (s *Server) handleAuthMe(c *gin.Context) {
	c.JSON(http.StatusOK, AuthStatusResponse{
		Authenticated: !s.cfg.AuthEnabled || isAuthenticated(c),
		AuthEnabled:   s.cfg.AuthEnabled,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	if s.auth == nil {
		c.JSON(http.StatusOK, AuthStatusResponse{Authenticated: true, AuthEnabled: false})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		respondError(c, apperr.Auth("Invalid credentials"))
		return
	}

	c.SetCookie(sessionCookieName, token, int(s.auth.MaxAge().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, AuthStatusResponse{Authenticated: true, AuthEnabled: s.cfg.AuthEnabled})
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

func (s *Server) handleListTargets(c *gin.Context) {
	targets, err := s.store.Targets().List()
	if err != nil {
		respondError(c, apperr.Store("failed to list targets", err))
		return
	}

	resp := make([]TargetResponse, 0, len(targets))
	for _, t := range targets {
		resp = append(resp, s.toTargetResponse(c, t))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetTarget(c *gin.Context) {
	t, err := s.store.Targets().GetByID(c.Param("id"))
	if err != nil {
		respondError(c, apperr.NotFound("Target not found"))
		return
	}
	c.JSON(http.StatusOK, s.toTargetResponse(c, t))
}

func (s *Server) handleCreateTarget(c *gin.Context) {
	var req CreateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	t := &store.Target{
		Name:      req.Name,
		URL:       req.URL,
		Enabled:   true,
		IntervalS: 60,
		TimeoutS:  10,
		VerifyTLS: true,
	}
	if req.Enabled != nil {
		t.Enabled = *req.Enabled
	}
	if req.IntervalS != nil {
		t.IntervalS = *req.IntervalS
	}
	if req.TimeoutS != nil {
		t.TimeoutS = *req.TimeoutS
	}
	if req.VerifyTLS != nil {
		t.VerifyTLS = *req.VerifyTLS
	}

	if err := s.store.Targets().Create(t); err != nil {
		respondError(c, apperr.Store("failed to create target", err))
		return
	}
	c.JSON(http.StatusCreated, s.toTargetResponse(c, t))
}

func (s *Server) handleUpdateTarget(c *gin.Context) {
	id := c.Param("id")
	existing, err := s.store.Targets().GetByID(id)
	if err != nil {
		respondError(c, apperr.NotFound("Target not found"))
		return
	}

	var req UpdateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.URL != nil {
		existing.URL = *req.URL
	}
	if req.Enabled != nil {
		existing.Enabled = *req.Enabled
	}
	if req.IntervalS != nil {
		existing.IntervalS = *req.IntervalS
	}
	if req.TimeoutS != nil {
		existing.TimeoutS = *req.TimeoutS
	}
	if req.VerifyTLS != nil {
		existing.VerifyTLS = *req.VerifyTLS
	}

	if err := s.store.Targets().Update(existing); err != nil {
		respondError(c, apperr.Store("failed to update target", err))
		return
	}
	c.JSON(http.StatusOK, s.toTargetResponse(c, existing))
}

func (s *Server) handleDeleteTarget(c *gin.Context) {
	if err := s.store.Targets().Delete(c.Param("id")); err != nil {
		respondError(c, apperr.NotFound("Target not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStatus(c *gin.Context) {
	rows, err := s.query.Status()
	if err != nil {
		respondError(c, apperr.Store("failed to load status", err))
		return
	}

	resp := make([]StatusResponse, 0, len(rows))
	for _, row := range rows {
		url := row.URL
		if s.shouldMask(c) {
			url = auth.MaskURL(url)
		}
		resp = append(resp, StatusResponse{
			TargetID:     row.TargetID,
			Name:         row.Name,
			URL:          url,
			Up:           row.Up,
			LastChecked:  row.LastChecked,
			LatencyMs:    row.LatencyMs,
			HTTPStatus:   row.HTTPStatus,
			ErrorType:    row.ErrorKind,
			ErrorMessage: row.ErrorMessage,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTargetHistory(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.Targets().GetByID(id); err != nil {
		respondError(c, apperr.NotFound("Target not found"))
		return
	}

	hours, err := parseHours(c, 24)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	checks, err := s.query.History(&id, since, nil)
	if err != nil {
		respondError(c, apperr.Store("failed to load history", err))
		return
	}
	c.JSON(http.StatusOK, toCheckResponses(checks))
}

func (s *Server) handleHistory(c *gin.Context) {
	hours, err := parseHours(c, 24)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	var targetID *string
	if v := c.Query("target_id"); v != "" {
		targetID = &v
	}

	var up *bool
	if v := c.Query("up"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "up must be a boolean"})
			return
		}
		up = &parsed
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	checks, err := s.query.History(targetID, since, up)
	if err != nil {
		respondError(c, apperr.Store("failed to load history", err))
		return
	}
	c.JSON(http.StatusOK, toCheckResponses(checks))
}

func (s *Server) handleTargetUptime(c *gin.Context) {
	id := c.Param("id")
	target, err := s.store.Targets().GetByID(id)
	if err != nil {
		respondError(c, apperr.NotFound("Target not found"))
		return
	}

	days, err := parseDays(c, 30, 365)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	uptime, err := s.query.RollingUptime(id, days)
	if err != nil {
		respondError(c, apperr.Store("failed to compute uptime", err))
		return
	}

	c.JSON(http.StatusOK, UptimeResponse{
		TargetID:         target.ID,
		Name:             target.Name,
		UptimePercentage: uptime.Percentage,
		TotalChecks:      uptime.TotalChecks,
		UpChecks:         uptime.UpChecks,
		DownChecks:       uptime.DownChecks,
	})
}

func (s *Server) handleTargetDaily(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.Targets().GetByID(id); err != nil {
		respondError(c, apperr.NotFound("Target not found"))
		return
	}

	days, err := parseDays(c, 30, 90)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	daily, err := s.query.DailyUptime(id, days)
	if err != nil {
		respondError(c, apperr.Store("failed to compute daily uptime", err))
		return
	}

	resp := make([]DailyUptimeResponse, 0, len(daily))
	for _, d := range daily {
		resp = append(resp, DailyUptimeResponse{
			Day:              d.Day,
			TotalChecks:      d.TotalChecks,
			UpChecks:         d.UpChecks,
			UptimePercentage: d.Percentage,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// toTargetResponse converts a store.Target into its JSON shape, masking the
// URL when auth is enabled and the request is unauthenticated.
func (s *Server) toTargetResponse(c *gin.Context, t *store.Target) TargetResponse {
	url := t.URL
	if s.shouldMask(c) {
		url = auth.MaskURL(url)
	}
	return TargetResponse{
		ID:        t.ID,
		Name:      t.Name,
		URL:       url,
		Enabled:   t.Enabled,
		IntervalS: t.IntervalS,
		TimeoutS:  t.TimeoutS,
		VerifyTLS: t.VerifyTLS,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (s *Server) shouldMask(c *gin.Context) bool {
	return s.cfg.AuthEnabled && !isAuthenticated(c)
}

func toCheckResponses(checks []*store.Check) []CheckResponse {
	resp := make([]CheckResponse, 0, len(checks))
	for _, ch := range checks {
		resp = append(resp, CheckResponse{
			ID:           ch.ID,
			TargetID:     ch.TargetID,
			CheckedAt:    ch.CheckedAt,
			Up:           ch.Up,
			LatencyMs:    ch.LatencyMs,
			HTTPStatus:   ch.HTTPStatus,
			ErrorType:    string(ch.ErrorKind),
			ErrorMessage: ch.ErrorMessage,
		})
	}
	return resp
}

func parseHours(c *gin.Context, def int) (int, error) {
	return parseBoundedQueryInt(c, "hours", def, 1, 720)
}

func parseDays(c *gin.Context, def, max int) (int, error) {
	return parseBoundedQueryInt(c, "days", def, 1, max)
}

func parseBoundedQueryInt(c *gin.Context, key string, def, min, max int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", key)
	}
	if v < min || v > max {
		return 0, apperr.Validation("%s must be between %d and %d", key, min, max)
	}
	return v, nil
}
