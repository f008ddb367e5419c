package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ShayCichocki/cadre/internal/learning"
	"github.com/ShayCichocki/cadre/internal/orchestrator"
	"github.com/ShayCichocki/cadre/internal/snapshot"
	"github.com/ShayCichocki/cadre/pkg/models"
)

// DelegateRequest is the request body for POST /v1/delegate.
type DelegateRequest struct {
	Description string `json:"description"`
	MaxTeamSize int    `json:"maxTeamSize,omitempty"`
}

// PatternRequest is the request body for POST /v1/patterns.
type PatternRequest struct {
	Kind     models.PatternKind `json:"kind"`
	Input    map[string]string  `json:"input"`
	Output   map[string]string  `json:"output"`
	Contexts []string           `json:"contexts"`
}

// WorkerUpdateRequest is the request body for PUT /v1/workers/:id.
// Omitted fields are left unchanged.
type WorkerUpdateRequest struct {
	State           *models.ActiveState `json:"activeState,omitempty"`
	CapabilityScore *float64            `json:"capabilityScore,omitempty"`
}

// SnapshotPathRequest is the request body for the snapshot save and load
// endpoints. An empty path uses the configured default.
type SnapshotPathRequest struct {
	Path string `json:"path,omitempty"`
}

// SessionResponse is the response body for GET /v1/session.
type SessionResponse struct {
	SessionID string           `json:"sessionId"`
	Patterns  int              `json:"patterns"`
	Workers   int              `json:"workers"`
	Metrics   learning.Metrics `json:"metrics"`
}

// LoadResponse is the response body for POST /v1/snapshot/load.
type LoadResponse struct {
	Snapshot snapshot.SessionSnapshot `json:"snapshot"`
	Metrics  learning.Metrics         `json:"metrics"`
}

// HealthResponse is the response body for GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleDelegate(c echo.Context) error {
	var req DelegateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	limit := req.MaxTeamSize
	if limit <= 0 {
		limit = s.engine.MaxTeamSize()
	}
	result, err := s.engine.DelegateTaskWithLimit(req.Description, limit)
	if err != nil {
		s.metrics.DelegationsTotal.WithLabelValues("rejected").Inc()
		return s.mapError(err)
	}
	if result.Eligible() {
		s.metrics.DelegationsTotal.WithLabelValues("assigned").Inc()
	} else {
		s.metrics.DelegationsTotal.WithLabelValues("unassigned").Inc()
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleAgents(c echo.Context) error {
	return c.JSON(http.StatusOK, s.engine.Registry().Profiles())
}

func (s *Server) handleSession(c echo.Context) error {
	return c.JSON(http.StatusOK, SessionResponse{
		SessionID: s.engine.SessionID(),
		Patterns:  len(s.engine.Patterns()),
		Workers:   len(s.engine.Workers()),
		Metrics:   s.engine.Metrics(),
	})
}

func (s *Server) handleRecordPattern(c echo.Context) error {
	var req PatternRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := s.engine.RecordPattern(req.Kind, models.NewPayload(req.Input), models.NewPayload(req.Output), req.Contexts)
	if err != nil {
		return s.mapError(err)
	}
	s.metrics.PatternsTotal.WithLabelValues(string(p.Kind)).Inc()
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleListPatterns(c echo.Context) error {
	return c.JSON(http.StatusOK, s.engine.Patterns())
}

func (s *Server) handleSearchPatterns(c echo.Context) error {
	query := c.QueryParam("q")
	if strings.TrimSpace(query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}
	return c.JSON(http.StatusOK, s.engine.SearchPatterns(query, limit))
}

func (s *Server) handleWorkers(c echo.Context) error {
	return c.JSON(http.StatusOK, s.engine.Workers())
}

func (s *Server) handleUpdateWorker(c echo.Context) error {
	id := c.Param("id")
	var req WorkerUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.State == nil && req.CapabilityScore == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "activeState or capabilityScore is required")
	}
	if req.State != nil && !req.State.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown worker state")
	}
	if req.CapabilityScore != nil && (*req.CapabilityScore < 0 || *req.CapabilityScore > 1) {
		return echo.NewHTTPError(http.StatusBadRequest, "capabilityScore must be within [0,1]")
	}

	var (
		w   models.WorkerState
		err error
	)
	if req.CapabilityScore != nil {
		if w, err = s.engine.SetWorkerScore(id, *req.CapabilityScore); err != nil {
			return s.mapError(err)
		}
	}
	if req.State != nil {
		if w, err = s.engine.SetWorkerState(id, *req.State); err != nil {
			return s.mapError(err)
		}
	}
	return c.JSON(http.StatusOK, w)
}

func (s *Server) handleSnapshot(c echo.Context) error {
	return c.JSON(http.StatusOK, s.engine.ExtractSnapshot())
}

func (s *Server) handleSaveSnapshot(c echo.Context) error {
	path, err := s.snapshotPath(c)
	if err != nil {
		return err
	}
	snap, err := s.engine.SaveSnapshot(path)
	if err != nil {
		s.metrics.SnapshotOperations.WithLabelValues("save", "error").Inc()
		return s.mapError(err)
	}
	s.metrics.SnapshotOperations.WithLabelValues("save", "ok").Inc()
	return c.JSON(http.StatusOK, snap)
}

func (s *Server) handleLoadSnapshot(c echo.Context) error {
	path, err := s.snapshotPath(c)
	if err != nil {
		return err
	}
	snap, err := s.engine.LoadSnapshot(path)
	if err != nil {
		s.metrics.SnapshotOperations.WithLabelValues("load", "error").Inc()
		return s.mapError(err)
	}
	metrics := s.engine.Restore(snap)
	s.metrics.SnapshotOperations.WithLabelValues("load", "ok").Inc()
	return c.JSON(http.StatusOK, LoadResponse{Snapshot: snap, Metrics: metrics})
}

// snapshotPath resolves the request path. Only paths local to the working
// directory are accepted.
func (s *Server) snapshotPath(c echo.Context) (string, error) {
	var req SnapshotPathRequest
	if err := c.Bind(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Path == "" {
		return s.config.SnapshotPath, nil
	}
	if !filepath.IsLocal(req.Path) {
		return "", echo.NewHTTPError(http.StatusBadRequest, "path must be relative and stay within the working directory")
	}
	return req.Path, nil
}

// mapError translates engine errors into HTTP errors.
func (s *Server) mapError(err error) error {
	switch {
	case errors.Is(err, orchestrator.ErrInvalidRequirement),
		errors.Is(err, learning.ErrInvalidPattern):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, snapshot.ErrSnapshotNotFound),
		errors.Is(err, learning.ErrUnknownWorker):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, snapshot.ErrSnapshotCorrupt),
		errors.Is(err, snapshot.ErrSnapshotSchemaMismatch):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
