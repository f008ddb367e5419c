package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ShayCichocki/cadre/internal/config"
	"github.com/ShayCichocki/cadre/internal/learning"
	"github.com/ShayCichocki/cadre/internal/logging"
	"github.com/ShayCichocki/cadre/internal/orchestrator"
	"github.com/ShayCichocki/cadre/internal/registry"
	"github.com/ShayCichocki/cadre/internal/snapshot"
	"github.com/ShayCichocki/cadre/internal/state"
	"github.com/ShayCichocki/cadre/pkg/models"
)

// session bundles an engine with the stores that back it for one command.
// The engine resumes from the configured snapshot when one exists.
type session struct {
	cfg      *config.Config
	engine   *orchestrator.Engine
	db       *state.DB
	patterns *learning.PatternStore
	logger   *zap.Logger
	debug    *logging.DebugLogger
	// resumed is set when the engine was restored from a snapshot.
	resumed bool
}

// loadConfig loads configuration, honoring the --config flag.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

// openSession loads config and opens a session resumed from the configured
// snapshot.
func openSession() (*session, error) {
	return openSessionWith(true)
}

func openSessionWith(resume bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return newSession(cfg, resume)
}

// newSession builds the engine and its stores. With resume unset the
// configured snapshot is ignored and the session is not registered; the
// caller restores one and registers it.
func newSession(cfg *config.Config, resume bool) (*session, error) {
	logger, err := logging.NewZapLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	debug, err := logging.NewDebugLogger(cfg.Logging.DebugFile)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, debug: debug}

	reg, err := loadRegistry(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	roster, err := loadRoster(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	if s.db, err = state.Open(cfg.State.DBPath); err != nil {
		s.Close()
		return nil, fmt.Errorf("open state database: %w", err)
	}
	if err := s.db.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate state database: %w", err)
	}

	if s.patterns, err = learning.NewPatternStore(cfg.Learning.DBPath); err != nil {
		s.Close()
		return nil, fmt.Errorf("open pattern store: %w", err)
	}
	if err := s.patterns.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate pattern store: %w", err)
	}

	s.engine = orchestrator.New(reg,
		orchestrator.WithMaxTeamSize(cfg.Engine.MaxTeamSize),
		orchestrator.WithAuthenticContext(cfg.Engine.AuthenticContext),
		orchestrator.WithRoster(roster),
		orchestrator.WithSink(logging.Multi(logging.NewZapSink(logger.Named("engine")), debug)),
		orchestrator.WithHistory(s.db),
		orchestrator.WithArchive(s.patterns),
	)

	if !resume {
		return s, nil
	}

	if _, err := s.engine.Resume(cfg.Snapshot.Path); err != nil {
		if !errors.Is(err, snapshot.ErrSnapshotNotFound) {
			s.Close()
			return nil, err
		}
	} else {
		s.resumed = true
	}

	if _, err := s.db.EnsureSession(s.engine.SessionID()); err != nil {
		s.Close()
		return nil, fmt.Errorf("register session: %w", err)
	}
	return s, nil
}

func loadRegistry(cfg *config.Config) (*registry.AgentRegistry, error) {
	if cfg.Catalog.Path == "" {
		return registry.Default(), nil
	}
	reg, err := registry.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return reg, nil
}

func loadRoster(cfg *config.Config) ([]models.WorkerState, error) {
	if cfg.Roster.Path == "" {
		return learning.DefaultRoster(), nil
	}
	roster, err := learning.LoadRoster(cfg.Roster.Path)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return roster, nil
}

// Save writes the engine state back to the configured snapshot path.
func (s *session) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.cfg.Snapshot.Path), 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	if _, err := s.engine.SaveSnapshot(s.cfg.Snapshot.Path); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Close releases the stores and flushes logs. Safe on a partial session.
func (s *session) Close() {
	if s.patterns != nil {
		s.patterns.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	if s.debug != nil {
		s.debug.Close()
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}
}
