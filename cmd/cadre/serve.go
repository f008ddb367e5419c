package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/cadre/internal/registry"
	"github.com/ShayCichocki/cadre/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine over HTTP",
	Long: `Run the delegation engine as an HTTP service.

Endpoints:
  POST /v1/delegate           {description, maxTeamSize?}
  GET  /v1/agents
  GET  /v1/session
  POST /v1/patterns           {kind, input, output, contexts}
  GET  /v1/patterns
  GET  /v1/patterns/search?q=&limit=
  GET  /v1/workers
  PUT  /v1/workers/:id        {activeState?, capabilityScore?}
  GET  /v1/snapshot
  POST /v1/snapshot/save      {path?}
  POST /v1/snapshot/load      {path?}
  GET  /healthz
  GET  /metrics

With catalog.watch set, edits to catalog.path are picked up without a
restart. The session is saved to snapshot.path on shutdown.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := s.cfg
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv, err := server.New(s.engine, s.logger.Named("http"), &server.Config{
		Addr:           addr,
		RequestTimeout: cfg.Server.RequestTimeout,
		SnapshotPath:   cfg.Snapshot.Path,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		watcher, err := registry.NewWatcher(cfg.Catalog.Path,
			func(reg *registry.AgentRegistry) {
				s.engine.SwapRegistry(reg)
				s.logger.Info("catalog reloaded", zap.Int("agents", reg.Len()))
			},
			func(err error) {
				s.logger.Warn("catalog reload failed", zap.Error(err))
			},
		)
		if err != nil {
			return fmt.Errorf("watch catalog: %w", err)
		}
		g.Go(func() error { return watcher.Run(gctx) })
	}

	runErr := g.Wait()
	if err := s.Save(); err != nil {
		s.logger.Error("failed to save session on shutdown", zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}
