// Package server serves resolution snapshots over HTTP.
//
// The server resolves its root manifest once at startup and publishes the
// result to a [provider.Store]. Handlers read the current snapshot without
// locking; POST /api/reload, or a manifest change when watching is enabled,
// resolves again and swaps the snapshot atomically.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/soup/pkg/pipeline"
	"github.com/matzehuels/soup/pkg/provider"
)

// Config holds configuration for the server.
type Config struct {
	Addr    string
	Watch   bool
	Runner  *pipeline.Runner
	Options pipeline.Options
	Logger  *log.Logger

	// Debounce delays a watch-triggered reload until changes settle.
	Debounce time.Duration
}

// Server is the HTTP API server.
type Server struct {
	addr     string
	watch    bool
	runner   *pipeline.Runner
	opts     pipeline.Options
	logger   *log.Logger
	debounce time.Duration

	store provider.Store
	// reloadMu serializes resolution runs.
	reloadMu sync.Mutex
}

// New creates a server. Call [Server.Reload] or [Server.Serve] to publish
// the first snapshot.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Server{
		addr:     cfg.Addr,
		watch:    cfg.Watch,
		runner:   cfg.Runner,
		opts:     cfg.Options,
		logger:   logger,
		debounce: debounce,
	}
}

// Snapshot returns the current snapshot, or nil before the first reload.
func (s *Server) Snapshot() *provider.Snapshot { return s.store.Load() }

// Reload resolves the root manifest and publishes the result. With refresh
// set the cache is bypassed. On failure the previous snapshot stays current.
func (s *Server) Reload(ctx context.Context, refresh bool) (*pipeline.Result, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	opts := s.opts
	opts.Refresh = refresh
	res, err := s.runner.Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}
	if prev := s.store.Publish(res.Snapshot); prev != nil {
		s.logger.Debug("replaced snapshot", "old", prev.ID, "new", res.Snapshot.ID)
	}
	return res, nil
}

// Serve resolves the root manifest, then serves HTTP until ctx is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if _, err := s.Reload(ctx, false); err != nil {
		return fmt.Errorf("initial resolution: %w", err)
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("serving snapshot API", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchManifests(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
