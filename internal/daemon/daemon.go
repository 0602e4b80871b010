// SPDX-License-Identifier: MIT

// Package daemon owns the serve-mode lifecycle: initial load, file
// watching, reload fan-out, revision history and the HTTP server.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/confkit/confkit/internal/api"
	"github.com/confkit/confkit/internal/cache"
	"github.com/confkit/confkit/internal/config"
	"github.com/confkit/confkit/internal/history"
	"github.com/confkit/confkit/internal/log"
	"github.com/confkit/confkit/internal/telemetry"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// App wires the serve-mode subsystems together and runs them until
// the context is cancelled.
type App struct {
	logger  zerolog.Logger
	runtime config.Runtime
	version string

	holder    *config.Holder
	hist      *history.Store
	exports   cache.Cache
	telemetry *telemetry.Provider
	server    *http.Server

	reloadSignal os.Signal
}

// New builds the app from the given config file and runtime settings.
// The initial load must succeed; serving a daemon with no valid
// configuration helps nobody.
func New(ctx context.Context, configPath, version string, runtime config.Runtime) (*App, error) {
	logger := log.WithComponent("daemon")

	loader := config.NewLoader(configPath, version)
	initial, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("initial load: %w", err)
	}

	holder := config.NewHolder(initial, loader, runtime.ReloadDebounce)

	var hist *history.Store
	if runtime.HistoryDir != "" {
		hist, err = history.Open(runtime.HistoryDir)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		if err := hist.Append(ctx, history.FromSnapshot(initial)); err != nil {
			logger.Warn().Err(err).Str("event", "history.append_failed").Msg("could not record initial revision")
		}
	}

	exports, err := buildCache(runtime, logger)
	if err != nil {
		closeQuietly(hist)
		return nil, err
	}

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        runtime.TracingEnabled,
		ServiceName:    runtime.LogService,
		ServiceVersion: version,
		ExporterType:   runtime.TracingExporter,
		Endpoint:       runtime.TracingEndpoint,
		SamplingRate:   runtime.TracingSampling,
	})
	if err != nil {
		closeQuietly(hist)
		_ = exports.Close()
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var histIface api.History
	if hist != nil {
		histIface = hist
	}
	srv := api.New(holder, histIface, exports, runtime)

	return &App{
		logger:    logger,
		runtime:   runtime,
		version:   version,
		holder:    holder,
		hist:      hist,
		exports:   exports,
		telemetry: provider,
		server: &http.Server{
			Addr:              runtime.ListenAddr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		reloadSignal: syscall.SIGHUP,
	}, nil
}

func buildCache(runtime config.Runtime, logger zerolog.Logger) (cache.Cache, error) {
	switch runtime.CacheBackend {
	case "redis":
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     runtime.RedisAddr,
			Password: runtime.RedisPassword,
			DB:       runtime.RedisDB,
		}, logger)
	case "memory", "":
		return cache.NewMemoryCache(time.Minute), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", runtime.CacheBackend)
	}
}

// Holder exposes the config holder, mostly for tests.
func (a *App) Holder() *config.Holder {
	return a.holder
}

// Run starts the watcher, reload listeners and HTTP server, then
// blocks until ctx is cancelled or a subsystem fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// Watcher is best-effort: a missing inotify backend should not
	// stop the daemon, reloads still work via SIGHUP and the API.
	if err := a.holder.StartWatcher(ctx); err != nil {
		a.logger.Warn().Err(err).Str("event", "watch.start_failed").Msg("config watcher unavailable")
	}

	// Every accepted reload lands in the revision history.
	if a.hist != nil {
		snapCh := make(chan config.Snapshot, 4)
		a.holder.RegisterListener(snapCh)

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case snap := <-snapCh:
					a.recordRevision(ctx, snap)
				}
			}
		})
	}

	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, a.reloadSignal)
		defer signal.Stop(hup)

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-hup:
				a.logger.Info().Str("event", "config.reload_signal").Msg("received SIGHUP, reloading")
				if err := a.holder.Reload(context.Background(), "signal"); err != nil {
					a.logger.Warn().Err(err).Str("event", "config.reload_failed").Msg("reload failed, keeping current snapshot")
				}
			}
		}
	})

	g.Go(func() error {
		a.logger.Info().
			Str("event", "startup").
			Str("version", a.version).
			Str("addr", a.server.Addr).
			Str("config", a.holder.Current().Source).
			Msg("starting confkit")

		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.shutdown()
	})

	err := g.Wait()
	a.close()
	return err
}

func (a *App) recordRevision(ctx context.Context, snap config.Snapshot) {
	if err := a.hist.Append(ctx, history.FromSnapshot(snap)); err != nil {
		a.logger.Warn().Err(err).Str("event", "history.append_failed").Str("revision", snap.Revision).Msg("could not record revision")
		return
	}
	if a.runtime.HistoryKeep > 0 {
		if pruned, err := a.hist.Prune(ctx, a.runtime.HistoryKeep); err != nil {
			a.logger.Warn().Err(err).Str("event", "history.prune_failed").Msg("prune failed")
		} else if pruned > 0 {
			a.logger.Debug().Int("pruned", pruned).Msg("pruned old revisions")
		}
	}
}

func (a *App) shutdown() error {
	a.logger.Info().Str("event", "shutdown").Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.holder.Stop()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// close releases resources once the errgroup has drained. Telemetry
// goes last so shutdown spans still flush.
func (a *App) close() {
	closeQuietly(a.hist)
	if a.exports != nil {
		_ = a.exports.Close()
	}
	if a.telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.telemetry.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}
}

func closeQuietly(hist *history.Store) {
	if hist != nil {
		_ = hist.Close()
	}
}
