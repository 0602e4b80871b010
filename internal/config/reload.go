// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/confkit/confkit/internal/log"
	"github.com/confkit/confkit/internal/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Holder holds the current snapshot with atomic reloading capability.
// It provides thread-safe access and supports hot reloading from the
// file watcher or a manual trigger via the API.
type Holder struct {
	mu      sync.RWMutex
	current Snapshot
	loader  *Loader
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	debounce time.Duration
	limiter  *rate.Limiter

	reloadMu  sync.RWMutex
	listeners []chan<- Snapshot
}

// NewHolder creates a holder seeded with an initial snapshot.
func NewHolder(initial Snapshot, loader *Loader, debounce time.Duration) *Holder {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Holder{
		current:  initial,
		loader:   loader,
		logger:   log.WithComponent("config"),
		debounce: debounce,
		// Editors fire bursts of events per save; one reload per
		// second with a small burst absorbs the storm.
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// Current returns the current snapshot (thread-safe read).
func (h *Holder) Current() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reloads the file and validates it. If anything fails, the old
// snapshot is kept and the error returned: either the full new config
// is valid and applied, or nothing changes.
func (h *Holder) Reload(ctx context.Context, trigger string) error {
	h.logger.Info().Str("event", "config.reload_start").Str("trigger", trigger).Msg("reloading configuration")

	newSnap, err := h.loader.Load()
	if err != nil {
		metrics.IncReload(trigger, "failure")
		h.logger.Error().
			Err(err).
			Str("event", "config.reload_failed").
			Str("trigger", trigger).
			Msg("keeping previous configuration")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	oldSnap := h.current
	h.current = newSnap
	h.mu.Unlock()

	metrics.IncReload(trigger, "success")
	h.notifyListeners(newSnap)
	h.logChanges(oldSnap, newSnap)

	h.logger.Info().
		Str("event", "config.reload_success").
		Str("revision", newSnap.Revision).
		Msg("configuration reloaded")
	return nil
}

// StartWatcher starts watching the config file for changes. The watcher
// stops when ctx is cancelled.
func (h *Holder) StartWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	if err := watcher.Add(h.loader.Path()); err != nil {
		_ = watcher.Close() // Ignore close error in error path
		return fmt.Errorf("watch config file: %w", err)
	}

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str("path", h.loader.Path()).
		Msg("watching config file for changes")

	go h.watchLoop(ctx)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context) {
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			_ = h.watcher.Close() // Ignore close error on shutdown
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}

			// Write and Create cover vim, nano and plain redirects.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				h.logger.Debug().
					Str("event", "config.file_changed").
					Str("op", event.Op.String()).
					Msg("config file changed")

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(h.debounce, func() {
					if !h.limiter.Allow() {
						h.logger.Debug().
							Str("event", "config.reload_throttled").
							Msg("reload skipped by rate limiter")
						return
					}
					if err := h.Reload(ctx, "watcher"); err != nil {
						h.logger.Error().
							Err(err).
							Str("event", "config.auto_reload_failed").
							Msg("automatic config reload failed")
					}
				})
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str("event", "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Stop stops the watcher if running.
func (h *Holder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close() // Ignore close error on shutdown
	}
}

// RegisterListener registers a channel to receive snapshots after each
// successful reload. The caller owns the channel.
func (h *Holder) RegisterListener(ch chan<- Snapshot) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notifyListeners(snap Snapshot) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.listeners {
		select {
		case ch <- snap:
		default:
			h.logger.Warn().
				Str("event", "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

func (h *Holder) logChanges(old, next Snapshot) {
	summary := Diff(old.Project.Store, next.Project.Store)
	if summary.Empty() {
		h.logger.Debug().Str("event", "config.reload_noop").Msg("reload produced no semantic changes")
		return
	}
	for _, name := range summary.AddedSections {
		h.logger.Info().Str("section", name).Msg("section added")
	}
	for _, name := range summary.RemovedSections {
		h.logger.Info().Str("section", name).Msg("section removed")
	}
	for _, c := range summary.Changed {
		h.logger.Info().
			Str("section", c.Section).
			Str("option", c.Key).
			Str("old", c.Old).
			Str("new", c.New).
			Msg("option changed")
	}
}
