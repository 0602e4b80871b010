// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/confkit/confkit/internal/ini"
	"github.com/confkit/confkit/internal/log"
	"github.com/confkit/confkit/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Loader turns a configuration file into validated snapshots.
// Concurrent Load calls for the same path are collapsed into one parse
// via singleflight; each caller still receives its own snapshot value.
type Loader struct {
	configPath string
	version    string
	group      singleflight.Group
	logger     zerolog.Logger
}

// NewLoader creates a loader for the given file.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath: configPath,
		version:    version,
		logger:     log.WithComponent("loader"),
	}
}

// Path returns the configured file path.
func (l *Loader) Path() string {
	return l.configPath
}

// Load parses, builds and validates the configured file, returning an
// immutable snapshot. Parse errors, type errors and guardrail failures
// are fatal; unknown sections only warn.
func (l *Loader) Load() (Snapshot, error) {
	v, err, _ := l.group.Do(l.configPath, func() (any, error) {
		return l.load()
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

func (l *Loader) load() (Snapshot, error) {
	start := time.Now()

	info, err := os.Stat(l.configPath)
	if err != nil {
		metrics.IncLoad("failure")
		return Snapshot{}, fmt.Errorf("stat config: %w", err)
	}

	store, err := ini.LoadFile(l.configPath)
	if err != nil {
		metrics.IncLoad("failure")
		var perr *ini.ParseError
		if errors.As(err, &perr) {
			metrics.ParseErrorsTotal.Inc()
			l.logger.Error().
				Str("event", "config.parse_failed").
				Str("path", l.configPath).
				Int("line", perr.Line).
				Msg(perr.Msg)
		}
		return Snapshot{}, err
	}

	project, err := Build(store)
	if err != nil {
		metrics.IncLoad("failure")
		return Snapshot{}, fmt.Errorf("build tool views: %w", err)
	}

	warnings, err := Validate(project)
	if err != nil {
		metrics.IncLoad("failure")
		return Snapshot{}, fmt.Errorf("validate: %w", err)
	}
	for _, w := range warnings {
		l.logger.Warn().
			Str("event", "config.warning").
			Str("section", w.Section).
			Msg(w.Msg)
	}

	snap := BuildSnapshot(project, l.configPath, info.ModTime(), warnings)

	metrics.IncLoad("success")
	metrics.LoadDuration.Observe(time.Since(start).Seconds())
	l.logger.Info().
		Str("event", "config.loaded").
		Str("path", l.configPath).
		Str("revision", snap.Revision).
		Int("sections", len(store.Sections())).
		Int("warnings", len(warnings)).
		Msg("configuration loaded")

	return snap, nil
}
