// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus collectors for confkit.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confkit_config_loads_total",
		Help: "Total configuration load attempts by result",
	}, []string{"result"})

	ReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confkit_config_reloads_total",
		Help: "Total configuration reloads by trigger and result",
	}, []string{"trigger", "result"})

	ParseErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "confkit_parse_errors_total",
		Help: "Total fatal parse errors encountered while loading",
	})

	UnknownSectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confkit_unknown_sections_total",
		Help: "Total unknown-section warnings by section name",
	}, []string{"section"})

	SectionReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confkit_section_reads_total",
		Help: "Total section reads served over the API",
	}, []string{"section"})

	CacheOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confkit_cache_ops_total",
		Help: "Total export cache operations by backend and outcome",
	}, []string{"backend", "op"})

	RevisionsStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "confkit_revisions_stored",
		Help: "Number of revisions currently held in history",
	})

	LoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "confkit_config_load_duration_seconds",
		Help:    "Duration of configuration load and validation",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confkit_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "code"})
)

// IncLoad records a load attempt.
func IncLoad(result string) {
	if result == "" {
		result = "unknown"
	}
	LoadsTotal.WithLabelValues(result).Inc()
}

// IncReload records a reload attempt for the given trigger.
func IncReload(trigger, result string) {
	if trigger == "" {
		trigger = "unknown"
	}
	if result == "" {
		result = "unknown"
	}
	ReloadsTotal.WithLabelValues(trigger, result).Inc()
}

// IncUnknownSection records an unknown-section warning.
func IncUnknownSection(section string) {
	if section == "" {
		section = "unknown"
	}
	UnknownSectionsTotal.WithLabelValues(section).Inc()
}

// IncCacheOp records a cache operation ("hit", "miss", "set", "error").
func IncCacheOp(backend, op string) {
	CacheOpsTotal.WithLabelValues(backend, op).Inc()
}
