// SPDX-License-Identifier: MIT
package metrics_test

import (
	"net/http/httptest"
	"testing"

	"github.com/confkit/confkit/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromhttpExposure(t *testing.T) {
	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, 200, resp.StatusCode)
}

func TestIncReloadLabels(t *testing.T) {
	metrics.IncReload("watcher", "success")
	metrics.IncReload("", "")

	var m dto.Metric
	require.NoError(t, metrics.ReloadsTotal.WithLabelValues("watcher", "success").Write(&m))
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), 1.0)

	require.NoError(t, metrics.ReloadsTotal.WithLabelValues("unknown", "unknown").Write(&m))
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), 1.0)
}

func TestIncUnknownSectionDefaultsLabel(t *testing.T) {
	metrics.IncUnknownSection("mypy-typo")

	var m dto.Metric
	require.NoError(t, metrics.UnknownSectionsTotal.WithLabelValues("mypy-typo").Write(&m))
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), 1.0)
}
