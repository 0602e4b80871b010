package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/confkit/confkit/internal/cache"
	"github.com/confkit/confkit/internal/config"
	"github.com/confkit/confkit/internal/history"
	"github.com/confkit/confkit/internal/ini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverCfg = `[coverage:run]
branch = True
source =
    dependencies
    helpers

[flake8]
max-line-length = 88

[tool:pytest]
addopts = -ra
`

type stubHolder struct {
	mu        sync.Mutex
	snap      config.Snapshot
	reloadErr error
	reloads   int
}

func (h *stubHolder) Current() config.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap
}

func (h *stubHolder) Reload(_ context.Context, _ string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads++
	return h.reloadErr
}

func testSnapshot(t *testing.T) config.Snapshot {
	t.Helper()
	store, err := ini.Load("setup.cfg", strings.NewReader(serverCfg))
	require.NoError(t, err)
	project, err := config.Build(store)
	require.NoError(t, err)
	warnings, err := config.Validate(project)
	require.NoError(t, err)
	return config.BuildSnapshot(project, "setup.cfg", time.Now(), warnings)
}

func newTestServer(t *testing.T, holder Holder, hist History, exports cache.Cache) *httptest.Server {
	t.Helper()
	runtime := config.RuntimeFromEnv()
	srv := httptest.NewServer(New(holder, hist, exports, runtime).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubHolder{}, nil, nil)

	var body map[string]string
	code := getJSON(t, srv.URL+"/healthz", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadyzBeforeFirstLoad(t *testing.T) {
	srv := newTestServer(t, &stubHolder{}, nil, nil)

	code := getJSON(t, srv.URL+"/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestReadyzAfterLoad(t *testing.T) {
	srv := newTestServer(t, &stubHolder{snap: testSnapshot(t)}, nil, nil)

	code := getJSON(t, srv.URL+"/readyz", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestSectionsPreservesOrder(t *testing.T) {
	srv := newTestServer(t, &stubHolder{snap: testSnapshot(t)}, nil, nil)

	var body struct {
		Revision string   `json:"revision"`
		Sections []string `json:"sections"`
	}
	code := getJSON(t, srv.URL+"/api/v1/sections", &body)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body.Revision)
	assert.Equal(t, []string{"coverage:run", "flake8", "tool:pytest"}, body.Sections)
}

func TestSectionDetail(t *testing.T) {
	srv := newTestServer(t, &stubHolder{snap: testSnapshot(t)}, nil, nil)

	var body struct {
		Section struct {
			Name    string `json:"name"`
			Options []struct {
				Key string `json:"key"`
				Raw string `json:"raw"`
			} `json:"options"`
		} `json:"section"`
		View map[string]any `json:"view"`
	}
	code := getJSON(t, srv.URL+"/api/v1/sections/flake8", &body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "flake8", body.Section.Name)
	require.Len(t, body.Section.Options, 1)
	assert.Equal(t, "max-line-length", body.Section.Options[0].Key)
	assert.NotNil(t, body.View)
}

func TestSectionNotFound(t *testing.T) {
	srv := newTestServer(t, &stubHolder{snap: testSnapshot(t)}, nil, nil)

	code := getJSON(t, srv.URL+"/api/v1/sections/isort", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOptionCoercions(t *testing.T) {
	srv := newTestServer(t, &stubHolder{snap: testSnapshot(t)}, nil, nil)

	var lineLength optionResponse
	code := getJSON(t, srv.URL+"/api/v1/options/flake8/max-line-length", &lineLength)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "88", lineLength.Raw)
	require.NotNil(t, lineLength.Int)
	assert.Equal(t, 88, *lineLength.Int)
	assert.Nil(t, lineLength.Bool)

	var branch optionResponse
	code = getJSON(t, srv.URL+"/api/v1/options/coverage:run/branch", &branch)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, branch.Bool)
	assert.True(t, *branch.Bool)

	var source optionResponse
	code = getJSON(t, srv.URL+"/api/v1/options/coverage:run/source", &source)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"dependencies", "helpers"}, source.List)
	assert.Nil(t, source.Int)
	assert.Nil(t, source.Bool)
}

func TestOptionLookupFoldsDashes(t *testing.T) {
	srv := newTestServer(t, &stubHolder{snap: testSnapshot(t)}, nil, nil)

	var body optionResponse
	code := getJSON(t, srv.URL+"/api/v1/options/flake8/max_line_length", &body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "88", body.Raw)
}

func TestOptionNotFound(t *testing.T) {
	srv := newTestServer(t, &stubHolder{snap: testSnapshot(t)}, nil, nil)

	code := getJSON(t, srv.URL+"/api/v1/options/flake8/ignore", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestExportRendersAndCaches(t *testing.T) {
	exports := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = exports.Close() })
	srv := newTestServer(t, &stubHolder{snap: testSnapshot(t)}, nil, exports)

	resp, err := http.Get(srv.URL + "/api/v1/export?format=json&section=flake8")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	// Same revision, same key: the second request is a cache hit.
	code := getJSON(t, srv.URL+"/api/v1/export?format=json&section=flake8", nil)
	require.Equal(t, http.StatusOK, code)
	assert.GreaterOrEqual(t, exports.Stats().Hits, int64(1))
}

func TestExportRejectsBadInput(t *testing.T) {
	srv := newTestServer(t, &stubHolder{snap: testSnapshot(t)}, nil, nil)

	code := getJSON(t, srv.URL+"/api/v1/export?format=toml", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = getJSON(t, srv.URL+"/api/v1/export?section=nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRevisionsDisabled(t *testing.T) {
	srv := newTestServer(t, &stubHolder{snap: testSnapshot(t)}, nil, nil)

	code := getJSON(t, srv.URL+"/api/v1/revisions", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestRevisionsRoundTrip(t *testing.T) {
	hist, err := history.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = hist.Close() })

	snap := testSnapshot(t)
	require.NoError(t, hist.Append(context.Background(), history.FromSnapshot(snap)))

	srv := newTestServer(t, &stubHolder{snap: snap}, hist, nil)

	var list struct {
		Revisions []history.Record `json:"revisions"`
	}
	code := getJSON(t, srv.URL+"/api/v1/revisions", &list)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, list.Revisions, 1)
	assert.Equal(t, snap.Revision, list.Revisions[0].Revision)

	var rec history.Record
	code = getJSON(t, srv.URL+"/api/v1/revisions/"+snap.Revision, &rec)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, snap.Revision, rec.Revision)
	assert.Contains(t, rec.Content, "[flake8]")

	code = getJSON(t, srv.URL+"/api/v1/revisions/no-such-revision", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestReload(t *testing.T) {
	holder := &stubHolder{snap: testSnapshot(t)}
	srv := newTestServer(t, holder, nil, nil)

	resp, err := http.Post(srv.URL+"/api/v1/reload", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	holder.mu.Lock()
	assert.Equal(t, 1, holder.reloads)
	holder.mu.Unlock()
}

func TestReloadFailureKeepsServing(t *testing.T) {
	holder := &stubHolder{
		snap:      testSnapshot(t),
		reloadErr: errors.New("setup.cfg:3: duplicate option"),
	}
	srv := newTestServer(t, holder, nil, nil)

	resp, err := http.Post(srv.URL+"/api/v1/reload", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	code := getJSON(t, srv.URL+"/api/v1/sections", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, &stubHolder{}, nil, nil)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "test-request-1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "test-request-1", resp.Header.Get("X-Request-Id"))
}
