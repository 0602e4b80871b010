// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/confkit/confkit/internal/config"
	"github.com/confkit/confkit/internal/export"
	"github.com/confkit/confkit/internal/ini"
	"github.com/confkit/confkit/internal/metrics"
	"github.com/confkit/confkit/internal/version"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
		"uptime":  time.Since(s.startTime).String(),
	})
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if s.holder.Current().Revision == "" {
		writeServiceUnavailable(w, "no configuration loaded yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleSections(w http.ResponseWriter, _ *http.Request) {
	snap := s.holder.Current()
	if snap.Project.Store == nil {
		writeServiceUnavailable(w, "no configuration loaded yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"revision": snap.Revision,
		"sections": snap.Project.Store.Sections(),
	})
}

type sectionResponse struct {
	Revision string            `json:"revision"`
	Section  export.SectionDoc `json:"section"`
	View     any               `json:"view,omitempty"`
	Warnings []config.Warning  `json:"warnings,omitempty"`
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	snap := s.holder.Current()
	store := snap.Project.Store
	if store == nil {
		writeServiceUnavailable(w, "no configuration loaded yet")
		return
	}

	if !store.Has(name) {
		writeNotFound(w, fmt.Sprintf("section %q is not declared", name))
		return
	}
	metrics.SectionReadsTotal.WithLabelValues(name).Inc()

	docs, err := export.Document(store, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := sectionResponse{Revision: snap.Revision, Section: docs[0]}
	switch name {
	case config.SectionCoverageRun:
		resp.View = snap.Project.Coverage
	case config.SectionPytest, config.SectionPytestAlias:
		resp.View = snap.Project.Pytest
	case config.SectionFlake8:
		resp.View = snap.Project.Flake8
	case config.SectionMypy:
		resp.View = snap.Project.Mypy
	case config.SectionIsort:
		resp.View = snap.Project.Isort
	}
	writeJSON(w, http.StatusOK, resp)
}

type optionResponse struct {
	Revision string   `json:"revision"`
	Section  string   `json:"section"`
	Key      string   `json:"key"`
	Raw      string   `json:"raw"`
	List     []string `json:"list"`
	Int      *int     `json:"int,omitempty"`
	Bool     *bool    `json:"bool,omitempty"`
}

func (s *Server) handleOption(w http.ResponseWriter, r *http.Request) {
	sectionName := chi.URLParam(r, "section")
	key := chi.URLParam(r, "key")
	snap := s.holder.Current()
	store := snap.Project.Store
	if store == nil {
		writeServiceUnavailable(w, "no configuration loaded yet")
		return
	}

	if !store.Has(sectionName) {
		writeNotFound(w, fmt.Sprintf("section %q is not declared", sectionName))
		return
	}
	sec := store.Section(sectionName)
	raw, ok := sec.Raw(key)
	if !ok {
		writeNotFound(w, fmt.Sprintf("option %q is not declared in section %q", key, sectionName))
		return
	}

	resp := optionResponse{
		Revision: snap.Revision,
		Section:  sectionName,
		Key:      key,
		Raw:      raw,
		List:     ini.SplitList(raw),
	}
	if n, err := sec.Int(key, 0); err == nil {
		resp.Int = &n
	}
	if b, err := sec.Bool(key, false); err == nil {
		resp.Bool = &b
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap := s.holder.Current()
	if snap.Project.Store == nil {
		writeServiceUnavailable(w, "no configuration loaded yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"revision":  snap.Revision,
		"source":    snap.Source,
		"mod_time":  snap.ModTime,
		"loaded_at": snap.LoadedAt,
		"sections":  len(snap.Project.Store.Sections()),
		"warnings":  snap.Warnings,
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.holder.Reload(r.Context(), "api"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "reloaded",
		"revision": s.holder.Current().Revision,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(defaultString(r.URL.Query().Get("format"), "ini"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	section := r.URL.Query().Get("section")
	snap := s.holder.Current()
	if snap.Project.Store == nil {
		writeServiceUnavailable(w, "no configuration loaded yet")
		return
	}

	cacheKey := fmt.Sprintf("export:%s:%s:%s", format, section, snap.Revision)
	if s.exports != nil {
		if payload, ok := s.exports.Get(cacheKey); ok {
			writePayload(w, format, payload)
			return
		}
	}

	payload, err := export.Render(snap.Project.Store, section, format)
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}
	if s.exports != nil {
		s.exports.Set(cacheKey, payload, s.runtime.CacheTTL)
	}
	writePayload(w, format, payload)
}

func (s *Server) handleRevisions(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		writeServiceUnavailable(w, "revision history is disabled")
		return
	}
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := s.hist.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revisions": records})
}

func (s *Server) handleRevision(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		writeServiceUnavailable(w, "revision history is disabled")
		return
	}
	id := chi.URLParam(r, "id")
	rec, found, err := s.hist.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !found {
		writeNotFound(w, fmt.Sprintf("revision %q", id))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writePayload(w http.ResponseWriter, format export.Format, payload []byte) {
	switch format {
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case export.FormatYAML:
		w.Header().Set("Content-Type", "application/yaml")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
