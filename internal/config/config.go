// SPDX-License-Identifier: MIT

// Package config builds typed per-tool views over the raw ini store and
// manages the lifecycle of the effective configuration: load, validate,
// snapshot, diff, and hot reload.
package config

import (
	"strings"

	"github.com/confkit/confkit/internal/ini"
	"github.com/confkit/confkit/internal/metrics"
)

// Section names the aggregator knows about. Everything else produces an
// unknown-section warning, never an error, so new tool sections stay
// forward compatible.
const (
	SectionCoverageRun = "coverage:run"
	SectionPytest      = "tool:pytest"
	SectionPytestAlias = "pytest"
	SectionFlake8      = "flake8"
	SectionMypy        = "mypy"
	SectionIsort       = "isort"

	mypyOverridePrefix = "mypy-"
)

// Coverage holds the settings the coverage measurer reads from [coverage:run].
type Coverage struct {
	Branch bool
	Source []string
}

// Pytest holds the settings the test runner reads from [tool:pytest].
type Pytest struct {
	Addopts string
}

// Flake8 holds the settings the style checker reads from [flake8].
type Flake8 struct {
	MaxLineLength int
	Exclude       []string
}

// MypyOverride is one per-module override section (mypy-<pattern>).
// The pattern is kept verbatim, glob suffix included: the store never
// pattern-matches, the type checker does.
type MypyOverride struct {
	Pattern              string
	IgnoreMissingImports bool
}

// Mypy holds the settings the type checker reads from [mypy] plus all
// declared per-module overrides in declaration order.
type Mypy struct {
	PythonVersion string
	Overrides     []MypyOverride
}

// Isort holds the settings the import sorter reads from [isort].
type Isort struct {
	MultiLineOutput      int
	IncludeTrailingComma bool
	LineLength           int
	LinesAfterImports    int
	KnownFirstParty      []string
	KnownThirdParty      []string
	Skip                 []string
}

// Project is the aggregated, typed view of one tooling-configuration
// file. It keeps the raw store alongside the views so callers can still
// reach sections no view covers.
type Project struct {
	Coverage Coverage
	Pytest   Pytest
	Flake8   Flake8
	Mypy     Mypy
	Isort    Isort

	Store    *ini.Store
	Warnings []Warning
}

// Defaults mirror what the consuming tools apply when an option is absent.
const (
	defaultFlake8LineLength = 79
	defaultIsortLineLength  = 79
)

// Build constructs the typed views from a parsed store. Coercion
// failures surface as *ini.TypeError, at the point of use rather than
// at parse time. Unknown sections are collected as warnings.
func Build(store *ini.Store) (Project, error) {
	p := Project{Store: store}

	if err := buildPytest(store, &p.Pytest); err != nil {
		return p, err
	}

	cov := store.Section(SectionCoverageRun)
	branch, err := cov.Bool("branch", false)
	if err != nil {
		return p, err
	}
	p.Coverage = Coverage{Branch: branch, Source: cov.List("source", nil)}

	f8 := store.Section(SectionFlake8)
	maxLine, err := f8.Int("max-line-length", defaultFlake8LineLength)
	if err != nil {
		return p, err
	}
	p.Flake8 = Flake8{MaxLineLength: maxLine, Exclude: f8.List("exclude", nil)}

	if err := buildMypy(store, &p.Mypy); err != nil {
		return p, err
	}
	if err := buildIsort(store, &p.Isort); err != nil {
		return p, err
	}

	p.Warnings = collectUnknownSections(store)
	return p, nil
}

func buildPytest(store *ini.Store, out *Pytest) error {
	if store.Has(SectionPytest) && store.Has(SectionPytestAlias) {
		return aliasConflictError(SectionPytest, SectionPytestAlias)
	}
	sec := store.Section(SectionPytest)
	if !store.Has(SectionPytest) {
		sec = store.Section(SectionPytestAlias)
	}
	out.Addopts = sec.String("addopts", "")
	return nil
}

func buildMypy(store *ini.Store, out *Mypy) error {
	sec := store.Section(SectionMypy)
	out.PythonVersion = sec.String("python_version", "")

	for _, name := range store.Sections() {
		if !strings.HasPrefix(name, mypyOverridePrefix) {
			continue
		}
		ov := store.Section(name)
		ignore, err := ov.Bool("ignore_missing_imports", false)
		if err != nil {
			return err
		}
		out.Overrides = append(out.Overrides, MypyOverride{
			Pattern:              strings.TrimPrefix(name, mypyOverridePrefix),
			IgnoreMissingImports: ignore,
		})
	}
	return nil
}

func buildIsort(store *ini.Store, out *Isort) error {
	sec := store.Section(SectionIsort)

	var err error
	if out.MultiLineOutput, err = sec.Int("multi_line_output", 0); err != nil {
		return err
	}
	if out.IncludeTrailingComma, err = sec.Bool("include_trailing_comma", false); err != nil {
		return err
	}
	if out.LineLength, err = sec.Int("line_length", defaultIsortLineLength); err != nil {
		return err
	}
	if out.LinesAfterImports, err = sec.Int("lines_after_imports", -1); err != nil {
		return err
	}
	out.KnownFirstParty = sec.List("known_first_party", nil)
	out.KnownThirdParty = sec.List("known_third_party", nil)
	out.Skip = sec.List("skip", nil)
	return nil
}

func collectUnknownSections(store *ini.Store) []Warning {
	known := map[string]struct{}{
		SectionCoverageRun: {},
		SectionPytest:      {},
		SectionPytestAlias: {},
		SectionFlake8:      {},
		SectionMypy:        {},
		SectionIsort:       {},
	}

	var warnings []Warning
	for _, name := range store.Sections() {
		if _, ok := known[name]; ok {
			continue
		}
		if strings.HasPrefix(name, mypyOverridePrefix) {
			continue
		}
		metrics.IncUnknownSection(name)
		warnings = append(warnings, Warning{
			Section: name,
			Msg:     "section is not consumed by any known tool",
		})
	}
	return warnings
}

// KnownSections returns the literal (non-prefix) section names the
// aggregator consumes, in a stable order.
func KnownSections() []string {
	return []string{
		SectionCoverageRun,
		SectionPytest,
		SectionFlake8,
		SectionMypy,
		SectionIsort,
	}
}
