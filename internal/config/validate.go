// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
)

// Guardrail bounds for line lengths. Values outside this range are
// almost certainly typos and would make the style checker useless.
const (
	minLineLength = 40
	maxLineLength = 400
)

// Validate applies guardrails to a built project. It returns the
// combined warning list (build-time unknown-section warnings plus
// validation findings) and an error when a setting is out of bounds.
func Validate(p Project) ([]Warning, error) {
	if len(p.Store.Sections()) == 0 {
		return nil, ErrEmptyConfig
	}

	warnings := append([]Warning{}, p.Warnings...)

	if ll := p.Flake8.MaxLineLength; ll < minLineLength || ll > maxLineLength {
		return warnings, fmt.Errorf("flake8 max-line-length %d outside sane bounds [%d, %d]", ll, minLineLength, maxLineLength)
	}
	if ll := p.Isort.LineLength; ll < minLineLength || ll > maxLineLength {
		return warnings, fmt.Errorf("isort line_length %d outside sane bounds [%d, %d]", ll, minLineLength, maxLineLength)
	}

	if p.Isort.LineLength != p.Flake8.MaxLineLength {
		warnings = append(warnings, Warning{
			Section: SectionIsort,
			Msg: fmt.Sprintf("line_length %d drifts from flake8 max-line-length %d; the two tools will disagree on wrapping",
				p.Isort.LineLength, p.Flake8.MaxLineLength),
		})
	}

	if p.Coverage.Branch && len(p.Coverage.Source) == 0 {
		warnings = append(warnings, Warning{
			Section: SectionCoverageRun,
			Msg:     "branch coverage enabled but no source packages are measured",
		})
	}

	if p.Store.Has(SectionMypy) && p.Mypy.PythonVersion == "" {
		warnings = append(warnings, Warning{
			Section: SectionMypy,
			Msg:     "mypy section present without python_version; checks default to the interpreter running mypy",
		})
	}

	return warnings, nil
}
