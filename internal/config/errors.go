// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
)

var (
	// ErrAliasConflict classifies a file declaring the same logical
	// section under two accepted names (e.g. [pytest] and [tool:pytest]).
	// Check with errors.Is instead of string matching.
	ErrAliasConflict = errors.New("conflicting section aliases")

	// ErrEmptyConfig classifies a file that declares no sections at all.
	ErrEmptyConfig = errors.New("configuration declares no sections")
)

// Warning is a non-fatal finding surfaced by Build or Validate.
// Unknown sections are the canonical case: ignored rather than
// rejected, so new tool sections stay forward compatible.
type Warning struct {
	Section string `json:"section"`
	Msg     string `json:"msg"`
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Section, w.Msg)
}

func aliasConflictError(canonical, alias string) error {
	return fmt.Errorf("%w: both [%s] and [%s] are declared", ErrAliasConflict, canonical, alias)
}
