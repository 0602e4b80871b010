// SPDX-License-Identifier: MIT

package config

import (
	"fmt"

	"github.com/confkit/confkit/internal/ini"
)

// OptionChange records one option whose value differs between two stores.
type OptionChange struct {
	Section string `json:"section"`
	Key     string `json:"key"`
	Old     string `json:"old"`
	New     string `json:"new"`
}

func (c OptionChange) String() string {
	return fmt.Sprintf("%s.%s: %q -> %q", c.Section, c.Key, c.Old, c.New)
}

// ChangeSummary describes the result of comparing two stores.
type ChangeSummary struct {
	AddedSections   []string       `json:"added_sections,omitempty"`
	RemovedSections []string       `json:"removed_sections,omitempty"`
	Changed         []OptionChange `json:"changed,omitempty"`
}

// Empty reports whether the two stores are semantically identical.
func (s ChangeSummary) Empty() bool {
	return len(s.AddedSections) == 0 && len(s.RemovedSections) == 0 && len(s.Changed) == 0
}

// Diff compares two stores section by section. Sections and options are
// walked in the new store's declaration order so the summary reads like
// the file does.
func Diff(old, next *ini.Store) ChangeSummary {
	var summary ChangeSummary

	for _, name := range next.Sections() {
		if !old.Has(name) {
			summary.AddedSections = append(summary.AddedSections, name)
			continue
		}
		oldSec, newSec := old.Section(name), next.Section(name)
		for _, key := range newSec.Keys() {
			nv, _ := newSec.Raw(key)
			ov, declared := oldSec.Raw(key)
			if !declared || ov != nv {
				summary.Changed = append(summary.Changed, OptionChange{Section: name, Key: key, Old: ov, New: nv})
			}
		}
		for _, key := range oldSec.Keys() {
			if _, still := newSec.Raw(key); !still {
				ov, _ := oldSec.Raw(key)
				summary.Changed = append(summary.Changed, OptionChange{Section: name, Key: key, Old: ov, New: ""})
			}
		}
	}

	for _, name := range old.Sections() {
		if !next.Has(name) {
			summary.RemovedSections = append(summary.RemovedSections, name)
		}
	}

	return summary
}
