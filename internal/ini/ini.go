// SPDX-License-Identifier: MIT

// Package ini implements the setup.cfg-style configuration store used by
// confkit. A Store is a section-keyed mapping from tool name to an ordered
// set of option/value pairs. It is built once by Load and is immutable
// afterwards, so all accessors are safe for concurrent use.
package ini

import "strings"

// Store holds the parsed configuration, keyed by section name.
type Store struct {
	file     string
	order    []string
	sections map[string]*Section
}

// Section is an ordered option/value mapping scoped to one consuming tool.
type Section struct {
	name   string
	order  []string
	values map[string]string
}

// File returns the name the store was loaded from ("" for readers).
func (s *Store) File() string {
	return s.file
}

// Sections returns section names in declaration order.
func (s *Store) Sections() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Has reports whether a section was declared.
func (s *Store) Has(name string) bool {
	_, ok := s.sections[name]
	return ok
}

// Section returns the named section. An absent name yields an empty
// section, never nil: tools treat "not declared" as "use defaults".
func (s *Store) Section(name string) *Section {
	if sec, ok := s.sections[name]; ok {
		return sec
	}
	return &Section{name: name, values: map[string]string{}}
}

// Lookup returns the named section and whether it was declared.
func (s *Store) Lookup(name string) (*Section, bool) {
	sec, ok := s.sections[name]
	if !ok {
		return s.Section(name), false
	}
	return sec, true
}

// Name returns the section name as declared.
func (sec *Section) Name() string {
	return sec.name
}

// Len returns the number of declared options.
func (sec *Section) Len() int {
	return len(sec.order)
}

// Keys returns option names in declaration order.
func (sec *Section) Keys() []string {
	out := make([]string, len(sec.order))
	copy(out, sec.order)
	return out
}

// Raw returns the stored value verbatim (list values keep embedded
// newlines) and whether the option was declared.
//
// Lookups are exact first, then dash/underscore-insensitive: the tools
// this file targets accept max-line-length and max_line_length alike.
func (sec *Section) Raw(key string) (string, bool) {
	if v, ok := sec.values[key]; ok {
		return v, true
	}
	folded := foldKey(key)
	for _, k := range sec.order {
		if foldKey(k) == folded {
			return sec.values[k], true
		}
	}
	return "", false
}

func foldKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(k), "-", "_")
}
