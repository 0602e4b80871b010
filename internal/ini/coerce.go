// SPDX-License-Identifier: MIT

package ini

import (
	"strconv"
	"strings"
)

// String returns the option value or def when the option is absent.
// A declared-but-empty option returns the empty string, not def.
func (sec *Section) String(key, def string) string {
	v, ok := sec.Raw(key)
	if !ok {
		return def
	}
	return v
}

// Bool returns the option coerced to a boolean, or def when absent.
// Accepted spellings match what the consuming tools accept:
// true/false, 1/0, yes/no, on/off, any case.
func (sec *Section) Bool(key string, def bool) (bool, error) {
	v, ok := sec.Raw(key)
	if !ok {
		return def, nil
	}
	if isList(v) {
		return def, &TypeError{Section: sec.name, Key: key, Want: "bool", Value: v}
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return def, &TypeError{Section: sec.name, Key: key, Want: "bool", Value: v}
}

// Int returns the option coerced to an integer, or def when absent.
func (sec *Section) Int(key string, def int) (int, error) {
	v, ok := sec.Raw(key)
	if !ok {
		return def, nil
	}
	if isList(v) {
		return def, &TypeError{Section: sec.name, Key: key, Want: "int", Value: v}
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, &TypeError{Section: sec.name, Key: key, Want: "int", Value: v}
	}
	return n, nil
}

// List returns the option as an ordered list of strings, or def when
// absent. Values split on newlines and commas; items are trimmed and
// empties dropped, so both continuation-line and comma-separated
// declarations yield the same list. A plain scalar is a one-element
// list, which is how every consuming tool reads it.
func (sec *Section) List(key string, def []string) []string {
	v, ok := sec.Raw(key)
	if !ok {
		return def
	}
	return SplitList(v)
}

// SplitList splits a raw option value into an ordered list of strings.
func SplitList(v string) []string {
	out := []string{}
	for _, line := range strings.Split(v, "\n") {
		for _, item := range strings.Split(line, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// isList reports whether a stored value is list-shaped. Reading such a
// value through a scalar getter is the observable type mismatch.
func isList(v string) bool {
	return strings.ContainsAny(v, "\n")
}
