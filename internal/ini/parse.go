// SPDX-License-Identifier: MIT

package ini

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFile parses the file at path into a Store.
func LoadFile(path string) (*Store, error) {
	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	return Load(path, f)
}

// Load parses setup.cfg-style input into a Store. filename is used for
// error context only and may be empty.
//
// Grammar: `[section]` headers, `key = value` or `key: value` option
// lines, empty values whose subsequent indented lines form an ordered
// list, full-line `#`/`;` comments, blank lines. Duplicate sections and
// duplicate options are rejected.
func Load(filename string, r io.Reader) (*Store, error) {
	store := &Store{
		file:     filename,
		sections: make(map[string]*Section),
	}

	var (
		cur     *Section // section being filled
		curKey  string   // option accepting continuation lines
		scanner = bufio.NewScanner(r)
		lineno  = 0
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lineno++
		raw := scanner.Text()
		line := strings.TrimRight(raw, " \t\r")
		stripped := strings.TrimSpace(line)

		// Blank lines end a continuation block but are otherwise inert.
		if stripped == "" {
			curKey = ""
			continue
		}
		if stripped[0] == '#' || stripped[0] == ';' {
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'

		// Continuation line: belongs to the most recent option.
		if indented {
			if cur == nil || curKey == "" {
				return nil, parseErr(filename, lineno, "continuation line without a preceding option: %q", stripped)
			}
			prev := cur.values[curKey]
			if prev == "" {
				cur.values[curKey] = stripped
			} else {
				cur.values[curKey] = prev + "\n" + stripped
			}
			continue
		}

		// Section header.
		if stripped[0] == '[' {
			end := strings.IndexByte(stripped, ']')
			if end < 0 {
				return nil, parseErr(filename, lineno, "unterminated section header: %q", stripped)
			}
			if end != len(stripped)-1 {
				return nil, parseErr(filename, lineno, "trailing content after section header: %q", stripped)
			}
			name := strings.TrimSpace(stripped[1:end])
			if name == "" {
				return nil, parseErr(filename, lineno, "empty section name")
			}
			if _, dup := store.sections[name]; dup {
				return nil, parseErr(filename, lineno, "duplicate section %q", name)
			}
			cur = &Section{name: name, values: map[string]string{}}
			store.sections[name] = cur
			store.order = append(store.order, name)
			curKey = ""
			continue
		}

		// Option line: split at the first '=' or ':'.
		sep := strings.IndexAny(stripped, "=:")
		if sep < 0 {
			return nil, parseErr(filename, lineno, "malformed line (expected key = value): %q", stripped)
		}
		key := strings.TrimSpace(stripped[:sep])
		if key == "" {
			return nil, parseErr(filename, lineno, "option with empty name")
		}
		if cur == nil {
			return nil, parseErr(filename, lineno, "option %q before any section header", key)
		}
		if _, dup := cur.values[key]; dup {
			return nil, parseErr(filename, lineno, "duplicate option %q in section %q", key, cur.name)
		}
		cur.values[key] = strings.TrimSpace(stripped[sep+1:])
		cur.order = append(cur.order, key)
		curKey = key
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return store, nil
}
