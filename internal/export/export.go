// SPDX-License-Identifier: MIT

// Package export renders a parsed store to INI, JSON or YAML and
// handles atomic on-disk rewrites of the configuration file.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/confkit/confkit/internal/ini"
	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Format selects an output encoding.
type Format string

const (
	FormatINI  Format = "ini"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatINI:
		return FormatINI, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format %q (supported: ini, json, yaml)", s)
}

// OptionDoc is one rendered option. List is set for list-shaped values
// so consumers get the split form without re-implementing it.
type OptionDoc struct {
	Key   string   `json:"key" yaml:"key"`
	Value string   `json:"value" yaml:"value"`
	List  []string `json:"list,omitempty" yaml:"list,omitempty"`
}

// SectionDoc is one rendered section with options in declaration order.
type SectionDoc struct {
	Name    string      `json:"name" yaml:"name"`
	Options []OptionDoc `json:"options" yaml:"options"`
}

// Document builds the ordered export document for a store, optionally
// restricted to a single section.
func Document(store *ini.Store, section string) ([]SectionDoc, error) {
	names := store.Sections()
	if section != "" {
		if !store.Has(section) {
			return nil, fmt.Errorf("section %q is not declared", section)
		}
		names = []string{section}
	}

	docs := make([]SectionDoc, 0, len(names))
	for _, name := range names {
		sec := store.Section(name)
		doc := SectionDoc{Name: name, Options: make([]OptionDoc, 0, sec.Len())}
		for _, key := range sec.Keys() {
			raw, _ := sec.Raw(key)
			opt := OptionDoc{Key: key, Value: raw}
			if strings.Contains(raw, "\n") {
				opt.List = ini.SplitList(raw)
			}
			doc.Options = append(doc.Options, opt)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Render encodes the store (or one section of it) in the given format.
func Render(store *ini.Store, section string, format Format) ([]byte, error) {
	switch format {
	case FormatINI:
		if section == "" {
			return []byte(store.Render()), nil
		}
		docs, err := Document(store, section)
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		for _, doc := range docs {
			fmt.Fprintf(&b, "[%s]\n", doc.Name)
			for _, opt := range doc.Options {
				if len(opt.List) > 0 {
					fmt.Fprintf(&b, "%s =\n", opt.Key)
					for _, item := range opt.List {
						fmt.Fprintf(&b, "    %s\n", item)
					}
					continue
				}
				if opt.Value == "" {
					fmt.Fprintf(&b, "%s =\n", opt.Key)
				} else {
					fmt.Fprintf(&b, "%s = %s\n", opt.Key, opt.Value)
				}
			}
		}
		return []byte(b.String()), nil

	case FormatJSON:
		docs, err := Document(store, section)
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(docs, "", "  ")

	case FormatYAML:
		docs, err := Document(store, section)
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(docs)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

// FormatResult reports what a Rewrite pass found.
type FormatResult struct {
	Changed   bool
	Canonical []byte
}

// Rewrite loads path, renders its canonical form and, when write is
// set and the form differs, replaces the file atomically (write temp,
// rename) so concurrent readers never see a partial file.
func Rewrite(path string, write bool) (FormatResult, error) {
	store, err := ini.LoadFile(path)
	if err != nil {
		return FormatResult{}, err
	}

	current, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
	if err != nil {
		return FormatResult{}, fmt.Errorf("read config: %w", err)
	}

	canonical := []byte(store.Render())
	res := FormatResult{Changed: !bytes.Equal(current, canonical), Canonical: canonical}
	if !res.Changed || !write {
		return res, nil
	}

	if err := renameio.WriteFile(path, canonical, 0o644); err != nil {
		return res, fmt.Errorf("rewrite config: %w", err)
	}
	return res, nil
}

// WriteFileAtomic writes data to path via a temp file and rename.
func WriteFileAtomic(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("atomic write: %w", err)
	}
	return nil
}
