// SPDX-License-Identifier: MIT

package ini

import (
	"fmt"
	"io"
	"strings"
)

// WriteTo renders the store in canonical form: sections and options in
// declaration order, scalars as `key = value`, list values as an empty
// assignment followed by one indented line per item. The output
// round-trips through Load.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for i, name := range s.order {
		if i > 0 {
			m, err := fmt.Fprintln(w)
			n += int64(m)
			if err != nil {
				return n, err
			}
		}
		m, err := fmt.Fprintf(w, "[%s]\n", name)
		n += int64(m)
		if err != nil {
			return n, err
		}
		sec := s.sections[name]
		for _, key := range sec.order {
			v := sec.values[key]
			if strings.Contains(v, "\n") {
				m, err = fmt.Fprintf(w, "%s =\n", key)
				n += int64(m)
				if err != nil {
					return n, err
				}
				for _, item := range strings.Split(v, "\n") {
					m, err = fmt.Fprintf(w, "    %s\n", item)
					n += int64(m)
					if err != nil {
						return n, err
					}
				}
				continue
			}
			if v == "" {
				m, err = fmt.Fprintf(w, "%s =\n", key)
			} else {
				m, err = fmt.Fprintf(w, "%s = %s\n", key, v)
			}
			n += int64(m)
			if err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// Render returns the canonical form as a string.
func (s *Store) Render() string {
	var b strings.Builder
	_, _ = s.WriteTo(&b)
	return b.String()
}
