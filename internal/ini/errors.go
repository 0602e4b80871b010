// SPDX-License-Identifier: MIT

package ini

import "fmt"

// ParseError reports malformed input. It is fatal to the invoking tool
// and carries file/line context so it can be surfaced verbatim.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// TypeError reports a stored value that cannot be coerced to the type
// the caller asked for. It is raised at the point of use, not at load
// time: the store does not know consumers' expected types in advance.
type TypeError struct {
	Section string
	Key     string
	Want    string
	Value   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("option %s.%s: cannot coerce %q to %s", e.Section, e.Key, e.Value, e.Want)
}

func parseErr(file string, line int, format string, args ...any) *ParseError {
	return &ParseError{File: file, Line: line, Msg: fmt.Sprintf(format, args...)}
}
