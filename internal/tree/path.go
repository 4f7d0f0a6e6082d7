// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package tree

import (
	"fmt"
	"strings"
	"unicode"
)

// Separator delimits path segments.
const Separator = "."

// Path is a dot-delimited address in the tree.
type Path string

// Segment sanitizes one path segment. The separator, wildcard characters,
// brackets, whitespace and control characters are replaced with an
// underscore. An empty segment becomes a single underscore.
func Segment(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if forbiddenRune(r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func forbiddenRune(r rune) bool {
	switch r {
	case '.', '*', '?', '[', ']':
		return true
	}
	return unicode.IsSpace(r) || unicode.IsControl(r)
}

// Join builds a path from raw segments, sanitizing each one.
func Join(segments ...string) Path {
	clean := make([]string, len(segments))
	for i, s := range segments {
		clean[i] = Segment(s)
	}
	return Path(strings.Join(clean, Separator))
}

// Child appends sanitized segments to p.
func (p Path) Child(segments ...string) Path {
	if p == "" {
		return Join(segments...)
	}
	return p + Separator + Join(segments...)
}

// String implements fmt.Stringer.
func (p Path) String() string {
	return string(p)
}

// Segments splits p into its segments.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), Separator)
}

// Valid reports whether p is a well-formed, already sanitized path.
func (p Path) Valid() error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	for i, seg := range p.Segments() {
		if seg == "" {
			return fmt.Errorf("%w: empty segment %d in %q", ErrInvalidPath, i, string(p))
		}
		if Segment(seg) != seg {
			return fmt.Errorf("%w: segment %q contains reserved characters", ErrInvalidPath, seg)
		}
	}
	return nil
}

// HasPrefix reports whether p is prefix or a descendant of prefix. The empty
// prefix matches every path.
func (p Path) HasPrefix(prefix Path) bool {
	if prefix == "" || p == prefix {
		return true
	}
	return strings.HasPrefix(string(p), string(prefix)+Separator)
}

// ParsePath validates s and returns it as a Path.
func ParsePath(s string) (Path, error) {
	p := Path(strings.TrimSpace(s))
	if err := p.Valid(); err != nil {
		return "", err
	}
	return p, nil
}
