// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package epcloud

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var jsonNull = []byte("null")

// isNull reports whether data is empty or the JSON literal null.
func isNull(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull)
}

// FlexID is a remote identifier that may be encoded as a JSON number or string.
// The zero value means the identifier was absent.
type FlexID string

// UnmarshalJSON accepts a number, a string or null.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*id = ""
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = FlexID(strings.TrimSpace(s))
		return nil
	}
	if _, err := strconv.ParseFloat(string(trimmed), 64); err != nil {
		return fmt.Errorf("decode id: invalid value %s", trimmed)
	}
	*id = FlexID(trimmed)
	return nil
}

// MarshalJSON writes decimal identifiers back as JSON numbers, which is how
// the API issues them, and everything else as strings.
func (id FlexID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return jsonNull, nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String returns the identifier text.
func (id FlexID) String() string {
	return string(id)
}

// IsZero reports whether the identifier was absent.
func (id FlexID) IsZero() bool {
	return id == ""
}

// FlexInt is an integer that may be encoded as a JSON number, a numeric string,
// a boolean or null. Fractions are truncated. Absent and null decode to 0.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*n = 0
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("true")):
		*n = 1
		return nil
	case bytes.Equal(trimmed, []byte("false")):
		*n = 0
		return nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode integer: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		trimmed = []byte(s)
	}
	f, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("decode integer: invalid value %s", trimmed)
	}
	*n = FlexInt(int64(f))
	return nil
}

// Int64 returns the value as int64.
func (n FlexInt) Int64() int64 {
	return int64(n)
}

// Value is an opaque JSON scalar passed through to the tree unchanged, such as
// a sample value or a timestamp whose type the API does not fix.
type Value []byte

// UnmarshalJSON keeps a copy of the raw bytes. null is stored as absent.
func (v *Value) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*v = nil
		return nil
	}
	*v = append((*v)[:0], bytes.TrimSpace(data)...)
	return nil
}

// MarshalJSON writes the raw bytes, or null when absent.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return jsonNull, nil
	}
	return v, nil
}

// IsZero reports whether the value was absent or null.
func (v Value) IsZero() bool {
	return len(v) == 0
}

// Or returns v as a json.RawMessage, or fallback encoded as JSON when v is absent.
func (v Value) Or(fallback interface{}) (json.RawMessage, error) {
	if !v.IsZero() {
		return json.RawMessage(v), nil
	}
	data, err := json.Marshal(fallback)
	if err != nil {
		return nil, fmt.Errorf("encode fallback: %w", err)
	}
	return data, nil
}
