// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package events

import (
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/solarguardian/internal/tree"
)

// ChangeEvent is the payload of one change notification.
type ChangeEvent struct {
	Path      string          `json:"path"`
	Value     json.RawMessage `json:"value"`
	Previous  json.RawMessage `json:"previous,omitempty"`
	Changed   bool            `json:"changed"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewChangeEvent converts a tree change into its wire form.
func NewChangeEvent(c tree.Change) ChangeEvent {
	return ChangeEvent{
		Path:      c.Path.String(),
		Value:     c.Value,
		Previous:  c.Previous,
		Changed:   c.Changed,
		Timestamp: c.Timestamp,
	}
}

// Subject returns the NATS subject for path under prefix. Path segments are
// already free of whitespace and "*"; a lone ">" segment is replaced so that
// the subject is never a wildcard.
func Subject(prefix string, path tree.Path) string {
	segments := path.Segments()
	for i, s := range segments {
		if s == ">" {
			segments[i] = "_"
		}
	}
	if prefix == "" {
		return strings.Join(segments, ".")
	}
	return prefix + "." + strings.Join(segments, ".")
}
