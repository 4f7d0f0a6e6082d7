// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package epcloud

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, ms int64) time.Time {
	t.Helper()
	return time.UnixMilli(ms)
}
