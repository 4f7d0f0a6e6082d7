// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package sync

import (
	"errors"
	"fmt"
)

// Lifecycle sentinels returned by Manager.
var (
	ErrAlreadyRunning  = errors.New("sync manager is already running")
	ErrNotRunning      = errors.New("sync manager is not running")
	ErrStopped         = errors.New("sync manager has been stopped")
	ErrCycleInProgress = errors.New("sync cycle already in progress")
)

// AuthError reports a failed getAuthToken call. Status is -1 when the call
// never produced an envelope.
type AuthError struct {
	Status int64
	Info   string
	Err    error
}

func (e *AuthError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("authentication failed: %v", e.Err)
	case e.Info != "":
		return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Info)
	default:
		return fmt.Sprintf("authentication failed (status %d)", e.Status)
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// StatusError is a well-formed envelope whose status is not 0. A stage that
// gets one is skipped without aborting the cycle.
type StatusError struct {
	Endpoint string
	Status   int64
	Info     string
}

func (e *StatusError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("%s returned status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.Status, e.Info)
}

// MappingError means one record could not be mapped to tree writes.
type MappingError struct {
	Kind  string
	Field string
	Err   error
}

func (e *MappingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("map %s: %s: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("map %s: missing %s", e.Kind, e.Field)
}

func (e *MappingError) Unwrap() error { return e.Err }

// isStatusError reports whether err carries a remote status error.
func isStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
