// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package logging

// SanitizeToken masks a bearer token, keeping the first and last 4 characters.
//
//	"eyJhbGciOiJIUzI1NiJ9.payload.sig" -> "eyJh...sig"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeSecret masks a configured secret entirely, reporting only whether
// it is set.
func SanitizeSecret(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
