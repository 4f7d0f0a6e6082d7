// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/solarguardian/internal/config"
	"github.com/tomtom215/solarguardian/internal/logging"
	"github.com/tomtom215/solarguardian/internal/metrics"
)

// Credential is an access token and the time it was issued. It is replaced
// wholesale on re-authentication and handed to cycles by value.
type Credential struct {
	Token      string
	AcquiredAt time.Time
}

// Age returns how long ago the credential was acquired.
func (c Credential) Age(now time.Time) time.Duration {
	return now.Sub(c.AcquiredAt)
}

// CredentialManager owns the access token.
type CredentialManager struct {
	api       EPCloudAPI
	appKey    string
	appSecret string
	refresh   time.Duration
	now       func() time.Time

	mu   sync.RWMutex
	cred Credential
	held bool
}

// NewCredentialManager creates a manager for the configured application keys.
func NewCredentialManager(api EPCloudAPI, cfg *config.SolarguardianConfig) *CredentialManager {
	return &CredentialManager{
		api:       api,
		appKey:    cfg.AppKey,
		appSecret: cfg.AppSecret,
		refresh:   cfg.TokenRefreshInterval,
		now:       time.Now,
	}
}

// Acquire authenticates and stores the new credential. Every failure is an
// *AuthError.
func (c *CredentialManager) Acquire(ctx context.Context) (Credential, error) {
	token, err := c.api.GetAuthToken(ctx, c.appKey, c.appSecret)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		var se *StatusError
		if errors.As(err, &se) {
			return Credential{}, &AuthError{Status: se.Status, Info: se.Info}
		}
		return Credential{}, &AuthError{Status: -1, Err: err}
	}
	if token == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return Credential{}, &AuthError{Status: 0, Info: "response carried no access token"}
	}

	cred := Credential{Token: token, AcquiredAt: c.now()}
	c.mu.Lock()
	c.cred = cred
	c.held = true
	c.mu.Unlock()

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	logging.Ctx(ctx).Info().Str("token", logging.SanitizeToken(token)).Msg("Authenticated with EPEver cloud")
	return cred, nil
}

// Current returns the held credential, if any.
func (c *CredentialManager) Current() (Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cred, c.held
}

// EnsureFresh returns the held credential, re-authenticating first when none
// is held or when a refresh interval is configured and has elapsed.
func (c *CredentialManager) EnsureFresh(ctx context.Context) (Credential, error) {
	cred, held := c.Current()
	if held && (c.refresh <= 0 || cred.Age(c.now()) < c.refresh) {
		return cred, nil
	}
	logging.Ctx(ctx).Debug().Dur("refresh_interval", c.refresh).Msg("Refreshing access token")
	return c.Acquire(ctx)
}
