// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/solarguardian/internal/validation"
)

// Validate checks struct rules and the cross-field rules that tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}
	if err := c.validateBaseURL(); err != nil {
		return err
	}
	return c.validateNATS()
}

func (c *Config) validateBaseURL() error {
	u, err := url.Parse(c.Solarguardian.BaseURL)
	if err != nil {
		return fmt.Errorf("solarguardian.base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("solarguardian.base_url must use http or https, got %q", u.Scheme)
	}
	if strings.HasSuffix(u.Path, "/") {
		return fmt.Errorf("solarguardian.base_url must not end with a slash")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if strings.ContainsAny(c.NATS.SubjectPrefix, " *>") || strings.HasSuffix(c.NATS.SubjectPrefix, ".") {
		return fmt.Errorf("nats.subject_prefix %q is not a valid subject prefix", c.NATS.SubjectPrefix)
	}
	if c.NATS.Embedded {
		return nil
	}
	u, err := url.Parse(c.NATS.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("nats.url %q is invalid when nats.embedded=false", c.NATS.URL)
	}
	return nil
}
