// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package validation

import (
	"strings"
	"testing"
)

type credentials struct {
	AppKey    string `koanf:"app_key" validate:"required"`
	AppSecret string `koanf:"app_secret" validate:"required"`
}

type sample struct {
	Creds   credentials `koanf:"solarguardian"`
	BaseURL string      `koanf:"base_url" validate:"required,url"`
	Level   string      `koanf:"level" validate:"oneof=debug info"`
	Port    int         `koanf:"port" validate:"gte=1,lte=65535"`
}

type query struct {
	Prefix string `query:"prefix" validate:"omitempty,treeprefix"`
}

func TestValidateStructValid(t *testing.T) {
	t.Parallel()

	s := sample{
		Creds:   credentials{AppKey: "k", AppSecret: "s"},
		BaseURL: "https://openapi.epsolarpv.com",
		Level:   "info",
		Port:    8080,
	}
	if err := ValidateStruct(s); err != nil {
		t.Fatalf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStructUsesKoanfNames(t *testing.T) {
	t.Parallel()

	s := sample{BaseURL: "not a url", Level: "loud", Port: 0}
	err := ValidateStruct(s)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want errors")
	}

	want := map[string]string{
		"solarguardian.app_key":    "solarguardian.app_key is required",
		"solarguardian.app_secret": "solarguardian.app_secret is required",
		"base_url":                 "base_url must be a valid URL",
		"level":                    "level must be one of: debug info",
		"port":                     "port must be greater than or equal to 1",
	}
	if len(err.Fields) != len(want) {
		t.Fatalf("got %d field errors, want %d: %v", len(err.Fields), len(want), err)
	}
	for _, fe := range err.Fields {
		msg, ok := want[fe.Field]
		if !ok {
			t.Errorf("unexpected field %q", fe.Field)
			continue
		}
		if fe.Message != msg {
			t.Errorf("field %q message = %q, want %q", fe.Field, fe.Message, msg)
		}
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("Error() should join messages: %q", err.Error())
	}
}

func TestTreePrefixRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		valid  bool
	}{
		{"", true},
		{"devices", true},
		{"devices.12.parameters", true},
		{"info.connection", true},
		{"devices..12", false},
		{".devices", false},
		{"devices.", false},
		{"devices/12", false},
		{"devices.*", false},
	}
	for _, tt := range tests {
		err := ValidateStruct(query{Prefix: tt.prefix})
		if (err == nil) != tt.valid {
			t.Errorf("prefix %q: valid = %v, want %v (err=%v)", tt.prefix, err == nil, tt.valid, err)
		}
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}
