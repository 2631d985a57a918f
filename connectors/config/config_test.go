// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"strings"
	"testing"
	"time"

	"logarchive/platform/connectors/base"
)

func TestEnvName(t *testing.T) {
	tests := map[string]string{
		"prod":         "ARCHIVE_PROD_",
		"prod-archive": "ARCHIVE_PROD_ARCHIVE_",
		"eu.archive":   "ARCHIVE_EU_ARCHIVE_",
	}
	for in, want := range tests {
		if got := EnvName(in); got != want {
			t.Errorf("EnvName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("all variables", func(t *testing.T) {
		t.Setenv("ARCHIVE_PROD_URL", "api.coralogix.com/")
		t.Setenv("ARCHIVE_PROD_API_KEY", "cxup_secret")
		t.Setenv("ARCHIVE_PROD_API_KEY_SECRET", "arn:aws:secretsmanager:eu-west-1:1:secret:cx")
		t.Setenv("ARCHIVE_PROD_VERIFY_SSL", "false")
		t.Setenv("ARCHIVE_PROD_TIMEOUT", "45s")
		t.Setenv("ARCHIVE_PROD_TENANT_ID", "tenant-a")
		t.Setenv("ARCHIVE_PROD_SEARCH_ENDPOINT", "/api/v2/query")
		t.Setenv("ARCHIVE_PROD_MAX_LOOKBACK", "6h")

		cfg, err := LoadFromEnv("prod")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Name != "prod" || cfg.Type != "coralogix" {
			t.Errorf("unexpected identity: %s/%s", cfg.Name, cfg.Type)
		}
		if cfg.ConnectionURL != "api.coralogix.com/" {
			t.Errorf("expected raw URL kept, got %s", cfg.ConnectionURL)
		}
		if cfg.Credentials["api_key"] != "cxup_secret" {
			t.Errorf("unexpected api key %q", cfg.Credentials["api_key"])
		}
		if cfg.Credentials["api_key_secret"] == "" {
			t.Error("expected secret reference")
		}
		if cfg.Options["verify_ssl"] != false {
			t.Errorf("expected verify_ssl false, got %v", cfg.Options["verify_ssl"])
		}
		if cfg.Timeout != 45*time.Second {
			t.Errorf("expected 45s timeout, got %v", cfg.Timeout)
		}
		if cfg.TenantID != "tenant-a" {
			t.Errorf("unexpected tenant %s", cfg.TenantID)
		}
		if cfg.Options["search_endpoint"] != "/api/v2/query" || cfg.Options["max_lookback"] != "6h" {
			t.Errorf("unexpected options %v", cfg.Options)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ARCHIVE_MIN_URL", "api.coralogix.com")

		cfg, err := LoadFromEnv("min")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Timeout != 0 {
			t.Errorf("expected zero timeout, got %v", cfg.Timeout)
		}
		if cfg.TenantID != "*" {
			t.Errorf("expected wildcard tenant, got %s", cfg.TenantID)
		}
		if _, ok := cfg.Options["verify_ssl"]; ok {
			t.Error("expected verify_ssl unset")
		}
	})

	t.Run("missing url", func(t *testing.T) {
		_, err := LoadFromEnv("absent")
		if err == nil || !strings.Contains(err.Error(), "ARCHIVE_ABSENT_URL") {
			t.Errorf("expected missing URL error, got %v", err)
		}
	})

	invalid := []struct {
		name  string
		key   string
		value string
	}{
		{"bad timeout", "ARCHIVE_BAD_TIMEOUT", "soon"},
		{"bad verify", "ARCHIVE_BAD_VERIFY_SSL", "maybe"},
		{"bad lookback", "ARCHIVE_BAD_MAX_LOOKBACK", "forever"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ARCHIVE_BAD_URL", "api.coralogix.com")
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv("bad"); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() *base.ConnectorConfig {
		return &base.ConnectorConfig{
			Name:          "prod",
			Type:          "coralogix",
			ConnectionURL: "api.coralogix.com",
			Credentials:   map[string]string{"api_key": "k"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*base.ConnectorConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*base.ConnectorConfig) {}},
		{name: "missing name", mutate: func(c *base.ConnectorConfig) { c.Name = "" }, wantErr: "name is required"},
		{name: "missing type", mutate: func(c *base.ConnectorConfig) { c.Type = "" }, wantErr: "type is required"},
		{name: "unsupported type", mutate: func(c *base.ConnectorConfig) { c.Type = "postgres" }, wantErr: "unsupported"},
		{name: "missing url", mutate: func(c *base.ConnectorConfig) { c.ConnectionURL = "" }, wantErr: "connection URL"},
		{
			name: "url in options",
			mutate: func(c *base.ConnectorConfig) {
				c.ConnectionURL = ""
				c.Options = map[string]interface{}{"server_url": "api.coralogix.com"}
			},
		},
		{name: "missing key", mutate: func(c *base.ConnectorConfig) { c.Credentials = nil }, wantErr: "api_key"},
		{
			name:   "secret reference only",
			mutate: func(c *base.ConnectorConfig) { c.Credentials = map[string]string{"api_key_secret": "ref"} },
		},
		{name: "negative timeout", mutate: func(c *base.ConnectorConfig) { c.Timeout = -time.Second }, wantErr: "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if err := ValidateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
