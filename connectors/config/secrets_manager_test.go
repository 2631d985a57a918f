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
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"logarchive/platform/connectors/base"
	"logarchive/platform/shared/logger"
)

func TestMaskARN(t *testing.T) {
	tests := []struct {
		name string
		arn  string
		want string
	}{
		{
			name: "full ARN",
			arn:  "arn:aws:secretsmanager:us-east-1:123456789012:secret:my-secret-abc123",
			want: "...t-abc123",
		},
		{name: "short string", arn: "short", want: "***"},
		{name: "exact 12 chars", arn: "123456789012", want: "***"},
		{name: "13 chars", arn: "1234567890123", want: "...67890123"},
		{name: "empty string", arn: "", want: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskARN(tt.arn); got != tt.want {
				t.Errorf("maskARN(%q) = %q, want %q", tt.arn, got, tt.want)
			}
		})
	}
}

type fakeSecretsAPI struct {
	mu     sync.Mutex
	values map[string]*string
	err    error
	calls  int
}

func (f *fakeSecretsAPI) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.values[aws.ToString(params.SecretId)]}, nil
}

func TestAWSSecretsManager_GetSecret(t *testing.T) {
	ctx := context.Background()
	quiet := logger.NewWithWriter("secrets-test", io.Discard)

	t.Run("json secret is cached", func(t *testing.T) {
		api := &fakeSecretsAPI{values: map[string]*string{"cx": aws.String(`{"api_key":"cxup_1"}`)}}
		sm := newAWSSecretsManager(api, AWSSecretsManagerOptions{Logger: quiet})

		for i := 0; i < 2; i++ {
			secret, err := sm.GetSecret(ctx, "cx")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if secret["api_key"] != "cxup_1" {
				t.Errorf("unexpected secret %v", secret)
			}
		}
		if api.calls != 1 {
			t.Errorf("expected one upstream call, got %d", api.calls)
		}

		sm.InvalidateSecret("cx")
		if _, err := sm.GetSecret(ctx, "cx"); err != nil {
			t.Fatal(err)
		}
		sm.InvalidateAll()
		if _, err := sm.GetSecret(ctx, "cx"); err != nil {
			t.Fatal(err)
		}
		if api.calls != 3 {
			t.Errorf("expected refetch after invalidation, got %d calls", api.calls)
		}
	})

	t.Run("plain string secret", func(t *testing.T) {
		api := &fakeSecretsAPI{values: map[string]*string{"raw": aws.String("cxup_raw")}}
		sm := newAWSSecretsManager(api, AWSSecretsManagerOptions{Logger: quiet, CacheTTL: time.Minute})

		secret, err := sm.GetSecret(ctx, "raw")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if secret["value"] != "cxup_raw" {
			t.Errorf("expected value key, got %v", secret)
		}
	})

	t.Run("binary secret", func(t *testing.T) {
		api := &fakeSecretsAPI{values: map[string]*string{}}
		sm := newAWSSecretsManager(api, AWSSecretsManagerOptions{Logger: quiet})

		if _, err := sm.GetSecret(ctx, "binary"); err == nil || !strings.Contains(err.Error(), "no string value") {
			t.Errorf("expected no string value error, got %v", err)
		}
	})

	t.Run("upstream error", func(t *testing.T) {
		api := &fakeSecretsAPI{err: errors.New("AccessDenied")}
		sm := newAWSSecretsManager(api, AWSSecretsManagerOptions{Logger: quiet})

		if _, err := sm.GetSecret(ctx, "arn:aws:secretsmanager:eu-west-1:1:secret:cx"); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLocalSecretsManager(t *testing.T) {
	sm := NewLocalSecretsManager()
	ctx := context.Background()

	if _, err := sm.GetSecret(ctx, "missing"); err == nil {
		t.Error("expected error for missing secret")
	}

	sm.SetSecret("cx", map[string]string{"api_key": "local"})
	secret, err := sm.GetSecret(ctx, "cx")
	if err != nil || secret["api_key"] != "local" {
		t.Errorf("unexpected result %v, %v", secret, err)
	}
}

func TestEnvSecretsManager(t *testing.T) {
	sm := NewEnvSecretsManager()
	ctx := context.Background()

	t.Setenv("CXTEST_API_KEY", "env-key")
	t.Setenv("CXTEST_TOKEN", "env-token")

	secret, err := sm.GetSecret(ctx, "CXTEST")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret["api_key"] != "env-key" || secret["token"] != "env-token" {
		t.Errorf("unexpected secret %v", secret)
	}

	if _, err := sm.GetSecret(ctx, "NOPE_NOT_SET"); err == nil {
		t.Error("expected error when no variables are set")
	}
}

func TestResolveCredentials(t *testing.T) {
	ctx := context.Background()
	secrets := NewLocalSecretsManager()
	secrets.SetSecret("with-key", map[string]string{"api_key": "k1"})
	secrets.SetSecret("with-value", map[string]string{"value": "k2"})
	secrets.SetSecret("empty", map[string]string{"other": "x"})

	tests := []struct {
		name    string
		creds   map[string]string
		secrets SecretsManager
		wantKey string
		wantErr bool
	}{
		{name: "inline key wins", creds: map[string]string{"api_key": "inline", "api_key_secret": "with-key"}, secrets: secrets, wantKey: "inline"},
		{name: "no reference", creds: map[string]string{}, secrets: secrets, wantKey: ""},
		{name: "api_key field", creds: map[string]string{"api_key_secret": "with-key"}, secrets: secrets, wantKey: "k1"},
		{name: "value field", creds: map[string]string{"api_key_secret": "with-value"}, secrets: secrets, wantKey: "k2"},
		{name: "secret without key", creds: map[string]string{"api_key_secret": "empty"}, secrets: secrets, wantErr: true},
		{name: "unknown secret", creds: map[string]string{"api_key_secret": "missing"}, secrets: secrets, wantErr: true},
		{name: "no manager", creds: map[string]string{"api_key_secret": "with-key"}, secrets: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &base.ConnectorConfig{Name: "prod", Credentials: tt.creds}
			err := ResolveCredentials(ctx, cfg, tt.secrets)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.Credentials["api_key"] != tt.wantKey {
				t.Errorf("expected api_key %q, got %q", tt.wantKey, cfg.Credentials["api_key"])
			}
		})
	}

	if err := ResolveCredentials(ctx, nil, secrets); err == nil {
		t.Error("expected error for nil config")
	}
}
