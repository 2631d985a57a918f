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
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"logarchive/platform/connectors/base"
	"logarchive/platform/connectors/sdk"
	"logarchive/platform/shared/logger"
)

// SecretsManager retrieves a secret as a flat string map.
type SecretsManager interface {
	GetSecret(ctx context.Context, secretRef string) (map[string]string, error)
}

// secretValueAPI is the subset of the AWS client used here.
type secretValueAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManager implements SecretsManager using AWS Secrets Manager
type AWSSecretsManager struct {
	client secretValueAPI
	cache  map[string]*secretCacheEntry
	mu     sync.RWMutex
	ttl    time.Duration
	logger *logger.Logger
}

type secretCacheEntry struct {
	value     map[string]string
	expiresAt time.Time
}

// AWSSecretsManagerOptions holds options for creating an AWSSecretsManager
type AWSSecretsManagerOptions struct {
	Region   string
	CacheTTL time.Duration
	Logger   *logger.Logger
}

// NewAWSSecretsManager creates a client from the default AWS credential chain.
func NewAWSSecretsManager(ctx context.Context, opts AWSSecretsManagerOptions) (*AWSSecretsManager, error) {
	cfgOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newAWSSecretsManager(secretsmanager.NewFromConfig(cfg), opts), nil
}

func newAWSSecretsManager(client secretValueAPI, opts AWSSecretsManagerOptions) *AWSSecretsManager {
	log := opts.Logger
	if log == nil {
		log = logger.New("secrets-manager")
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &AWSSecretsManager{
		client: client,
		cache:  make(map[string]*secretCacheEntry),
		ttl:    ttl,
		logger: log,
	}
}

// GetSecret retrieves a secret from AWS Secrets Manager. A JSON object
// secret is returned as is; any other string is returned under "value".
func (s *AWSSecretsManager) GetSecret(ctx context.Context, secretARN string) (map[string]string, error) {
	s.mu.RLock()
	entry, exists := s.cache[secretARN]
	s.mu.RUnlock()

	if exists && time.Now().Before(entry.expiresAt) {
		s.logger.Debug(sdk.GetRequestID(ctx), "Secret cache hit", map[string]interface{}{"secret": maskARN(secretARN)})
		return entry.value, nil
	}

	s.logger.Info(sdk.GetRequestID(ctx), "Fetching secret from AWS Secrets Manager", map[string]interface{}{"secret": maskARN(secretARN)})

	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretARN),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", maskARN(secretARN), err)
	}
	if result.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", maskARN(secretARN))
	}

	secretValue := aws.ToString(result.SecretString)
	var credentials map[string]string
	if err := json.Unmarshal([]byte(secretValue), &credentials); err != nil {
		credentials = map[string]string{"value": secretValue}
	}

	s.mu.Lock()
	s.cache[secretARN] = &secretCacheEntry{
		value:     credentials,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	return credentials, nil
}

// InvalidateSecret removes a secret from the cache
func (s *AWSSecretsManager) InvalidateSecret(secretARN string) {
	s.mu.Lock()
	delete(s.cache, secretARN)
	s.mu.Unlock()
}

// InvalidateAll clears the entire secret cache
func (s *AWSSecretsManager) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string]*secretCacheEntry)
	s.mu.Unlock()
}

// maskARN shows only the last 8 characters of a secret reference.
func maskARN(arn string) string {
	if len(arn) <= 12 {
		return "***"
	}
	return "..." + arn[len(arn)-8:]
}

// LocalSecretsManager keeps secrets in memory. Used in development and tests.
type LocalSecretsManager struct {
	secrets map[string]map[string]string
	mu      sync.RWMutex
}

// NewLocalSecretsManager creates an empty local secrets manager.
func NewLocalSecretsManager() *LocalSecretsManager {
	return &LocalSecretsManager{
		secrets: make(map[string]map[string]string),
	}
}

// GetSecret retrieves a secret from local storage
func (s *LocalSecretsManager) GetSecret(ctx context.Context, secretRef string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if secret, exists := s.secrets[secretRef]; exists {
		return secret, nil
	}
	return nil, fmt.Errorf("secret %s not found in local secrets manager", secretRef)
}

// SetSecret stores a secret locally
func (s *LocalSecretsManager) SetSecret(secretRef string, value map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[secretRef] = value
}

// EnvSecretsManager reads secrets from environment variables. The secret
// reference is used as a variable prefix: "CORALOGIX" reads
// CORALOGIX_API_KEY and CORALOGIX_VALUE.
type EnvSecretsManager struct{}

// NewEnvSecretsManager creates a secrets manager that reads from environment variables
func NewEnvSecretsManager() *EnvSecretsManager {
	return &EnvSecretsManager{}
}

var envSecretFields = map[string]string{
	"API_KEY": "api_key",
	"VALUE":   "value",
	"TOKEN":   "token",
}

// GetSecret retrieves credentials from environment variables
func (s *EnvSecretsManager) GetSecret(ctx context.Context, secretRef string) (map[string]string, error) {
	credentials := make(map[string]string)
	for field, key := range envSecretFields {
		if value := os.Getenv(secretRef + "_" + field); value != "" {
			credentials[key] = value
		}
	}

	if len(credentials) == 0 {
		return nil, fmt.Errorf("no credentials found for prefix %s", secretRef)
	}
	return credentials, nil
}

// ResolveCredentials fills Credentials["api_key"] from the secret named by
// Credentials["api_key_secret"] when no key is configured inline. The key is
// read from the secret's "api_key" field, then "value", then "token".
func ResolveCredentials(ctx context.Context, cfg *base.ConnectorConfig, secrets SecretsManager) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if cfg.Credentials["api_key"] != "" {
		return nil
	}

	ref := cfg.Credentials["api_key_secret"]
	if ref == "" {
		return nil
	}
	if secrets == nil {
		return fmt.Errorf("connector %s references secret %s but no secrets manager is configured", cfg.Name, maskARN(ref))
	}

	secret, err := secrets.GetSecret(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to resolve api key for connector %s: %w", cfg.Name, err)
	}

	for _, key := range []string{"api_key", "value", "token"} {
		if v := secret[key]; v != "" {
			if cfg.Credentials == nil {
				cfg.Credentials = make(map[string]string)
			}
			cfg.Credentials["api_key"] = v
			return nil
		}
	}
	return fmt.Errorf("secret %s for connector %s has no api key", maskARN(ref), cfg.Name)
}
