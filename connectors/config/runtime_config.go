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
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"logarchive/platform/connectors/base"
	"logarchive/platform/connectors/sdk"
	"logarchive/platform/shared/logger"
)

// ConnectorsEnvVar lists the connector names loaded from the environment,
// comma separated. Each name is then read with LoadFromEnv.
const ConnectorsEnvVar = "ARCHIVE_CONNECTORS"

// ConfigSource indicates where a configuration was loaded from
type ConfigSource string

const (
	ConfigSourceCache   ConfigSource = "cache"
	ConfigSourceFile    ConfigSource = "config_file"
	ConfigSourceEnvVars ConfigSource = "env_vars"
)

// RuntimeConfigService resolves connector configs with caching.
// Priority: config file, then environment variables.
type RuntimeConfigService struct {
	cache          *ConfigCache
	secretsManager SecretsManager
	logger         *logger.Logger
	mu             sync.RWMutex

	fileLoader ConfigFileLoader
	envNames   []string
}

// RuntimeConfigServiceOptions holds options for creating a RuntimeConfigService
type RuntimeConfigServiceOptions struct {
	FileLoader     ConfigFileLoader
	SecretsManager SecretsManager
	// EnvConnectors overrides the ARCHIVE_CONNECTORS list.
	EnvConnectors []string
	CacheTTL      time.Duration
	Logger        *logger.Logger
}

// NewRuntimeConfigService creates a new RuntimeConfigService
func NewRuntimeConfigService(opts RuntimeConfigServiceOptions) *RuntimeConfigService {
	log := opts.Logger
	if log == nil {
		log = logger.New("runtime-config")
	}

	envNames := opts.EnvConnectors
	if envNames == nil {
		envNames = splitNames(os.Getenv(ConnectorsEnvVar))
	}

	return &RuntimeConfigService{
		cache:          NewConfigCache(opts.CacheTTL),
		secretsManager: opts.SecretsManager,
		fileLoader:     opts.FileLoader,
		envNames:       envNames,
		logger:         log,
	}
}

// SetConfigFileLoader replaces the file source and drops cached configs.
func (s *RuntimeConfigService) SetConfigFileLoader(loader ConfigFileLoader) {
	s.mu.Lock()
	s.fileLoader = loader
	s.mu.Unlock()
	s.cache.InvalidateAll()
}

// GetConnectorConfigs returns all enabled connector configs for a tenant
// with api keys resolved.
func (s *RuntimeConfigService) GetConnectorConfigs(ctx context.Context, tenantID string) ([]*base.ConnectorConfig, ConfigSource, error) {
	requestID := sdk.GetRequestID(ctx)

	if cached, ok := s.cache.GetConnectors(tenantID); ok {
		return cached, ConfigSourceCache, nil
	}

	s.mu.RLock()
	fileLoader := s.fileLoader
	s.mu.RUnlock()

	if fileLoader != nil {
		configs, err := fileLoader.LoadConnectors(tenantID)
		if err != nil {
			s.logger.Warn(requestID, "Failed to load connectors from config file", map[string]interface{}{
				"tenant_id": tenantID,
				"error":     err.Error(),
			})
		} else if len(configs) > 0 {
			if err := s.resolveAll(ctx, configs); err != nil {
				return nil, "", err
			}
			s.cache.SetConnectors(tenantID, configs)
			s.logger.Info(requestID, "Loaded connector configs", map[string]interface{}{
				"tenant_id": tenantID,
				"source":    string(ConfigSourceFile),
				"count":     len(configs),
			})
			return configs, ConfigSourceFile, nil
		}
	}

	configs := s.loadConnectorsFromEnvVars(requestID, tenantID)
	if len(configs) > 0 {
		if err := s.resolveAll(ctx, configs); err != nil {
			return nil, "", err
		}
		s.cache.SetConnectors(tenantID, configs)
		s.logger.Info(requestID, "Loaded connector configs", map[string]interface{}{
			"tenant_id": tenantID,
			"source":    string(ConfigSourceEnvVars),
			"count":     len(configs),
		})
		return configs, ConfigSourceEnvVars, nil
	}

	return nil, "", fmt.Errorf("no connector configurations found for tenant %s", tenantID)
}

// GetConnectorConfig returns a specific connector config by name
func (s *RuntimeConfigService) GetConnectorConfig(ctx context.Context, tenantID, connectorName string) (*base.ConnectorConfig, ConfigSource, error) {
	configs, source, err := s.GetConnectorConfigs(ctx, tenantID)
	if err != nil {
		return nil, "", err
	}

	for _, cfg := range configs {
		if cfg.Name == connectorName {
			return cfg, source, nil
		}
	}

	return nil, "", fmt.Errorf("connector '%s' not found for tenant %s", connectorName, tenantID)
}

// RefreshConnectorConfig drops a connector from the tenant cache.
func (s *RuntimeConfigService) RefreshConnectorConfig(tenantID, connectorName string) {
	s.cache.InvalidateConnector(tenantID, connectorName)
}

// RefreshAllConfigs invalidates all cached configurations
func (s *RuntimeConfigService) RefreshAllConfigs() {
	s.cache.InvalidateAll()
}

// GetCacheStats returns cache performance statistics
func (s *RuntimeConfigService) GetCacheStats() CacheStats {
	return s.cache.GetStats()
}

// StartPeriodicCleanup evicts expired cache entries every interval until
// ctx is cancelled.
func (s *RuntimeConfigService) StartPeriodicCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if evicted := s.cache.Cleanup(); evicted > 0 {
					s.logger.Debug("", "Cleaned up expired config cache entries", map[string]interface{}{"evicted": evicted})
				}
			}
		}
	}()
}

func (s *RuntimeConfigService) loadConnectorsFromEnvVars(requestID, tenantID string) []*base.ConnectorConfig {
	var configs []*base.ConnectorConfig
	for _, name := range s.envNames {
		cfg, err := LoadFromEnv(name)
		if err != nil {
			s.logger.Warn(requestID, "Skipping connector from environment", map[string]interface{}{
				"connector": name,
				"error":     err.Error(),
			})
			continue
		}
		if tenantID != "*" && cfg.TenantID != "*" && cfg.TenantID != tenantID {
			continue
		}
		configs = append(configs, cfg)
	}
	return configs
}

func (s *RuntimeConfigService) resolveAll(ctx context.Context, configs []*base.ConnectorConfig) error {
	for _, cfg := range configs {
		if err := ResolveCredentials(ctx, cfg, s.secretsManager); err != nil {
			return err
		}
		if err := ValidateConfig(cfg); err != nil {
			return fmt.Errorf("invalid connector config %s: %w", cfg.Name, err)
		}
	}
	return nil
}

func splitNames(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
