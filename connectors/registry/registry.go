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

package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"logarchive/platform/connectors/base"
	"logarchive/platform/shared/logger"
)

// DefaultConnectTimeout bounds Connect when a config carries no timeout.
const DefaultConnectTimeout = 30 * time.Second

// ConnectorFactory creates a connector instance based on type
type ConnectorFactory func(connectorType string) (base.Connector, error)

// ConfigSource supplies connector configs for lazy registration.
type ConfigSource interface {
	GetConnectorConfigs(ctx context.Context, tenantID string) ([]*base.ConnectorConfig, error)
}

// ConfigSourceFunc adapts a function to ConfigSource.
type ConfigSourceFunc func(ctx context.Context, tenantID string) ([]*base.ConnectorConfig, error)

// GetConnectorConfigs calls f.
func (f ConfigSourceFunc) GetConnectorConfigs(ctx context.Context, tenantID string) ([]*base.ConnectorConfig, error) {
	return f(ctx, tenantID)
}

// Registry manages named connector instances.
// Thread-safe for concurrent access.
type Registry struct {
	connectors map[string]base.Connector
	configs    map[string]*base.ConnectorConfig
	factory    ConnectorFactory
	mu         sync.RWMutex
	logger     *logger.Logger
}

// NewRegistry creates an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{
		connectors: make(map[string]base.Connector),
		configs:    make(map[string]*base.ConnectorConfig),
		logger:     logger.New("connector-registry"),
	}
}

// SetLogger replaces the registry logger.
func (r *Registry) SetLogger(l *logger.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// SetFactory sets the connector factory used to instantiate configs
// added with AddConfig or LoadConfigs.
func (r *Registry) SetFactory(factory ConnectorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factory = factory
}

// AddConfig records a config without connecting. The connector is created
// by the factory and connected on first Get.
func (r *Registry) AddConfig(config *base.ConnectorConfig) error {
	if config == nil || config.Name == "" {
		return fmt.Errorf("connector config with a name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[config.Name]; exists {
		return fmt.Errorf("connector '%s' already registered", config.Name)
	}
	r.configs[config.Name] = config
	return nil
}

// LoadConfigs adds every config from source that is not yet known and
// returns how many were added.
func (r *Registry) LoadConfigs(ctx context.Context, source ConfigSource, tenantID string) (int, error) {
	configs, err := source.GetConnectorConfigs(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to load connector configs: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, config := range configs {
		if _, exists := r.configs[config.Name]; exists {
			continue
		}
		r.configs[config.Name] = config
		added++
		r.logger.Info("", "Loaded connector config", map[string]interface{}{
			"connector": config.Name,
			"type":      config.Type,
		})
	}
	return added, nil
}

// StartPeriodicReload calls LoadConfigs every interval until ctx is done.
func (r *Registry) StartPeriodicReload(ctx context.Context, source ConfigSource, tenantID string, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := r.LoadConfigs(ctx, source, tenantID); err != nil {
					r.logger.Warn("", "Periodic connector reload failed", map[string]interface{}{"error": err.Error()})
				}
			}
		}
	}()
}

// Register connects connector with config and adds it under name.
// Returns error if a connector with the same name already exists.
func (r *Registry) Register(ctx context.Context, name string, connector base.Connector, config *base.ConnectorConfig) error {
	if config == nil {
		return fmt.Errorf("config for connector '%s' is required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.connectors[name]; exists {
		return fmt.Errorf("connector '%s' already registered", name)
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout(config))
	defer cancel()

	if err := connector.Connect(connectCtx, config); err != nil {
		r.logger.Error("", "Failed to connect connector", map[string]interface{}{
			"connector": name,
			"error":     err.Error(),
		})
		return fmt.Errorf("failed to connect connector '%s': %w", name, err)
	}

	r.connectors[name] = connector
	r.configs[name] = config

	r.logger.Info("", "Registered connector", map[string]interface{}{
		"connector": name,
		"type":      config.Type,
	})
	return nil
}

// Unregister removes a connector from the registry and disconnects it
func (r *Registry) Unregister(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	connector, connected := r.connectors[name]
	_, configured := r.configs[name]
	if !connected && !configured {
		return fmt.Errorf("connector '%s' not found", name)
	}

	if connected {
		disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := connector.Disconnect(disconnectCtx); err != nil {
			r.logger.Warn("", "Error disconnecting connector", map[string]interface{}{
				"connector": name,
				"error":     err.Error(),
			})
		}
	}

	delete(r.connectors, name)
	delete(r.configs, name)
	return nil
}

// Get retrieves a connector by name, instantiating it from its config on
// first use.
func (r *Registry) Get(ctx context.Context, name string) (base.Connector, error) {
	r.mu.RLock()
	connector, exists := r.connectors[name]
	config, hasConfig := r.configs[name]
	factory := r.factory
	r.mu.RUnlock()

	if exists {
		return connector, nil
	}

	if hasConfig && factory != nil {
		return r.lazyLoadConnector(ctx, name, config)
	}

	return nil, fmt.Errorf("connector '%s' not found", name)
}

func (r *Registry) lazyLoadConnector(ctx context.Context, name string, config *base.ConnectorConfig) (base.Connector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have won the race.
	if connector, exists := r.connectors[name]; exists {
		return connector, nil
	}

	connector, err := r.factory(config.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector '%s': %w", name, err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout(config))
	defer cancel()

	if err := connector.Connect(connectCtx, config); err != nil {
		r.logger.Error("", "Failed to connect lazy-loaded connector", map[string]interface{}{
			"connector": name,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("failed to connect connector '%s': %w", name, err)
	}

	r.connectors[name] = connector
	r.logger.Info("", "Lazy-loaded connector", map[string]interface{}{
		"connector": name,
		"type":      config.Type,
	})
	return connector, nil
}

// GetConfig retrieves a connector's configuration by name
func (r *Registry) GetConfig(name string) (*base.ConnectorConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	config, exists := r.configs[name]
	if !exists {
		return nil, fmt.Errorf("config for connector '%s' not found", name)
	}
	return config, nil
}

// List returns all known connector names, connected or not, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListWithTypes returns all known connectors with their types
func (r *Registry) ListWithTypes() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]string, len(r.configs))
	for name, config := range r.configs {
		result[name] = config.Type
	}
	return result
}

// HealthCheck performs health checks on all connected connectors
func (r *Registry) HealthCheck(ctx context.Context) map[string]*base.HealthStatus {
	r.mu.RLock()
	connectors := make(map[string]base.Connector, len(r.connectors))
	for name, connector := range r.connectors {
		connectors[name] = connector
	}
	r.mu.RUnlock()

	results := make(map[string]*base.HealthStatus, len(connectors))
	for name, connector := range connectors {
		results[name] = r.checkHealth(ctx, name, connector)
	}
	return results
}

// HealthCheckSingle performs a health check on a specific connector,
// instantiating it if needed.
func (r *Registry) HealthCheckSingle(ctx context.Context, name string) (*base.HealthStatus, error) {
	connector, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return r.checkHealth(ctx, name, connector), nil
}

func (r *Registry) checkHealth(ctx context.Context, name string, connector base.Connector) *base.HealthStatus {
	status, err := connector.HealthCheck(ctx)
	if err != nil {
		r.logger.Warn("", "Health check failed", map[string]interface{}{
			"connector": name,
			"error":     err.Error(),
		})
		return &base.HealthStatus{
			Healthy:   false,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}
	}
	return status
}

// IsConnected reports whether name has a live connector instance.
func (r *Registry) IsConnected(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.connectors[name]
	return ok
}

// Count returns the number of connected connectors
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connectors)
}

// DisconnectAll disconnects every connected connector. Configs are kept,
// so a later Get reconnects through the factory.
func (r *Registry) DisconnectAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, connector := range r.connectors {
		if err := connector.Disconnect(ctx); err != nil {
			r.logger.Warn("", "Error disconnecting connector", map[string]interface{}{
				"connector": name,
				"error":     err.Error(),
			})
		}
		delete(r.connectors, name)
	}
}

// GetConnectorsByTenant returns all connectors accessible to a specific tenant
func (r *Registry) GetConnectorsByTenant(tenantID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0)
	for name, config := range r.configs {
		if tenantAllowed(config, tenantID) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ValidateTenantAccess checks if a tenant can access a specific connector
func (r *Registry) ValidateTenantAccess(connectorName, tenantID string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	config, exists := r.configs[connectorName]
	if !exists {
		return fmt.Errorf("connector '%s' not found", connectorName)
	}
	if !tenantAllowed(config, tenantID) {
		return fmt.Errorf("tenant '%s' does not have access to connector '%s'", tenantID, connectorName)
	}
	return nil
}

func tenantAllowed(config *base.ConnectorConfig, tenantID string) bool {
	return config.TenantID == "" || config.TenantID == "*" || config.TenantID == tenantID
}

func connectTimeout(config *base.ConnectorConfig) time.Duration {
	if config.Timeout > 0 {
		return config.Timeout
	}
	return DefaultConnectTimeout
}
