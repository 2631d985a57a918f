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

package sdk

import (
	"context"
	"sync"
	"time"

	"logarchive/platform/connectors/base"
	"logarchive/platform/shared/logger"
)

// DefaultTimeout applies when a connector config carries none
const DefaultTimeout = 30 * time.Second

// BaseConnector provides the lifecycle and metadata plumbing shared by
// connectors. Embed it and override Connect, HealthCheck and Execute.
type BaseConnector struct {
	name         string
	connType     string
	version      string
	capabilities []string
	config       *base.ConnectorConfig
	connected    bool
	logger       *logger.Logger
	validator    ConfigValidator
	metrics      *ConnectorMetrics
	mu           sync.RWMutex
}

// NewBaseConnector creates a new base connector with the given type
func NewBaseConnector(connType, version string, capabilities []string) *BaseConnector {
	return &BaseConnector{
		connType:     connType,
		version:      version,
		capabilities: capabilities,
		logger:       logger.New(connType),
	}
}

// Connect validates and stores the configuration.
func (c *BaseConnector) Connect(ctx context.Context, config *base.ConnectorConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if config == nil {
		return base.NewConnectorError(c.connType, "Connect", base.KindRequest, "config cannot be nil", nil)
	}

	if c.validator != nil {
		if err := c.validator.Validate(config); err != nil {
			return base.NewConnectorError(config.Name, "Connect", base.KindRequest, "configuration validation failed", err)
		}
		if defaultValidator, ok := c.validator.(*DefaultConfigValidator); ok {
			defaultValidator.ApplyDefaults(config)
		}
	}

	c.config = config
	c.name = config.Name

	if c.config.Timeout == 0 {
		c.config.Timeout = DefaultTimeout
	}

	c.connected = true
	c.logger.Info("", "Connector initialized", map[string]interface{}{
		"connector": config.Name,
		"type":      c.connType,
	})

	return nil
}

// Disconnect marks the connector as disconnected.
func (c *BaseConnector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false

	if c.config != nil {
		c.logger.Info("", "Disconnected", map[string]interface{}{"connector": c.config.Name})
	}
	return nil
}

// Name returns the connector instance name
func (c *BaseConnector) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.name != "" {
		return c.name
	}
	return c.connType + "-connector"
}

// Type returns the connector type
func (c *BaseConnector) Type() string {
	return c.connType
}

// Version returns the connector version
func (c *BaseConnector) Version() string {
	return c.version
}

// Capabilities returns the list of connector capabilities
func (c *BaseConnector) Capabilities() []string {
	return c.capabilities
}

// SetLogger replaces the connector logger
func (c *BaseConnector) SetLogger(l *logger.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
}

// GetLogger returns the connector logger
func (c *BaseConnector) GetLogger() *logger.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

// SetValidator sets the configuration validator
func (c *BaseConnector) SetValidator(validator ConfigValidator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.validator = validator
}

// SetMetrics sets the metrics sink
func (c *BaseConnector) SetMetrics(metrics *ConnectorMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = metrics
}

// GetMetrics returns the metrics sink, possibly nil
func (c *BaseConnector) GetMetrics() *ConnectorMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metrics
}

// IsConnected reports whether Connect succeeded
func (c *BaseConnector) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// GetConfig returns the stored configuration
func (c *BaseConnector) GetConfig() *base.ConnectorConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// GetTimeout returns the configured timeout or default
func (c *BaseConnector) GetTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.config != nil && c.config.Timeout > 0 {
		return c.config.Timeout
	}
	return DefaultTimeout
}

// GetOption retrieves an option value from config
func (c *BaseConnector) GetOption(key string, defaultValue interface{}) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.config == nil || c.config.Options == nil {
		return defaultValue
	}
	if val, ok := c.config.Options[key]; ok {
		return val
	}
	return defaultValue
}

// GetStringOption retrieves a string option
func (c *BaseConnector) GetStringOption(key, defaultValue string) string {
	if s, ok := c.GetOption(key, defaultValue).(string); ok {
		return s
	}
	return defaultValue
}

// GetIntOption retrieves an integer option
func (c *BaseConnector) GetIntOption(key string, defaultValue int) int {
	switch v := c.GetOption(key, defaultValue).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultValue
}

// GetBoolOption retrieves a boolean option
func (c *BaseConnector) GetBoolOption(key string, defaultValue bool) bool {
	if b, ok := c.GetOption(key, defaultValue).(bool); ok {
		return b
	}
	return defaultValue
}

// GetDurationOption retrieves a duration option given as a Go duration
// string ("24h") or a time.Duration
func (c *BaseConnector) GetDurationOption(key string, defaultValue time.Duration) time.Duration {
	switch v := c.GetOption(key, defaultValue).(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetCredential retrieves a credential value
func (c *BaseConnector) GetCredential(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.config == nil || c.config.Credentials == nil {
		return ""
	}
	return c.config.Credentials[key]
}
