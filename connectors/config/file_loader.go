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
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"logarchive/platform/connectors/base"

	"gopkg.in/yaml.v3"
)

// ConfigFile represents the root structure of a configuration file
type ConfigFile struct {
	Version    string                         `yaml:"version"`
	Connectors map[string]ConnectorFileConfig `yaml:"connectors,omitempty"`
}

// ConnectorFileConfig represents a connector configuration in the config file
type ConnectorFileConfig struct {
	Type          string                 `yaml:"type"`
	Enabled       bool                   `yaml:"enabled"`
	DisplayName   string                 `yaml:"display_name,omitempty"`
	Description   string                 `yaml:"description,omitempty"`
	ConnectionURL string                 `yaml:"connection_url,omitempty"`
	Credentials   map[string]string      `yaml:"credentials,omitempty"`
	Options       map[string]interface{} `yaml:"options,omitempty"`
	TimeoutMs     int                    `yaml:"timeout_ms,omitempty"`
	TenantID      string                 `yaml:"tenant_id,omitempty"`
}

// ConfigFileLoader loads connector configs from a file source
type ConfigFileLoader interface {
	LoadConnectors(tenantID string) ([]*base.ConnectorConfig, error)
}

// YAMLConfigFileLoader loads configurations from a YAML file
type YAMLConfigFileLoader struct {
	filePath string
	config   *ConfigFile
	mu       sync.RWMutex
}

// NewYAMLConfigFileLoader reads, expands and validates the file at filePath.
func NewYAMLConfigFileLoader(filePath string) (*YAMLConfigFileLoader, error) {
	loader := &YAMLConfigFileLoader{
		filePath: filePath,
	}

	if err := loader.reload(); err != nil {
		return nil, err
	}

	return loader, nil
}

func (l *YAMLConfigFileLoader) reload() error {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", l.filePath, err)
	}

	config, err := ParseConfigFile(data)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.config = config
	l.mu.Unlock()
	return nil
}

// ParseConfigFile expands environment references in data, decodes it and
// validates the result.
func ParseConfigFile(data []byte) (*ConfigFile, error) {
	expanded := expandEnvVars(string(data))

	var config ConfigFile
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := ValidateConfigFile(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConnectors returns the enabled connector configs visible to tenantID,
// sorted by name. A tenant of "*" sees every connector.
func (l *YAMLConfigFileLoader) LoadConnectors(tenantID string) ([]*base.ConnectorConfig, error) {
	l.mu.RLock()
	file := l.config
	l.mu.RUnlock()

	if file == nil {
		return nil, fmt.Errorf("config not loaded")
	}

	names := make([]string, 0, len(file.Connectors))
	for name := range file.Connectors {
		names = append(names, name)
	}
	sort.Strings(names)

	var configs []*base.ConnectorConfig
	for _, name := range names {
		fileConfig := file.Connectors[name]
		if !fileConfig.Enabled {
			continue
		}

		cfgTenantID := fileConfig.TenantID
		if cfgTenantID == "" {
			cfgTenantID = "*"
		}
		if tenantID != "*" && cfgTenantID != "*" && cfgTenantID != tenantID {
			continue
		}

		configs = append(configs, fileConfig.toConnectorConfig(name, cfgTenantID))
	}

	return configs, nil
}

func (fc ConnectorFileConfig) toConnectorConfig(name, tenantID string) *base.ConnectorConfig {
	options := make(map[string]interface{}, len(fc.Options))
	for k, v := range fc.Options {
		options[k] = v
	}
	credentials := make(map[string]string, len(fc.Credentials))
	for k, v := range fc.Credentials {
		credentials[k] = v
	}

	connType := fc.Type
	if connType == "" {
		connType = DefaultConnectorType
	}

	return &base.ConnectorConfig{
		Name:          name,
		Type:          connType,
		ConnectionURL: fc.ConnectionURL,
		Credentials:   credentials,
		Options:       options,
		Timeout:       time.Duration(fc.TimeoutMs) * time.Millisecond,
		TenantID:      tenantID,
	}
}

// Reload reloads the configuration file. The previous config is kept when
// the new content fails to parse or validate.
func (l *YAMLConfigFileLoader) Reload() error {
	return l.reload()
}

// envVarRegex matches ${VAR_NAME} or $VAR_NAME patterns
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars expands ${VAR}, ${VAR:-default} and $VAR references.
// Undefined variables without a default expand to the empty string.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		defaultVal := ""
		if idx := strings.Index(varName, ":-"); idx != -1 {
			defaultVal = varName[idx+2:]
			varName = varName[:idx]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultVal
	})
}

// ValidateConfigFile validates the structure of a config file
func ValidateConfigFile(config *ConfigFile) error {
	if config.Version == "" {
		return fmt.Errorf("config file must specify a version")
	}

	for name, connector := range config.Connectors {
		if connector.Type == "" {
			return fmt.Errorf("connector '%s' must specify a type", name)
		}
		if !SupportedTypes[connector.Type] {
			return fmt.Errorf("connector '%s' has invalid type '%s'", name, connector.Type)
		}
		if connector.TimeoutMs < 0 {
			return fmt.Errorf("connector '%s' timeout_ms cannot be negative", name)
		}
	}

	return nil
}

// GenerateExampleConfigFile generates an example configuration file
func GenerateExampleConfigFile() string {
	return `# Archive search configuration
# Environment variables can be referenced using ${VAR_NAME} or ${VAR_NAME:-default} syntax

version: "1.0"

connectors:
  # Coralogix archive, API key read from the environment
  prod_archive:
    type: coralogix
    enabled: true
    display_name: "Production log archive"
    connection_url: ${CORALOGIX_URL:-api.coralogix.com}
    credentials:
      api_key: ${CORALOGIX_API_KEY}
    options:
      verify_ssl: true
      max_lookback: "24h"
    timeout_ms: 120000

  # Coralogix archive, API key resolved from AWS Secrets Manager
  eu_archive:
    type: coralogix
    enabled: false  # Enable when the secret exists
    display_name: "EU log archive"
    connection_url: api.eu2.coralogix.com
    credentials:
      api_key_secret: ${CORALOGIX_EU_SECRET_ARN}
    options:
      search_endpoint: /api/v1/dataprime/query
`
}
