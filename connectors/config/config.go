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
	"strconv"
	"strings"
	"time"

	"logarchive/platform/connectors/base"
)

// EnvPrefix is prepended to every connector environment variable.
const EnvPrefix = "ARCHIVE_"

// DefaultConnectorType is used when a config does not name a type.
const DefaultConnectorType = "coralogix"

// SupportedTypes lists the connector types this build can instantiate.
var SupportedTypes = map[string]bool{
	"coralogix": true,
}

// EnvName returns the environment variable prefix for a connector name:
// "prod-archive" becomes "ARCHIVE_PROD_ARCHIVE_".
func EnvName(connectorName string) string {
	name := strings.ToUpper(connectorName)
	name = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(name)
	return EnvPrefix + name + "_"
}

// LoadFromEnv loads a connector configuration from environment variables
// prefixed with ARCHIVE_<CONNECTOR_NAME>_.
// Example: ARCHIVE_PROD_URL, ARCHIVE_PROD_API_KEY.
func LoadFromEnv(connectorName string) (*base.ConnectorConfig, error) {
	prefix := EnvName(connectorName)

	config := &base.ConnectorConfig{
		Name:        connectorName,
		Type:        getEnvOrDefault(prefix+"TYPE", DefaultConnectorType),
		Credentials: make(map[string]string),
		Options:     make(map[string]interface{}),
	}

	// Server URL (required)
	connectionURL := os.Getenv(prefix + "URL")
	if connectionURL == "" {
		return nil, fmt.Errorf("missing required environment variable: %sURL", prefix)
	}
	config.ConnectionURL = connectionURL

	config.TenantID = getEnvOrDefault(prefix+"TENANT_ID", "*")

	// Zero leaves the client default in place.
	if timeoutStr := os.Getenv(prefix + "TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format: %s", timeoutStr)
		}
		config.Timeout = timeout
	}

	if verify := os.Getenv(prefix + "VERIFY_SSL"); verify != "" {
		enabled, err := strconv.ParseBool(verify)
		if err != nil {
			return nil, fmt.Errorf("invalid verify_ssl value: %s", verify)
		}
		config.Options["verify_ssl"] = enabled
	}

	if endpoint := os.Getenv(prefix + "SEARCH_ENDPOINT"); endpoint != "" {
		config.Options["search_endpoint"] = endpoint
	}
	if lookback := os.Getenv(prefix + "MAX_LOOKBACK"); lookback != "" {
		if _, err := time.ParseDuration(lookback); err != nil {
			return nil, fmt.Errorf("invalid max_lookback format: %s", lookback)
		}
		config.Options["max_lookback"] = lookback
	}

	if apiKey := os.Getenv(prefix + "API_KEY"); apiKey != "" {
		config.Credentials["api_key"] = apiKey
	}
	if secretRef := os.Getenv(prefix + "API_KEY_SECRET"); secretRef != "" {
		config.Credentials["api_key_secret"] = secretRef
	}

	return config, nil
}

// ValidateConfig validates a connector configuration
func ValidateConfig(config *base.ConnectorConfig) error {
	if config == nil {
		return fmt.Errorf("config is required")
	}
	if config.Name == "" {
		return fmt.Errorf("connector name is required")
	}
	if config.Type == "" {
		return fmt.Errorf("connector type is required")
	}
	if !SupportedTypes[config.Type] {
		return fmt.Errorf("unsupported connector type: %s", config.Type)
	}
	if config.ConnectionURL == "" {
		if url, _ := config.Options["server_url"].(string); url == "" {
			return fmt.Errorf("connection URL is required for %s connector", config.Type)
		}
	}
	if config.Credentials["api_key"] == "" && config.Credentials["api_key_secret"] == "" {
		return fmt.Errorf("api_key or api_key_secret is required for connector %s", config.Name)
	}
	if config.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
