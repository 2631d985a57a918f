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

package base

import (
	"context"
	"time"
)

// Connector defines the interface that all archive connectors must implement
type Connector interface {
	// Lifecycle Management
	Connect(ctx context.Context, config *ConnectorConfig) error
	Disconnect(ctx context.Context) error
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	// Execute runs a named operation with loosely typed parameters, as
	// received from the boundary.
	Execute(ctx context.Context, operation string, params map[string]interface{}) (*QueryResult, error)

	// Metadata
	Name() string           // Unique connector instance name
	Type() string           // Connector type (coralogix)
	Version() string        // Connector version
	Capabilities() []string // Supported operation names
}

// ConnectorConfig holds the configuration for a connector instance
type ConnectorConfig struct {
	Name          string                 `json:"name"`           // Unique name for this connector
	Type          string                 `json:"type"`           // Type: coralogix
	ConnectionURL string                 `json:"connection_url"` // Server URL, scheme optional
	Credentials   map[string]string      `json:"credentials"`    // api_key, api_key_secret
	Options       map[string]interface{} `json:"options"`        // Connector-specific options
	Timeout       time.Duration          `json:"timeout"`        // Request timeout
	TenantID      string                 `json:"tenant_id"`      // For multi-tenancy isolation
}

// QueryResult contains the normalized result of an operation
type QueryResult struct {
	Data      map[string]interface{} `json:"data"`      // Normalized upstream document
	Duration  time.Duration          `json:"duration"`  // Execution time
	Connector string                 `json:"connector"` // Connector name that executed the operation
	Operation string                 `json:"operation"` // Operation name
}

// HealthStatus represents the health of a connector
type HealthStatus struct {
	Healthy   bool              `json:"healthy"`   // Overall health status
	Latency   time.Duration     `json:"latency"`   // Round trip of the health query
	Details   map[string]string `json:"details"`   // Additional diagnostic info
	Timestamp time.Time         `json:"timestamp"` // When health check was performed
	Error     string            `json:"error"`     // Error message if unhealthy
}
