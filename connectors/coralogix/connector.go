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

package coralogix

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"logarchive/platform/connectors/base"
	"logarchive/platform/connectors/sdk"
)

const (
	// ConnectorType is the registry type name of this connector.
	ConnectorType = "coralogix"
	// ConnectorVersion is reported by Version.
	ConnectorVersion = "1.0.0"
)

// Settings is everything a Connector derives from its ConnectorConfig.
type Settings struct {
	Client         ClientConfig
	SearchEndpoint string
	MaxLookback    time.Duration
	MaxMergeDepth  int
}

// ConfigFromConnectorConfig maps a ConnectorConfig onto Settings.
//
// The server URL comes from ConnectionURL or Options["server_url"], the
// key from Credentials["api_key"]. Options verify_ssl, max_lookback,
// search_endpoint and max_merge_depth are optional.
func ConfigFromConnectorConfig(config *base.ConnectorConfig) (Settings, error) {
	if config == nil {
		return Settings{}, base.NewConnectorError(ConnectorType, "Connect", base.KindRequest, "config cannot be nil", nil)
	}

	serverURL := config.ConnectionURL
	if serverURL == "" {
		serverURL, _ = config.Options["server_url"].(string)
	}
	if serverURL == "" {
		return Settings{}, base.NewConnectorError(config.Name, "Connect", base.KindRequest, "server_url is required", nil)
	}

	verifyTLS := true
	switch v := config.Options["verify_ssl"].(type) {
	case bool:
		verifyTLS = v
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return Settings{}, base.NewConnectorError(config.Name, "Connect", base.KindRequest,
				fmt.Sprintf("invalid verify_ssl value %q", v), err)
		}
		verifyTLS = parsed
	}

	settings := Settings{
		Client:         NewClientConfig(serverURL, config.Credentials["api_key"], verifyTLS),
		SearchEndpoint: DefaultSearchEndpoint,
		MaxLookback:    DefaultMaxLookback,
		MaxMergeDepth:  DefaultMaxMergeDepth,
	}
	if config.Timeout > 0 {
		settings.Client.Timeout = config.Timeout
	}

	if endpoint, ok := config.Options["search_endpoint"].(string); ok && endpoint != "" {
		settings.SearchEndpoint = endpoint
	}

	switch v := config.Options["max_lookback"].(type) {
	case time.Duration:
		settings.MaxLookback = v
	case string:
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Settings{}, base.NewConnectorError(config.Name, "Connect", base.KindRequest,
				fmt.Sprintf("invalid max_lookback value %q", v), err)
		}
		settings.MaxLookback = d
	}

	switch v := config.Options["max_merge_depth"].(type) {
	case int:
		settings.MaxMergeDepth = v
	case int64:
		settings.MaxMergeDepth = int(v)
	case float64:
		settings.MaxMergeDepth = int(v)
	}
	if settings.MaxMergeDepth <= 0 {
		settings.MaxMergeDepth = DefaultMaxMergeDepth
	}

	return settings, nil
}

// Connector exposes the archive search as a base.Connector.
type Connector struct {
	*sdk.BaseConnector

	settings Settings
	client   *Client
	searcher *Searcher
	mu       sync.RWMutex
}

// NewConnector creates an unconnected archive search connector.
func NewConnector() *Connector {
	bc := sdk.NewBaseConnector(ConnectorType, ConnectorVersion, OperationNames())
	bc.SetValidator(sdk.NewDefaultConfigValidator(
		[]string{"api_key"},
		map[string]interface{}{
			"verify_ssl":      true,
			"search_endpoint": DefaultSearchEndpoint,
		},
	))
	return &Connector{BaseConnector: bc}
}

// Connect builds the client and searcher for config.
func (c *Connector) Connect(ctx context.Context, config *base.ConnectorConfig) error {
	settings, err := ConfigFromConnectorConfig(config)
	if err != nil {
		return err
	}
	if err := c.BaseConnector.Connect(ctx, config); err != nil {
		return err
	}

	log := c.GetLogger()
	client := NewClient(settings.Client,
		WithName(config.Name),
		WithLogger(log),
		WithObserver(NewCurlObserver(log)),
	)
	searcher := NewSearcher(client,
		WithSearchEndpoint(settings.SearchEndpoint),
		WithMaxLookback(settings.MaxLookback),
		WithMaxMergeDepth(settings.MaxMergeDepth),
	)

	c.mu.Lock()
	if c.client != nil {
		c.client.Close()
	}
	c.settings = settings
	c.client = client
	c.searcher = searcher
	c.mu.Unlock()

	if !settings.Client.VerifyTLS {
		log.Warn("", "TLS verification disabled", map[string]interface{}{"connector": config.Name})
	}
	return nil
}

// Disconnect releases idle connections.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.client != nil {
		c.client.Close()
	}
	c.client = nil
	c.searcher = nil
	c.mu.Unlock()

	return c.BaseConnector.Disconnect(ctx)
}

func (c *Connector) currentSearcher(operation string) (*Searcher, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.searcher == nil {
		return nil, base.NewConnectorError(c.Name(), operation, base.KindRequest, "connector is not connected", nil)
	}
	return c.searcher, nil
}

// Execute dispatches a named operation.
func (c *Connector) Execute(ctx context.Context, operation string, params map[string]interface{}) (*base.QueryResult, error) {
	ctx = ensureRequestID(ctx)
	requestID := sdk.GetRequestID(ctx)
	timer := sdk.NewTimer()

	data, err := c.dispatch(ctx, operation, params)
	duration := timer.Duration()
	c.GetMetrics().RecordCall(c.Name(), operation, duration, err)

	if err != nil {
		fields := map[string]interface{}{
			"connector": c.Name(),
			"operation": operation,
		}
		if kind, ok := base.KindOf(err); ok {
			fields["error_type"] = kind.String()
		}
		c.GetLogger().ErrorWithCode(requestID, "Operation failed", 0, err, fields)
		return nil, err
	}

	c.GetLogger().InfoWithDuration(requestID, "Operation completed", duration, map[string]interface{}{
		"connector": c.Name(),
		"operation": operation,
	})
	return &base.QueryResult{
		Data:      data,
		Duration:  duration,
		Connector: c.Name(),
		Operation: operation,
	}, nil
}

func (c *Connector) dispatch(ctx context.Context, operation string, params map[string]interface{}) (map[string]interface{}, error) {
	op, err := ParseOperation(operation)
	if err != nil {
		return nil, err
	}

	switch op {
	case OpSearchArchivedLogs:
		return c.searchArchivedLogs(ctx, params)
	}
	return nil, base.NewConnectorError(c.Name(), operation, base.KindRequest, "operation has no handler", nil)
}

func (c *Connector) searchArchivedLogs(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	searcher, err := c.currentSearcher(OpSearchArchivedLogs.String())
	if err != nil {
		return nil, err
	}
	qp, err := DecodeQueryParams(params)
	if err != nil {
		return nil, err
	}
	return searcher.Search(ctx, qp)
}

// HealthCheck runs the health query. Upstream failures are reported in
// the status; only a disconnected connector returns an error.
func (c *Connector) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	searcher, err := c.currentSearcher("HealthCheck")
	if err != nil {
		return nil, err
	}
	ctx = ensureRequestID(ctx)

	c.mu.RLock()
	details := map[string]string{
		"base_url": c.settings.Client.BaseURL,
		"endpoint": c.settings.SearchEndpoint,
	}
	c.mu.RUnlock()

	start := time.Now()
	healthy, err := searcher.CheckHealth(ctx)
	status := &base.HealthStatus{
		Healthy:   healthy,
		Latency:   time.Since(start),
		Details:   details,
		Timestamp: time.Now(),
	}
	c.GetMetrics().RecordCall(c.Name(), "health_check", status.Latency, err)
	if err != nil {
		status.Error = err.Error()
		if kind, ok := base.KindOf(err); ok {
			details["error_type"] = kind.String()
		}
	}
	return status, nil
}

func ensureRequestID(ctx context.Context) context.Context {
	if sdk.GetRequestID(ctx) != "" {
		return ctx
	}
	return sdk.WithRequestID(ctx, uuid.NewString())
}
