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
)

// MockConnector provides a mock implementation for testing
type MockConnector struct {
	name         string
	connType     string
	version      string
	capabilities []string
	connected    bool

	// Mock responses
	executeResult   *base.QueryResult
	executeError    error
	healthStatus    *base.HealthStatus
	healthError     error
	connectError    error
	disconnectError error

	// Call tracking
	connectCalls    []ConnectCall
	disconnectCalls int
	executeCalls    []ExecuteCall
	healthCalls     int

	onExecute func(context.Context, string, map[string]interface{}) (*base.QueryResult, error)

	mu sync.RWMutex
}

// ConnectCall records a Connect call
type ConnectCall struct {
	Config *base.ConnectorConfig
	Time   time.Time
}

// ExecuteCall records an Execute call
type ExecuteCall struct {
	Operation string
	Params    map[string]interface{}
	Time      time.Time
}

// NewMockConnector creates a new mock connector
func NewMockConnector(name, connType string) *MockConnector {
	return &MockConnector{
		name:         name,
		connType:     connType,
		version:      "1.0.0-mock",
		capabilities: []string{"search_archived_logs"},
		executeResult: &base.QueryResult{
			Data: map[string]interface{}{
				"result": map[string]interface{}{"results": []interface{}{}},
			},
			Connector: name,
		},
		healthStatus: &base.HealthStatus{
			Healthy:   true,
			Timestamp: time.Now(),
		},
	}
}

// Connect implements base.Connector
func (m *MockConnector) Connect(ctx context.Context, config *base.ConnectorConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connectCalls = append(m.connectCalls, ConnectCall{Config: config, Time: time.Now()})

	if m.connectError != nil {
		return m.connectError
	}

	m.connected = true
	if config != nil {
		m.name = config.Name
	}
	return nil
}

// Disconnect implements base.Connector
func (m *MockConnector) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.disconnectCalls++

	if m.disconnectError != nil {
		return m.disconnectError
	}

	m.connected = false
	return nil
}

// HealthCheck implements base.Connector
func (m *MockConnector) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.healthCalls++

	if m.healthError != nil {
		return nil, m.healthError
	}
	return m.healthStatus, nil
}

// Execute implements base.Connector
func (m *MockConnector) Execute(ctx context.Context, operation string, params map[string]interface{}) (*base.QueryResult, error) {
	m.mu.Lock()
	m.executeCalls = append(m.executeCalls, ExecuteCall{Operation: operation, Params: params, Time: time.Now()})
	onExecute := m.onExecute
	result, err := m.executeResult, m.executeError
	m.mu.Unlock()

	if onExecute != nil {
		return onExecute(ctx, operation, params)
	}
	if err != nil {
		return nil, err
	}

	copied := *result
	copied.Operation = operation
	copied.Duration = time.Millisecond
	return &copied, nil
}

// Name implements base.Connector
func (m *MockConnector) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

// Type implements base.Connector
func (m *MockConnector) Type() string {
	return m.connType
}

// Version implements base.Connector
func (m *MockConnector) Version() string {
	return m.version
}

// Capabilities implements base.Connector
func (m *MockConnector) Capabilities() []string {
	return m.capabilities
}

// SetExecuteResult sets the result returned by Execute
func (m *MockConnector) SetExecuteResult(result *base.QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executeResult = result
}

// SetExecuteError sets the error returned by Execute
func (m *MockConnector) SetExecuteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executeError = err
}

// SetHealthStatus sets the status returned by HealthCheck
func (m *MockConnector) SetHealthStatus(status *base.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus = status
}

// SetHealthError sets the error returned by HealthCheck
func (m *MockConnector) SetHealthError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthError = err
}

// SetConnectError sets the error returned by Connect
func (m *MockConnector) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
}

// SetDisconnectError sets the error returned by Disconnect
func (m *MockConnector) SetDisconnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnectError = err
}

// SetOnExecute installs a custom Execute behavior
func (m *MockConnector) SetOnExecute(fn func(context.Context, string, map[string]interface{}) (*base.QueryResult, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExecute = fn
}

// GetConnectCalls returns recorded Connect calls
func (m *MockConnector) GetConnectCalls() []ConnectCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]ConnectCall, len(m.connectCalls))
	copy(calls, m.connectCalls)
	return calls
}

// GetExecuteCalls returns recorded Execute calls
func (m *MockConnector) GetExecuteCalls() []ExecuteCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]ExecuteCall, len(m.executeCalls))
	copy(calls, m.executeCalls)
	return calls
}

// GetDisconnectCalls returns the number of Disconnect calls
func (m *MockConnector) GetDisconnectCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.disconnectCalls
}

// GetHealthCalls returns the number of HealthCheck calls
func (m *MockConnector) GetHealthCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthCalls
}

// IsConnected reports whether Connect succeeded
func (m *MockConnector) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}
