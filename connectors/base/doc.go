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

/*
Package base provides the core interfaces and types for log archive
connectors.

# Connector Interface

All connectors implement the Connector interface:

	type Connector interface {
	    Connect(ctx context.Context, config *ConnectorConfig) error
	    Disconnect(ctx context.Context) error
	    HealthCheck(ctx context.Context) (*HealthStatus, error)

	    Execute(ctx context.Context, operation string, params map[string]interface{}) (*QueryResult, error)

	    Name() string
	    Type() string
	    Version() string
	    Capabilities() []string
	}

Execute keeps the operation-name contract of the boundary; connectors map
the name onto a fixed set of typed handlers and reject unknown names.

# Configuration

	config := &ConnectorConfig{
	    Name:          "coralogix-eu",
	    Type:          "coralogix",
	    ConnectionURL: "api.eu2.coralogix.com",
	    Credentials:   map[string]string{"api_key": "cxtp_..."},
	    Options:       map[string]interface{}{"verify_ssl": true},
	    Timeout:       30 * time.Second,
	}

# Error Handling

All connector errors are *ConnectorError values. Kind classifies the
failure (SecurityError, TimeoutError, ConnectivityError, AuthError,
RequestError, NotFoundError, FormatError):

	result, err := connector.Execute(ctx, "search_archived_logs", params)
	if base.IsKind(err, base.KindAuth) {
	    // rotate the key
	}

Boundaries that expose connectors to callers collapse the kind and only
forward Error().

# Thread Safety

Connector implementations must be safe for concurrent use once connected.
*/
package base
