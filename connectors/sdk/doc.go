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

// Package sdk provides the shared building blocks of archive connectors.
//
// To create a connector, embed BaseConnector and override the lifecycle
// and Execute methods:
//
//	type ArchiveConnector struct {
//	    *sdk.BaseConnector
//	    client *coralogix.Client
//	}
//
//	func (c *ArchiveConnector) Connect(ctx context.Context, config *base.ConnectorConfig) error {
//	    if err := c.BaseConnector.Connect(ctx, config); err != nil {
//	        return err
//	    }
//	    // build the client
//	    return nil
//	}
//
// The package also provides:
//   - BearerTokenAuth: applies a static bearer token to outbound requests
//   - ConnectorMetrics: Prometheus call, duration and error collectors
//   - DefaultConfigValidator: required fields and option defaults
//   - Request and tenant id helpers for context.Context
//   - MockConnector: a scriptable base.Connector for tests
//
// # Metrics
//
//	metrics, err := sdk.NewConnectorMetrics("archivesearch", prometheus.DefaultRegisterer)
//	conn.SetMetrics(metrics)
//
// Connectors do not retry. A failed call is recorded once with its
// error kind and returned to the caller.
package sdk
