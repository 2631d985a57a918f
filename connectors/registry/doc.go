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
Package registry keeps the named archive connectors of a process.

# Registering Connectors

A connector can be registered already built:

	conn := coralogix.NewConnector()
	err := registry.Register(ctx, "prod", conn, cfg)

or as a config that is instantiated on first use through a factory:

	registry.SetFactory(func(connectorType string) (base.Connector, error) {
	    switch connectorType {
	    case coralogix.ConnectorType:
	        return coralogix.NewConnector(), nil
	    default:
	        return nil, fmt.Errorf("unknown connector type: %s", connectorType)
	    }
	})
	_, err := registry.LoadConfigs(ctx, source, "*")

	conn, err := registry.Get(ctx, "prod") // connects here

# Tenants

Configs carry a tenant; "*" is visible to all tenants:

	names := registry.GetConnectorsByTenant("tenant-123")
	err := registry.ValidateTenantAccess("prod", "tenant-123")

# Health and Shutdown

	health := registry.HealthCheck(ctx)
	registry.DisconnectAll(ctx)

The Registry is safe for concurrent use.
*/
package registry
