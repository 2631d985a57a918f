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
Package config loads archive connector configuration from environment
variables, YAML files and secret stores.

# Environment Variable Convention

Connector configuration uses the prefix ARCHIVE_<CONNECTOR_NAME>_:

	ARCHIVE_PROD_URL=api.coralogix.com
	ARCHIVE_PROD_API_KEY=cxup_...
	ARCHIVE_PROD_VERIFY_SSL=true
	ARCHIVE_PROD_TIMEOUT=60s

Required environment variables:
  - ARCHIVE_<NAME>_URL: server URL, scheme optional

Optional environment variables:
  - ARCHIVE_<NAME>_API_KEY: bearer token
  - ARCHIVE_<NAME>_API_KEY_SECRET: secret reference holding the token
  - ARCHIVE_<NAME>_VERIFY_SSL: TLS verification (default: true)
  - ARCHIVE_<NAME>_TIMEOUT: request timeout (default: client default)
  - ARCHIVE_<NAME>_SEARCH_ENDPOINT, ARCHIVE_<NAME>_MAX_LOOKBACK
  - ARCHIVE_<NAME>_TENANT_ID: tenant (default: *)

ARCHIVE_CONNECTORS names the connectors RuntimeConfigService reads from
the environment when no config file supplies any.

# Config Files

	loader, err := config.NewYAMLConfigFileLoader("/etc/archivesearch/config.yaml")
	configs, err := loader.LoadConnectors("*")

Values may reference ${VAR} or ${VAR:-default}.

# Secrets

An api_key_secret credential is resolved through a SecretsManager:

	secrets, err := config.NewAWSSecretsManager(ctx, config.AWSSecretsManagerOptions{Region: "eu-west-1"})
	err = config.ResolveCredentials(ctx, cfg, secrets)
*/
package config
