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


package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"logarchive/platform/connectors/base"
	"logarchive/platform/connectors/config"
	"logarchive/platform/connectors/coralogix"
	"logarchive/platform/connectors/sdk"
	"logarchive/platform/shared/logger"
)

const defaultConnectorName = "default"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile    string
	connector     string
	serverURL     string
	apiKey        string
	insecure      bool
	secrets       string
	secretsRegion string
	logLevel      string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "archivesearch",
		Short: "Search archived logs",
		Long: `archivesearch runs DataPrime queries against a Coralogix log archive.

Connection settings come from flags, a YAML config file (--config) or
ARCHIVE_<CONNECTOR>_* environment variables, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML connector config file")
	flags.StringVar(&opts.connector, "connector", defaultConnectorName, "connector name to use")
	flags.StringVar(&opts.serverURL, "server-url", "", "archive API URL (scheme optional)")
	flags.StringVar(&opts.apiKey, "api-key", "", "archive API key")
	flags.BoolVar(&opts.insecure, "insecure", false, "skip TLS certificate verification")
	flags.StringVar(&opts.secrets, "secrets", "aws", "secret backend for api_key_secret references (aws, env, none)")
	flags.StringVar(&opts.secretsRegion, "secrets-region", "", "AWS region for Secrets Manager")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newHealthCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newExampleConfigCmd())

	return cmd
}

// newLogger writes to w so command output on stdout stays machine readable.
func (o *globalOptions) newLogger(component string, w io.Writer) *logger.Logger {
	log := logger.NewWithWriter(component, w)
	if o.logLevel != "" {
		log.SetLevel(logger.LogLevel(strings.ToUpper(o.logLevel)))
	}
	return log
}

func (o *globalOptions) secretsManager(ctx context.Context, log *logger.Logger) (config.SecretsManager, error) {
	switch o.secrets {
	case "aws":
		return config.NewAWSSecretsManager(ctx, config.AWSSecretsManagerOptions{
			Region: o.secretsRegion,
			Logger: log,
		})
	case "env":
		return config.NewEnvSecretsManager(), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", o.secrets)
	}
}

// configService builds the file/env config resolution chain. The file
// loader is returned so callers can reload it.
func (o *globalOptions) configService(ctx context.Context, log *logger.Logger, envNames []string) (*config.RuntimeConfigService, *config.YAMLConfigFileLoader, error) {
	secrets, err := o.secretsManager(ctx, log)
	if err != nil {
		return nil, nil, err
	}

	svcOpts := config.RuntimeConfigServiceOptions{
		SecretsManager: secrets,
		EnvConnectors:  envNames,
		Logger:         log,
	}
	var loader *config.YAMLConfigFileLoader
	if o.configFile != "" {
		if loader, err = config.NewYAMLConfigFileLoader(o.configFile); err != nil {
			return nil, nil, err
		}
		svcOpts.FileLoader = loader
	}
	return config.NewRuntimeConfigService(svcOpts), loader, nil
}

// resolveConfig returns the config of the selected connector with flag
// overrides applied.
func (o *globalOptions) resolveConfig(ctx context.Context, log *logger.Logger) (*base.ConnectorConfig, error) {
	var cfg *base.ConnectorConfig

	if o.serverURL != "" {
		cfg = &base.ConnectorConfig{
			Name:          o.connector,
			Type:          coralogix.ConnectorType,
			ConnectionURL: o.serverURL,
			Credentials:   map[string]string{"api_key": o.apiKey},
			Options:       map[string]interface{}{},
			TenantID:      "*",
		}
		if o.apiKey == "" {
			if envCfg, err := config.LoadFromEnv(o.connector); err == nil {
				cfg.Credentials = envCfg.Credentials
			}
			if cfg.Credentials["api_key"] == "" && cfg.Credentials["api_key_secret"] != "" {
				secrets, err := o.secretsManager(ctx, log)
				if err != nil {
					return nil, err
				}
				if err := config.ResolveCredentials(ctx, cfg, secrets); err != nil {
					return nil, err
				}
			}
		}
	} else {
		svc, _, err := o.configService(ctx, log, []string{o.connector})
		if err != nil {
			return nil, err
		}
		if cfg, _, err = svc.GetConnectorConfig(ctx, "*", o.connector); err != nil {
			return nil, err
		}
		if o.apiKey != "" {
			cfg.Credentials["api_key"] = o.apiKey
		}
	}

	if o.insecure {
		if cfg.Options == nil {
			cfg.Options = map[string]interface{}{}
		}
		cfg.Options["verify_ssl"] = false
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Credentials["api_key"] == "" {
		return nil, fmt.Errorf("connector %s: no API key (use --api-key or %sAPI_KEY)", cfg.Name, config.EnvName(cfg.Name))
	}
	return cfg, nil
}

// connect resolves the selected connector and connects it.
func (o *globalOptions) connect(ctx context.Context, stderr io.Writer) (*coralogix.Connector, error) {
	log := o.newLogger("archivesearch", stderr)

	cfg, err := o.resolveConfig(ctx, log)
	if err != nil {
		return nil, err
	}

	conn := coralogix.NewConnector()
	conn.SetLogger(log)
	if err := conn.Connect(ctx, cfg); err != nil {
		return nil, err
	}
	return conn, nil
}

// newConnectorFactory instantiates connectors for the registry.
func newConnectorFactory(log *logger.Logger, metrics *sdk.ConnectorMetrics) func(string) (base.Connector, error) {
	return func(connectorType string) (base.Connector, error) {
		switch connectorType {
		case coralogix.ConnectorType:
			conn := coralogix.NewConnector()
			conn.SetLogger(log)
			conn.SetMetrics(metrics)
			return conn, nil
		default:
			return nil, fmt.Errorf("unknown connector type: %s", connectorType)
		}
	}
}

// userError collapses a connector failure to its message.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s", base.MessageOf(err))
}
