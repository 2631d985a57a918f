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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"logarchive/platform/connectors/base"
	"logarchive/platform/connectors/config"
	"logarchive/platform/connectors/registry"
	"logarchive/platform/connectors/sdk"
	"logarchive/platform/server"
	"logarchive/platform/shared/logger"
)

const metricsNamespace = "archivesearch"

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		addr           string
		reloadInterval time.Duration
		allowedOrigins []string
		maxBodyBytes   int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve archive connectors over HTTP",
		Long: `Serve every configured archive connector over HTTP.

Connectors come from --config, or from the names listed in ARCHIVE_CONNECTORS
with their ARCHIVE_<NAME>_* variables. --server-url registers a single
connector named by --connector instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log := opts.newLogger("archivesearch", cmd.ErrOrStderr())

			metrics, err := sdk.NewConnectorMetrics(metricsNamespace, prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}

			reg := registry.NewRegistry()
			reg.SetLogger(log)
			reg.SetFactory(newConnectorFactory(log, metrics))

			if opts.serverURL != "" {
				cfg, err := opts.resolveConfig(ctx, log)
				if err != nil {
					return userError(err)
				}
				if err := reg.AddConfig(cfg); err != nil {
					return err
				}
			} else {
				source, err := opts.registrySource(ctx, log)
				if err != nil {
					return err
				}
				count, err := reg.LoadConfigs(ctx, source, "*")
				if err != nil {
					return err
				}
				log.Info("", "Connector configs loaded", map[string]interface{}{"count": count})
				if reloadInterval > 0 {
					reg.StartPeriodicReload(ctx, source, "*", reloadInterval)
				}
			}

			srv, err := server.New(reg, server.Options{
				Logger:         log,
				AllowedOrigins: allowedOrigins,
				MaxBodyBytes:   maxBodyBytes,
				ServiceName:    metricsNamespace,
			})
			if err != nil {
				return err
			}

			log.Info("", "Starting server", map[string]interface{}{
				"addr":       addr,
				"connectors": reg.List(),
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&reloadInterval, "reload-interval", 0, "re-read connector configs at this interval (0 disables)")
	cmd.Flags().StringSliceVar(&allowedOrigins, "allowed-origin", nil, "CORS allowed origin (repeatable)")
	cmd.Flags().Int64Var(&maxBodyBytes, "max-body-bytes", server.DefaultMaxBodyBytes, "maximum execute request body size")

	return cmd
}

// registrySource adapts the runtime config service to the registry. Each
// call re-reads the config file and drops cached entries so that periodic
// reloads pick up new connectors.
func (o *globalOptions) registrySource(ctx context.Context, log *logger.Logger) (registry.ConfigSource, error) {
	svc, loader, err := o.configService(ctx, log, nil)
	if err != nil {
		return nil, err
	}

	svc.StartPeriodicCleanup(ctx, config.DefaultCacheTTL)

	first := true
	return registry.ConfigSourceFunc(func(ctx context.Context, tenantID string) ([]*base.ConnectorConfig, error) {
		if !first {
			if loader != nil {
				if err := loader.Reload(); err != nil {
					log.Warn("", "Config file reload failed, keeping previous", map[string]interface{}{"error": err.Error()})
				}
			}
			svc.RefreshAllConfigs()
		}
		first = false

		configs, source, err := svc.GetConnectorConfigs(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("no connectors configured: %w", err)
		}
		log.Debug("", "Resolved connector configs", map[string]interface{}{
			"source": string(source),
			"count":  len(configs),
		})
		return configs, nil
	}), nil
}
