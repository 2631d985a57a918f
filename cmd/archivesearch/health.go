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
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the archive API is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			conn, err := opts.connect(ctx, cmd.ErrOrStderr())
			if err != nil {
				return userError(err)
			}
			defer conn.Disconnect(context.Background())

			status, err := conn.HealthCheck(ctx)
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			if !status.Healthy {
				fmt.Fprintf(out, "%s: unhealthy (%s)\n", conn.Name(), status.Error)
				return fmt.Errorf("connector %s is unhealthy", conn.Name())
			}
			fmt.Fprintf(out, "%s: healthy (%s)\n", conn.Name(), status.Latency.Round(time.Millisecond))
			return nil
		},
	}
}
