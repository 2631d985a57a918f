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
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"logarchive/platform/connectors/coralogix"
)

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var (
		query     string
		startDate string
		endDate   string
		metadata  string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a DataPrime query against the archive",
		Long: `Run a DataPrime query against the log archive and print the merged
results as JSON.

Dates use the 2006-01-02T15:04:05.000Z layout. Without --start the window
opens at the connector's max lookback before --end (or now).

Examples:
  archivesearch search --server-url api.coralogix.com --api-key $KEY \
    --query "source logs | filter severity == ERROR" --start 2025-01-01T00:00:00.000Z
  archivesearch search --config archives.yaml --connector prod_archive --query "source logs"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]interface{}{}
			if query != "" {
				params["query"] = query
			}
			if startDate != "" {
				params["start_date"] = startDate
			}
			if endDate != "" {
				params["end_date"] = endDate
			}
			if metadata != "" {
				var meta map[string]interface{}
				dec := json.NewDecoder(strings.NewReader(metadata))
				dec.UseNumber()
				if err := dec.Decode(&meta); err != nil {
					return fmt.Errorf("invalid --metadata: %w", err)
				}
				if meta == nil {
					return fmt.Errorf("invalid --metadata: expected a JSON object")
				}
				params["metadata"] = meta
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			conn, err := opts.connect(ctx, cmd.ErrOrStderr())
			if err != nil {
				return userError(err)
			}
			defer conn.Disconnect(context.Background())

			result, err := conn.Execute(ctx, coralogix.OpSearchArchivedLogs.String(), params)
			if err != nil {
				return userError(err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result.Data)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "DataPrime query")
	cmd.Flags().StringVar(&startDate, "start", "", "window start (2006-01-02T15:04:05.000Z)")
	cmd.Flags().StringVar(&endDate, "end", "", "window end (2006-01-02T15:04:05.000Z)")
	cmd.Flags().StringVar(&metadata, "metadata", "", "extra request metadata as a JSON object")

	return cmd
}
