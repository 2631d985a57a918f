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

// Package coralogix searches a log archive through the Coralogix DataPrime
// query API.
//
// A search flows one way through small pieces:
//
//	ResolveTimeWindow  fills absent start/end dates
//	BuildPayload       prunes the metadata mapping
//	Client.Send        issues the call and classifies failures
//	Normalize          merges multi-document bodies into one object
//
// Searcher composes them; Connector exposes the result as a
// base.Connector with a fixed set of operations:
//
//	conn := coralogix.NewConnector()
//	err := conn.Connect(ctx, &base.ConnectorConfig{
//	    Name:          "archive",
//	    Type:          coralogix.ConnectorType,
//	    ConnectionURL: "api.eu2.coralogix.com",
//	    Credentials:   map[string]string{"api_key": key},
//	})
//	result, err := conn.Execute(ctx, "search_archived_logs", map[string]interface{}{
//	    "query": "source logs | limit 10",
//	})
//
// Failures are *base.ConnectorError values whose Kind is one of the
// base error kinds. Nothing is retried.
package coralogix
