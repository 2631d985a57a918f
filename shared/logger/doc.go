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
Package logger provides structured JSON logging for the archive search
components.

Each line is one JSON object carrying a timestamp (RFC3339Nano), the
level, the component name, the instance id and container, the request id
when there is one, the message and an optional fields object.

# Usage

	log := logger.New("archivesearch")

	log.Info(requestID, "Executing search", map[string]interface{}{
	    "connector": "prod_archive",
	})

	log.ErrorWithCode(requestID, "Archive request failed", 401, err, nil)

	start := time.Now()
	// ...
	log.InfoWithDuration(requestID, "Search completed", time.Since(start), nil)

Use NewWithWriter to send output somewhere other than stdout; the CLI
writes logs to stderr so that command output stays parseable.

# Output Format

	{"level":"INFO","component":"archivesearch","instance_id":"unknown",
	 "container":"host-1","timestamp":"2025-01-15T10:30:00.123456789Z",
	 "request_id":"req-456","fields":{"connector":"prod_archive"},
	 "message":"Executing search"}

# Environment Variables

  - LOG_LEVEL: debug, info, warn or error (default info)
  - INSTANCE_ID: deployment instance identifier

Logger instances are safe for concurrent use. SetLevel is not; call it
before sharing the logger.
*/
package logger
