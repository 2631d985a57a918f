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

package coralogix

import (
	"fmt"
	"time"

	"logarchive/platform/connectors/base"
)

const (
	// TimestampLayout is the wire format of startDate/endDate: UTC with
	// millisecond precision and a literal Z.
	TimestampLayout = "2006-01-02T15:04:05.000Z"

	// parseLayout accepts any number of fractional digits (including none).
	parseLayout = "2006-01-02T15:04:05Z"

	// DefaultMaxLookback is the widest search window used when no start
	// date is given.
	DefaultMaxLookback = 24 * time.Hour
)

// TimeWindow is a resolved [Start, End] search window.
type TimeWindow struct {
	Start string
	End   string
}

// ResolveTimeWindow fills in absent bounds. A missing end becomes now, a
// missing start becomes end minus maxLookback. Values the caller provided
// are passed through; a provided end that cannot be parsed while deriving
// the start is a FormatError.
func ResolveTimeWindow(start, end string, maxLookback time.Duration, now func() time.Time) (TimeWindow, error) {
	if now == nil {
		now = time.Now
	}
	if maxLookback <= 0 {
		maxLookback = DefaultMaxLookback
	}

	if end == "" {
		end = FormatTimestamp(now())
	}

	if start == "" {
		endTime, err := ParseTimestamp(end)
		if err != nil {
			return TimeWindow{}, err
		}
		start = FormatTimestamp(endTime.Add(-maxLookback))
	}

	return TimeWindow{Start: start, End: end}, nil
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a YYYY-MM-DDTHH:MM:SS[.ffffff]Z value.
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(parseLayout, value)
	if err != nil {
		return time.Time{}, base.NewConnectorError(ConnectorType, "resolve_time_window", base.KindFormat,
			fmt.Sprintf("time data %q does not match format %s", value, TimestampLayout), err)
	}
	return t.UTC(), nil
}
