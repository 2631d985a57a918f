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
	"context"
	"fmt"
	"net/http"
	"time"

	"logarchive/platform/connectors/base"
)

const (
	// DefaultSearchEndpoint is the DataPrime query endpoint.
	DefaultSearchEndpoint = "/api/v1/dataprime/query"
	// DefaultSource is sent as metadata.defaultSource.
	DefaultSource = "logs"
	// HealthCheckQuery is the always-matching query used by CheckHealth.
	HealthCheckQuery = "limit 1"
)

// QueryParams are the caller inputs of one search.
type QueryParams struct {
	StartDate string
	EndDate   string
	Query     string
	Metadata  map[string]interface{}
}

// DecodeQueryParams reads QueryParams from loosely typed boundary input.
// Dates and query must be strings when present; metadata is used only
// when it is a mapping.
func DecodeQueryParams(params map[string]interface{}) (QueryParams, error) {
	var qp QueryParams
	var err error

	if qp.StartDate, err = optionalString(params, "start_date"); err != nil {
		return QueryParams{}, err
	}
	if qp.EndDate, err = optionalString(params, "end_date"); err != nil {
		return QueryParams{}, err
	}
	if qp.Query, err = optionalString(params, "query"); err != nil {
		return QueryParams{}, err
	}
	if metadata, ok := params["metadata"].(map[string]interface{}); ok {
		qp.Metadata = metadata
	}
	return qp, nil
}

func optionalString(params map[string]interface{}, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", base.NewConnectorError(ConnectorType, OpSearchArchivedLogs.String(), base.KindFormat,
			fmt.Sprintf("%s must be a string, got %T", key, v), nil)
	}
	return s, nil
}

// Searcher runs archive searches through one Client.
type Searcher struct {
	client        *Client
	endpoint      string
	maxLookback   time.Duration
	maxMergeDepth int
	now           func() time.Time
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithSearchEndpoint overrides DefaultSearchEndpoint.
func WithSearchEndpoint(endpoint string) SearcherOption {
	return func(s *Searcher) {
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// WithMaxLookback overrides DefaultMaxLookback.
func WithMaxLookback(d time.Duration) SearcherOption {
	return func(s *Searcher) {
		if d > 0 {
			s.maxLookback = d
		}
	}
}

// WithMaxMergeDepth overrides DefaultMaxMergeDepth.
func WithMaxMergeDepth(depth int) SearcherOption {
	return func(s *Searcher) {
		if depth > 0 {
			s.maxMergeDepth = depth
		}
	}
}

// WithClock sets the source of "now" for absent end dates.
func WithClock(now func() time.Time) SearcherOption {
	return func(s *Searcher) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSearcher creates a Searcher over client.
func NewSearcher(client *Client, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		client:        client,
		endpoint:      DefaultSearchEndpoint,
		maxLookback:   DefaultMaxLookback,
		maxMergeDepth: DefaultMaxMergeDepth,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search resolves the time window, builds the pruned metadata, posts
// {query, metadata} and normalizes the response. Errors are returned
// unchanged from the layer that raised them.
func (s *Searcher) Search(ctx context.Context, params QueryParams) (map[string]interface{}, error) {
	window, err := ResolveTimeWindow(params.StartDate, params.EndDate, s.maxLookback, s.now)
	if err != nil {
		return nil, err
	}

	metadata := map[string]interface{}{
		"startDate":     window.Start,
		"endDate":       window.End,
		"defaultSource": DefaultSource,
	}
	for k, v := range params.Metadata {
		metadata[k] = v
	}

	raw, err := s.client.Send(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: s.endpoint,
		Body: map[string]interface{}{
			"query":    params.Query,
			"metadata": BuildPayload(metadata),
		},
	})
	if err != nil {
		return nil, err
	}
	return Normalize(raw, s.maxMergeDepth), nil
}

// CheckHealth runs a real one-record query end to end. It returns true
// or the error of that query.
func (s *Searcher) CheckHealth(ctx context.Context) (bool, error) {
	if _, err := s.Search(ctx, QueryParams{Query: HealthCheckQuery}); err != nil {
		return false, err
	}
	return true, nil
}

// SearchArchivedLogs runs one search with a client built for config.
func SearchArchivedLogs(ctx context.Context, config ClientConfig, params QueryParams, opts ...ClientOption) (map[string]interface{}, error) {
	client := NewClient(config, opts...)
	defer client.Close()
	return NewSearcher(client).Search(ctx, params)
}

// CheckHealth runs the health query with a client built for config.
func CheckHealth(ctx context.Context, config ClientConfig, opts ...ClientOption) (bool, error) {
	client := NewClient(config, opts...)
	defer client.Close()
	return NewSearcher(client).CheckHealth(ctx)
}
