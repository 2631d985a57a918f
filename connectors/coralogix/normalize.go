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
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

const (
	// DefaultMaxMergeDepth bounds the number of fragments merged from one
	// multi-document body.
	DefaultMaxMergeDepth = 1000

	// PartialResultKey holds the unparsed remainder of a body that could
	// not be merged.
	PartialResultKey = "partiallyParsedResult"
)

// RawKind tells which variant a RawResponse holds.
type RawKind int

const (
	// RawEmpty means the request succeeded with an empty body.
	RawEmpty RawKind = iota
	// RawObject holds a body that parsed as one JSON object.
	RawObject
	// RawText holds a body that did not parse as one JSON object.
	RawText
	// RawTransport holds the unprocessed response of a DELETE.
	RawTransport
)

// RawResponse is a successful upstream response before normalization.
type RawResponse struct {
	Kind       RawKind
	Object     map[string]interface{}
	Text       string
	StatusCode int
	Header     http.Header
}

// EmptyResponse is the empty-body sentinel.
func EmptyResponse() RawResponse {
	return RawResponse{Kind: RawEmpty}
}

// ObjectResponse wraps an already parsed JSON object.
func ObjectResponse(obj map[string]interface{}) RawResponse {
	return RawResponse{Kind: RawObject, Object: obj}
}

// TextResponse wraps a body that may hold several newline separated documents.
func TextResponse(text string) RawResponse {
	return RawResponse{Kind: RawText, Text: text}
}

// EmptyResult is the normalized form of an empty body.
func EmptyResult() map[string]interface{} {
	return map[string]interface{}{
		"result": map[string]interface{}{
			"results": []interface{}{},
		},
	}
}

// Normalize turns a RawResponse into a single JSON object.
func Normalize(raw RawResponse, maxDepth int) map[string]interface{} {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxMergeDepth
	}

	switch raw.Kind {
	case RawObject:
		return raw.Object
	case RawText, RawTransport:
		if raw.Text == "" {
			return EmptyResult()
		}
		return MergeFragments(raw.Text, maxDepth)
	default:
		return EmptyResult()
	}
}

// MergeFragments merges newline separated JSON documents into one object.
// When every document carries result.results the sequences are
// concatenated in order; otherwise later documents override top-level
// keys of earlier ones. A fragment that is not a JSON object, or a body
// deeper than maxDepth fragments, ends the merge with the remaining text
// stored under PartialResultKey.
func MergeFragments(text string, maxDepth int) map[string]interface{} {
	return mergeFragments(text, 0, maxDepth)
}

func mergeFragments(text string, depth, maxDepth int) map[string]interface{} {
	if text == "" {
		return map[string]interface{}{}
	}
	if depth >= maxDepth {
		return map[string]interface{}{PartialResultKey: text}
	}

	head, rest, hasRest := strings.Cut(text, "\n")

	headResult, ok := parseFragment(head)
	if !ok {
		return map[string]interface{}{PartialResultKey: text}
	}
	if !hasRest {
		return headResult
	}

	return mergeResults(headResult, mergeFragments(rest, depth+1, maxDepth))
}

// parseFragment parses one document; blank fragments are empty objects.
func parseFragment(fragment string) (map[string]interface{}, bool) {
	if strings.TrimSpace(fragment) == "" {
		return map[string]interface{}{}, true
	}
	var parsed interface{}
	if err := decodeJSON(fragment, &parsed); err != nil {
		return nil, false
	}
	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, false
	}
	return obj, true
}

// mergeResults builds a new object from head and rest without mutating either.
func mergeResults(head, rest map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(head)+len(rest))
	for k, v := range head {
		merged[k] = v
	}

	headItems, headOK := resultsOf(head)
	restItems, restOK := resultsOf(rest)
	if !headOK || !restOK {
		for k, v := range rest {
			merged[k] = v
		}
		return merged
	}

	items := make([]interface{}, 0, len(headItems)+len(restItems))
	items = append(items, headItems...)
	items = append(items, restItems...)

	inner := make(map[string]interface{})
	for k, v := range head["result"].(map[string]interface{}) {
		inner[k] = v
	}
	inner["results"] = items
	merged["result"] = inner

	// Keys other than result still flow up, so a partial marker from a
	// deeper level is not lost.
	for k, v := range rest {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return merged
}

func resultsOf(doc map[string]interface{}) ([]interface{}, bool) {
	result, ok := doc["result"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	items, ok := result["results"].([]interface{})
	return items, ok
}

// decodeJSON decodes exactly one JSON value from text. Numbers are kept as
// json.Number so integers beyond 2^53 survive unchanged.
func decodeJSON(text string, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
