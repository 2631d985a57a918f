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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(ids ...int) string {
	items := make([]string, len(ids))
	for i, id := range ids {
		items[i] = fmt.Sprintf(`{"id":%d}`, id)
	}
	return `{"result":{"results":[` + strings.Join(items, ",") + `]}}`
}

func resultIDs(t *testing.T, doc map[string]interface{}) []float64 {
	t.Helper()
	items, ok := resultsOf(doc)
	require.True(t, ok, "document has no result.results: %v", doc)
	ids := make([]float64, len(items))
	for i, item := range items {
		id, err := item.(map[string]interface{})["id"].(json.Number).Float64()
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func TestNormalize_EmptySentinel(t *testing.T) {
	assert.Equal(t, EmptyResult(), Normalize(EmptyResponse(), DefaultMaxMergeDepth))
	assert.Equal(t, EmptyResult(), Normalize(TextResponse(""), DefaultMaxMergeDepth))
}

func TestNormalize_ObjectUnchanged(t *testing.T) {
	obj := map[string]interface{}{
		"result": map[string]interface{}{"results": []interface{}{"a"}},
		"extra":  "kept",
	}
	assert.Equal(t, obj, Normalize(ObjectResponse(obj), DefaultMaxMergeDepth))
}

func TestNormalize_TransportTextIsMerged(t *testing.T) {
	raw := RawResponse{Kind: RawTransport, Text: page(1) + "\n" + page(2), StatusCode: 200}
	assert.Equal(t, []float64{1, 2}, resultIDs(t, Normalize(raw, DefaultMaxMergeDepth)))
}

func TestMergeFragments_Concatenates(t *testing.T) {
	merged := MergeFragments(page(1)+"\n"+page(2), DefaultMaxMergeDepth)
	assert.Equal(t, []float64{1, 2}, resultIDs(t, merged))
}

func TestMergeFragments_Associative(t *testing.T) {
	a, b, c := page(1, 2), page(3), page(4, 5)
	flat := MergeFragments(a+"\n"+b+"\n"+c, DefaultMaxMergeDepth)

	// (A\nB) merged first, then C appended.
	left := mergeResults(MergeFragments(a+"\n"+b, DefaultMaxMergeDepth), MergeFragments(c, DefaultMaxMergeDepth))
	// A merged onto (B\nC).
	right := mergeResults(MergeFragments(a, DefaultMaxMergeDepth), MergeFragments(b+"\n"+c, DefaultMaxMergeDepth))

	want := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, want, resultIDs(t, flat))
	assert.Equal(t, want, resultIDs(t, left))
	assert.Equal(t, want, resultIDs(t, right))
}

func TestMergeFragments_ShallowMergeWithoutResults(t *testing.T) {
	merged := MergeFragments(`{"a":1,"b":1}`+"\n"+`{"b":2,"c":3}`, DefaultMaxMergeDepth)

	assert.Equal(t, map[string]interface{}{
		"a": json.Number("1"),
		"b": json.Number("2"),
		"c": json.Number("3"),
	}, merged)
}

func TestMergeFragments_HeadMissingResults(t *testing.T) {
	merged := MergeFragments(`{"queryId":"q1"}`+"\n"+page(7), DefaultMaxMergeDepth)

	assert.Equal(t, "q1", merged["queryId"])
	assert.Equal(t, []float64{7}, resultIDs(t, merged))
}

func TestMergeFragments_KeepsLargeIntegers(t *testing.T) {
	merged := MergeFragments(`{"result":{"results":[{"id":9007199254740993}]}}`+"\n"+
		`{"result":{"results":[{"id":12345678901234567891}]}}`, DefaultMaxMergeDepth)

	items, ok := resultsOf(merged)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, json.Number("9007199254740993"), items[0].(map[string]interface{})["id"])
	assert.Equal(t, json.Number("12345678901234567891"), items[1].(map[string]interface{})["id"])
}

func TestMergeFragments_TrailingDataIsNotAnObject(t *testing.T) {
	merged := MergeFragments(`{"a":1} {"b":2}`, DefaultMaxMergeDepth)
	assert.Equal(t, map[string]interface{}{PartialResultKey: `{"a":1} {"b":2}`}, merged)
}

func TestMergeFragments_BlankLines(t *testing.T) {
	merged := MergeFragments(page(1)+"\n\n"+page(2)+"\n", DefaultMaxMergeDepth)

	assert.Equal(t, []float64{1, 2}, resultIDs(t, merged))
}

func TestMergeFragments_NonJSONTail(t *testing.T) {
	merged := MergeFragments(page(1)+"\nnot json at all", DefaultMaxMergeDepth)

	assert.Equal(t, []float64{1}, resultIDs(t, merged))
	assert.Equal(t, "not json at all", merged[PartialResultKey])
}

func TestMergeFragments_NonJSONBody(t *testing.T) {
	merged := MergeFragments("plain text", DefaultMaxMergeDepth)
	assert.Equal(t, map[string]interface{}{PartialResultKey: "plain text"}, merged)
}

func TestMergeFragments_DepthGuard(t *testing.T) {
	const maxDepth = 3
	fragments := make([]string, 6)
	for i := range fragments {
		fragments[i] = page(i + 1)
	}
	body := strings.Join(fragments, "\n")

	merged := MergeFragments(body, maxDepth)

	assert.Equal(t, []float64{1, 2, 3}, resultIDs(t, merged))
	assert.Equal(t, strings.Join(fragments[3:], "\n"), merged[PartialResultKey])
}

func TestMergeFragments_DepthGuardLargeInput(t *testing.T) {
	fragments := make([]string, DefaultMaxMergeDepth+50)
	for i := range fragments {
		fragments[i] = page(i)
	}

	merged := MergeFragments(strings.Join(fragments, "\n"), DefaultMaxMergeDepth)

	assert.Len(t, resultIDs(t, merged), DefaultMaxMergeDepth)
	assert.Contains(t, merged, PartialResultKey)
}

func TestMergeResults_DoesNotMutateInputs(t *testing.T) {
	head := map[string]interface{}{
		"result": map[string]interface{}{"results": []interface{}{"h"}},
	}
	rest := map[string]interface{}{
		"result": map[string]interface{}{"results": []interface{}{"r"}},
	}

	merged := mergeResults(head, rest)

	assert.Equal(t, []interface{}{"h", "r"}, merged["result"].(map[string]interface{})["results"])
	assert.Equal(t, []interface{}{"h"}, head["result"].(map[string]interface{})["results"])
	assert.Equal(t, []interface{}{"r"}, rest["result"].(map[string]interface{})["results"])
}
