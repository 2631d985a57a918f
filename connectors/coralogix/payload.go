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
	"reflect"
)

// BuildPayload returns a pruned copy of params.
//
// Integers and booleans are always kept, including 0 and false. Nested
// mappings are pruned recursively and kept only when something survives.
// Every other value is kept only when it is truthy: non-empty strings,
// slices and maps, non-zero floats, non-nil values.
func BuildPayload(params map[string]interface{}) map[string]interface{} {
	payload := make(map[string]interface{}, len(params))
	for k, v := range params {
		if nested, ok := v.(map[string]interface{}); ok {
			if len(nested) == 0 {
				continue
			}
			if pruned := BuildPayload(nested); len(pruned) > 0 {
				payload[k] = pruned
			}
			continue
		}
		if isIntegral(v) || truthy(v) {
			payload[k] = v
		}
	}
	return payload
}

// isIntegral reports whether v is a boolean or an integer type. A
// json.Number counts as an integer when it has no fraction or exponent.
func isIntegral(v interface{}) bool {
	switch n := v.(type) {
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := n.Int64()
		return err == nil
	}
	return false
}

func truthy(v interface{}) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case float32:
		return t != 0
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
