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

	"logarchive/platform/connectors/base"
)

// Operation is a supported connector operation.
type Operation int

const (
	// OpSearchArchivedLogs runs a DataPrime query over archived logs.
	OpSearchArchivedLogs Operation = iota + 1
)

var operationNames = map[Operation]string{
	OpSearchArchivedLogs: "search_archived_logs",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// Operations lists every supported operation.
func Operations() []Operation {
	return []Operation{OpSearchArchivedLogs}
}

// ParseOperation resolves an operation name received at the boundary.
func ParseOperation(name string) (Operation, error) {
	for op, opName := range operationNames {
		if opName == name {
			return op, nil
		}
	}
	return 0, base.NewConnectorError(ConnectorType, "execute", base.KindRequest,
		fmt.Sprintf("unsupported operation %q", name), nil)
}

// OperationNames returns the boundary names of Operations.
func OperationNames() []string {
	ops := Operations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	return names
}
