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

package base

import (
	"errors"
	"fmt"
)

// ErrorKind classifies connector failures. None of them is retried by the
// connector itself.
type ErrorKind int

const (
	// KindRequest covers 400 and any other non-2xx response, plus local
	// failures building or reading a request.
	KindRequest ErrorKind = iota
	// KindSecurity is a TLS verification failure.
	KindSecurity
	// KindTimeout is a connect or read timeout.
	KindTimeout
	// KindConnectivity is DNS, refused connection and similar failures.
	KindConnectivity
	// KindAuth is an HTTP 401.
	KindAuth
	// KindNotFound is an HTTP 404.
	KindNotFound
	// KindFormat is a malformed caller-supplied value, e.g. a timestamp.
	KindFormat
)

var kindNames = map[ErrorKind]string{
	KindRequest:      "RequestError",
	KindSecurity:     "SecurityError",
	KindTimeout:      "TimeoutError",
	KindConnectivity: "ConnectivityError",
	KindAuth:         "AuthError",
	KindNotFound:     "NotFoundError",
	KindFormat:       "FormatError",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ConnectorError represents errors specific to connector operations
type ConnectorError struct {
	ConnectorName string
	Operation     string
	Kind          ErrorKind
	Message       string
	// Detail carries the structured upstream error body, when there is one.
	Detail interface{}
	Cause  error
}

func (e *ConnectorError) Error() string {
	if e.Cause != nil {
		return e.ConnectorName + "." + e.Operation + ": " + e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return e.ConnectorName + "." + e.Operation + ": " + e.Message
}

func (e *ConnectorError) Unwrap() error {
	return e.Cause
}

// NewConnectorError creates a new ConnectorError
func NewConnectorError(connectorName, operation string, kind ErrorKind, message string, cause error) *ConnectorError {
	return &ConnectorError{
		ConnectorName: connectorName,
		Operation:     operation,
		Kind:          kind,
		Message:       message,
		Cause:         cause,
	}
}

// WithDetail attaches a structured detail and returns the same error.
func (e *ConnectorError) WithDetail(detail interface{}) *ConnectorError {
	e.Detail = detail
	return e
}

// KindOf reports the kind of the first ConnectorError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var connErr *ConnectorError
	if errors.As(err, &connErr) {
		return connErr.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries a ConnectorError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// MessageOf returns the human-readable message of the first ConnectorError
// in err's chain, or err.Error() for any other error.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var connErr *ConnectorError
	if errors.As(err, &connErr) {
		return connErr.Message
	}
	return err.Error()
}
