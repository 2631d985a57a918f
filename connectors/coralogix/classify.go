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
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/bassosimone/errclass"

	"logarchive/platform/connectors/base"
)

// Fixed messages for network failures.
const (
	MsgTLSFailure     = "SSL certificate validation failed"
	MsgConnectTimeout = "timed out trying to connect"
	MsgReadTimeout    = "server did not send data in time"
	MsgConnectivity   = "invalid endpoint or credentials"
)

// classifyTransportError maps an error returned by the HTTP client onto
// the error taxonomy. The order matters: a TLS failure is also an
// *net.OpError, and a dial timeout is also a timeout.
func classifyTransportError(connector, operation string, err error) *base.ConnectorError {
	switch {
	case isTLSError(err):
		return base.NewConnectorError(connector, operation, base.KindSecurity, MsgTLSFailure, err)
	case isConnectTimeout(err):
		return base.NewConnectorError(connector, operation, base.KindTimeout, MsgConnectTimeout, err)
	case isTimeout(err):
		return base.NewConnectorError(connector, operation, base.KindTimeout, MsgReadTimeout, err)
	case isConnectivityError(err):
		return base.NewConnectorError(connector, operation, base.KindConnectivity, MsgConnectivity, err)
	}
	return base.NewConnectorError(connector, operation, base.KindRequest, err.Error(), err)
}

func isTLSError(err error) bool {
	var certErr *tls.CertificateVerificationError
	var authErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var invalidErr x509.CertificateInvalidError
	var recordErr tls.RecordHeaderError
	return errors.As(err, &certErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &recordErr)
}

// isConnectTimeout covers dial timeouts and TLS handshake timeouts; both
// happen before any request bytes are sent.
func isConnectTimeout(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" && opErr.Timeout() {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout() &&
		strings.Contains(err.Error(), "handshake timeout")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectivityError(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	return errors.As(err, &opErr) ||
		errors.As(err, &dnsErr) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF)
}

// errClass returns a short errno-style label for logs.
func errClass(err error) string {
	if err == nil {
		return ""
	}
	return errclass.New(err)
}
