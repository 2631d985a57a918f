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
	"sort"
	"strings"

	"logarchive/platform/connectors/base"
	"logarchive/platform/connectors/sdk"
)

// RequestDescription is what an observer sees of an outbound request.
type RequestDescription struct {
	Method   string
	URL      string
	Header   http.Header
	Body     []byte
	Files    []string
	Insecure bool
}

// RequestObserver receives every outbound request before it is sent.
// Errors and panics from an observer never affect the request.
type RequestObserver interface {
	ObserveRequest(ctx context.Context, desc RequestDescription) error
}

// RequestObserverFunc adapts a function to RequestObserver.
type RequestObserverFunc func(ctx context.Context, desc RequestDescription) error

// ObserveRequest calls f.
func (f RequestObserverFunc) ObserveRequest(ctx context.Context, desc RequestDescription) error {
	return f(ctx, desc)
}

func (c *Client) observe(ctx context.Context, desc RequestDescription) {
	if c.observer == nil {
		return
	}
	requestID := sdk.GetRequestID(ctx)
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug(requestID, "Error in curl utils", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
		}
	}()
	if err := c.observer.ObserveRequest(ctx, desc); err != nil {
		c.logger.Debug(requestID, "Error in curl utils", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// CurlObserver logs an equivalent curl command at debug level.
type CurlObserver struct {
	logger Logger
}

// NewCurlObserver creates an observer writing to l.
func NewCurlObserver(l Logger) *CurlObserver {
	if l == nil {
		l = nopLogger{}
	}
	return &CurlObserver{logger: l}
}

// ObserveRequest implements RequestObserver.
func (o *CurlObserver) ObserveRequest(ctx context.Context, desc RequestDescription) error {
	o.logger.Debug(sdk.GetRequestID(ctx), "curl reproduction", map[string]interface{}{
		"curl": RenderCurl(desc),
	})
	return nil
}

// RenderCurl renders desc as a curl command line. The bearer token is
// masked.
func RenderCurl(desc RequestDescription) string {
	var b strings.Builder
	b.WriteString("curl -X ")
	b.WriteString(desc.Method)
	if desc.Insecure {
		b.WriteString(" -k")
	}

	names := make([]string, 0, len(desc.Header))
	for name := range desc.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range desc.Header[name] {
			if http.CanonicalHeaderKey(name) == "Authorization" {
				value = maskAuthorization(value)
			}
			b.WriteString(" -H ")
			b.WriteString(shellQuote(name + ": " + value))
		}
	}

	if len(desc.Files) > 0 {
		for _, field := range desc.Files {
			b.WriteString(" -F ")
			b.WriteString(shellQuote(field + "=@" + field))
		}
	} else if len(desc.Body) > 0 {
		b.WriteString(" --data ")
		b.WriteString(shellQuote(string(desc.Body)))
	}

	b.WriteString(" ")
	b.WriteString(shellQuote(desc.URL))
	return b.String()
}

func maskAuthorization(value string) string {
	scheme, token, ok := strings.Cut(value, " ")
	if !ok {
		return base.MaskSecret(value)
	}
	return scheme + " " + base.MaskSecret(token)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
