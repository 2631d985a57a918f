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
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logarchive/platform/connectors/base"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(NewClientConfig(server.URL, "test-key", true), opts...)
	t.Cleanup(client.Close)
	return client, server
}

func requireKind(t *testing.T, err error, kind base.ErrorKind) *base.ConnectorError {
	t.Helper()
	require.Error(t, err)
	var connErr *base.ConnectorError
	require.True(t, errors.As(err, &connErr), "expected *base.ConnectorError, got %T", err)
	require.Equal(t, kind, connErr.Kind, "unexpected kind for %v", err)
	return connErr
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"api.coralogix.com", "https://api.coralogix.com"},
		{"api.coralogix.com/", "https://api.coralogix.com"},
		{"https://api.coralogix.com/", "https://api.coralogix.com"},
		{"http://localhost:8080", "http://localhost:8080"},
		{"  https://api.coralogix.com  ", "https://api.coralogix.com"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeBaseURL(tt.input))
		})
	}
}

func TestNewClientConfig_Defaults(t *testing.T) {
	cfg := NewClientConfig("api.coralogix.com/", "key", true)

	assert.Equal(t, "https://api.coralogix.com", cfg.BaseURL)
	assert.True(t, cfg.VerifyTLS)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultConnectTimeout, cfg.ConnectTimeout)
	assert.Equal(t, int64(DefaultMaxResponseSize), cfg.MaxResponseSize)

	client := NewClient(cfg)
	assert.Equal(t, DefaultTimeout, client.Config().ReadTimeout)
}

func TestSend_Headers(t *testing.T) {
	var mu sync.Mutex
	var gotAuth, gotContentType, gotMethod, gotPath, gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.Send(context.Background(), Request{
		Method:   "post",
		Endpoint: "/api/v1/dataprime/query",
		Body:     map[string]interface{}{"query": "limit 1"},
		Query:    url.Values{"tier": []string{"archive"}},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/dataprime/query", gotPath)
	assert.Equal(t, "tier=archive", gotQuery)
}

func TestSend_SuccessVariants(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
		body   string
		check  func(t *testing.T, raw RawResponse)
	}{
		{
			name:   "json object",
			method: http.MethodPost,
			status: http.StatusOK,
			body:   `{"result":{"results":[]}}`,
			check: func(t *testing.T, raw RawResponse) {
				assert.Equal(t, RawObject, raw.Kind)
				assert.Contains(t, raw.Object, "result")
			},
		},
		{
			name:   "multi document text",
			method: http.MethodPost,
			status: http.StatusOK,
			body:   page(1) + "\n" + page(2),
			check: func(t *testing.T, raw RawResponse) {
				assert.Equal(t, RawText, raw.Kind)
				assert.Equal(t, page(1)+"\n"+page(2), raw.Text)
			},
		},
		{
			name:   "json array is text",
			method: http.MethodPost,
			status: http.StatusOK,
			body:   `[1,2]`,
			check: func(t *testing.T, raw RawResponse) {
				assert.Equal(t, RawText, raw.Kind)
			},
		},
		{
			name:   "empty body",
			method: http.MethodPost,
			status: http.StatusNoContent,
			body:   "",
			check: func(t *testing.T, raw RawResponse) {
				assert.Equal(t, RawEmpty, raw.Kind)
			},
		},
		{
			name:   "delete returns transport response",
			method: http.MethodDelete,
			status: http.StatusAccepted,
			body:   `{"deleted":true}`,
			check: func(t *testing.T, raw RawResponse) {
				assert.Equal(t, RawTransport, raw.Kind)
				assert.Equal(t, http.StatusAccepted, raw.StatusCode)
				assert.Equal(t, `{"deleted":true}`, raw.Text)
				assert.Equal(t, "yes", raw.Header.Get("X-Test"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Test", "yes")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			raw, err := client.Send(context.Background(), Request{Method: tt.method, Endpoint: "/x"})
			require.NoError(t, err)
			tt.check(t, raw)
		})
	}
}

func TestSend_StatusErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		kind        base.ErrorKind
		message     string
		checkDetail func(t *testing.T, detail interface{})
	}{
		{
			name:    "400 carries raw text",
			status:  http.StatusBadRequest,
			body:    `{"message":"bad query"}`,
			kind:    base.KindRequest,
			message: `{"message":"bad query"}`,
			checkDetail: func(t *testing.T, detail interface{}) {
				assert.Equal(t, `{"message":"bad query"}`, detail)
			},
		},
		{
			name:    "401 error field",
			status:  http.StatusUnauthorized,
			body:    `{"error":"bad token"}`,
			kind:    base.KindAuth,
			message: "bad token",
		},
		{
			name:    "401 message field",
			status:  http.StatusUnauthorized,
			body:    `{"message":"expired"}`,
			kind:    base.KindAuth,
			message: "expired",
		},
		{
			name:    "401 unparseable",
			status:  http.StatusUnauthorized,
			body:    "denied",
			kind:    base.KindAuth,
			message: "denied",
		},
		{
			name:    "404 message field",
			status:  http.StatusNotFound,
			body:    `{"message":"no such endpoint"}`,
			kind:    base.KindNotFound,
			message: "no such endpoint",
		},
		{
			name:    "404 full body",
			status:  http.StatusNotFound,
			body:    `{"foo":"bar"}`,
			kind:    base.KindNotFound,
			message: `{"foo":"bar"}`,
			checkDetail: func(t *testing.T, detail interface{}) {
				assert.Equal(t, map[string]interface{}{"foo": "bar"}, detail)
			},
		},
		{
			name:    "500 json body",
			status:  http.StatusInternalServerError,
			body:    `{"code":13,"reason":"internal"}`,
			kind:    base.KindRequest,
			message: `{"code":13,"reason":"internal"}`,
			checkDetail: func(t *testing.T, detail interface{}) {
				assert.Equal(t, map[string]interface{}{"code": json.Number("13"), "reason": "internal"}, detail)
			},
		},
		{
			name:   "502 malformed body",
			status: http.StatusBadGateway,
			body:   "<html>bad gateway</html>",
			kind:   base.KindRequest,
			checkDetail: func(t *testing.T, detail interface{}) {
				assert.Equal(t, map[string]interface{}{
					"status_code": http.StatusBadGateway,
					"message":     "<html>bad gateway</html>",
				}, detail)
			},
		},
		{
			name:   "503 empty body uses reason",
			status: http.StatusServiceUnavailable,
			body:   "",
			kind:   base.KindRequest,
			checkDetail: func(t *testing.T, detail interface{}) {
				assert.Equal(t, map[string]interface{}{
					"status_code": http.StatusServiceUnavailable,
					"message":     "Service Unavailable",
				}, detail)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Send(context.Background(), Request{Method: http.MethodPost, Endpoint: "/x"})
			connErr := requireKind(t, err, tt.kind)
			if tt.message != "" {
				assert.Equal(t, tt.message, connErr.Message)
			}
			if tt.checkDetail != nil {
				tt.checkDetail(t, connErr.Detail)
			}
		})
	}
}

func TestSend_ResponseTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 64))
	}))
	defer server.Close()

	cfg := NewClientConfig(server.URL, "k", true)
	cfg.MaxResponseSize = 16
	client := NewClient(cfg)

	_, err := client.Send(context.Background(), Request{Method: http.MethodGet, Endpoint: "/"})
	connErr := requireKind(t, err, base.KindRequest)
	assert.Contains(t, connErr.Message, "maximum size")
}

func TestSend_MissingAPIKey(t *testing.T) {
	client := NewClient(NewClientConfig("http://127.0.0.1:1", "", true))

	_, err := client.Send(context.Background(), Request{Method: http.MethodGet, Endpoint: "/"})
	requireKind(t, err, base.KindRequest)
}

func TestSend_Multipart(t *testing.T) {
	var mu sync.Mutex
	var gotFile, gotField string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		gotField = r.FormValue("query")
		file, _, err := r.FormFile("upload")
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(file)
		gotFile = string(data)
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.Send(context.Background(), Request{
		Method:   http.MethodPost,
		Endpoint: "/upload",
		Body:     map[string]interface{}{"query": "limit 1"},
		Files:    map[string]FileUpload{"upload": {Filename: "q.txt", Content: []byte("payload")}},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "limit 1", gotField)
	assert.Equal(t, "payload", gotFile)
}

func TestSend_TLSVerificationFailure(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(NewClientConfig(server.URL, "k", true))

	_, err := client.Send(context.Background(), Request{Method: http.MethodGet, Endpoint: "/"})
	connErr := requireKind(t, err, base.KindSecurity)
	assert.Equal(t, MsgTLSFailure, connErr.Message)
}

func TestSend_TLSVerificationDisabled(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer server.Close()

	client := NewClient(NewClientConfig(server.URL, "k", false))

	raw, err := client.Send(context.Background(), Request{Method: http.MethodGet, Endpoint: "/"})
	require.NoError(t, err)
	assert.Equal(t, true, raw.Object["ok"])
}

func TestSend_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := NewClient(NewClientConfig(serverURL, "k", true))

	_, err := client.Send(context.Background(), Request{Method: http.MethodGet, Endpoint: "/"})
	connErr := requireKind(t, err, base.KindConnectivity)
	assert.Equal(t, MsgConnectivity, connErr.Message)
}

func TestSend_ReadTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := NewClientConfig(server.URL, "k", true)
	cfg.ReadTimeout = 50 * time.Millisecond
	client := NewClient(cfg)

	_, err := client.Send(context.Background(), Request{Method: http.MethodGet, Endpoint: "/"})
	connErr := requireKind(t, err, base.KindTimeout)
	assert.Equal(t, MsgReadTimeout, connErr.Message)
}

func TestClient_TLSHandshakeTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			// never answer the ClientHello
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	}()

	cfg := NewClientConfig("https://"+ln.Addr().String(), "k", false)
	cfg.ConnectTimeout = 50 * time.Millisecond
	cfg.Timeout = 5 * time.Second
	client := NewClient(cfg)
	defer client.Close()

	_, err = client.Send(context.Background(), Request{Method: http.MethodGet, Endpoint: "/"})
	connErr := requireKind(t, err, base.KindTimeout)
	assert.Equal(t, MsgConnectTimeout, connErr.Message)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// handshakeTimeoutError has the shape net/http returns when
// TLSHandshakeTimeout expires.
type handshakeTimeoutError struct{}

func (handshakeTimeoutError) Error() string   { return "net/http: TLS handshake timeout" }
func (handshakeTimeoutError) Timeout() bool   { return true }
func (handshakeTimeoutError) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    base.ErrorKind
		message string
	}{
		{
			name: "dial timeout",
			err: &url.Error{Op: "Post", URL: "https://x", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: timeoutError{},
			}},
			kind:    base.KindTimeout,
			message: MsgConnectTimeout,
		},
		{
			name:    "tls handshake timeout",
			err:     &url.Error{Op: "Post", URL: "https://x", Err: handshakeTimeoutError{}},
			kind:    base.KindTimeout,
			message: MsgConnectTimeout,
		},
		{
			name: "read timeout",
			err: &url.Error{Op: "Post", URL: "https://x", Err: &net.OpError{
				Op: "read", Net: "tcp", Err: timeoutError{},
			}},
			kind:    base.KindTimeout,
			message: MsgReadTimeout,
		},
		{
			name:    "deadline exceeded",
			err:     &url.Error{Op: "Post", URL: "https://x", Err: context.DeadlineExceeded},
			kind:    base.KindTimeout,
			message: MsgReadTimeout,
		},
		{
			name: "dns failure",
			err: &url.Error{Op: "Post", URL: "https://x", Err: &net.DNSError{
				Err: "no such host", Name: "x", IsNotFound: true,
			}},
			kind:    base.KindConnectivity,
			message: MsgConnectivity,
		},
		{
			name:    "unexpected eof",
			err:     &url.Error{Op: "Post", URL: "https://x", Err: io.ErrUnexpectedEOF},
			kind:    base.KindConnectivity,
			message: MsgConnectivity,
		},
		{
			name:    "anything else",
			err:     errors.New("unsupported protocol scheme"),
			kind:    base.KindRequest,
			message: "unsupported protocol scheme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connErr := classifyTransportError("archive", "send", tt.err)
			assert.Equal(t, tt.kind, connErr.Kind)
			assert.Equal(t, tt.message, connErr.Message)
			assert.ErrorIs(t, connErr, tt.err)
		})
	}
}

func TestErrClass(t *testing.T) {
	assert.Equal(t, "", errClass(nil))
	assert.NotEmpty(t, errClass(context.DeadlineExceeded))
}
