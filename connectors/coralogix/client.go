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
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"logarchive/platform/connectors/base"
	"logarchive/platform/connectors/sdk"
)

const (
	// DefaultTimeout bounds one request end to end and, unless ReadTimeout
	// is set, the wait for response headers.
	DefaultTimeout = 120 * time.Second
	// DefaultConnectTimeout bounds dialing and the TLS handshake.
	DefaultConnectTimeout = 10 * time.Second
	// DefaultMaxResponseSize is the maximum response body size (10MB)
	DefaultMaxResponseSize = 10 * 1024 * 1024
)

// Logger is the logging surface the client needs. *logger.Logger
// satisfies it.
type Logger interface {
	Debug(requestID, message string, fields map[string]interface{})
	Info(requestID, message string, fields map[string]interface{})
	Warn(requestID, message string, fields map[string]interface{})
	Error(requestID, message string, fields map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}

// ClientConfig is the static configuration of one Client.
type ClientConfig struct {
	BaseURL         string
	APIKey          string
	VerifyTLS       bool
	Timeout         time.Duration
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	MaxResponseSize int64
}

// NewClientConfig builds a config with default timeouts and a normalized
// base URL.
func NewClientConfig(serverURL, apiKey string, verifyTLS bool) ClientConfig {
	return ClientConfig{
		BaseURL:         NormalizeBaseURL(serverURL),
		APIKey:          apiKey,
		VerifyTLS:       verifyTLS,
		Timeout:         DefaultTimeout,
		ConnectTimeout:  DefaultConnectTimeout,
		MaxResponseSize: DefaultMaxResponseSize,
	}
}

// NormalizeBaseURL trims one trailing slash and prefixes https:// when the
// URL has no http or https scheme.
func NormalizeBaseURL(serverURL string) string {
	u := strings.TrimSuffix(strings.TrimSpace(serverURL), "/")
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return u
}

// FileUpload is one file part of a multipart request.
type FileUpload struct {
	Filename string
	Content  []byte
}

// Request describes one call relative to the client's base URL.
type Request struct {
	Method   string
	Endpoint string
	Body     interface{}
	Query    url.Values
	Files    map[string]FileUpload
}

// Client issues authenticated calls against one archive API and maps
// every outcome onto a RawResponse or a classified *base.ConnectorError.
type Client struct {
	config     ClientConfig
	name       string
	httpClient *http.Client
	auth       *sdk.BearerTokenAuth
	logger     Logger
	observer   RequestObserver
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the client logger. A nil logger discards output.
func WithLogger(l Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver installs a best-effort request observer.
func WithObserver(o RequestObserver) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// WithHTTPClient replaces the HTTP client built from the config.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithName sets the connector name reported in errors.
func WithName(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.name = name
		}
	}
}

// NewClient creates a client for config.
func NewClient(config ClientConfig, opts ...ClientOption) *Client {
	config.BaseURL = NormalizeBaseURL(config.BaseURL)
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = config.Timeout
	}
	if config.MaxResponseSize <= 0 {
		config.MaxResponseSize = DefaultMaxResponseSize
	}

	c := &Client{
		config: config,
		name:   ConnectorType,
		auth:   sdk.NewBearerTokenAuth(config.APIKey),
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = newHTTPClient(config)
	}
	return c
}

func newHTTPClient(config ClientConfig) *http.Client {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !config.VerifyTLS, // #nosec G402 -- operator opt-out via verify_ssl
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   config.ConnectTimeout,
		ResponseHeaderTimeout: config.ReadTimeout,
		MaxIdleConns:          100,
		MaxConnsPerHost:       10,
		IdleConnTimeout:       90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   config.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &http.Client{
		Timeout:   config.Timeout,
		Transport: transport,
	}
}

// Config returns the client configuration.
func (c *Client) Config() ClientConfig {
	return c.config
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Send performs one request. A 2xx response becomes a RawResponse: the
// unprocessed response for DELETE, a parsed object, raw text when the body
// is not one JSON object, or the empty sentinel. Everything else is a
// *base.ConnectorError. Nothing is retried.
func (c *Client) Send(ctx context.Context, r Request) (RawResponse, error) {
	const op = "send"
	requestID := sdk.GetRequestID(ctx)

	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	reqURL := c.config.BaseURL + r.Endpoint
	if len(r.Query) > 0 {
		reqURL += "?" + r.Query.Encode()
	}
	c.logger.Info(requestID, "Executing url", map[string]interface{}{
		"method": method,
		"url":    reqURL,
	})

	payload, contentType, err := encodeBody(r)
	if err != nil {
		return RawResponse{}, base.NewConnectorError(c.name, op, base.KindRequest, "failed to encode request body", err)
	}

	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return RawResponse{}, base.NewConnectorError(c.name, op, base.KindRequest, err.Error(), err)
	}
	if err := c.auth.Authenticate(ctx, req); err != nil {
		return RawResponse{}, base.NewConnectorError(c.name, op, base.KindRequest, "api key is not configured", err)
	}
	req.Header.Set("Content-Type", contentType)

	c.observe(ctx, RequestDescription{
		Method:   method,
		URL:      reqURL,
		Header:   req.Header.Clone(),
		Body:     payload,
		Files:    fileNames(r.Files),
		Insecure: !c.config.VerifyTLS,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		connErr := classifyTransportError(c.name, op, err)
		c.logger.Error(requestID, "Request failed", map[string]interface{}{
			"url":        reqURL,
			"error_type": connErr.Kind.String(),
			"err_class":  errClass(err),
			"error":      base.SanitizeLogString(err.Error()),
		})
		return RawResponse{}, connErr
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize+1))
	if err != nil {
		return RawResponse{}, classifyTransportError(c.name, op, err)
	}
	if int64(len(data)) > c.config.MaxResponseSize {
		return RawResponse{}, base.NewConnectorError(c.name, op, base.KindRequest,
			fmt.Sprintf("response exceeds maximum size of %d bytes", c.config.MaxResponseSize), nil)
	}
	text := string(data)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info(requestID, "Successfully got response", map[string]interface{}{
			"url":         reqURL,
			"status_code": resp.StatusCode,
		})
		return successResponse(method, resp, text), nil
	}

	c.logger.Error(requestID, "Upstream returned an error status", map[string]interface{}{
		"url":         reqURL,
		"status_code": resp.StatusCode,
		"body":        base.SanitizeLogString(text),
	})
	return RawResponse{}, c.statusError(op, resp, text)
}

func successResponse(method string, resp *http.Response, text string) RawResponse {
	if method == http.MethodDelete {
		return RawResponse{
			Kind:       RawTransport,
			Text:       text,
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
		}
	}
	if text == "" {
		return EmptyResponse()
	}
	var obj map[string]interface{}
	if err := decodeJSON(text, &obj); err != nil || obj == nil {
		return TextResponse(text)
	}
	return ObjectResponse(obj)
}

// statusError maps a non-2xx response to the error taxonomy.
func (c *Client) statusError(op string, resp *http.Response, text string) error {
	var parsed interface{}
	parseErr := decodeJSON(text, &parsed)
	obj, _ := parsed.(map[string]interface{})

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return base.NewConnectorError(c.name, op, base.KindRequest, text, nil).WithDetail(text)

	case http.StatusUnauthorized:
		message := stringField(obj, "error")
		if message == "" {
			message = stringField(obj, "message")
		}
		if message == "" {
			message = fallbackMessage(resp, text)
		}
		return base.NewConnectorError(c.name, op, base.KindAuth, message, nil).WithDetail(message)

	case http.StatusNotFound:
		if message := stringField(obj, "message"); message != "" {
			return base.NewConnectorError(c.name, op, base.KindNotFound, message, nil).WithDetail(message)
		}
		if parseErr != nil {
			return base.NewConnectorError(c.name, op, base.KindNotFound, fallbackMessage(resp, text), nil).WithDetail(text)
		}
		return base.NewConnectorError(c.name, op, base.KindNotFound, text, nil).WithDetail(parsed)
	}

	if parseErr == nil {
		return base.NewConnectorError(c.name, op, base.KindRequest, text, nil).WithDetail(parsed)
	}
	detail := map[string]interface{}{
		"status_code": resp.StatusCode,
		"message":     fallbackMessage(resp, text),
	}
	message, _ := json.Marshal(detail)
	return base.NewConnectorError(c.name, op, base.KindRequest, string(message), nil).WithDetail(detail)
}

// stringField returns obj[key] rendered as a string, or "" when the key
// is absent or holds an empty value.
func stringField(obj map[string]interface{}, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if !truthy(v) {
		return ""
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(encoded)
}

func fallbackMessage(resp *http.Response, text string) string {
	if text != "" {
		return text
	}
	if reason := http.StatusText(resp.StatusCode); reason != "" {
		return reason
	}
	return resp.Status
}

// encodeBody serializes the request body as JSON, or as multipart form
// data when files are attached.
func encodeBody(r Request) ([]byte, string, error) {
	if len(r.Files) == 0 {
		if r.Body == nil {
			return nil, "application/json", nil
		}
		if raw, ok := r.Body.([]byte); ok {
			return raw, "application/json", nil
		}
		data, err := json.Marshal(r.Body)
		return data, "application/json", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if fields, ok := r.Body.(map[string]interface{}); ok {
		for _, key := range sortedKeys(fields) {
			value, err := formValue(fields[key])
			if err != nil {
				return nil, "", err
			}
			if err := w.WriteField(key, value); err != nil {
				return nil, "", err
			}
		}
	}

	for _, field := range fileNames(r.Files) {
		file := r.Files[field]
		part, err := w.CreateFormFile(field, file.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func formValue(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(t)
		return string(data), err
	}
	return fmt.Sprint(v), nil
}

func fileNames(files map[string]FileUpload) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
