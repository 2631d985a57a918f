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

package sdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// AuthProvider defines the interface for authentication mechanisms
type AuthProvider interface {
	// Authenticate applies authentication to the given request
	Authenticate(ctx context.Context, req *http.Request) error

	// Type returns the authentication type name
	Type() string
}

// BearerTokenAuth provides Bearer token authentication with a static token
type BearerTokenAuth struct {
	token string
	mu    sync.RWMutex
}

// NewBearerTokenAuth creates a new Bearer token authentication provider
func NewBearerTokenAuth(token string) *BearerTokenAuth {
	return &BearerTokenAuth{token: token}
}

// Authenticate applies the Bearer token to the request
func (b *BearerTokenAuth) Authenticate(ctx context.Context, req *http.Request) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.token == "" {
		return fmt.Errorf("bearer token is not set")
	}

	req.Header.Set("Authorization", "Bearer "+b.token)
	return nil
}

// Type returns the authentication type
func (b *BearerTokenAuth) Type() string {
	return "bearer"
}

// SetToken updates the bearer token
func (b *BearerTokenAuth) SetToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

// GetToken returns the current token
func (b *BearerTokenAuth) GetToken() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token
}
