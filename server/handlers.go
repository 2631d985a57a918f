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


package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"logarchive/platform/connectors/base"
	"logarchive/platform/connectors/sdk"
)

// ExecuteRequest is the body of POST /api/v1/connectors/{name}/execute.
type ExecuteRequest struct {
	Operation string                 `json:"operation"`
	Params    map[string]interface{} `json:"params"`
}

// ErrorResponse is the single error shape of the boundary.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ConnectorInfo describes one entry of GET /api/v1/connectors.
type ConnectorInfo struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	TenantID  string `json:"tenant_id,omitempty"`
	Connected bool   `json:"connected"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"service":        s.serviceName,
		"connectors":     len(s.registry.List()),
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) listConnectorsHandler(w http.ResponseWriter, r *http.Request) {
	tenantID := sdk.GetTenantID(r.Context())

	// Without a tenant only shared connectors are listed.
	names := s.registry.GetConnectorsByTenant(tenantID)

	infos := make([]ConnectorInfo, 0, len(names))
	for _, name := range names {
		cfg, err := s.registry.GetConfig(name)
		if err != nil {
			continue
		}
		infos = append(infos, ConnectorInfo{
			Name:      name,
			Type:      cfg.Type,
			TenantID:  cfg.TenantID,
			Connected: s.registry.IsConnected(name),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connectors": infos,
		"count":      len(infos),
	})
}

func (s *Server) executeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := sdk.GetRequestID(ctx)
	name := mux.Vars(r)["name"]

	var req ExecuteRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Operation == "" {
		writeError(w, http.StatusBadRequest, "operation is required")
		return
	}

	if !s.authorize(w, r, name) {
		return
	}

	conn, err := s.registry.Get(ctx, name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if !supports(conn, req.Operation) {
		writeError(w, http.StatusBadRequest, "unsupported operation \""+req.Operation+"\"")
		return
	}

	params := req.Params
	if params == nil {
		params = map[string]interface{}{}
	}

	result, err := conn.Execute(ctx, req.Operation, params)
	if err != nil {
		kind := "unknown"
		if k, ok := base.KindOf(err); ok {
			kind = k.String()
		}
		s.logger.Warn(requestID, "Connector operation failed", map[string]interface{}{
			"connector":  name,
			"operation":  req.Operation,
			"error_type": kind,
		})
		writeError(w, http.StatusBadGateway, base.MessageOf(err))
		return
	}

	writeJSON(w, http.StatusOK, result.Data)
}

func (s *Server) connectorHealthHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !s.authorize(w, r, name) {
		return
	}

	status, err := s.registry.HealthCheckSingle(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"connector":  name,
		"healthy":    status.Healthy,
		"latency_ms": status.Latency.Milliseconds(),
		"details":    status.Details,
		"error":      status.Error,
		"timestamp":  status.Timestamp,
	})
}

// authorize checks tenant access when the request names a tenant.
// authorize rejects callers whose tenant may not use the named connector.
// Requests without X-Tenant-ID only reach shared connectors.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, name string) bool {
	tenantID := sdk.GetTenantID(r.Context())
	err := s.registry.ValidateTenantAccess(name, tenantID)
	if err == nil {
		return true
	}

	if _, cfgErr := s.registry.GetConfig(name); cfgErr != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return false
	}
	if tenantID == "" {
		writeError(w, http.StatusForbidden, fmt.Sprintf("%s header is required for connector '%s'", HeaderTenantID, name))
		return false
	}
	writeError(w, http.StatusForbidden, err.Error())
	return false
}

func supports(conn base.Connector, operation string) bool {
	for _, op := range conn.Capabilities() {
		if op == operation {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
