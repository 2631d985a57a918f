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
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"logarchive/platform/connectors/base"
)

// ConnectorMetrics records connector calls as Prometheus collectors
type ConnectorMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewConnectorMetrics creates the collectors under namespace and registers
// them with reg. Collectors already registered by another connector are
// reused.
func NewConnectorMetrics(namespace string, reg prometheus.Registerer) (*ConnectorMetrics, error) {
	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_calls_total",
			Help:      "Total number of connector calls",
		},
		[]string{"connector", "operation", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "connector_duration_milliseconds",
			Help:      "Connector call duration in milliseconds",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"connector", "operation"},
	)
	errs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_errors_total",
			Help:      "Total number of connector errors by kind",
		},
		[]string{"connector", "operation", "error_type"},
	)

	var err error
	if calls, err = registerOrReuse(reg, calls); err != nil {
		return nil, err
	}
	if duration, err = registerOrReuse(reg, duration); err != nil {
		return nil, err
	}
	if errs, err = registerOrReuse(reg, errs); err != nil {
		return nil, err
	}

	return &ConnectorMetrics{calls: calls, duration: duration, errors: errs}, nil
}

func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if reg == nil {
		return c, nil
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordCall records one operation with its outcome
func (m *ConnectorMetrics) RecordCall(connector, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		errorType := "unknown"
		if kind, ok := base.KindOf(err); ok {
			errorType = kind.String()
		}
		m.errors.WithLabelValues(connector, operation, errorType).Inc()
	}
	m.calls.WithLabelValues(connector, operation, status).Inc()
	m.duration.WithLabelValues(connector, operation).Observe(float64(duration.Milliseconds()))
}

// OperationTimer measures an operation's duration
type OperationTimer struct {
	start time.Time
}

// NewTimer starts a timer
func NewTimer() *OperationTimer {
	return &OperationTimer{start: time.Now()}
}

// Duration returns the elapsed time
func (t *OperationTimer) Duration() time.Duration {
	return time.Since(t.start)
}
