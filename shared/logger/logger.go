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

package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string {
		return strings.ToUpper(l.String())
	}
}

// Logger provides structured logging scoped to one component
type Logger struct {
	Component  string
	InstanceID string
	Container  string

	mu sync.RWMutex
	zl zerolog.Logger
}

// LogEntry is the shape of one emitted line
type LogEntry struct {
	Timestamp  string                 `json:"timestamp"`
	Level      LogLevel               `json:"level"`
	Component  string                 `json:"component"`
	InstanceID string                 `json:"instance_id"`
	Container  string                 `json:"container"`
	RequestID  string                 `json:"request_id,omitempty"`
	Message    string                 `json:"message"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// New creates a new Logger for the specified component writing to stdout
func New(component string) *Logger {
	return NewWithWriter(component, os.Stdout)
}

// NewWithWriter creates a Logger writing JSON lines to w
func NewWithWriter(component string, w io.Writer) *Logger {
	// Get instance ID from environment (set during deployment)
	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		instanceID = "unknown"
	}

	container, err := os.Hostname()
	if err != nil {
		container = "unknown"
	}

	zl := zerolog.New(w).
		Level(levelFromEnv()).
		With().
		Timestamp().
		Str("component", component).
		Str("instance_id", instanceID).
		Str("container", container).
		Logger()

	return &Logger{
		Component:  component,
		InstanceID: instanceID,
		Container:  container,
		zl:         zl,
	}
}

// levelFromEnv reads LOG_LEVEL, defaulting to info
func levelFromEnv() zerolog.Level {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// SetLevel overrides the minimum level written by this logger. It is safe
// to call while other goroutines are logging.
func (l *Logger) SetLevel(level LogLevel) {
	zl := zerolog.InfoLevel
	switch level {
	case DEBUG:
		zl = zerolog.DebugLevel
	case WARN:
		zl = zerolog.WarnLevel
	case ERROR:
		zl = zerolog.ErrorLevel
	}

	l.mu.Lock()
	l.zl = l.zl.Level(zl)
	l.mu.Unlock()
}

// Log writes a structured entry at the given level
func (l *Logger) Log(level LogLevel, requestID, message string, fields map[string]interface{}) {
	l.mu.RLock()
	zl := l.zl
	l.mu.RUnlock()

	var event *zerolog.Event
	switch level {
	case DEBUG:
		event = zl.Debug()
	case WARN:
		event = zl.Warn()
	case ERROR:
		event = zl.Error()
	default:
		event = zl.Info()
	}

	// nil when the level is filtered out
	if event == nil {
		return
	}
	if requestID != "" {
		event = event.Str("request_id", requestID)
	}
	if len(fields) > 0 {
		event = event.Interface("fields", fields)
	}
	event.Msg(message)
}

// Info logs an informational message
func (l *Logger) Info(requestID, message string, fields map[string]interface{}) {
	l.Log(INFO, requestID, message, fields)
}

// Error logs an error message
func (l *Logger) Error(requestID, message string, fields map[string]interface{}) {
	l.Log(ERROR, requestID, message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(requestID, message string, fields map[string]interface{}) {
	l.Log(WARN, requestID, message, fields)
}

// Debug logs a debug message
func (l *Logger) Debug(requestID, message string, fields map[string]interface{}) {
	l.Log(DEBUG, requestID, message, fields)
}

// InfoWithDuration logs an info message with duration field
func (l *Logger) InfoWithDuration(requestID, message string, duration time.Duration, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["duration_ms"] = float64(duration.Microseconds()) / 1000
	l.Info(requestID, message, fields)
}

// ErrorWithCode logs an error with status code
func (l *Logger) ErrorWithCode(requestID, message string, statusCode int, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["status_code"] = statusCode
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Error(requestID, message, fields)
}
