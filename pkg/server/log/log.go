/* Copyright 2025 SolarCareer Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package log writes structured JSON log lines for the server
package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	fieldKeyLevel         = "level"
	fieldKeyMessage       = "msg"
	fieldKeyTimestamp     = "ts"
	fieldKeyUnixTimestamp = "ts_unix"

	// LevelDebug represents debug log level
	LevelDebug = "debug"
	// LevelInfo represents info log level
	LevelInfo = "info"
	// LevelWarn represents warn log level
	LevelWarn = "warn"
	// LevelError represents error log level
	LevelError = "error"
)

// ErrInvalidLevel is returned when parsing an unknown level name
var ErrInvalidLevel = errors.New("invalid log level")

var (
	mu           sync.Mutex
	currentLevel = LevelInfo
	output       io.Writer = os.Stderr
	now                    = time.Now
)

// Fields is a set of key-value pairs attached to a log line
type Fields map[string]interface{}

// Entry is a pending log line
type Entry struct {
	Fields    Fields
	Timestamp time.Time
}

func newEntry(fields Fields) Entry {
	return Entry{
		Fields:    fields,
		Timestamp: now().UTC(),
	}
}

// WithFields creates a log entry with the given fields
func WithFields(fields Fields) Entry {
	return newEntry(fields)
}

// ParseLevel validates a level name
func ParseLevel(level string) (string, error) {
	switch level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return level, nil
	}

	return "", errors.Wrapf(ErrInvalidLevel, "'%s'", level)
}

// SetLevel sets the global log level
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = level
}

// GetLevel returns the global log level
func GetLevel() string {
	mu.Lock()
	defer mu.Unlock()

	return currentLevel
}

// SetOutput redirects log lines to w and returns the previous writer
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()

	prev := output
	output = w
	return prev
}

func levelPriority(level string) int {
	switch level {
	case LevelDebug:
		return 0
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 1
	}
}

func shouldLog(level string) bool {
	return levelPriority(level) >= levelPriority(GetLevel())
}

// Debug logs the entry at a debug level
func (e Entry) Debug(msg string) {
	e.write(LevelDebug, msg)
}

// Info logs the entry at an info level
func (e Entry) Info(msg string) {
	e.write(LevelInfo, msg)
}

// Warn logs the entry at a warning level
func (e Entry) Warn(msg string) {
	e.write(LevelWarn, msg)
}

// Error logs the entry at an error level
func (e Entry) Error(msg string) {
	e.write(LevelError, msg)
}

// ErrorWrap logs the entry with the error annotated by msg
func (e Entry) ErrorWrap(err error, msg string) {
	e.Error(fmt.Sprintf("%s: %v", msg, err))
}

func (e Entry) formatJSON(level, msg string) []byte {
	data := make(Fields, len(e.Fields)+4)

	for k, v := range e.Fields {
		if err, ok := v.(error); ok {
			data[k] = err.Error()
			continue
		}

		data[k] = v
	}

	data[fieldKeyLevel] = level
	data[fieldKeyMessage] = msg
	data[fieldKeyTimestamp] = e.Timestamp
	data[fieldKeyUnixTimestamp] = e.Timestamp.Unix()

	serialized, err := json.Marshal(data)
	if err != nil {
		serialized, _ = json.Marshal(Fields{
			fieldKeyLevel:   LevelError,
			fieldKeyMessage: fmt.Sprintf("formatting log line: %v", err),
		})
	}

	return serialized
}

func (e Entry) write(level, msg string) {
	if !shouldLog(level) {
		return
	}

	line := e.formatJSON(level, msg)

	mu.Lock()
	defer mu.Unlock()

	if _, err := fmt.Fprintln(output, string(line)); err != nil {
		fmt.Fprintf(os.Stderr, "writing log: %v\n", err)
	}
}

// Debug logs a debug message without additional fields
func Debug(msg string) {
	newEntry(Fields{}).Debug(msg)
}

// Info logs an info message without additional fields
func Info(msg string) {
	newEntry(Fields{}).Info(msg)
}

// Warn logs a warning message without additional fields
func Warn(msg string) {
	newEntry(Fields{}).Warn(msg)
}

// Error logs an error message without additional fields
func Error(msg string) {
	newEntry(Fields{}).Error(msg)
}

// ErrorWrap logs err annotated by msg without additional fields
func ErrorWrap(err error, msg string) {
	newEntry(Fields{}).ErrorWrap(err, msg)
}
