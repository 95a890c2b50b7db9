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

// Package clock provides an abstraction over time so that code taking
// timestamps can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock is an interface to the standard library time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

// New returns an instance of a real clock that reports time in UTC
func New() Clock {
	return &realClock{}
}

// Mock is a clock whose time only moves when told to
type Mock struct {
	mu          sync.RWMutex
	currentTime time.Time
}

// NewMock returns an instance of a mock clock
func NewMock() *Mock {
	return &Mock{
		currentTime: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC),
	}
}

// SetNow sets the current time for the mock clock
func (c *Mock) SetNow(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentTime = t
}

// Advance moves the mock clock forward by d
func (c *Mock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentTime = c.currentTime.Add(d)
}

// Now returns the current time
func (c *Mock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.currentTime
}
