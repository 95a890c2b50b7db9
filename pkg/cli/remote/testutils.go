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

package remote

import (
	"testing"
	"time"
)

// Recorder collects the deliveries of a subscription for tests
type Recorder[T any] struct {
	ch chan T
}

// NewRecorder returns a recorder with room for n pending deliveries
func NewRecorder[T any](n int) *Recorder[T] {
	return &Recorder[T]{ch: make(chan T, n)}
}

// Record is a subscription callback
func (r *Recorder[T]) Record(v T) {
	r.ch <- v
}

// Next waits for the next delivery and fails the test on timeout
func (r *Recorder[T]) Next(t *testing.T) T {
	t.Helper()

	select {
	case v := <-r.ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a delivery")
	}

	var zero T
	return zero
}

// Wait waits for a delivery that satisfies ok, skipping the others
func (r *Recorder[T]) Wait(t *testing.T, ok func(T) bool) T {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case v := <-r.ch:
			if ok(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for a matching delivery")
		}
	}
}

// Empty reports whether no delivery is pending
func (r *Recorder[T]) Empty() bool {
	return len(r.ch) == 0
}
