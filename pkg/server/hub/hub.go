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

// Package hub wakes long-polling readers when a user's documents change
package hub

import (
	"sync"
)

// Hub fans out change notifications per user. Notifications coalesce: a
// subscriber that has not consumed the previous signal receives only one.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan int
}

// New returns an empty hub
func New() *Hub {
	return &Hub{
		subs: map[string]map[int]chan int{},
	}
}

// Subscribe registers a listener for the changes made by the user. The
// channel receives the version of the latest write. The returned function
// removes the listener.
func (h *Hub) Subscribe(userUUID string) (<-chan int, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan int, 1)
	if h.subs[userUUID] == nil {
		h.subs[userUUID] = map[int]chan int{}
	}
	h.subs[userUUID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(h.subs[userUUID], id)
			if len(h.subs[userUUID]) == 0 {
				delete(h.subs, userUUID)
			}
		})
	}

	return ch, cancel
}

// Publish notifies every listener of the user that the given version was written
func (h *Hub) Publish(userUUID string, version int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[userUUID] {
		select {
		case ch <- version:
		default:
			// replace a stale signal with the newer version
			select {
			case <-ch:
			default:
			}
			ch <- version
		}
	}
}

// Count returns the number of active listeners
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, m := range h.subs {
		n += len(m)
	}

	return n
}
