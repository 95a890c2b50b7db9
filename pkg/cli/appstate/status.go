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

package appstate

import (
	"context"
	"encoding/json"
	"time"
)

// settlePoll is how often Settle checks the field statuses
var settlePoll = 20 * time.Millisecond

// SyncState is the synchronization state of a field
type SyncState string

const (
	// SyncPending means a write or the first remote delivery is outstanding
	SyncPending SyncState = "pending"
	// SyncSynced means the published value reflects the backing store
	SyncSynced SyncState = "synced"
	// SyncError means the last write or subscription failed
	SyncError SyncState = "error"
)

// FieldStatus is the synchronization status of a field
type FieldStatus struct {
	State      SyncState
	LastSynced time.Time
	Err        error
}

// fieldStatus tracks a field. writeFailed distinguishes a failed write,
// which only a new write clears, from a failed subscription, which the next
// delivery clears. expect holds what the outstanding write intended; a
// delivery that does not carry it leaves the field pending.
type fieldStatus struct {
	FieldStatus
	writeFailed bool
	expect      map[string]json.RawMessage
}

// pending reports whether any field waits for a remote delivery
func (i *Instance) pending() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()

	for _, st := range i.status {
		if st.State == SyncPending {
			return true
		}
	}

	return false
}

// Settle blocks until no field is pending. It returns the context error if
// the context is done first.
func (i *Instance) Settle(ctx context.Context) error {
	t := time.NewTicker(settlePoll)
	defer t.Stop()

	for i.pending() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	return nil
}
