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
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/remote"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
)

// Instance is a live application state
type Instance struct {
	cfg      Config
	identity *Identity
	syncer   *remote.Syncer

	mu       sync.RWMutex
	state    schema.ApplicationState
	status   map[schema.Field]*fieldStatus
	lastEcho time.Time
	subs     map[int]func(schema.ApplicationState)
	nextSub  int
	closed   bool

	cancel context.CancelFunc
	unsubs []remote.Unsubscribe
}

func allFields() []schema.Field {
	return append(append([]schema.Field{}, schema.ScalarFields...), schema.ListFields...)
}

// Init starts an instance. Without an identity, the instance runs in local
// mode and publishes the local snapshot merged over the defaults. With an
// identity, it subscribes to every collection and to the root document of
// the user, and each delivery replaces its own fields in the published state.
func (s *Store) Init(ctx context.Context, identity *Identity) (*Instance, error) {
	if identity != nil && s.cfg.Remote == nil {
		return nil, ErrNoRemote
	}

	state := s.cfg.Defaults()
	if raw, ok := s.cfg.Snapshots.Load(); ok {
		state = mergeOver(state, raw)
	}

	i := &Instance{
		cfg:    s.cfg,
		state:  schema.Normalize(state),
		status: map[schema.Field]*fieldStatus{},
		subs:   map[int]func(schema.ApplicationState){},
	}

	initial := SyncSynced
	if identity != nil {
		initial = SyncPending
	}
	for _, f := range allFields() {
		i.status[f] = &fieldStatus{FieldStatus: FieldStatus{State: initial}}
	}

	if identity == nil {
		return i, nil
	}

	id := *identity
	i.identity = &id
	i.syncer = remote.NewSyncer(s.cfg.Remote)

	if err := i.subscribe(ctx); err != nil {
		i.Teardown()
		return nil, errors.Wrap(err, "subscribing to the remote store")
	}

	return i, nil
}

// mergeOver merges a raw snapshot over a custom default state. Keys missing
// from the snapshot keep their value in defaults.
func mergeOver(defaults schema.ApplicationState, raw json.RawMessage) schema.ApplicationState {
	merged := schema.MergeWithDefaults(raw)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return defaults
	}

	var present []schema.Field
	for _, f := range allFields() {
		if v, ok := keys[string(f)]; ok && string(v) != "null" {
			present = append(present, f)
		}
	}

	ret := schema.Only(merged, present...).Apply(defaults)
	ret.LastSaved = merged.LastSaved

	return ret
}

func (i *Instance) subscribe(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	i.cancel = cancel

	uid := i.identity.UserID

	for _, f := range schema.ListFields {
		f := f

		unsub, err := i.syncer.Subscribe(ctx, uid, f, func(items []json.RawMessage) {
			i.applyRemote(schema.DecodeList(f, items), f)
		}, func(err error) {
			i.markError(err, false, f)
		})
		if err != nil {
			return errors.Wrapf(err, "subscribing to %s", f)
		}

		i.unsubs = append(i.unsubs, unsub)
	}

	unsub, err := i.syncer.SubscribeRoot(ctx, uid, func(raw json.RawMessage) {
		i.applyRemote(schema.DecodeRoot(raw), schema.ScalarFields...)
	}, func(err error) {
		i.markError(err, false, schema.ScalarFields...)
	})
	if err != nil {
		return errors.Wrap(err, "subscribing to the root document")
	}
	i.unsubs = append(i.unsubs, unsub)

	return nil
}

// applyRemote publishes a remote delivery
func (i *Instance) applyRemote(p schema.Partial, fields ...schema.Field) {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}

	now := i.cfg.Clock.Now()
	i.state = p.Apply(i.state)
	i.lastEcho = now
	for _, f := range fields {
		st := i.status[f]
		if st.writeFailed || !acknowledges(st.expect, p, f) {
			continue
		}

		st.expect = nil
		st.State = SyncSynced
		st.LastSynced = now
		st.Err = nil
	}
	i.mu.Unlock()

	i.notify()
}

func (i *Instance) markError(err error, write bool, fields ...schema.Field) {
	log.Debug("sync error on %v: %s\n", fields, err.Error())

	i.mu.Lock()
	defer i.mu.Unlock()

	for _, f := range fields {
		st := i.status[f]
		st.State = SyncError
		st.Err = err
		if write {
			st.writeFailed = true
		}
	}
}

// markPending marks the fields of p as waiting for the delivery of the
// values p holds
func (i *Instance) markPending(p schema.Partial, fields ...schema.Field) {
	expects := make(map[schema.Field]map[string]json.RawMessage, len(fields))
	for _, f := range fields {
		expects[f], _ = encodeField(p, f)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	for _, f := range fields {
		st := i.status[f]
		st.State = SyncPending
		st.Err = nil
		st.writeFailed = false
		st.expect = expects[f]
	}
}

// notify calls every subscriber with the current state
func (i *Instance) notify() {
	i.mu.RLock()
	if i.closed {
		i.mu.RUnlock()
		return
	}
	state := i.state.Clone()
	subs := make([]func(schema.ApplicationState), 0, len(i.subs))
	for _, fn := range i.subs {
		subs = append(subs, fn)
	}
	i.mu.RUnlock()

	for _, fn := range subs {
		fn(state.Clone())
	}
}

// Remote reports whether the instance is backed by the remote store
func (i *Instance) Remote() bool {
	return i.identity != nil
}

// Identity returns the identity of a remote instance
func (i *Instance) Identity() (Identity, bool) {
	if i.identity == nil {
		return Identity{}, false
	}

	return *i.identity, true
}

// State returns a copy of the published state. It is always total.
func (i *Instance) State() schema.ApplicationState {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.state.Clone()
}

// Subscribe registers fn to be called with the published state after every
// change. Calls happen on the goroutine that caused the change.
func (i *Instance) Subscribe(fn func(schema.ApplicationState)) (cancel func()) {
	i.mu.Lock()
	id := i.nextSub
	i.nextSub++
	i.subs[id] = fn
	i.mu.Unlock()

	return func() {
		i.mu.Lock()
		delete(i.subs, id)
		i.mu.Unlock()
	}
}

// SyncStatus returns the synchronization status of every field
func (i *Instance) SyncStatus() map[schema.Field]FieldStatus {
	i.mu.RLock()
	defer i.mu.RUnlock()

	ret := make(map[schema.Field]FieldStatus, len(i.status))
	for f, st := range i.status {
		ret[f] = st.FieldStatus
	}

	return ret
}

// Diverged reports whether the local snapshot holds changes the remote store
// has not echoed back: it was written after the last remote delivery, or a
// remote write failed since. It is always false in local mode.
func (i *Instance) Diverged() bool {
	if !i.Remote() {
		return false
	}

	i.mu.RLock()
	lastEcho := i.lastEcho
	failed := false
	for _, st := range i.status {
		if st.writeFailed {
			failed = true
		}
	}
	i.mu.RUnlock()

	if failed {
		return true
	}

	savedAt, ok := i.cfg.Snapshots.SavedAt()
	return ok && savedAt.After(lastEcho)
}

// Teardown stops the subscriptions and drops the subscribers. It is safe to
// call more than once.
func (i *Instance) Teardown() {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}
	i.closed = true
	i.subs = map[int]func(schema.ApplicationState){}
	unsubs := i.unsubs
	i.unsubs = nil
	i.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	if i.cancel != nil {
		i.cancel()
	}
}

func (i *Instance) isClosed() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.closed
}
