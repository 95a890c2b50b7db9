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

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/remote"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
)

// UpdateData applies a partial update.
//
// In local mode the keys present in p replace the published ones, the
// result is stamped and saved to the local snapshot before subscribers are
// notified.
//
// In remote mode the intended state is saved to the local snapshot and the
// keys are written to the remote store. The published state is left as is:
// it changes when the subscriptions deliver the write back. A failed write
// marks its field as errored and is returned.
func (i *Instance) UpdateData(ctx context.Context, p schema.Partial) error {
	if i.isClosed() {
		return ErrClosed
	}
	if p.Empty() {
		return nil
	}

	if !i.Remote() {
		return i.updateLocal(p)
	}

	return i.updateRemote(ctx, p)
}

func (i *Instance) updateLocal(p schema.Partial) error {
	i.mu.Lock()
	next := p.Apply(i.state)
	next.LastSaved = i.cfg.Clock.Now()
	i.state = next

	var saveErr error
	if err := i.cfg.Snapshots.Save(next); err != nil {
		saveErr = errors.Wrap(err, "saving the local snapshot")
	}

	now := i.cfg.Clock.Now()
	for _, f := range p.Fields() {
		st := i.status[f]
		if saveErr != nil {
			st.State = SyncError
			st.Err = saveErr
			continue
		}

		st.State = SyncSynced
		st.LastSynced = now
		st.Err = nil
	}
	i.mu.Unlock()

	i.notify()

	return saveErr
}

func (i *Instance) updateRemote(ctx context.Context, p schema.Partial) error {
	fields := p.Fields()

	i.mu.RLock()
	intended := p.Apply(i.state)
	i.mu.RUnlock()
	intended.LastSaved = i.cfg.Clock.Now()

	if err := i.cfg.Snapshots.Save(intended); err != nil {
		log.Warnf("could not save the local snapshot: %s\n", err.Error())
	}

	i.markPending(p, fields...)

	uid := i.identity.UserID

	var firstErr error
	for _, f := range fields {
		if !f.IsList() {
			continue
		}

		v, _ := p.Value(f)
		items, err := remote.EncodeItems(v)
		if err == nil {
			err = i.syncer.ApplyListUpdate(ctx, uid, f, items)
		}
		if err != nil {
			i.markError(err, true, f)
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "updating %s", f)
			}
		}
	}

	var scalars []schema.Field
	for _, f := range fields {
		if !f.IsList() {
			scalars = append(scalars, f)
		}
	}
	if len(scalars) > 0 {
		if err := i.syncer.ApplyScalarUpdate(ctx, uid, p); err != nil {
			i.markError(err, true, scalars...)
			if firstErr == nil {
				firstErr = errors.Wrap(err, "updating the root document")
			}
		}
	}

	return firstErr
}

// ResetAll asks for confirmation and resets the data. It returns false if
// the reset was declined.
//
// In local mode the snapshot is cleared and the defaults are published and
// saved. In remote mode the snapshot is cleared and only the certifications
// collection is reseeded with its default records; other collections keep
// their documents.
func (i *Instance) ResetAll(ctx context.Context) (bool, error) {
	if i.isClosed() {
		return false, ErrClosed
	}
	if i.cfg.Confirm == nil {
		return false, ErrNoConfirmer
	}

	ok, err := i.cfg.Confirm.Confirm(resetQuestion)
	if err != nil {
		return false, errors.Wrap(err, "confirming the reset")
	}
	if !ok {
		return false, nil
	}

	if err := i.cfg.Snapshots.Clear(); err != nil {
		return false, errors.Wrap(err, "clearing the local snapshot")
	}

	if !i.Remote() {
		return true, i.resetLocal()
	}

	return true, i.resetRemote(ctx)
}

func (i *Instance) resetLocal() error {
	i.mu.Lock()
	state := schema.Normalize(i.cfg.Defaults())
	state.LastSaved = i.cfg.Clock.Now()
	i.state = state
	for _, st := range i.status {
		st.State = SyncSynced
		st.LastSynced = state.LastSaved
		st.Err = nil
	}
	i.mu.Unlock()

	if err := i.cfg.Snapshots.Save(state); err != nil {
		return errors.Wrap(err, "saving the default state")
	}

	i.notify()

	return nil
}

func (i *Instance) resetRemote(ctx context.Context) error {
	f := schema.FieldCertifications

	certs := i.cfg.Defaults().Certifications

	items, err := remote.EncodeItems(certs)
	if err != nil {
		return errors.Wrap(err, "encoding the default certifications")
	}

	i.markPending(schema.Partial{Certifications: certs}, f)
	if err := i.syncer.Reseed(ctx, i.identity.UserID, f, items); err != nil {
		i.markError(err, true, f)
		return errors.Wrap(err, "reseeding certifications")
	}

	return nil
}
