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
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/document"
)

type memDoc struct {
	data json.RawMessage
	seq  int
}

type memListener struct {
	path   string
	notify chan struct{}
}

// MemoryStore is an in-process DocumentStore. Listeners are called from
// their own goroutine, never from inside Set or Commit.
type MemoryStore struct {
	mu        sync.Mutex
	docs      map[string]memDoc
	seq       int
	listeners map[*memListener]struct{}
	held      bool
	pending   map[*memListener]struct{}
	writeErr  error
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:      map[string]memDoc{},
		listeners: map[*memListener]struct{}{},
		pending:   map[*memListener]struct{}{},
	}
}

// FailWrites makes every subsequent write fail with err. A nil err restores
// normal operation.
func (m *MemoryStore) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeErr = err
}

// Hold stops delivering change notifications until Release is called
func (m *MemoryStore) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.held = true
}

// Release delivers the notifications held since Hold
func (m *MemoryStore) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.held = false
	for l := range m.pending {
		signal(l)
	}
	m.pending = map[*memListener]struct{}{}
}

// Get returns a document, for inspection
func (m *MemoryStore) Get(path string) (json.RawMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.docs[path]
	if !ok {
		return nil, false
	}

	return append(json.RawMessage(nil), d.data...), true
}

// Set upserts a document
func (m *MemoryStore) Set(ctx context.Context, path string, data json.RawMessage, merge bool) error {
	return m.Commit(ctx, []Write{{Path: path, Data: data, Merge: merge}})
}

// Commit applies the writes atomically
func (m *MemoryStore) Commit(ctx context.Context, writes []Write) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "committing writes")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}

	next := map[string]memDoc{}
	seq := m.seq
	for _, w := range writes {
		if _, err := document.Split(w.Path); err != nil {
			return errors.Wrapf(err, "writing %s", w.Path)
		}
		if document.IsCollection(w.Path) {
			return errors.Wrapf(document.ErrInvalidPath, "'%s' is a collection", w.Path)
		}

		prev, ok := next[w.Path]
		if !ok {
			prev, ok = m.docs[w.Path]
		}

		data := w.Data
		if w.Merge && ok {
			merged, err := document.Merge(prev.data, w.Data)
			if err != nil {
				return errors.Wrapf(err, "merging %s", w.Path)
			}
			data = merged
		}

		s := prev.seq
		if !ok {
			seq++
			s = seq
		}

		next[w.Path] = memDoc{data: append(json.RawMessage(nil), data...), seq: s}
	}

	m.seq = seq
	for path, d := range next {
		m.docs[path] = d
	}
	for path := range next {
		m.notifyLocked(path)
	}

	return nil
}

func (m *MemoryStore) notifyLocked(path string) {
	parent := document.Parent(path)

	for l := range m.listeners {
		if l.path != path && l.path != parent {
			continue
		}

		if m.held {
			m.pending[l] = struct{}{}
			continue
		}
		signal(l)
	}
}

func signal(l *memListener) {
	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// snapshot returns the current documents at a path in creation order
func (m *MemoryStore) snapshot(path string) []Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !document.IsCollection(path) {
		d, ok := m.docs[path]
		if !ok {
			return []Document{}
		}

		return []Document{{ID: document.ID(path), Data: append(json.RawMessage(nil), d.data...)}}
	}

	type entry struct {
		doc Document
		seq int
	}

	var entries []entry
	for p, d := range m.docs {
		if document.Parent(p) != path {
			continue
		}
		entries = append(entries, entry{
			doc: Document{ID: document.ID(p), Data: append(json.RawMessage(nil), d.data...)},
			seq: d.seq,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	ret := make([]Document, 0, len(entries))
	for _, e := range entries {
		ret = append(ret, e.doc)
	}

	return ret
}

// Listen subscribes to a collection or a document. The current content is
// delivered first.
func (m *MemoryStore) Listen(ctx context.Context, path string, onChange func([]Document), onError func(error)) (Unsubscribe, error) {
	if _, err := document.Split(path); err != nil {
		return nil, errors.Wrapf(err, "listening to %s", path)
	}

	l := &memListener{path: path, notify: make(chan struct{}, 1)}

	m.mu.Lock()
	m.listeners[l] = struct{}{}
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	signal(l)

	go func() {
		defer close(done)

		for {
			select {
			case <-ctx.Done():
				return
			case <-l.notify:
				onChange(m.snapshot(path))
			}
		}
	}()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, l)
			delete(m.pending, l)
			m.mu.Unlock()

			cancel()
			<-done
		})
	}

	return unsub, nil
}
