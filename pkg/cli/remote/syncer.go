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
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/document"
)

// Syncer maps the fields of the application state to the remote store
type Syncer struct {
	store DocumentStore
}

// NewSyncer returns a syncer over the given store
func NewSyncer(store DocumentStore) *Syncer {
	return &Syncer{store: store}
}

// Subscribe listens to the collection of a list field. onChange receives
// the raw data of every document of the collection.
func (s *Syncer) Subscribe(ctx context.Context, userID string, f schema.Field, onChange func([]json.RawMessage), onError func(error)) (Unsubscribe, error) {
	if !f.IsList() {
		return nil, errors.Errorf("%s is not a list field", f)
	}

	path := document.CollectionPath(userID, string(f))
	unsub, err := s.store.Listen(ctx, path, func(docs []Document) {
		items := make([]json.RawMessage, 0, len(docs))
		for _, d := range docs {
			items = append(items, d.Data)
		}

		onChange(items)
	}, onError)
	if err != nil {
		return nil, errors.Wrapf(err, "subscribing to %s", f)
	}

	return unsub, nil
}

// SubscribeList listens to the collection of a list field and decodes its
// documents. Documents that cannot be decoded are skipped.
func SubscribeList[T any](ctx context.Context, s *Syncer, userID string, f schema.Field, onChange func([]T), onError func(error)) (Unsubscribe, error) {
	return s.Subscribe(ctx, userID, f, func(items []json.RawMessage) {
		ret := make([]T, 0, len(items))
		for _, item := range items {
			var v T
			if err := json.Unmarshal(item, &v); err != nil {
				log.Debug("skipping a malformed %s document: %s\n", f, err.Error())
				continue
			}

			ret = append(ret, v)
		}

		onChange(ret)
	}, onError)
}

// SubscribeRoot listens to the root document of the user. onChange receives
// nil when the document does not exist.
func (s *Syncer) SubscribeRoot(ctx context.Context, userID string, onChange func(json.RawMessage), onError func(error)) (Unsubscribe, error) {
	unsub, err := s.store.Listen(ctx, document.RootPath(userID), func(docs []Document) {
		if len(docs) == 0 {
			onChange(nil)
			return
		}

		onChange(docs[0].Data)
	}, onError)
	if err != nil {
		return nil, errors.Wrap(err, "subscribing to the root document")
	}

	return unsub, nil
}

// ApplyListUpdate upserts every item with a non-empty id into the collection
// of a list field, merging into existing documents. Items without an id are
// skipped. Documents missing from items are left in place.
func (s *Syncer) ApplyListUpdate(ctx context.Context, userID string, f schema.Field, items []json.RawMessage) error {
	for _, item := range items {
		id := ItemID(item)
		if id == "" {
			log.Debug("skipping a %s item without an id\n", f)
			continue
		}

		path := document.DocPath(userID, string(f), id)
		if err := s.store.Set(ctx, path, item, true); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}

	return nil
}

// ApplyScalarUpdate merges the scalar keys present in the partial into the
// root document
func (s *Syncer) ApplyScalarUpdate(ctx context.Context, userID string, p schema.Partial) error {
	data := map[string]interface{}{}
	if p.UserRole != nil {
		data[string(schema.FieldUserRole)] = *p.UserRole
	}
	if p.SyncSettings != nil {
		data[string(schema.FieldSyncSettings)] = *p.SyncSettings
	}
	if len(data) == 0 {
		return nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "marshalling scalar fields")
	}

	if err := s.store.Set(ctx, document.RootPath(userID), b, true); err != nil {
		return errors.Wrap(err, "writing the root document")
	}

	return nil
}

// Reseed writes the items into the collection of a list field in a single
// batch, replacing documents with the same id
func (s *Syncer) Reseed(ctx context.Context, userID string, f schema.Field, items []json.RawMessage) error {
	writes := make([]Write, 0, len(items))
	for _, item := range items {
		id := ItemID(item)
		if id == "" {
			continue
		}

		writes = append(writes, Write{
			Path: document.DocPath(userID, string(f), id),
			Data: item,
		})
	}
	if len(writes) == 0 {
		return nil
	}

	if err := s.store.Commit(ctx, writes); err != nil {
		return errors.Wrapf(err, "reseeding %s", f)
	}

	return nil
}

// EncodeItems encodes each element of a list as a raw document
func EncodeItems(list interface{}) ([]json.RawMessage, error) {
	b, err := json.Marshal(list)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling the list")
	}

	var ret []json.RawMessage
	if err := json.Unmarshal(b, &ret); err != nil {
		return nil, errors.Wrap(err, "splitting the list")
	}

	return ret, nil
}

// ItemID returns the id of an encoded item, or an empty string if it has
// none that can be part of a path
func ItemID(item json.RawMessage) string {
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(item, &v); err != nil {
		return ""
	}
	if v.ID == "." || v.ID == ".." || strings.Contains(v.ID, "/") {
		return ""
	}

	return v.ID
}
