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
	"bytes"
	"encoding/json"

	"github.com/solarcareer/solarcareer/pkg/cli/remote"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
)

// encodeField returns the encoded value of a field of p, keyed by item id
// for a list field and by the field name for a scalar one. Items go through
// the same decoding as a remote delivery so both sides compare alike.
func encodeField(p schema.Partial, f schema.Field) (map[string]json.RawMessage, bool) {
	v, ok := p.Value(f)
	if !ok {
		return nil, false
	}

	if !f.IsList() {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return map[string]json.RawMessage{string(f): b}, true
	}

	items, err := remote.EncodeItems(v)
	if err != nil {
		return nil, false
	}
	decoded, _ := schema.DecodeList(f, items).Value(f)
	items, err = remote.EncodeItems(decoded)
	if err != nil {
		return nil, false
	}

	ret := make(map[string]json.RawMessage, len(items))
	for _, item := range items {
		if id := remote.ItemID(item); id != "" {
			ret[id] = item
		}
	}

	return ret, true
}

// covers reports whether got carries every key of want with the same value.
// Keys only got has are ignored: a merging write leaves them in place.
func covers(want, got json.RawMessage) bool {
	var w map[string]json.RawMessage
	if err := json.Unmarshal(want, &w); err != nil {
		return bytes.Equal(want, got)
	}

	var g map[string]json.RawMessage
	if err := json.Unmarshal(got, &g); err != nil {
		return false
	}

	for k, wv := range w {
		gv, ok := g[k]
		if !ok || !covers(wv, gv) {
			return false
		}
	}

	return true
}

// acknowledges reports whether a delivery of f contains the values the
// pending write of f intended
func acknowledges(expect map[string]json.RawMessage, p schema.Partial, f schema.Field) bool {
	if expect == nil {
		return true
	}

	got, ok := encodeField(p, f)
	if !ok {
		return false
	}

	for k, want := range expect {
		if !covers(want, got[k]) {
			return false
		}
	}

	return true
}
