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

package document

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Merge overlays a JSON object on a base JSON object. Nested objects are
// merged key by key. Any other value in the overlay, arrays included,
// replaces the base value. An empty base is treated as an empty object.
func Merge(base, overlay json.RawMessage) (json.RawMessage, error) {
	var o map[string]interface{}
	if err := json.Unmarshal(overlay, &o); err != nil || o == nil {
		return nil, errors.New("overlay is not a JSON object")
	}

	b := map[string]interface{}{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &b); err != nil || b == nil {
			b = map[string]interface{}{}
		}
	}

	merged := mergeMaps(b, o)

	ret, err := json.Marshal(merged)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling the merged document")
	}

	return ret, nil
}

func mergeMaps(weak, strong map[string]interface{}) map[string]interface{} {
	ret := make(map[string]interface{}, len(weak)+len(strong))
	for k, v := range weak {
		ret[k] = v
	}

	for k, v := range strong {
		sm, sok := v.(map[string]interface{})
		wm, wok := ret[k].(map[string]interface{})
		if sok && wok {
			ret[k] = mergeMaps(wm, sm)
			continue
		}

		ret[k] = v
	}

	return ret
}
