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

package presenters

import (
	"encoding/json"
	"time"

	"github.com/solarcareer/solarcareer/pkg/document"
	"github.com/solarcareer/solarcareer/pkg/server/database"
)

// Document is a document in a read response. Version is the USN of the
// write that last touched it.
type Document struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	Version   int             `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Documents is the response of a document read
type Documents struct {
	Version   int        `json:"version"`
	Documents []Document `json:"documents"`
}

// PresentDocuments presents documents read at a version. The version of
// the response is never behind the newest document in it.
func PresentDocuments(docs []database.Document, version int) Documents {
	items := []Document{}
	for _, d := range docs {
		items = append(items, Document{
			ID:        document.ID(d.Path),
			Data:      json.RawMessage(d.Data),
			Version:   d.USN,
			UpdatedAt: presentTime(d.UpdatedAt),
		})
	}

	return Documents{
		Version:   latestVersion(items, version),
		Documents: items,
	}
}

// WriteResult is the response of a document write
type WriteResult struct {
	Version int `json:"version"`
}
