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

// Package remote synchronizes the application state with a remote
// hierarchical document store. Each list field is a collection of
// documents under the root document of the user, and the scalar fields
// live on the root document itself.
package remote

import (
	"context"
	"encoding/json"
)

// Document is a document of a collection
type Document struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Write is a single upsert of a batch
type Write struct {
	Path  string          `json:"path"`
	Data  json.RawMessage `json:"data"`
	Merge bool            `json:"merge"`
}

// Unsubscribe stops a live subscription
type Unsubscribe func()

// DocumentStore is the remote document store. Listen on a collection
// delivers every document of the collection on each change. Listen on a
// document delivers a list of at most one document. Stores apply writes
// last-write-wins with no version check.
type DocumentStore interface {
	Set(ctx context.Context, path string, data json.RawMessage, merge bool) error
	Commit(ctx context.Context, writes []Write) error
	Listen(ctx context.Context, path string, onChange func([]Document), onError func(error)) (Unsubscribe, error)
}
