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

// Package snapshot persists the application state as a single serialized
// blob in the local database
package snapshot

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/consts"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/clock"
)

// Store reads and writes the snapshot under a fixed key
type Store struct {
	db    *database.DB
	clock clock.Clock
	key   string
}

// New returns a store over the given database
func New(db *database.DB, c clock.Clock) *Store {
	return &Store{
		db:    db,
		clock: c,
		key:   consts.SnapshotKey,
	}
}

// Load returns the raw snapshot. A missing, unreadable or corrupt snapshot
// is reported as absent.
func (s *Store) Load() (json.RawMessage, bool) {
	var data string
	err := s.db.QueryRow("SELECT data FROM snapshots WHERE key = ?", s.key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Warnf("could not read the local snapshot: %s\n", err.Error())
		return nil, false
	}

	if !json.Valid([]byte(data)) {
		log.Warnf("discarding a corrupt local snapshot\n")
		return nil, false
	}

	return json.RawMessage(data), true
}

// Save overwrites the snapshot with the given state
func (s *Store) Save(state schema.ApplicationState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "marshalling the state")
	}

	_, err = s.db.Exec(`INSERT INTO snapshots (key, data, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		s.key, string(b), s.clock.Now().UnixNano())
	if err != nil {
		return errors.Wrap(err, "writing the snapshot")
	}

	return nil
}

// Clear deletes the snapshot
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM snapshots WHERE key = ?", s.key); err != nil {
		return errors.Wrap(err, "deleting the snapshot")
	}

	return nil
}

// SavedAt returns when the snapshot was last written
func (s *Store) SavedAt() (time.Time, bool) {
	var savedAt int64
	err := s.db.QueryRow("SELECT saved_at FROM snapshots WHERE key = ?", s.key).Scan(&savedAt)
	if err != nil {
		return time.Time{}, false
	}

	return time.Unix(0, savedAt).UTC(), true
}
