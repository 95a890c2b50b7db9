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

package database

import (
	"database/sql"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a key has no value
var ErrNotFound = errors.New("not found")

// GetSystem scans the value of a system key into dest
func GetSystem(db *DB, key string, dest interface{}) error {
	err := db.QueryRow("SELECT value FROM system WHERE key = ?", key).Scan(dest)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrapf(err, "finding system key %s", key)
	}

	return nil
}

// UpsertSystem inserts or replaces the value of a system key
func UpsertSystem(db *DB, key string, val interface{}) error {
	_, err := db.Exec(`INSERT INTO system (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, val)
	if err != nil {
		return errors.Wrapf(err, "upserting system key %s", key)
	}

	return nil
}

// InitSystemKV sets the value of a system key only if it is not set
func InitSystemKV(db *DB, key string, val interface{}) error {
	if _, err := db.Exec("INSERT OR IGNORE INTO system (key, value) VALUES (?, ?)", key, val); err != nil {
		return errors.Wrapf(err, "initializing system key %s", key)
	}

	return nil
}

// DeleteSystem deletes a system key
func DeleteSystem(db *DB, key string) error {
	if _, err := db.Exec("DELETE FROM system WHERE key = ?", key); err != nil {
		return errors.Wrapf(err, "deleting system key %s", key)
	}

	return nil
}

// Backup is a record of an exported backup
type Backup struct {
	ID          int
	Destination string
	Name        string
	Size        int
	CreatedAt   int64
}

// InsertBackup records a backup
func InsertBackup(db *DB, b Backup) error {
	_, err := db.Exec("INSERT INTO backups (destination, name, size, created_at) VALUES (?, ?, ?, ?)",
		b.Destination, b.Name, b.Size, b.CreatedAt)
	if err != nil {
		return errors.Wrapf(err, "inserting backup %s", b.Name)
	}

	return nil
}

// ListBackups returns the most recent backups first
func ListBackups(db *DB, limit int) ([]Backup, error) {
	rows, err := db.Query("SELECT id, destination, name, size, created_at FROM backups ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying backups")
	}
	defer rows.Close()

	ret := []Backup{}
	for rows.Next() {
		var b Backup
		if err := rows.Scan(&b.ID, &b.Destination, &b.Name, &b.Size, &b.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning a backup")
		}
		ret = append(ret, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating backups")
	}

	return ret, nil
}
