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
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Checkpoint truncates the SQLite write-ahead log into the main database
// file. It does nothing on other dialects.
func Checkpoint(db *gorm.DB) error {
	if db.Dialector.Name() != DriverSQLite {
		return nil
	}

	if err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
		return errors.Wrap(err, "checkpointing wal")
	}

	return nil
}

// DeleteExpiredSessions removes the sessions that expired before now and
// returns how many were removed
func DeleteExpiredSessions(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at < ?", now).Delete(&Session{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "deleting expired sessions")
	}

	return res.RowsAffected, nil
}
