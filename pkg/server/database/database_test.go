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
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/assert"
	"github.com/solarcareer/solarcareer/pkg/server/log"
	"gorm.io/gorm/logger"
)

func TestGetDBLogLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected logger.LogLevel
	}{
		{log.LevelDebug, logger.Info},
		{log.LevelInfo, logger.Silent},
		{log.LevelWarn, logger.Warn},
		{log.LevelError, logger.Error},
		{"", logger.Silent},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, getDBLogLevel(tc.level), tc.expected, "log level mismatch")
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, sqliteDSN(":memory:"), ":memory:", "memory dsn mismatch")
	assert.Equal(t, sqliteDSN("file:abc?mode=memory"), "file:abc?mode=memory", "uri dsn mismatch")
	assert.Equal(t, sqliteDSN("/tmp/server.db"), "/tmp/server.db?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", "path dsn mismatch")
}

func TestOpen(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open("mysql", "x", log.LevelInfo)
		assert.Equal(t, errors.Cause(err), ErrUnknownDriver, "error mismatch")
	})

	t.Run("sqlite creates the directory", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "nested", "server.db")

		db, err := Open(DriverSQLite, p, log.LevelInfo)
		assert.NoError(t, err, "opening")
		defer Close(db)

		assert.NoError(t, InitSchema(db), "initializing schema")
		assert.NoError(t, Migrate(db), "migrating")
		assert.NoError(t, Checkpoint(db), "checkpointing")

		var version int
		assert.NoError(t, db.Raw("SELECT MAX(version) FROM schema_migrations").Scan(&version).Error, "reading version")
		assert.Equal(t, version, 2, "version mismatch")
	})
}

func TestDeleteExpiredSessions(t *testing.T) {
	db, err := Open(DriverSQLite, ":memory:", log.LevelInfo)
	assert.NoError(t, err, "opening")
	defer Close(db)
	assert.NoError(t, InitSchema(db), "initializing schema")

	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	sessions := []Session{
		{UserID: 1, Key: "expired", ExpiresAt: now.Add(-time.Minute)},
		{UserID: 1, Key: "live", ExpiresAt: now.Add(time.Hour)},
	}
	assert.NoError(t, db.Create(&sessions).Error, "creating sessions")

	n, err := DeleteExpiredSessions(db, now)
	assert.NoError(t, err, "deleting")
	assert.Equal(t, n, int64(1), "deleted count mismatch")

	var keys []string
	assert.NoError(t, db.Model(&Session{}).Pluck("key", &keys).Error, "listing keys")
	assert.DeepEqual(t, keys, []string{"live"}, "remaining sessions mismatch")
}
