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

package app

import (
	"testing"
	"time"

	"github.com/solarcareer/solarcareer/pkg/assert"
	"github.com/solarcareer/solarcareer/pkg/clock"
	"github.com/solarcareer/solarcareer/pkg/server/database"
	"github.com/solarcareer/solarcareer/pkg/server/testutils"
)

func TestGetSessionUser(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	a := NewTest()
	a.DB = db
	c := a.Clock.(*clock.Mock)

	session, err := a.CreateSession(user.ID)
	assert.NoError(t, err, "creating session")

	t.Run("valid", func(t *testing.T) {
		c.Advance(time.Hour)

		got, err := a.GetSessionUser(session.Key)
		assert.NoError(t, err, "getting user")
		assert.Equal(t, got.UUID, user.UUID, "user mismatch")

		var record database.Session
		testutils.MustExec(t, db.Where("key = ?", session.Key).First(&record), "finding session")
		assert.Equal(t, record.LastUsedAt.Equal(c.Now()), true, "last used mismatch")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := a.GetSessionUser("nope")
		assert.Equal(t, err, ErrNotFound, "error mismatch")

		_, err = a.GetSessionUser("")
		assert.Equal(t, err, ErrNotFound, "error mismatch for empty key")
	})

	t.Run("expired", func(t *testing.T) {
		c.Advance(a.SessionTTL)

		_, err := a.GetSessionUser(session.Key)
		assert.Equal(t, err, ErrNotFound, "error mismatch")
	})
}

func TestDeleteSession(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")
	s1 := testutils.SetupSession(db, user)
	s2 := testutils.SetupSession(db, user)

	a := NewTest()
	a.DB = db

	assert.NoError(t, a.DeleteSession(s1.Key), "deleting session")

	var keys []string
	testutils.MustExec(t, db.Model(&database.Session{}).Pluck("key", &keys), "listing sessions")
	assert.DeepEqual(t, keys, []string{s2.Key}, "remaining sessions mismatch")
}
