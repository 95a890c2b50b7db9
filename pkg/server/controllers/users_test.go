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

package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/solarcareer/solarcareer/pkg/assert"
	"github.com/solarcareer/solarcareer/pkg/server/app"
	"github.com/solarcareer/solarcareer/pkg/server/database"
	"github.com/solarcareer/solarcareer/pkg/server/presenters"
	"github.com/solarcareer/solarcareer/pkg/server/testutils"
)

func setupServer(t *testing.T) (*app.App, string) {
	db := testutils.InitMemoryDB(t)

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)

	return &a, server.URL
}

func TestSignin(t *testing.T) {
	testCases := []struct {
		name        string
		contentType string
		body        string
		statusCode  int
	}{
		{
			name:        "json",
			contentType: "application/json",
			body:        `{"email": "alice@example.com", "password": "pass1234"}`,
			statusCode:  http.StatusOK,
		},
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        "email=alice%40example.com&password=pass1234",
			statusCode:  http.StatusOK,
		},
		{
			name:        "wrong password",
			contentType: "application/json",
			body:        `{"email": "alice@example.com", "password": "nope"}`,
			statusCode:  http.StatusUnauthorized,
		},
		{
			name:        "unknown email",
			contentType: "application/json",
			body:        `{"email": "bob@example.com", "password": "pass1234"}`,
			statusCode:  http.StatusUnauthorized,
		},
		{
			name:        "missing email",
			contentType: "application/json",
			body:        `{"password": "pass1234"}`,
			statusCode:  http.StatusBadRequest,
		},
		{
			name:        "malformed",
			contentType: "application/json",
			body:        `{"email":`,
			statusCode:  http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, url := setupServer(t)
			user := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")

			req := testutils.MakeReq(url, "POST", "/api/v1/signin", tc.body)
			req.Header.Set("Content-Type", tc.contentType)
			res := testutils.HTTPDo(t, req)

			assert.Equal(t, res.StatusCode, tc.statusCode, "status code mismatch")

			var sessionCount int64
			testutils.MustExec(t, a.DB.Model(&database.Session{}).Count(&sessionCount), "counting sessions")

			if tc.statusCode != http.StatusOK {
				assert.Equal(t, sessionCount, int64(0), "no session should be created")
				return
			}

			var got presenters.Session
			testutils.MustRespondJSON(t, res, &got, "decoding session")

			var session database.Session
			testutils.MustExec(t, a.DB.First(&session), "finding session")

			assert.Equal(t, sessionCount, int64(1), "session count mismatch")
			assert.Equal(t, got.Key, session.Key, "key mismatch")
			assert.Equal(t, got.UserID, user.UUID, "user id mismatch")
			assert.Equal(t, got.ExpiresAt, a.Clock.Now().Add(a.SessionTTL).Unix(), "expiry mismatch")
		})
	}
}

func TestSignout(t *testing.T) {
	t.Run("with session", func(t *testing.T) {
		a, url := setupServer(t)
		user := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
		session := testutils.SetupSession(a.DB, user)
		other := testutils.SetupSession(a.DB, user)

		req := testutils.MakeReq(url, "POST", "/api/v1/signout", "")
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))
		res := testutils.HTTPDo(t, req)

		assert.Equal(t, res.StatusCode, http.StatusNoContent, "status code mismatch")
		assert.Equal(t, res.Header.Get("Content-Type"), "", "content type should be empty")

		var keys []string
		testutils.MustExec(t, a.DB.Model(&database.Session{}).Pluck("key", &keys), "listing sessions")
		assert.DeepEqual(t, keys, []string{other.Key}, "only the signed out session should be removed")
	})

	t.Run("without session", func(t *testing.T) {
		_, url := setupServer(t)

		req := testutils.MakeReq(url, "POST", "/api/v1/signout", "")
		res := testutils.HTTPDo(t, req)

		assert.Equal(t, res.StatusCode, http.StatusNoContent, "status code mismatch")
	})
}

func TestMe(t *testing.T) {
	a, url := setupServer(t)
	user := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")

	t.Run("authorized", func(t *testing.T) {
		req := testutils.MakeReq(url, "GET", "/api/v1/me", "")
		res := testutils.HTTPAuthDo(t, a.DB, req, user)

		assert.Equal(t, res.StatusCode, http.StatusOK, "status code mismatch")

		var got presenters.User
		testutils.MustRespondJSON(t, res, &got, "decoding user")
		assert.Equal(t, got.UserID, user.UUID, "user id mismatch")
		assert.Equal(t, got.Email, "alice@example.com", "email mismatch")
	})

	t.Run("unauthorized", func(t *testing.T) {
		req := testutils.MakeReq(url, "GET", "/api/v1/me", "")
		res := testutils.HTTPDo(t, req)

		assert.Equal(t, res.StatusCode, http.StatusUnauthorized, "status code mismatch")
	})
}
