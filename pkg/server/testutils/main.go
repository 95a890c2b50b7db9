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

// Package testutils provides utilities used in server tests
package testutils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/server/database"
	"github.com/solarcareer/solarcareer/pkg/server/helpers"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens a SQLite database at the given path and initializes the schema
func InitDB(t *testing.T, dbPath string) *gorm.DB {
	db, err := database.Open(database.DriverSQLite, dbPath, "")
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening database"))
	}
	if err := database.InitSchema(db); err != nil {
		t.Fatal(errors.Wrap(err, "initializing schema"))
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(errors.Wrap(err, "migrating"))
	}

	return db
}

// InitMemoryDB creates an in-memory SQLite database with the schema initialized.
// Each call returns a distinct database.
func InitMemoryDB(t *testing.T) *gorm.DB {
	uuid := MustUUID(t)

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid)
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	// a single connection keeps concurrent requests from tripping over
	// shared-cache table locks
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting connection pool"))
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.InitSchema(db); err != nil {
		t.Fatal(errors.Wrap(err, "initializing schema"))
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(errors.Wrap(err, "migrating"))
	}

	t.Cleanup(func() {
		database.Close(db)
	})

	return db
}

// MustUUID generates a UUID and fails the test on error
func MustUUID(t *testing.T) string {
	uuid, err := helpers.GenUUID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "Failed to generate UUID"))
	}
	return uuid
}

// SetupUserData creates and returns a new user with email and password for testing purposes
func SetupUserData(db *gorm.DB, email, password string) database.User {
	uuid, err := helpers.GenUUID()
	if err != nil {
		panic(errors.Wrap(err, "Failed to generate UUID"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(errors.Wrap(err, "Failed to hash password"))
	}

	user := database.User{
		UUID:     uuid,
		Email:    email,
		Password: string(hashedPassword),
	}

	if err := db.Save(&user).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare user"))
	}

	return user
}

// SetupSession creates and returns a new session for the user
func SetupSession(db *gorm.DB, user database.User) database.Session {
	key, err := helpers.GenSessionKey(32)
	if err != nil {
		panic(errors.Wrap(err, "Failed to generate session key"))
	}

	session := database.Session{
		Key:       key,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour * 24),
	}
	if err := db.Save(&session).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare session"))
	}

	return session
}

// SetupDocument stores a document for the user at the given path
func SetupDocument(db *gorm.DB, user database.User, path, parent, data string, usn int) database.Document {
	doc := database.Document{
		UserID: user.ID,
		Path:   path,
		Parent: parent,
		Data:   data,
		USN:    usn,
	}
	if err := db.Save(&doc).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare document"))
	}

	return doc
}

// HTTPDo makes an HTTP request and returns a response
func HTTPDo(t *testing.T, req *http.Request) *http.Response {
	hc := http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	res, err := hc.Do(req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "performing http request"))
	}

	return res
}

// SetReqAuthHeader creates a session for the user and sets it as the
// bearer token of the request
func SetReqAuthHeader(t *testing.T, db *gorm.DB, req *http.Request, user database.User) {
	session := SetupSession(db, user)

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))
}

// HTTPAuthDo makes an HTTP request with an appropriate authorization header for a user with a specific DB
func HTTPAuthDo(t *testing.T, db *gorm.DB, req *http.Request, user database.User) *http.Response {
	SetReqAuthHeader(t, db, req, user)

	return HTTPDo(t, req)
}

// MakeReq makes an HTTP request and returns a response
func MakeReq(endpoint string, method, path, data string) *http.Request {
	u := fmt.Sprintf("%s%s", endpoint, path)

	req, err := http.NewRequest(method, u, strings.NewReader(data))
	if err != nil {
		panic(errors.Wrap(err, "constructing http request"))
	}

	return req
}

// MustExec fails the test if the given database query has error
func MustExec(t *testing.T, db *gorm.DB, message string) {
	if err := db.Error; err != nil {
		t.Fatalf("%s: %s", message, err.Error())
	}
}

// MustRespondJSON decodes the response body into v and fails the test on error
func MustRespondJSON(t *testing.T, res *http.Response, v interface{}, message string) {
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(errors.Wrap(err, message))
	}

	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("%s: decoding '%s': %v", message, string(body), err)
	}
}
