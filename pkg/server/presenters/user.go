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
	"time"

	"github.com/solarcareer/solarcareer/pkg/server/database"
)

// Session is the response of a sign in
type Session struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
	UserID    string `json:"user_id"`
}

// PresentSession presents a session of the user
func PresentSession(s database.Session, user database.User) Session {
	return Session{
		Key:       s.Key,
		ExpiresAt: s.ExpiresAt.Unix(),
		UserID:    user.UUID,
	}
}

// User is the response of /me
type User struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// PresentUser presents a user
func PresentUser(u database.User) User {
	return User{
		UserID:    u.UUID,
		Email:     u.Email,
		CreatedAt: presentTime(u.CreatedAt),
	}
}
