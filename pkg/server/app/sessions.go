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
	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/server/database"
	"github.com/solarcareer/solarcareer/pkg/server/helpers"
	"gorm.io/gorm"
)

// CreateSession returns a new session for the user of the given id
func (a *App) CreateSession(userID int) (database.Session, error) {
	key, err := helpers.GenSessionKey(32)
	if err != nil {
		return database.Session{}, errors.Wrap(err, "generating key")
	}

	now := a.Clock.Now()
	session := database.Session{
		UserID:     userID,
		Key:        key,
		LastUsedAt: now,
		ExpiresAt:  now.Add(a.SessionTTL),
	}

	if err := a.DB.Create(&session).Error; err != nil {
		return database.Session{}, errors.Wrap(err, "saving session")
	}

	return session, nil
}

// GetSessionUser returns the user of a live session and marks the session
// as used. An unknown or expired key yields ErrNotFound.
func (a *App) GetSessionUser(key string) (*database.User, error) {
	if key == "" {
		return nil, ErrNotFound
	}

	var session database.Session
	err := a.DB.Where("key = ?", key).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "finding session")
	}

	now := a.Clock.Now()
	if !session.ExpiresAt.After(now) {
		return nil, ErrNotFound
	}

	var user database.User
	err = a.DB.Where("id = ?", session.UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "finding user")
	}

	if err := a.DB.Model(&session).Update("last_used_at", now).Error; err != nil {
		return nil, errors.Wrap(err, "touching session")
	}

	return &user, nil
}

// DeleteUserSessions deletes all existing sessions for the given user. It effectively
// invalidates all existing sessions.
func (a *App) DeleteUserSessions(db *gorm.DB, userID int) error {
	if err := db.Where("user_id = ?", userID).Delete(&database.Session{}).Error; err != nil {
		return errors.Wrap(err, "deleting sessions")
	}

	return nil
}

// DeleteSession deletes the session that match the given info
func (a *App) DeleteSession(sessionKey string) error {
	if err := a.DB.Where("key = ?", sessionKey).Delete(&database.Session{}).Error; err != nil {
		return errors.Wrap(err, "deleting the session")
	}

	return nil
}
