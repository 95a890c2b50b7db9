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
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/server/database"
	"github.com/solarcareer/solarcareer/pkg/server/helpers"
	"github.com/solarcareer/solarcareer/pkg/server/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// minPasswordLength is the shortest password accepted at sign up
const minPasswordLength = 8

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TouchLastLoginAt updates the last login timestamp
func (a *App) TouchLastLoginAt(user database.User, tx *gorm.DB) error {
	t := a.Clock.Now()
	if err := tx.Model(&user).Update("last_login_at", &t).Error; err != nil {
		return errors.Wrap(err, "updating last_login_at")
	}

	return nil
}

// CreateUser creates a user
func (a *App) CreateUser(email, password, passwordConfirmation string) (database.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return database.User{}, ErrEmailRequired
	}
	if len(password) < minPasswordLength {
		return database.User{}, ErrPasswordTooShort
	}
	if password != passwordConfirmation {
		return database.User{}, ErrPasswordConfirmationMismatch
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return database.User{}, errors.Wrap(err, "hashing password")
	}

	user := database.User{
		UUID:     uuid,
		Email:    email,
		Password: string(hashedPassword),
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return errors.Wrap(err, "counting user")
		}
		if count > 0 {
			return ErrDuplicateEmail
		}

		if err := tx.Create(&user).Error; err != nil {
			return errors.Wrap(err, "saving user")
		}

		return nil
	})
	if err != nil {
		return database.User{}, err
	}

	return user, nil
}

// GetUserByEmail finds a user by email
func (a *App) GetUserByEmail(email string) (*database.User, error) {
	var user database.User
	err := a.DB.Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "finding user")
	}

	return &user, nil
}

// RemoveUser deletes a user along with the user's sessions and documents
func (a *App) RemoveUser(email string) error {
	user, err := a.GetUserByEmail(email)
	if err != nil {
		return err
	}

	return a.DB.Transaction(func(tx *gorm.DB) error {
		if err := a.DeleteUserSessions(tx, user.ID); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&database.Document{}).Error; err != nil {
			return errors.Wrap(err, "deleting documents")
		}
		if err := tx.Delete(user).Error; err != nil {
			return errors.Wrap(err, "deleting user")
		}

		return nil
	})
}

// Authenticate authenticates a user
func (a *App) Authenticate(email, password string) (*database.User, error) {
	user, err := a.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrLoginInvalid
	}

	return user, nil
}

// SignIn signs in a user
func (a *App) SignIn(user *database.User) (*database.Session, error) {
	if err := a.TouchLastLoginAt(*user, a.DB); err != nil {
		log.ErrorWrap(err, "touching login timestamp")
	}

	session, err := a.CreateSession(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "creating session")
	}

	return &session, nil
}
