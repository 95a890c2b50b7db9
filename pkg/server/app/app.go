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

// Package app holds the server operations on users, sessions and documents
package app

import (
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/clock"
	"github.com/solarcareer/solarcareer/pkg/server/hub"
	"gorm.io/gorm"
)

var (
	// ErrEmptyDB is an error for missing database connection in the app configuration
	ErrEmptyDB = errors.New("No database connection was provided")
	// ErrEmptyClock is an error for missing clock in the app configuration
	ErrEmptyClock = errors.New("No clock was provided")
	// ErrEmptyHub is an error for missing change notification hub in the app configuration
	ErrEmptyHub = errors.New("No hub was provided")
)

// App is an application context
type App struct {
	DB    *gorm.DB
	Clock clock.Clock
	Hub   *hub.Hub
	// SessionTTL is how long a new session stays valid
	SessionTTL time.Duration
	// MaxPollWait caps how long a read may be held waiting for changes
	MaxPollWait time.Duration
}

// Validate validates the app configuration
func (a *App) Validate() error {
	if a.Clock == nil {
		return ErrEmptyClock
	}
	if a.DB == nil {
		return ErrEmptyDB
	}
	if a.Hub == nil {
		return ErrEmptyHub
	}

	return nil
}
