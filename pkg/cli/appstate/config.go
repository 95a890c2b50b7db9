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

// Package appstate is the single entry point through which the application
// reads and mutates its state. It runs in local mode, backed by the local
// snapshot only, or in remote mode, backed by the remote document store
// with the local snapshot as a record of the last intended state.
package appstate

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/remote"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/clock"
	"github.com/solarcareer/solarcareer/pkg/prompt"
)

var (
	// ErrNoSnapshots is returned when the config has no snapshot store
	ErrNoSnapshots = errors.New("a snapshot store is required")
	// ErrNoRemote is returned when an identity is given without a remote store
	ErrNoRemote = errors.New("signing in requires a remote store")
	// ErrNoConfirmer is returned by ResetAll when nothing can confirm it
	ErrNoConfirmer = errors.New("reset requires a confirmer")
	// ErrClosed is returned by an instance after Teardown
	ErrClosed = errors.New("instance is torn down")
)

// resetQuestion is asked before wiping the data
const resetQuestion = "Reset all data? This cannot be undone."

// Snapshots is the local snapshot store
type Snapshots interface {
	Load() (json.RawMessage, bool)
	Save(schema.ApplicationState) error
	Clear() error
	SavedAt() (time.Time, bool)
}

// Identity is an authenticated user
type Identity struct {
	UserID string
}

// Config holds the collaborators of the store
type Config struct {
	Snapshots Snapshots
	// Remote is required only for instances with an identity
	Remote remote.DocumentStore
	Clock  clock.Clock
	// Confirm is asked before a reset
	Confirm prompt.Confirmer
	// Defaults returns the state of a first run
	Defaults func() schema.ApplicationState
}

// Store creates state instances from a config
type Store struct {
	cfg Config
}

// New validates the config and returns a store
func New(cfg Config) (*Store, error) {
	if cfg.Snapshots == nil {
		return nil, ErrNoSnapshots
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Defaults == nil {
		cfg.Defaults = schema.DefaultState
	}

	return &Store{cfg: cfg}, nil
}
