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

// Package jobs runs the periodic maintenance of the server database
package jobs

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron"
	"github.com/solarcareer/solarcareer/pkg/clock"
	"github.com/solarcareer/solarcareer/pkg/server/database"
	"github.com/solarcareer/solarcareer/pkg/server/log"
	"gorm.io/gorm"
)

// ErrEmptyDB is an error for a runner configured without a database
var ErrEmptyDB = errors.New("No database connection was provided")

// Runner schedules the maintenance jobs
type Runner struct {
	DB    *gorm.DB
	Clock clock.Clock

	cron *cron.Cron
	mu   sync.Mutex
}

// NewRunner returns a runner for the database
func NewRunner(db *gorm.DB, c clock.Clock) (*Runner, error) {
	if db == nil {
		return nil, ErrEmptyDB
	}

	return &Runner{
		DB:    db,
		Clock: c,
		cron:  cron.New(),
	}, nil
}

// RunMaintenance checkpoints the write-ahead log and removes expired sessions
func (r *Runner) RunMaintenance() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := database.Checkpoint(r.DB); err != nil {
		return err
	}

	n, err := database.DeleteExpiredSessions(r.DB, r.Clock.Now())
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"expired_sessions": n,
	}).Debug("Maintenance done.")

	return nil
}

// Schedule runs the maintenance on the cron schedule until Stop is called
func (r *Runner) Schedule(spec string) error {
	err := r.cron.AddFunc(spec, func() {
		if err := r.RunMaintenance(); err != nil {
			log.ErrorWrap(err, "running maintenance")
		}
	})
	if err != nil {
		return errors.Wrapf(err, "scheduling maintenance '%s'", spec)
	}

	r.cron.Start()

	log.WithFields(log.Fields{
		"schedule": spec,
	}).Info("Maintenance scheduled.")

	return nil
}

// Stop stops the schedule
func (r *Runner) Stop() {
	r.cron.Stop()
}
