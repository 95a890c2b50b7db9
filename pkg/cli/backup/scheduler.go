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

package backup

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
)

// Scheduler runs backups on a cron schedule
type Scheduler struct {
	runner *Runner
	cron   *cron.Cron

	mu      sync.Mutex
	started bool
	// OnRun is called after every scheduled run
	OnRun func(Result)
}

// Result is the outcome of a scheduled run
type Result struct {
	Name string
	Err  error
}

// NewScheduler returns a scheduler for the runner
func NewScheduler(r *Runner) *Scheduler {
	return &Scheduler{
		runner: r,
		cron:   cron.New(),
	}
}

func (s *Scheduler) run() {
	rec, err := s.runner.Run(context.Background())
	if err != nil {
		log.Errorf("backup failed: %s\n", err.Error())
	} else {
		log.Debug("backed up %s to %s\n", rec.Name, rec.Destination)
	}

	if s.OnRun != nil {
		s.OnRun(Result{Name: rec.Name, Err: err})
	}
}

// Start schedules the runner with the given spec, such as "@daily" or
// "0 0 */6 * * *", and starts the scheduler
func (s *Scheduler) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("scheduler already started")
	}

	if err := s.cron.AddFunc(spec, s.run); err != nil {
		return errors.Wrapf(err, "parsing schedule %q", spec)
	}

	s.cron.Start()
	s.started = true

	return nil
}

// Stop stops the scheduler. Running backups are not interrupted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.cron.Stop()
	s.started = false
}
