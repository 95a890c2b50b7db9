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

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/consts"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/cli/transfer"
	"github.com/solarcareer/solarcareer/pkg/clock"
)

// Source provides the state to back up
type Source interface {
	State() schema.ApplicationState
}

// Runner exports the state to a destination and records the backup
type Runner struct {
	Source      Source
	Destination Destination
	DB          *database.DB
	Clock       clock.Clock
}

// Run makes one backup
func (r *Runner) Run(ctx context.Context) (database.Backup, error) {
	c := r.Clock
	if c == nil {
		c = clock.New()
	}
	now := c.Now()

	name, b, err := transfer.Export(r.Source.State(), now)
	if err != nil {
		return database.Backup{}, errors.Wrap(err, "exporting")
	}

	if err := r.Destination.Put(ctx, name, b); err != nil {
		return database.Backup{}, errors.Wrapf(err, "storing the backup in %s", r.Destination.Name())
	}

	rec := database.Backup{
		Destination: r.Destination.Name(),
		Name:        name,
		Size:        len(b),
		CreatedAt:   now.UnixNano(),
	}
	if r.DB == nil {
		return rec, nil
	}

	if err := database.InsertBackup(r.DB, rec); err != nil {
		return rec, errors.Wrap(err, "recording the backup")
	}
	if err := database.UpsertSystem(r.DB, consts.SystemLastBackup, rec.CreatedAt); err != nil {
		return rec, errors.Wrap(err, "updating the last backup time")
	}

	return rec, nil
}

// LastBackup returns the time of the last recorded backup in unix nanoseconds,
// or 0 if there is none
func LastBackup(db *database.DB) (int64, error) {
	var ret int64
	err := database.GetSystem(db, consts.SystemLastBackup, &ret)
	if err == database.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "getting the last backup time")
	}

	return ret, nil
}
