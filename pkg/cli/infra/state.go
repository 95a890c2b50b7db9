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

package infra

import (
	stdctx "context"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/backup"
	"github.com/solarcareer/solarcareer/pkg/cli/client"
	"github.com/solarcareer/solarcareer/pkg/cli/consts"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/cli/insight"
	"github.com/solarcareer/solarcareer/pkg/cli/snapshot"
	"github.com/solarcareer/solarcareer/pkg/prompt"
)

// OpenState initializes the application state of the context. A signed in
// context is backed by the remote document store of the server.
func OpenState(c stdctx.Context, ctx context.SolarCtx, confirm prompt.Confirmer) (*appstate.Instance, error) {
	cfg := appstate.Config{
		Snapshots: snapshot.New(ctx.DB, ctx.Clock),
		Clock:     ctx.Clock,
		Confirm:   confirm,
	}

	var identity *appstate.Identity
	if ctx.SignedIn() {
		cfg.Remote = client.NewHTTPStore(ctx)
		identity = &appstate.Identity{UserID: ctx.UserID}
	}

	store, err := appstate.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating the state store")
	}

	i, err := store.Init(c, identity)
	if err != nil {
		return nil, errors.Wrap(err, "initializing the state")
	}

	return i, nil
}

// settleTimeout bounds the wait for the first remote deliveries
var settleTimeout = 30 * time.Second

// StateFunc is a command body run against the application state
type StateFunc func(c stdctx.Context, i *appstate.Instance) error

// WithState opens the application state, waits for the remote deliveries
// of a signed in context and runs fn. The state is torn down when fn
// returns or the process is interrupted.
func WithState(ctx context.SolarCtx, confirm prompt.Confirmer, fn StateFunc) error {
	c, stop := signal.NotifyContext(stdctx.Background(), os.Interrupt)
	defer stop()

	i, err := OpenState(c, ctx, confirm)
	if err != nil {
		return err
	}
	defer i.Teardown()

	if i.Remote() {
		sc, cancel := stdctx.WithTimeout(c, settleTimeout)
		err := i.Settle(sc)
		cancel()
		if err != nil {
			return errors.Wrap(err, "waiting for the remote state")
		}
	}

	return fn(c, i)
}

// Destination returns the configured S3 destination if useS3 is set, and
// the backup directory otherwise
func Destination(c stdctx.Context, ctx context.SolarCtx, useS3 bool) (backup.Destination, error) {
	if !useS3 {
		return backup.NewDir(ctx.BackupDir), nil
	}

	d, err := backup.NewS3(c, backup.S3Config{
		Bucket:       ctx.S3.Bucket,
		Region:       ctx.S3.Region,
		Endpoint:     ctx.S3.Endpoint,
		Prefix:       ctx.S3.Prefix,
		UsePathStyle: ctx.S3.UsePathStyle,
	})
	if err != nil {
		return nil, errors.Wrap(err, "configuring S3")
	}

	return d, nil
}

// Generator returns the text generator configured in the context
func Generator(c stdctx.Context, ctx context.SolarCtx) (insight.Generator, error) {
	g, err := insight.NewGenAI(c, insight.GenAIConfig{
		APIKey: ctx.GenAIKey,
		Model:  ctx.GenAIModel,
	})
	if err == insight.ErrNoAPIKey {
		return nil, errors.New("set genaiKey in the config file or GEMINI_API_KEY in the environment")
	}
	if err != nil {
		return nil, errors.Wrap(err, "configuring the text generator")
	}

	return g, nil
}

// SaveSession persists a session in the system table
func SaveSession(db *database.DB, s client.SigninResponse) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	if err := database.UpsertSystem(tx, consts.SystemSessionKey, s.Key); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "saving session key")
	}
	if err := database.UpsertSystem(tx, consts.SystemSessionKeyExpiry, strconv.FormatInt(s.ExpiresAt, 10)); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "saving session key expiry")
	}
	if err := database.UpsertSystem(tx, consts.SystemUserID, s.UserID); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "saving user id")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}

// ClearSession removes the session from the system table
func ClearSession(db *database.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	for _, key := range []string{consts.SystemSessionKey, consts.SystemSessionKeyExpiry, consts.SystemUserID} {
		if err := database.DeleteSystem(tx, key); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "deleting %s", key)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}
