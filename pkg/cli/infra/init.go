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

// Package infra provides operations and definitions for the
// local infrastructure for solarcareer
package infra

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/client"
	"github.com/solarcareer/solarcareer/pkg/cli/config"
	"github.com/solarcareer/solarcareer/pkg/cli/consts"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/cli/insight"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/utils"
	"github.com/solarcareer/solarcareer/pkg/clock"
	"github.com/solarcareer/solarcareer/pkg/dirs"
	"github.com/spf13/cobra"
)

const (
	// DefaultAPIEndpoint is the default API endpoint used when none is configured
	DefaultAPIEndpoint = "http://localhost:3001/api"
	// DefaultBackupSchedule is the cron spec of the scheduled backup
	DefaultBackupSchedule = "@daily"
)

// RunEFunc is a function type of solarcareer commands
type RunEFunc func(*cobra.Command, []string) error

func getDBPath(paths context.Paths, customPath string) string {
	if customPath != "" {
		return customPath
	}

	return filepath.Join(paths.DataDir(), consts.DBFileName)
}

// newBaseCtx creates a context with paths and a database connection. It is
// enriched with config values by setupCtx once the files are initialized.
func newBaseCtx(versionTag, customDBPath string) (context.SolarCtx, error) {
	base, err := dirs.Resolve()
	if err != nil {
		return context.SolarCtx{}, errors.Wrap(err, "resolving directories")
	}

	paths := context.Paths{
		Home:   base.Home,
		Config: base.Config,
		Data:   base.Data,
		Cache:  base.Cache,
	}

	if err := context.InitDirs(paths); err != nil {
		return context.SolarCtx{}, errors.Wrap(err, "creating the solarcareer dirs")
	}

	dbPath := getDBPath(paths, customDBPath)
	if err := utils.EnsureDir(filepath.Dir(dbPath)); err != nil {
		return context.SolarCtx{}, errors.Wrap(err, "creating the database directory")
	}

	db, err := database.Open(dbPath)
	if err != nil {
		return context.SolarCtx{}, errors.Wrap(err, "connecting to db")
	}

	ctx := context.SolarCtx{
		Paths:   paths,
		Version: versionTag,
		DB:      db,
		Clock:   clock.New(),
	}

	return ctx, nil
}

// Init initializes the solarcareer environment and returns a new context.
// apiEndpoint overrides the configured endpoint when it is not empty.
func Init(versionTag, apiEndpoint, dbPath string) (*context.SolarCtx, error) {
	ctx, err := newBaseCtx(versionTag, dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "initializing a context")
	}

	if err := initConfigFile(ctx, apiEndpoint); err != nil {
		return nil, errors.Wrap(err, "generating the config file")
	}

	n, err := database.Migrate(ctx.DB)
	if err != nil {
		return nil, errors.Wrap(err, "running migration")
	}
	if n > 0 {
		log.Debug("applied %d migrations\n", n)
	}

	if err := InitSystem(ctx); err != nil {
		return nil, errors.Wrap(err, "initializing system data")
	}

	ctx, err = setupCtx(ctx, apiEndpoint)
	if err != nil {
		return nil, errors.Wrap(err, "setting up the context")
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}

func getSystemString(db *database.DB, key string) (string, error) {
	var ret string
	err := database.GetSystem(db, key, &ret)
	if err != nil && err != database.ErrNotFound {
		return "", err
	}

	return ret, nil
}

// setupCtx enriches the base context with values from the config file
// and the system table
func setupCtx(ctx context.SolarCtx, apiEndpoint string) (context.SolarCtx, error) {
	db := ctx.DB

	sessionKey, err := getSystemString(db, consts.SystemSessionKey)
	if err != nil {
		return ctx, errors.Wrap(err, "finding session key")
	}
	userID, err := getSystemString(db, consts.SystemUserID)
	if err != nil {
		return ctx, errors.Wrap(err, "finding user id")
	}
	var sessionKeyExpiry int64
	err = database.GetSystem(db, consts.SystemSessionKeyExpiry, &sessionKeyExpiry)
	if err != nil && err != database.ErrNotFound {
		return ctx, errors.Wrap(err, "finding session key expiry")
	}

	cf, err := config.Read(ctx.Paths)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}

	endpoint := cf.APIEndpoint
	if apiEndpoint != "" {
		endpoint = apiEndpoint
	}
	backupDir := cf.BackupDir
	if backupDir == "" {
		backupDir = filepath.Join(ctx.Paths.DataDir(), consts.BackupDirName)
	}
	backupSchedule := cf.BackupSchedule
	if backupSchedule == "" {
		backupSchedule = DefaultBackupSchedule
	}
	genAIModel := cf.GenAIModel
	if genAIModel == "" {
		genAIModel = insight.DefaultModel
	}
	genAIKey := cf.GenAIKey
	if genAIKey == "" {
		genAIKey = os.Getenv("GEMINI_API_KEY")
	}

	ret := context.SolarCtx{
		Paths:              ctx.Paths,
		Version:            ctx.Version,
		DB:                 ctx.DB,
		SessionKey:         sessionKey,
		SessionKeyExpiry:   sessionKeyExpiry,
		UserID:             userID,
		APIEndpoint:        endpoint,
		Editor:             cf.Editor,
		Clock:              ctx.Clock,
		EnableUpgradeCheck: cf.EnableUpgradeCheck,
		HTTPClient:         client.NewRateLimitedHTTPClient(),
		BackupDir:          backupDir,
		BackupSchedule:     backupSchedule,
		S3: context.S3{
			Bucket:       cf.S3.Bucket,
			Region:       cf.S3.Region,
			Endpoint:     cf.S3.Endpoint,
			Prefix:       cf.S3.Prefix,
			UsePathStyle: cf.S3.UsePathStyle,
		},
		SMTP: context.SMTP{
			Host:     cf.SMTP.Host,
			Port:     cf.SMTP.Port,
			Username: cf.SMTP.Username,
			Password: cf.SMTP.Password,
			From:     cf.SMTP.From,
		},
		GenAIKey:   genAIKey,
		GenAIModel: genAIModel,
	}

	return ret, nil
}

// InitSystem inserts system data if missing
func InitSystem(ctx context.SolarCtx) error {
	log.Debug("initializing the system\n")

	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	nowStr := strconv.FormatInt(ctx.Clock.Now().Unix(), 10)
	if err := database.InitSystemKV(tx, consts.SystemLastUpgrade, nowStr); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "initializing system config for %s", consts.SystemLastUpgrade)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}

// getEditorCommand returns the system's editor command with appropriate flags,
// if necessary, to make the command wait until editor is close to exit.
func getEditorCommand() string {
	switch editor := os.Getenv("EDITOR"); editor {
	case "subl":
		return "subl -n -w"
	case "code":
		return "code -n -w"
	case "vim", "nano", "emacs", "nvim":
		return editor
	default:
		return "vi"
	}
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(ctx context.SolarCtx, apiEndpoint string) error {
	path := config.GetPath(ctx.Paths)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	endpoint := apiEndpoint
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}

	cf := config.Config{
		Editor:             getEditorCommand(),
		APIEndpoint:        endpoint,
		EnableUpgradeCheck: true,
		BackupSchedule:     DefaultBackupSchedule,
		GenAIModel:         insight.DefaultModel,
	}

	if err := config.Write(ctx.Paths, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}
