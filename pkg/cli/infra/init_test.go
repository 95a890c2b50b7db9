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
	"path/filepath"
	"testing"

	"github.com/solarcareer/solarcareer/pkg/assert"
	"github.com/solarcareer/solarcareer/pkg/cli/client"
	"github.com/solarcareer/solarcareer/pkg/cli/config"
	"github.com/solarcareer/solarcareer/pkg/cli/consts"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/cli/insight"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/prompt"
)

func setupEnv(t *testing.T) string {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))
	t.Setenv("GEMINI_API_KEY", "")

	return tmpDir
}

func TestInit(t *testing.T) {
	tmpDir := setupEnv(t)

	ctx, err := Init("test-version", "", "")
	assert.NoError(t, err, "initializing")
	defer ctx.DB.Close()

	assert.Equal(t, ctx.Version, "test-version", "version mismatch")
	assert.Equal(t, ctx.APIEndpoint, DefaultAPIEndpoint, "endpoint mismatch")
	assert.Equal(t, ctx.DB.Filepath, filepath.Join(tmpDir, "data", consts.DirName, consts.DBFileName), "db path mismatch")
	assert.Equal(t, ctx.BackupDir, filepath.Join(tmpDir, "data", consts.DirName, consts.BackupDirName), "backup dir mismatch")
	assert.Equal(t, ctx.BackupSchedule, DefaultBackupSchedule, "backup schedule mismatch")
	assert.Equal(t, ctx.GenAIModel, insight.DefaultModel, "model mismatch")
	assert.Equal(t, ctx.SignedIn(), false, "should not be signed in")

	var lastUpgrade string
	assert.NoError(t, database.GetSystem(ctx.DB, consts.SystemLastUpgrade, &lastUpgrade), "getting last upgrade")
	assert.NotEqual(t, lastUpgrade, "", "last upgrade should be initialized")

	var count int
	database.MustScan(t, "counting snapshots", ctx.DB.QueryRow("SELECT count(*) FROM snapshots"), &count)
	assert.Equal(t, count, 0, "snapshot count mismatch")
}

func TestInit_CustomDBPath(t *testing.T) {
	tmpDir := setupEnv(t)
	dbPath := filepath.Join(tmpDir, "custom", "state.db")

	ctx, err := Init("test-version", "", dbPath)
	assert.NoError(t, err, "initializing")
	defer ctx.DB.Close()

	assert.Equal(t, ctx.DB.Filepath, dbPath, "db path mismatch")
}

func TestInit_APIEndpointChange(t *testing.T) {
	setupEnv(t)

	endpoint1 := "http://127.0.0.1:3001/api"
	ctx, err := Init("test-version", endpoint1, "")
	assert.NoError(t, err, "initializing")
	defer ctx.DB.Close()
	assert.Equal(t, ctx.APIEndpoint, endpoint1, "should use endpoint1 API endpoint")

	cf, err := config.Read(ctx.Paths)
	assert.NoError(t, err, "reading config")

	endpoint2 := "http://127.0.0.1:3002/api"
	ctx2, err := Init("test-version", endpoint2, "")
	assert.NoError(t, err, "initializing with override")
	defer ctx2.DB.Close()
	assert.Equal(t, ctx2.APIEndpoint, endpoint2, "should use endpoint2 API endpoint")

	cf2, err := config.Read(ctx2.Paths)
	assert.NoError(t, err, "reading config after override")
	assert.Equal(t, cf2.APIEndpoint, cf.APIEndpoint, "config should still have the original endpoint")
}

func TestInit_ConfigValues(t *testing.T) {
	setupEnv(t)

	ctx, err := Init("test-version", "", "")
	assert.NoError(t, err, "initializing")
	paths := ctx.Paths
	ctx.DB.Close()

	cf := config.Config{
		APIEndpoint:    "http://example.com/api",
		BackupDir:      "/srv/backups",
		BackupSchedule: "@weekly",
		S3:             config.S3{Bucket: "b", Region: "eu-west-1"},
		SMTP:           config.SMTP{Host: "smtp.example.com", Port: 25, From: "me@example.com", Password: "pw"},
		GenAIKey:       "key",
		GenAIModel:     "custom-model",
	}
	assert.NoError(t, config.Write(paths, cf), "writing config")

	ctx, err = Init("test-version", "", "")
	assert.NoError(t, err, "initializing again")
	defer ctx.DB.Close()

	assert.Equal(t, ctx.APIEndpoint, "http://example.com/api", "endpoint mismatch")
	assert.Equal(t, ctx.BackupDir, "/srv/backups", "backup dir mismatch")
	assert.Equal(t, ctx.BackupSchedule, "@weekly", "schedule mismatch")
	assert.Equal(t, ctx.S3.Bucket, "b", "bucket mismatch")
	assert.Equal(t, ctx.S3.Region, "eu-west-1", "region mismatch")
	assert.Equal(t, ctx.SMTP.Port, 25, "smtp port mismatch")
	assert.Equal(t, ctx.SMTP.Password, "pw", "smtp password mismatch")
	assert.Equal(t, ctx.GenAIKey, "key", "genai key mismatch")
	assert.Equal(t, ctx.GenAIModel, "custom-model", "genai model mismatch")
}

func TestSession(t *testing.T) {
	setupEnv(t)

	ctx, err := Init("test-version", "", "")
	assert.NoError(t, err, "initializing")
	defer ctx.DB.Close()

	s := client.SigninResponse{Key: "some-key", ExpiresAt: 1700000000, UserID: "8f4a0b6e-5b3c-4f0c-a2a8-5c9c6b0c7d11"}
	assert.NoError(t, SaveSession(ctx.DB, s), "saving session")

	got, err := setupCtx(*ctx, "")
	assert.NoError(t, err, "setting up the context")
	assert.Equal(t, got.SessionKey, s.Key, "session key mismatch")
	assert.Equal(t, got.SessionKeyExpiry, s.ExpiresAt, "expiry mismatch")
	assert.Equal(t, got.UserID, s.UserID, "user id mismatch")
	assert.Equal(t, got.SignedIn(), true, "should be signed in")

	assert.NoError(t, ClearSession(ctx.DB), "clearing session")

	got, err = setupCtx(*ctx, "")
	assert.NoError(t, err, "setting up the context after clearing")
	assert.Equal(t, got.SessionKey, "", "session key should be cleared")
	assert.Equal(t, got.UserID, "", "user id should be cleared")
	assert.Equal(t, got.SignedIn(), false, "should not be signed in")
}

func TestOpenState_Local(t *testing.T) {
	ctx := context.InitTestCtx(t)

	i, err := OpenState(t.Context(), ctx, prompt.Static(true))
	assert.NoError(t, err, "opening state")
	defer i.Teardown()

	assert.Equal(t, i.Remote(), false, "should be local")
	assert.DeepEqual(t, i.State().Certifications, schema.DefaultCertifications(), "certifications mismatch")
}
