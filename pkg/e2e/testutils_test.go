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

package e2e

import (
	stdctx "context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/client"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/prompt"
	"github.com/solarcareer/solarcareer/pkg/server/app"
	"github.com/solarcareer/solarcareer/pkg/server/controllers"
	"github.com/solarcareer/solarcareer/pkg/server/database"
	apitest "github.com/solarcareer/solarcareer/pkg/server/testutils"
	"gorm.io/gorm"
)

const (
	testEmail    = "alice@example.com"
	testPassword = "pass1234"
)

// testEnv is a server and the database behind it
type testEnv struct {
	Server   *httptest.Server
	ServerDB *gorm.DB
	User     database.User
}

func setupTestEnv(t *testing.T) testEnv {
	db := apitest.InitMemoryDB(t)

	a := app.NewTest()
	a.DB = db
	a.MaxPollWait = 500 * time.Millisecond

	server := controllers.MustNewServer(t, &a)
	user := apitest.SetupUserData(db, testEmail, testPassword)

	return testEnv{
		Server:   server,
		ServerDB: db,
		User:     user,
	}
}

// newClientCtx returns a client context pointed at the server of the env
func newClientCtx(t *testing.T, env testEnv) context.SolarCtx {
	ctx := context.InitTestCtx(t)
	ctx.APIEndpoint = env.Server.URL + "/api"
	ctx.HTTPClient = client.NewRateLimitedHTTPClient()

	return ctx
}

// signIn signs the client in with the test credentials and persists the
// session the way the login command does
func signIn(t *testing.T, ctx *context.SolarCtx) {
	resp, err := client.Signin(*ctx, testEmail, testPassword)
	if err != nil {
		t.Fatal(errors.Wrap(err, "signing in"))
	}
	if err := infra.SaveSession(ctx.DB, resp); err != nil {
		t.Fatal(errors.Wrap(err, "saving the session"))
	}

	ctx.SessionKey = resp.Key
	ctx.SessionKeyExpiry = resp.ExpiresAt
	ctx.UserID = resp.UserID
}

// openStateNoSettle opens a state instance for the client without waiting
// for the first remote deliveries
func openStateNoSettle(t *testing.T, ctx context.SolarCtx) *appstate.Instance {
	i, err := infra.OpenState(stdctx.Background(), ctx, prompt.Static(true))
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening the state"))
	}
	t.Cleanup(i.Teardown)

	return i
}

// openState opens a settled state instance for the client
func openState(t *testing.T, ctx context.SolarCtx) *appstate.Instance {
	i := openStateNoSettle(t, ctx)
	settle(t, i)

	return i
}

// settle waits until the writes of the instance are echoed back
func settle(t *testing.T, i *appstate.Instance) {
	c, cancel := stdctx.WithTimeout(stdctx.Background(), 10*time.Second)
	defer cancel()

	if err := i.Settle(c); err != nil {
		t.Fatal(errors.Wrap(err, "settling"))
	}
}

// countDocs counts the server documents of the user under the given parent
func countDocs(t *testing.T, db *gorm.DB, user database.User, parent string) int {
	var count int64
	if err := db.Model(&database.Document{}).Where("user_id = ? AND parent = ?", user.ID, parent).Count(&count).Error; err != nil {
		t.Fatal(errors.Wrap(err, "counting documents"))
	}

	return int(count)
}
