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

// Package testutils provides utilities used in tests
package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/consts"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
)

// Login simulates a logged in user by inserting credentials in the local database
func Login(t *testing.T, ctx *context.SolarCtx, userID string) {
	db := ctx.DB
	expiry := time.Now().Add(24 * time.Hour).Unix()

	database.MustExec(t, "inserting sessionKey", db, "INSERT INTO system (key, value) VALUES (?, ?)", consts.SystemSessionKey, "someSessionKey")
	database.MustExec(t, "inserting sessionKeyExpiry", db, "INSERT INTO system (key, value) VALUES (?, ?)", consts.SystemSessionKeyExpiry, expiry)
	database.MustExec(t, "inserting userID", db, "INSERT INTO system (key, value) VALUES (?, ?)", consts.SystemUserID, userID)

	ctx.SessionKey = "someSessionKey"
	ctx.SessionKeyExpiry = expiry
	ctx.UserID = userID
}

// ReadJSON reads JSON fixture to the struct at the destination address
func ReadJSON(path string, destination interface{}) {
	dat, err := os.ReadFile(path)
	if err != nil {
		panic(errors.Wrap(err, "loading fixture payload"))
	}
	if err := json.Unmarshal(dat, destination); err != nil {
		panic(errors.Wrap(err, "decoding fixture payload"))
	}
}

// RunSolarCmdOptions is an option for RunSolarCmd
type RunSolarCmdOptions struct {
	Env   []string
	Stdin io.Reader
}

// NewSolarCmd returns a new command of the test binary and pointers to
// its stderr and stdout
func NewSolarCmd(opts RunSolarCmdOptions, binaryName string, arg ...string) (*exec.Cmd, *bytes.Buffer, *bytes.Buffer, error) {
	var stderr, stdout bytes.Buffer

	binaryPath, err := filepath.Abs(binaryName)
	if err != nil {
		return &exec.Cmd{}, &stderr, &stdout, errors.Wrap(err, "getting the absolute path to the test binary")
	}

	cmd := exec.Command(binaryPath, arg...)
	cmd.Stderr = &stderr
	cmd.Stdout = &stdout
	cmd.Stdin = opts.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = strings.NewReader("")
	}

	cmd.Env = append(opts.Env, "SOLARCAREER_DEBUG=1")

	return cmd, &stderr, &stdout, nil
}

// RunSolarCmd runs a command of the test binary and fails the test if it
// exits with an error. It returns the stdout.
func RunSolarCmd(t *testing.T, opts RunSolarCmdOptions, binaryName string, arg ...string) string {
	t.Helper()
	t.Logf("running: %s %s", binaryName, strings.Join(arg, " "))

	cmd, stderr, stdout, err := NewSolarCmd(opts, binaryName, arg...)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting command").Error())
	}

	if err := cmd.Run(); err != nil {
		t.Logf("\n%s", stdout)
		t.Fatal(errors.Wrapf(err, "running command %s", stderr.String()))
	}

	// Print stdout if and only if test fails later
	t.Logf("\n%s", stdout)

	return stdout.String()
}

// MustFailSolarCmd runs a command of the test binary and fails the test if
// it succeeds. It returns the stdout.
func MustFailSolarCmd(t *testing.T, opts RunSolarCmdOptions, binaryName string, arg ...string) string {
	t.Helper()
	t.Logf("running: %s %s", binaryName, strings.Join(arg, " "))

	cmd, _, stdout, err := NewSolarCmd(opts, binaryName, arg...)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting command").Error())
	}

	if err := cmd.Run(); err == nil {
		t.Logf("\n%s", stdout)
		t.Fatal("command should have failed")
	}

	return stdout.String()
}
