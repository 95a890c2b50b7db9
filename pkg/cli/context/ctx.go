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

// Package context defines the runtime context of the cli
package context

import (
	"net/http"

	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/clock"
)

// Paths contain directory definitions
type Paths struct {
	Home   string
	Config string
	Data   string
	Cache  string
}

// S3 holds the settings of the S3 backup destination
type S3 struct {
	Bucket       string
	Region       string
	Endpoint     string
	Prefix       string
	UsePathStyle bool
}

// SMTP holds the settings of the investor update mailer
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SolarCtx is a context holding the information of the current runtime
type SolarCtx struct {
	Paths              Paths
	APIEndpoint        string
	Editor             string
	Version            string
	DB                 *database.DB
	SessionKey         string
	SessionKeyExpiry   int64
	UserID             string
	Clock              clock.Clock
	EnableUpgradeCheck bool
	HTTPClient         *http.Client

	BackupDir      string
	BackupSchedule string
	S3             S3
	SMTP           SMTP
	GenAIKey       string
	GenAIModel     string
}

// SignedIn reports whether a session is present
func (c SolarCtx) SignedIn() bool {
	return c.SessionKey != "" && c.UserID != ""
}

// Redact replaces private information from the context with a set of
// placeholder values.
func Redact(ctx SolarCtx) SolarCtx {
	if ctx.SessionKey != "" {
		ctx.SessionKey = "1"
	} else {
		ctx.SessionKey = "0"
	}
	if ctx.SMTP.Password != "" {
		ctx.SMTP.Password = "***"
	}
	if ctx.GenAIKey != "" {
		ctx.GenAIKey = "***"
	}

	return ctx
}
