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

package investor

import (
	"testing"

	"github.com/solarcareer/solarcareer/pkg/assert"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/mailer"
)

func TestNewInvestor(t *testing.T) {
	defer func() {
		emailFlag, commitmentFlag, stageFlag = "", 0, DefaultStage
	}()

	stageFlag = DefaultStage
	emailFlag = "ada@example.com"
	commitmentFlag = 2500

	inv, err := newInvestor("  Ada  ")
	assert.NoError(t, err, "creating")
	assert.Equal(t, inv.Name, "Ada", "name mismatch")
	assert.Equal(t, inv.Stage, DefaultStage, "stage mismatch")
	assert.Equal(t, inv.Commitment, 2500.0, "commitment mismatch")
	assert.NotEqual(t, inv.ID, "", "id should be set")

	_, err = newInvestor(" ")
	assert.NotEqual(t, err, nil, "expected an error for an empty name")

	emailFlag = "not-an-email"
	_, err = newInvestor("Ada")
	assert.NotEqual(t, err, nil, "expected an error for an invalid email")

	emailFlag = ""
	commitmentFlag = -1
	_, err = newInvestor("Ada")
	assert.NotEqual(t, err, nil, "expected an error for a negative commitment")
}

func TestNewBackend(t *testing.T) {
	ctx := context.SolarCtx{}

	b, err := newBackend(ctx, true)
	assert.NoError(t, err, "dry run")
	_, ok := b.(*mailer.StdoutBackend)
	assert.Equal(t, ok, true, "dry run should print")

	b, err = newBackend(ctx, false)
	assert.NoError(t, err, "unconfigured")
	_, ok = b.(*mailer.StdoutBackend)
	assert.Equal(t, ok, true, "unconfigured SMTP should print")

	ctx.SMTP = context.SMTP{Host: "smtp.example.com", Port: 587}
	b, err = newBackend(ctx, false)
	assert.NoError(t, err, "configured")
	_, ok = b.(*mailer.SMTPBackend)
	assert.Equal(t, ok, true, "configured SMTP should send")
}
