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

package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/assert"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/cli/snapshot"
	"github.com/solarcareer/solarcareer/pkg/clock"
)

func newInstance(t *testing.T) *appstate.Instance {
	c := clock.NewMock()
	s, err := appstate.New(appstate.Config{
		Snapshots: snapshot.New(database.InitTestMemoryDB(t), c),
		Clock:     c,
	})
	assert.NoError(t, err, "creating the store")

	i, err := s.Init(context.Background(), nil)
	assert.NoError(t, err, "initializing")
	t.Cleanup(i.Teardown)

	return i
}

func fullState() schema.ApplicationState {
	s := schema.DefaultState()
	s.UserRole = schema.RoleInvestor
	s.Certifications[0].Status = schema.CertInProgress
	s.Certifications[0].Progress = 40
	s.Investors = []schema.Investor{{ID: "i1", Name: "Ada", Firm: "Sunrise Capital", Stage: "Committed", Commitment: 15000}}
	s.InvestorUpdates = []schema.InvestorUpdate{{ID: "u1", Subject: "March", Body: "Passed OSHA", InvestorIDs: []string{"i1"}, SentAt: "2024-03-04T09:00:00Z"}}
	s.RoutineTasks = []schema.RoutineTask{
		{ID: "t2", Title: "Second", Status: schema.StatusDone, Priority: schema.PriorityLow, Category: "Health"},
		{ID: "t1", Title: "First", Status: schema.StatusTodo, Priority: schema.PriorityHigh, Category: "Learning"},
	}
	s.Journal = []schema.JournalEntry{{ID: "j1", Date: "2024-03-03", Content: "Shadowed an install crew"}}
	s.WeeklyRecaps = []schema.WeeklyRecap{{ID: "w1", WeekOf: "2024-02-26", Content: "{}", GeneratedAt: "2024-03-03T10:00:00Z"}}
	s.FieldLogs = []schema.FieldLog{{ID: "f1", Date: "2024-03-02", Location: "Tucson", Latitude: 32.2, Longitude: -110.9, Hours: 6}}
	s.Expenses = []schema.Expense{{ID: "e1", Name: "Harness", Category: "Equipment", Amount: 180}}
	s.SyncSettings = schema.SyncSettings{ExternalAppURL: "https://crm.example.com", IsConnected: true, LastSync: "2024-03-01", RemoteCredentials: "token"}

	return s
}

func TestExport(t *testing.T) {
	name, b, err := Export(fullState(), time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC))
	assert.NoError(t, err, "exporting")
	assert.Equal(t, name, "solarcareer_backup_2024-03-04.json", "filename mismatch")
	assert.DeepEqual(t, schema.MergeWithDefaults(b), fullState(), "exported state mismatch")
}

func TestExportSanitizedTemplate(t *testing.T) {
	state := fullState()

	name, b, err := ExportSanitizedTemplate(state)
	assert.NoError(t, err, "exporting")
	assert.Equal(t, name, "framework_template_v1.json", "filename mismatch")

	var got schema.ApplicationState
	assert.NoError(t, json.Unmarshal(b, &got), "decoding")

	assert.DeepEqual(t, got.Investors, []schema.Investor{}, "investors should be empty")
	assert.DeepEqual(t, got.InvestorUpdates, []schema.InvestorUpdate{}, "investorUpdates should be empty")
	assert.DeepEqual(t, got.Journal, []schema.JournalEntry{}, "journal should be empty")
	assert.DeepEqual(t, got.WeeklyRecaps, []schema.WeeklyRecap{}, "weeklyRecaps should be empty")
	assert.DeepEqual(t, got.FieldLogs, []schema.FieldLog{}, "fieldLogs should be empty")
	assert.DeepEqual(t, got.SyncSettings, schema.DefaultSyncSettings(), "syncSettings should be reset")

	assert.DeepEqual(t, got.RoutineTasks, state.RoutineTasks, "routineTasks should be kept")
	assert.DeepEqual(t, got.Certifications, state.Certifications, "certifications should be kept")
	assert.DeepEqual(t, got.Expenses, state.Expenses, "expenses should be kept")
	assert.Equal(t, got.UserRole, state.UserRole, "userRole should be kept")

	// the empty lists are serialized, not omitted
	var keys map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(b, &keys), "decoding keys")
	assert.Equal(t, string(keys["journal"]), "[]", "journal should serialize as an empty list")

	// the input is not modified
	assert.Equal(t, len(state.Investors), 1, "input mutated")
}

func TestImport_RoundTrip(t *testing.T) {
	_, b, err := Export(fullState(), time.Now())
	assert.NoError(t, err, "exporting")

	i := newInstance(t)
	ok, err := Import(context.Background(), i, bytes.NewReader(b))
	assert.NoError(t, err, "importing")
	assert.Equal(t, ok, true, "import should succeed")

	got := i.State()
	expected := fullState()
	assert.Equal(t, got.UserRole, expected.UserRole, "role mismatch")
	assert.DeepEqual(t, got.Certifications, expected.Certifications, "certifications mismatch")
	assert.DeepEqual(t, got.Investors, expected.Investors, "investors mismatch")
	assert.DeepEqual(t, got.InvestorUpdates, expected.InvestorUpdates, "investorUpdates mismatch")
	assert.DeepEqual(t, got.RoutineTasks, expected.RoutineTasks, "routineTasks mismatch")
	assert.DeepEqual(t, got.Journal, expected.Journal, "journal mismatch")
	assert.DeepEqual(t, got.WeeklyRecaps, expected.WeeklyRecaps, "weeklyRecaps mismatch")
	assert.DeepEqual(t, got.FieldLogs, expected.FieldLogs, "fieldLogs mismatch")
	assert.DeepEqual(t, got.Expenses, expected.Expenses, "expenses mismatch")
	assert.DeepEqual(t, got.SyncSettings, expected.SyncSettings, "syncSettings mismatch")
}

func TestImport_Rejects(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "missing keys", content: `{"foo": 1}`},
		{name: "not json", content: `routineTasks`},
		{name: "array", content: `[{"routineTasks": []}]`},
		{name: "empty", content: ``},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			i := newInstance(t)
			before := i.State()

			ok, err := Import(context.Background(), i, strings.NewReader(tc.content))
			assert.NoError(t, err, "importing")
			assert.Equal(t, ok, false, "import should be rejected")
			assert.DeepEqual(t, i.State(), before, "state should not change")
		})
	}
}

func TestImport_LegacyFile(t *testing.T) {
	i := newInstance(t)

	ok, err := Import(context.Background(), i, strings.NewReader(`{"routineTasks": [{"id": "m1", "label": "Wake up", "completed": true}]}`))
	assert.NoError(t, err, "importing")
	assert.Equal(t, ok, true, "import should succeed")

	got := i.State()
	assert.DeepEqual(t, got.RoutineTasks, []schema.RoutineTask{{
		ID:        "m1",
		Title:     "Wake up",
		Label:     "Wake up",
		Status:    schema.StatusDone,
		Completed: true,
		Priority:  schema.PriorityMedium,
		Category:  schema.DefaultCategory,
	}}, "routine tasks mismatch")
	assert.DeepEqual(t, got.Certifications, schema.DefaultCertifications(), "absent keys take their default")
}

type failingUpdater struct {
	err error
}

func (f failingUpdater) UpdateData(context.Context, schema.Partial) error {
	return f.err
}

func TestImport_UpdateError(t *testing.T) {
	boom := errors.New("remote down")

	ok, err := Import(context.Background(), failingUpdater{err: boom}, strings.NewReader(`{"certifications": []}`))
	assert.Equal(t, ok, false, "import should fail")
	assert.Equal(t, errors.Cause(err), boom, "error mismatch")
}
