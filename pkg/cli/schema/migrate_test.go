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

package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/solarcareer/solarcareer/pkg/assert"
)

func TestMigrateRoutineTask(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected RoutineTask
	}{
		{
			name:  "legacy completed task",
			input: `{"id": "m1", "label": "Wake up", "completed": true}`,
			expected: RoutineTask{
				ID:        "m1",
				Title:     "Wake up",
				Label:     "Wake up",
				Status:    StatusDone,
				Completed: true,
				Priority:  PriorityMedium,
				Category:  DefaultCategory,
			},
		},
		{
			name:  "legacy incomplete task",
			input: `{"id": "m2", "label": "Stretch"}`,
			expected: RoutineTask{
				ID:       "m2",
				Title:    "Stretch",
				Label:    "Stretch",
				Status:   StatusTodo,
				Priority: PriorityMedium,
				Category: DefaultCategory,
			},
		},
		{
			name:  "current task is unchanged",
			input: `{"id": "t1", "title": "Study", "status": "InProgress", "priority": "High", "category": "Learning"}`,
			expected: RoutineTask{
				ID:       "t1",
				Title:    "Study",
				Status:   StatusInProgress,
				Priority: PriorityHigh,
				Category: "Learning",
			},
		},
		{
			name:  "title wins over label",
			input: `{"id": "t2", "title": "New", "label": "Old", "completed": true}`,
			expected: RoutineTask{
				ID:        "t2",
				Title:     "New",
				Label:     "Old",
				Status:    StatusDone,
				Completed: true,
				Priority:  PriorityMedium,
				Category:  DefaultCategory,
			},
		},
		{
			name:  "status wins over completed",
			input: `{"id": "t3", "title": "Run", "status": "Todo", "completed": true}`,
			expected: RoutineTask{
				ID:        "t3",
				Title:     "Run",
				Status:    StatusTodo,
				Completed: true,
				Priority:  PriorityMedium,
				Category:  DefaultCategory,
			},
		},
		{
			name:  "empty strings count as absent",
			input: `{"id": "t4", "title": "", "label": "Read", "status": "", "priority": "", "category": ""}`,
			expected: RoutineTask{
				ID:       "t4",
				Title:    "Read",
				Label:    "Read",
				Status:   StatusTodo,
				Priority: PriorityMedium,
				Category: DefaultCategory,
			},
		},
		{
			name:  "wrong types are treated as absent",
			input: `{"id": 7, "title": 3, "label": "Walk", "completed": "yes"}`,
			expected: RoutineTask{
				Title:    "Walk",
				Label:    "Walk",
				Status:   StatusTodo,
				Priority: PriorityMedium,
				Category: DefaultCategory,
			},
		},
		{
			name:  "not an object",
			input: `"garbage"`,
			expected: RoutineTask{
				Status:   StatusTodo,
				Priority: PriorityMedium,
				Category: DefaultCategory,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MigrateRoutineTask(json.RawMessage(tc.input))
			assert.DeepEqual(t, got, tc.expected, "migrated task mismatch")
		})
	}
}

func TestMigrateRoutineTask_Idempotent(t *testing.T) {
	inputs := []string{
		`{"id": "m1", "label": "Wake up", "completed": true}`,
		`{"id": "m2"}`,
		`{}`,
		`{"id": "t1", "title": "Study", "status": "InProgress", "priority": "High", "category": "Learning"}`,
		`{"id": "t2", "label": "", "completed": false, "category": "Health"}`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once := MigrateRoutineTask(json.RawMessage(input))

			b, err := json.Marshal(once)
			assert.NoError(t, err, "marshalling migrated task")
			twice := MigrateRoutineTask(b)

			assert.DeepEqual(t, twice, once, "migration is not idempotent")
		})
	}
}

func TestMergeWithDefaults_Totality(t *testing.T) {
	inputs := []string{
		``,
		`{}`,
		`null`,
		`[]`,
		`"corrupt`,
		`{"certifications": null, "investors": "nope", "journal": 42}`,
		`{"syncSettings": "broken", "userRole": "Superuser", "lastSaved": "yesterday"}`,
	}

	defaults := DefaultState()

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got := MergeWithDefaults(json.RawMessage(input))

			assert.DeepEqual(t, got, defaults, "state mismatch")
			assert.NotEqual(t, got.Investors == nil, true, "investors is nil")
			assert.NotEqual(t, got.InvestorUpdates == nil, true, "investorUpdates is nil")
			assert.NotEqual(t, got.Journal == nil, true, "journal is nil")
			assert.NotEqual(t, got.WeeklyRecaps == nil, true, "weeklyRecaps is nil")
			assert.NotEqual(t, got.FieldLogs == nil, true, "fieldLogs is nil")
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	t.Run("present lists replace the defaults", func(t *testing.T) {
		got := MergeWithDefaults(json.RawMessage(`{
			"certifications": [],
			"expenses": [{"id": "e1", "name": "Van", "category": "Transport", "amount": 420.5}]
		}`))

		assert.DeepEqual(t, got.Certifications, []Certification{}, "certifications mismatch")
		assert.DeepEqual(t, got.Expenses, []Expense{{ID: "e1", Name: "Van", Category: "Transport", Amount: 420.5}}, "expenses mismatch")
		assert.DeepEqual(t, got.RoutineTasks, DefaultState().RoutineTasks, "routine tasks mismatch")
	})

	t.Run("items that are not objects are dropped", func(t *testing.T) {
		got := MergeWithDefaults(json.RawMessage(`{
			"investors": [{"id": "i1", "name": "Ada", "stage": "Lead", "commitment": 1000}, null, 3],
			"routineTasks": [{"id": "m1", "label": "Wake up", "completed": true}, "junk", null]
		}`))

		assert.DeepEqual(t, got.Investors, []Investor{{ID: "i1", Name: "Ada", Stage: "Lead", Commitment: 1000}}, "investors mismatch")
		assert.DeepEqual(t, got.RoutineTasks, []RoutineTask{{
			ID:        "m1",
			Title:     "Wake up",
			Label:     "Wake up",
			Status:    StatusDone,
			Completed: true,
			Priority:  PriorityMedium,
			Category:  DefaultCategory,
		}}, "routine tasks mismatch")
	})

	t.Run("malformed fields of an item take their default", func(t *testing.T) {
		got := MergeWithDefaults(json.RawMessage(`{
			"certifications": [{"id": "c1", "name": "PV Associate", "progress": "50%", "cost": 150}],
			"investors": [{"id": "i2", "name": "Bea", "commitment": "lots", "email": 7}],
			"investorUpdates": [{"id": "u1", "subject": "Q1", "investorIds": "i2"}],
			"fieldLogs": [{"id": "f1", "location": "Fresno", "hours": "all day", "latitude": 36.7}]
		}`))

		assert.DeepEqual(t, got.Certifications, []Certification{{ID: "c1", Name: "PV Associate", Cost: 150}}, "certifications mismatch")
		assert.DeepEqual(t, got.Investors, []Investor{{ID: "i2", Name: "Bea"}}, "investors mismatch")
		assert.DeepEqual(t, got.InvestorUpdates, []InvestorUpdate{{ID: "u1", Subject: "Q1"}}, "investor updates mismatch")
		assert.DeepEqual(t, got.FieldLogs, []FieldLog{{ID: "f1", Location: "Fresno", Latitude: 36.7}}, "field logs mismatch")
	})

	t.Run("remote deliveries keep records with malformed fields", func(t *testing.T) {
		p := DecodeList(FieldCertifications, []json.RawMessage{
			json.RawMessage(`{"id": "c1", "progress": "50%"}`),
			json.RawMessage(`"junk"`),
		})

		assert.DeepEqual(t, p.Certifications, []Certification{{ID: "c1"}}, "certifications mismatch")
	})

	t.Run("sync settings merge key-wise", func(t *testing.T) {
		got := MergeWithDefaults(json.RawMessage(`{
			"syncSettings": {"externalAppUrl": "https://crm.example.com", "isConnected": "maybe"}
		}`))

		assert.DeepEqual(t, got.SyncSettings, SyncSettings{ExternalAppURL: "https://crm.example.com"}, "sync settings mismatch")
	})

	t.Run("scalars", func(t *testing.T) {
		got := MergeWithDefaults(json.RawMessage(`{"userRole": "Investor", "lastSaved": "2024-03-01T10:00:00Z"}`))

		assert.Equal(t, got.UserRole, RoleInvestor, "role mismatch")
		assert.Equal(t, got.LastSaved.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)), true, "lastSaved mismatch")
	})
}

func TestNormalize(t *testing.T) {
	s := Normalize(ApplicationState{
		RoutineTasks: []RoutineTask{{ID: "m1", Label: "Wake up", Completed: true}},
	})

	assert.Equal(t, s.UserRole, RoleAdmin, "role mismatch")
	assert.Equal(t, s.RoutineTasks[0].Title, "Wake up", "title mismatch")
	assert.Equal(t, s.RoutineTasks[0].Status, StatusDone, "status mismatch")
	assert.DeepEqual(t, s.Investors, []Investor{}, "investors mismatch")
	assert.DeepEqual(t, s.Expenses, []Expense{}, "expenses mismatch")
}
