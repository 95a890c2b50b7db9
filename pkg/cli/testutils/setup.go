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

package testutils

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/cli/snapshot"
	"github.com/solarcareer/solarcareer/pkg/clock"
)

// SetupState saves the state as the local snapshot
func SetupState(t *testing.T, db *database.DB, s schema.ApplicationState) {
	t.Helper()

	if err := snapshot.New(db, clock.NewMock()).Save(s); err != nil {
		t.Fatal(errors.Wrap(err, "saving the snapshot"))
	}
}

// Setup1 sets up a state with an investor, an expense and one task done
func Setup1(t *testing.T, db *database.DB) schema.ApplicationState {
	s := schema.DefaultState()
	s.Investors = []schema.Investor{
		{ID: "i1", Name: "Ada", Email: "ada@example.com", Stage: "Committed", Commitment: 25000},
	}
	s.Expenses = []schema.Expense{
		{ID: "e1", Name: "Van lease", Category: "Vehicle", Amount: 420},
	}
	s.RoutineTasks = []schema.RoutineTask{
		{ID: "t1", Title: "Check weather", Status: schema.StatusDone, Priority: schema.PriorityHigh, Category: "Safety"},
		{ID: "t2", Title: "Load van", Status: schema.StatusTodo, Priority: schema.PriorityMedium, Category: schema.DefaultCategory},
	}
	s.Journal = []schema.JournalEntry{
		{ID: "j1", Date: "2024-03-01", Content: "Shadowed a rooftop install"},
	}

	SetupState(t, db, s)

	return s
}

// LoadState reads the local snapshot the way the state store does
func LoadState(t *testing.T, db *database.DB) schema.ApplicationState {
	t.Helper()

	raw, ok := snapshot.New(db, clock.NewMock()).Load()
	if !ok {
		t.Fatal("no snapshot found")
	}

	return schema.MergeWithDefaults(raw)
}
