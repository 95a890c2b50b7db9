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

package appstate

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/assert"
	"github.com/solarcareer/solarcareer/pkg/cli/consts"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/cli/remote"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/cli/snapshot"
	"github.com/solarcareer/solarcareer/pkg/clock"
	"github.com/solarcareer/solarcareer/pkg/document"
	"github.com/solarcareer/solarcareer/pkg/prompt"
)

type testEnv struct {
	db        *database.DB
	store     *Store
	snapshots *snapshot.Store
	remote    *remote.MemoryStore
	clock     *clock.Mock
}

func setupEnv(t *testing.T, confirm prompt.Confirmer) testEnv {
	c := clock.NewMock()
	db := database.InitTestMemoryDB(t)
	snaps := snapshot.New(db, c)
	m := remote.NewMemoryStore()

	s, err := New(Config{
		Snapshots: snaps,
		Remote:    m,
		Clock:     c,
		Confirm:   confirm,
	})
	assert.NoError(t, err, "creating the store")

	return testEnv{db: db, store: s, snapshots: snaps, remote: m, clock: c}
}

// waitFor polls the instance until cond holds
func waitFor(t *testing.T, i *Instance, msg string, cond func(schema.ApplicationState, map[schema.Field]FieldStatus) bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond(i.State(), i.SyncStatus()) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("timed out waiting: %s", msg)
}

func allSynced(_ schema.ApplicationState, status map[schema.Field]FieldStatus) bool {
	for _, st := range status {
		if st.State != SyncSynced {
			return false
		}
	}

	return true
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.Equal(t, err, ErrNoSnapshots, "error mismatch")
}

func TestInit_Local(t *testing.T) {
	env := setupEnv(t, nil)

	i, err := env.store.Init(context.Background(), nil)
	assert.NoError(t, err, "initializing")
	defer i.Teardown()

	assert.Equal(t, i.Remote(), false, "mode mismatch")
	assert.DeepEqual(t, i.State(), schema.DefaultState(), "state mismatch")

	for f, st := range i.SyncStatus() {
		assert.Equal(t, st.State, SyncSynced, string(f))
	}
}

func TestInit_LocalMigratesSnapshot(t *testing.T) {
	env := setupEnv(t, nil)

	raw := `{
		"routineTasks": [{"id": "m1", "label": "Wake up", "completed": true}],
		"investors": [{"id": "i1", "name": "Ada", "stage": "Lead", "commitment": 2500}],
		"syncSettings": {"externalAppUrl": "https://crm.example.com"}
	}`
	database.MustExec(t, "inserting a legacy snapshot", env.db, "INSERT INTO snapshots (key, data, saved_at) VALUES (?, ?, ?)", consts.SnapshotKey, raw, 1)

	i, err := env.store.Init(context.Background(), nil)
	assert.NoError(t, err, "initializing")
	defer i.Teardown()

	s := i.State()
	assert.DeepEqual(t, s.RoutineTasks, []schema.RoutineTask{{
		ID:        "m1",
		Title:     "Wake up",
		Label:     "Wake up",
		Status:    schema.StatusDone,
		Completed: true,
		Priority:  schema.PriorityMedium,
		Category:  schema.DefaultCategory,
	}}, "routine tasks mismatch")
	assert.Equal(t, s.Investors[0].Commitment, 2500.0, "investor mismatch")
	assert.Equal(t, s.SyncSettings.ExternalAppURL, "https://crm.example.com", "settings mismatch")
	assert.DeepEqual(t, s.Certifications, schema.DefaultCertifications(), "certifications mismatch")
}

func TestInit_CustomDefaults(t *testing.T) {
	c := clock.NewMock()
	snaps := snapshot.New(database.InitTestMemoryDB(t), c)
	assert.NoError(t, snaps.Save(schema.ApplicationState{Journal: []schema.JournalEntry{{ID: "j1"}}}), "saving")

	s, err := New(Config{
		Snapshots: snaps,
		Clock:     c,
		Defaults: func() schema.ApplicationState {
			ret := schema.DefaultState()
			ret.Expenses = []schema.Expense{{ID: "rent", Name: "Rent", Amount: 900}}
			return ret
		},
	})
	assert.NoError(t, err, "creating the store")

	i, err := s.Init(context.Background(), nil)
	assert.NoError(t, err, "initializing")
	defer i.Teardown()

	// null lists in the snapshot fall back to the configured defaults
	assert.DeepEqual(t, i.State().Expenses, []schema.Expense{{ID: "rent", Name: "Rent", Amount: 900}}, "expenses mismatch")
	assert.Equal(t, i.State().Journal[0].ID, "j1", "journal mismatch")
}

func TestInit_RemoteWithoutStore(t *testing.T) {
	s, err := New(Config{Snapshots: snapshot.New(database.InitTestMemoryDB(t), clock.NewMock())})
	assert.NoError(t, err, "creating the store")

	_, err = s.Init(context.Background(), &Identity{UserID: "u1"})
	assert.Equal(t, err, ErrNoRemote, "error mismatch")
}

func TestUpdateData_Local(t *testing.T) {
	env := setupEnv(t, nil)
	ctx := context.Background()

	i, err := env.store.Init(ctx, nil)
	assert.NoError(t, err, "initializing")
	defer i.Teardown()

	var notified []schema.ApplicationState
	cancel := i.Subscribe(func(s schema.ApplicationState) {
		notified = append(notified, s)
	})
	defer cancel()

	before := i.State()
	env.clock.Advance(time.Hour)

	expenses := []schema.Expense{{ID: "e1", Name: "Van lease", Category: "Operations", Amount: 420}}
	assert.NoError(t, i.UpdateData(ctx, schema.Partial{Expenses: expenses}), "updating")

	after := i.State()
	assert.DeepEqual(t, after.Expenses, expenses, "expenses mismatch")
	assert.Equal(t, after.LastSaved.Equal(env.clock.Now()), true, "lastSaved mismatch")

	// every other field is unchanged
	after.Expenses = before.Expenses
	after.LastSaved = before.LastSaved
	assert.DeepEqual(t, after, before, "other fields changed")

	assert.Equal(t, len(notified), 1, "notification count mismatch")
	assert.DeepEqual(t, notified[0].Expenses, expenses, "notified state mismatch")

	raw, ok := env.snapshots.Load()
	assert.Equal(t, ok, true, "snapshot should be saved")
	assert.DeepEqual(t, schema.MergeWithDefaults(raw).Expenses, expenses, "saved expenses mismatch")

	assert.NoError(t, i.UpdateData(ctx, schema.Partial{}), "empty update")
	assert.Equal(t, len(notified), 1, "an empty update should not notify")
}

type failingSnapshots struct {
	*snapshot.Store
	err error
}

func (f failingSnapshots) Save(schema.ApplicationState) error {
	return f.err
}

func TestUpdateData_LocalSaveError(t *testing.T) {
	c := clock.NewMock()
	boom := errors.New("disk full")
	s, err := New(Config{
		Snapshots: failingSnapshots{Store: snapshot.New(database.InitTestMemoryDB(t), c), err: boom},
		Clock:     c,
	})
	assert.NoError(t, err, "creating the store")

	i, err := s.Init(context.Background(), nil)
	assert.NoError(t, err, "initializing")
	defer i.Teardown()

	err = i.UpdateData(context.Background(), schema.Partial{Journal: []schema.JournalEntry{{ID: "j1"}}})
	assert.Equal(t, errors.Cause(err), boom, "error mismatch")

	assert.Equal(t, len(i.State().Journal), 1, "the in-memory state should still change")
	assert.Equal(t, i.SyncStatus()[schema.FieldJournal].State, SyncError, "status mismatch")
}

func TestUpdateData_RemoteWaitsForEcho(t *testing.T) {
	env := setupEnv(t, nil)
	ctx := context.Background()

	i, err := env.store.Init(ctx, &Identity{UserID: "u1"})
	assert.NoError(t, err, "initializing")
	defer i.Teardown()

	assert.Equal(t, i.Remote(), true, "mode mismatch")
	waitFor(t, i, "initial deliveries", allSynced)

	// a fresh remote user has empty collections
	assert.DeepEqual(t, i.State().Journal, []schema.JournalEntry{}, "journal mismatch")

	env.remote.Hold()

	entry := schema.JournalEntry{ID: "j1", Date: "2024-03-04", Content: "Passed the OSHA quiz"}
	assert.NoError(t, i.UpdateData(ctx, schema.Partial{Journal: []schema.JournalEntry{entry}}), "updating")

	assert.Equal(t, len(i.State().Journal), 0, "update should not be visible before the echo")
	assert.Equal(t, i.SyncStatus()[schema.FieldJournal].State, SyncPending, "status mismatch")

	_, ok := env.remote.Get(document.DocPath("u1", "journal", "j1"))
	assert.Equal(t, ok, true, "document should be written")

	env.remote.Release()
	waitFor(t, i, "journal echo", func(s schema.ApplicationState, st map[schema.Field]FieldStatus) bool {
		return len(s.Journal) == 1 && st[schema.FieldJournal].State == SyncSynced
	})
	assert.DeepEqual(t, i.State().Journal, []schema.JournalEntry{entry}, "journal mismatch")
	assert.Equal(t, i.Diverged(), false, "state should not diverge after the echo")
}

func TestUpdateData_RemoteScalars(t *testing.T) {
	env := setupEnv(t, nil)
	ctx := context.Background()

	i, err := env.store.Init(ctx, &Identity{UserID: "u1"})
	assert.NoError(t, err, "initializing")
	defer i.Teardown()
	waitFor(t, i, "initial deliveries", allSynced)

	role := schema.RoleInvestor
	assert.NoError(t, i.UpdateData(ctx, schema.Partial{UserRole: &role}), "updating role")

	waitFor(t, i, "role echo", func(s schema.ApplicationState, _ map[schema.Field]FieldStatus) bool {
		return s.UserRole == schema.RoleInvestor
	})
}

func TestUpdateData_RemoteClearsFields(t *testing.T) {
	env := setupEnv(t, nil)
	ctx := context.Background()

	i, err := env.store.Init(ctx, &Identity{UserID: "u1"})
	assert.NoError(t, err, "initializing")
	defer i.Teardown()
	waitFor(t, i, "initial deliveries", allSynced)

	inv := schema.Investor{ID: "i1", Name: "Ada", Email: "ada@example.com", Stage: "Lead", Notes: "call monday"}
	assert.NoError(t, i.UpdateData(ctx, schema.Partial{Investors: []schema.Investor{inv}}), "writing the investor")
	waitFor(t, i, "investor echo", func(s schema.ApplicationState, st map[schema.Field]FieldStatus) bool {
		return len(s.Investors) == 1 && st[schema.FieldInvestors].State == SyncSynced
	})

	// Execute
	inv.Email = ""
	inv.Notes = ""
	assert.NoError(t, i.UpdateData(ctx, schema.Partial{Investors: []schema.Investor{inv}}), "clearing the fields")
	waitFor(t, i, "cleared echo", func(_ schema.ApplicationState, st map[schema.Field]FieldStatus) bool {
		return st[schema.FieldInvestors].State == SyncSynced
	})

	// Test
	assert.DeepEqual(t, i.State().Investors, []schema.Investor{inv}, "published investors mismatch")

	raw, ok := env.remote.Get(document.DocPath("u1", "investors", "i1"))
	assert.Equal(t, ok, true, "document should exist")
	var stored schema.Investor
	assert.NoError(t, json.Unmarshal(raw, &stored), "decoding the document")
	assert.Equal(t, stored.Email, "", "stored email mismatch")
	assert.Equal(t, stored.Notes, "", "stored notes mismatch")
}

func TestUpdateData_RemoteFailure(t *testing.T) {
	env := setupEnv(t, nil)
	ctx := context.Background()

	i, err := env.store.Init(ctx, &Identity{UserID: "u1"})
	assert.NoError(t, err, "initializing")
	defer i.Teardown()
	waitFor(t, i, "initial deliveries", allSynced)

	boom := errors.New("permission denied")
	env.remote.FailWrites(boom)
	env.clock.Advance(time.Minute)

	tasks := []schema.RoutineTask{{ID: "t1", Title: "Climb a roof", Status: schema.StatusTodo, Priority: schema.PriorityHigh, Category: "Field"}}
	err = i.UpdateData(ctx, schema.Partial{RoutineTasks: tasks})
	assert.Equal(t, errors.Cause(err), boom, "error mismatch")

	st := i.SyncStatus()[schema.FieldRoutineTasks]
	assert.Equal(t, st.State, SyncError, "status mismatch")
	assert.Equal(t, errors.Cause(st.Err), boom, "status error mismatch")
	assert.Equal(t, i.Diverged(), true, "a failed write should be detectable")
	assert.Equal(t, len(i.State().RoutineTasks), 0, "published state should not change")

	// the local snapshot records the intended state
	raw, ok := env.snapshots.Load()
	assert.Equal(t, ok, true, "snapshot should exist")
	assert.DeepEqual(t, schema.MergeWithDefaults(raw).RoutineTasks, tasks, "snapshot tasks mismatch")

	// a later successful write clears the error
	env.remote.FailWrites(nil)
	assert.NoError(t, i.UpdateData(ctx, schema.Partial{RoutineTasks: tasks}), "retrying")
	waitFor(t, i, "tasks echo", func(s schema.ApplicationState, st map[schema.Field]FieldStatus) bool {
		return len(s.RoutineTasks) == 1 && st[schema.FieldRoutineTasks].State == SyncSynced
	})
}

func TestResetAll_Declined(t *testing.T) {
	env := setupEnv(t, prompt.Static(false))
	ctx := context.Background()

	i, err := env.store.Init(ctx, nil)
	assert.NoError(t, err, "initializing")
	defer i.Teardown()

	assert.NoError(t, i.UpdateData(ctx, schema.Partial{Investors: []schema.Investor{{ID: "i1", Name: "Ada"}}}), "updating")
	before := i.State()

	ok, err := i.ResetAll(ctx)
	assert.NoError(t, err, "resetting")
	assert.Equal(t, ok, false, "reset should be declined")
	assert.DeepEqual(t, i.State(), before, "state should not change")

	_, ok = env.snapshots.Load()
	assert.Equal(t, ok, true, "snapshot should be kept")
}

func TestResetAll_NoConfirmer(t *testing.T) {
	env := setupEnv(t, nil)

	i, err := env.store.Init(context.Background(), nil)
	assert.NoError(t, err, "initializing")
	defer i.Teardown()

	_, err = i.ResetAll(context.Background())
	assert.Equal(t, err, ErrNoConfirmer, "error mismatch")
}

func TestResetAll_Local(t *testing.T) {
	env := setupEnv(t, prompt.Static(true))
	ctx := context.Background()

	i, err := env.store.Init(ctx, nil)
	assert.NoError(t, err, "initializing")
	defer i.Teardown()

	assert.NoError(t, i.UpdateData(ctx, schema.Partial{
		Investors:    []schema.Investor{{ID: "i1", Name: "Ada"}},
		RoutineTasks: []schema.RoutineTask{},
	}), "updating")

	ok, err := i.ResetAll(ctx)
	assert.NoError(t, err, "resetting")
	assert.Equal(t, ok, true, "reset should be confirmed")

	s := i.State()
	s.LastSaved = time.Time{}
	assert.DeepEqual(t, s, schema.DefaultState(), "state should be the defaults")

	raw, ok := env.snapshots.Load()
	assert.Equal(t, ok, true, "defaults should be saved")
	assert.DeepEqual(t, schema.MergeWithDefaults(raw).Investors, []schema.Investor{}, "saved investors mismatch")
}

func TestResetAll_RemoteReseedsCertificationsOnly(t *testing.T) {
	env := setupEnv(t, prompt.Static(true))
	ctx := context.Background()

	i, err := env.store.Init(ctx, &Identity{UserID: "u1"})
	assert.NoError(t, err, "initializing")
	defer i.Teardown()
	waitFor(t, i, "initial deliveries", allSynced)

	assert.NoError(t, i.UpdateData(ctx, schema.Partial{
		Journal:        []schema.JournalEntry{{ID: "j1", Content: "kept"}},
		Certifications: []schema.Certification{{ID: "cert-osha-10", Name: "OSHA 10-Hour Construction", Progress: 90}},
	}), "updating")
	waitFor(t, i, "update echo", func(s schema.ApplicationState, _ map[schema.Field]FieldStatus) bool {
		return len(s.Journal) == 1 && len(s.Certifications) == 1
	})

	ok, err := i.ResetAll(ctx)
	assert.NoError(t, err, "resetting")
	assert.Equal(t, ok, true, "reset should be confirmed")

	waitFor(t, i, "reseed echo", func(s schema.ApplicationState, _ map[schema.Field]FieldStatus) bool {
		return len(s.Certifications) == len(schema.DefaultCertifications())
	})

	s := i.State()
	assert.DeepEqual(t, s.Certifications, schema.DefaultCertifications(), "certifications mismatch")
	assert.Equal(t, len(s.Journal), 1, "other collections are not reset")

	_, ok = env.snapshots.Load()
	assert.Equal(t, ok, false, "local snapshot should be cleared")
}

func TestTeardown(t *testing.T) {
	env := setupEnv(t, prompt.Static(true))
	ctx := context.Background()

	i, err := env.store.Init(ctx, &Identity{UserID: "u1"})
	assert.NoError(t, err, "initializing")
	waitFor(t, i, "initial deliveries", allSynced)

	calls := 0
	i.Subscribe(func(schema.ApplicationState) { calls++ })

	i.Teardown()
	i.Teardown()

	assert.Equal(t, i.UpdateData(ctx, schema.Partial{Journal: []schema.JournalEntry{}}), ErrClosed, "update error mismatch")
	_, err = i.ResetAll(ctx)
	assert.Equal(t, err, ErrClosed, "reset error mismatch")

	assert.NoError(t, env.remote.Set(ctx, document.DocPath("u1", "journal", "j1"), json.RawMessage(`{"id": "j1"}`), false), "writing")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, 0, "no notification after teardown")
}

func TestSettle(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		env := setupEnv(t, nil)

		i, err := env.store.Init(context.Background(), nil)
		assert.NoError(t, err, "initializing")
		defer i.Teardown()

		assert.NoError(t, i.Settle(context.Background()), "settling")
	})

	t.Run("remote", func(t *testing.T) {
		env := setupEnv(t, nil)

		i, err := env.store.Init(context.Background(), &Identity{UserID: "u1"})
		assert.NoError(t, err, "initializing")
		defer i.Teardown()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		assert.NoError(t, i.Settle(ctx), "settling")
		assert.Equal(t, allSynced(i.State(), i.SyncStatus()), true, "every field should be synced")
	})

	t.Run("echo held", func(t *testing.T) {
		env := setupEnv(t, nil)

		i, err := env.store.Init(context.Background(), &Identity{UserID: "u1"})
		assert.NoError(t, err, "initializing")
		defer i.Teardown()
		waitFor(t, i, "initial deliveries", allSynced)

		env.remote.Hold()
		defer env.remote.Release()

		err = i.UpdateData(context.Background(), schema.Partial{Expenses: []schema.Expense{{ID: "e1", Name: "Van", Amount: 300}}})
		assert.NoError(t, err, "updating")

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		assert.Equal(t, i.Settle(ctx), context.DeadlineExceeded, "error mismatch")
	})
}
