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
	"time"
)

// recordKind classifies a routine task before it is migrated
type recordKind int

const (
	// kindCurrent is a record that carries every field of the current schema
	kindCurrent recordKind = iota
	// kindLegacy is a record written by an older version, or an incomplete
	// record, that needs backfilling
	kindLegacy
)

func classifyRoutineTask(t RoutineTask) recordKind {
	if t.Title != "" && t.Status != "" && t.Priority != "" && t.Category != "" {
		return kindCurrent
	}

	return kindLegacy
}

// migrateTask upgrades a typed routine task. Empty strings count as absent.
func migrateTask(t RoutineTask) RoutineTask {
	switch classifyRoutineTask(t) {
	case kindCurrent:
		return t
	case kindLegacy:
		if t.Title == "" {
			t.Title = t.Label
		}
		if t.Status == "" {
			if t.Completed {
				t.Status = StatusDone
			} else {
				t.Status = StatusTodo
			}
		}
		if t.Priority == "" {
			t.Priority = PriorityMedium
		}
		if t.Category == "" {
			t.Category = DefaultCategory
		}
	}

	return t
}

// MigrateRoutineTask upgrades a raw routine task record to the current
// schema. Fields of the wrong type are treated as absent. It never fails.
func MigrateRoutineTask(raw json.RawMessage) RoutineTask {
	obj, ok := decodeObject(raw)
	if !ok {
		return migrateTask(RoutineTask{})
	}

	t := RoutineTask{
		ID:        stringField(obj, "id"),
		Title:     stringField(obj, "title"),
		Label:     stringField(obj, "label"),
		Status:    TaskStatus(stringField(obj, "status")),
		Completed: boolField(obj, "completed"),
		Priority:  Priority(stringField(obj, "priority")),
		Category:  stringField(obj, "category"),
	}

	return migrateTask(t)
}

// MigrateRoutineTasks migrates every task of a typed list
func MigrateRoutineTasks(tasks []RoutineTask) []RoutineTask {
	ret := make([]RoutineTask, 0, len(tasks))
	for _, t := range tasks {
		ret = append(ret, migrateTask(t))
	}

	return ret
}

// MergeWithDefaults merges a raw, possibly partial or corrupt, state over
// the default template. Absent, null and malformed values are replaced by
// their defaults, down to the fields of list items. List items that are not
// objects are dropped.
func MergeWithDefaults(raw json.RawMessage) ApplicationState {
	ret := DefaultState()

	obj, ok := decodeObject(raw)
	if !ok {
		return ret
	}

	if v, ok := obj[string(FieldUserRole)]; ok {
		var role UserRole
		if err := json.Unmarshal(v, &role); err == nil && role.Valid() {
			ret.UserRole = role
		}
	}

	mergeList(obj, FieldCertifications, &ret.Certifications)
	mergeList(obj, FieldInvestors, &ret.Investors)
	mergeList(obj, FieldInvestorUpdates, &ret.InvestorUpdates)
	mergeList(obj, FieldJournal, &ret.Journal)
	mergeList(obj, FieldWeeklyRecaps, &ret.WeeklyRecaps)
	mergeList(obj, FieldFieldLogs, &ret.FieldLogs)
	mergeList(obj, FieldExpenses, &ret.Expenses)

	if items, ok := decodeList(obj, FieldRoutineTasks); ok {
		tasks := []RoutineTask{}
		for _, item := range items {
			if _, ok := decodeObject(item); !ok {
				continue
			}
			tasks = append(tasks, MigrateRoutineTask(item))
		}
		ret.RoutineTasks = tasks
	}

	if v, ok := obj[string(FieldSyncSettings)]; ok {
		ret.SyncSettings = mergeSyncSettings(ret.SyncSettings, v)
	}

	if v, ok := obj[string(FieldLastSaved)]; ok {
		var t time.Time
		if err := json.Unmarshal(v, &t); err == nil {
			ret.LastSaved = t
		}
	}

	return ret
}

// Normalize gives a typed state the same totality guarantee as
// MergeWithDefaults: no nil list and every routine task migrated.
func Normalize(s ApplicationState) ApplicationState {
	ret := s.Clone()

	if !ret.UserRole.Valid() {
		ret.UserRole = RoleAdmin
	}
	ret.RoutineTasks = MigrateRoutineTasks(ret.RoutineTasks)

	return ret
}

// mergeSyncSettings merges the keys of a raw settings object over base
func mergeSyncSettings(base SyncSettings, raw json.RawMessage) SyncSettings {
	obj, ok := decodeObject(raw)
	if !ok {
		return base
	}

	ret := base
	if _, ok := obj["externalAppUrl"]; ok {
		ret.ExternalAppURL = stringFieldOr(obj, "externalAppUrl", base.ExternalAppURL)
	}
	if _, ok := obj["isConnected"]; ok {
		ret.IsConnected = boolFieldOr(obj, "isConnected", base.IsConnected)
	}
	if _, ok := obj["lastSync"]; ok {
		ret.LastSync = stringFieldOr(obj, "lastSync", base.LastSync)
	}
	if _, ok := obj["remoteCredentials"]; ok {
		ret.RemoteCredentials = stringFieldOr(obj, "remoteCredentials", base.RemoteCredentials)
	}

	return ret
}

// mergeList replaces dst with the decoded list under the given key, if the
// key holds a list. Items that are not objects are dropped.
func mergeList[T any](obj map[string]json.RawMessage, f Field, dst *[]T) {
	items, ok := decodeList(obj, f)
	if !ok {
		return
	}

	ret := []T{}
	for _, item := range items {
		v, ok := decodeRecord[T](item)
		if !ok {
			continue
		}

		ret = append(ret, v)
	}

	*dst = ret
}

// decodeRecord decodes an object into a record key by key. A key whose
// value does not fit its field keeps the zero value of the field.
func decodeRecord[T any](item json.RawMessage) (T, bool) {
	var ret T

	obj, ok := decodeObject(item)
	if !ok {
		return ret, false
	}

	for k, v := range obj {
		single, err := json.Marshal(map[string]json.RawMessage{k: v})
		if err != nil {
			continue
		}

		var check T
		if err := json.Unmarshal(single, &check); err != nil {
			continue
		}
		json.Unmarshal(single, &ret)
	}

	return ret, true
}

func decodeList(obj map[string]json.RawMessage, f Field) ([]json.RawMessage, bool) {
	v, ok := obj[string(f)]
	if !ok {
		return nil, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil || items == nil {
		return nil, false
	}

	return items, true
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}

	return obj, true
}

func stringField(obj map[string]json.RawMessage, key string) string {
	return stringFieldOr(obj, key, "")
}

func stringFieldOr(obj map[string]json.RawMessage, key, fallback string) string {
	v, ok := obj[key]
	if !ok {
		return fallback
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return fallback
	}

	return s
}

func boolField(obj map[string]json.RawMessage, key string) bool {
	return boolFieldOr(obj, key, false)
}

func boolFieldOr(obj map[string]json.RawMessage, key string, fallback bool) bool {
	v, ok := obj[key]
	if !ok {
		return fallback
	}

	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return fallback
	}

	return b
}

// DecodeList decodes the raw items of a list field with the same rules as
// MergeWithDefaults and returns them as a partial carrying only that field
func DecodeList(f Field, items []json.RawMessage) Partial {
	if items == nil {
		items = []json.RawMessage{}
	}

	b, err := json.Marshal(map[string][]json.RawMessage{string(f): items})
	if err != nil {
		return Only(DefaultState(), f)
	}

	return Only(MergeWithDefaults(b), f)
}

// DecodeRoot decodes the root document holding the scalar fields. Absent or
// malformed keys take their default value.
func DecodeRoot(raw json.RawMessage) Partial {
	return Only(MergeWithDefaults(raw), ScalarFields...)
}
