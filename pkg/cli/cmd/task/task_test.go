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

package task

import (
	"testing"

	"github.com/solarcareer/solarcareer/pkg/assert"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
)

func TestParsePriority(t *testing.T) {
	testCases := []struct {
		input    string
		expected schema.Priority
		err      bool
	}{
		{input: "high", expected: schema.PriorityHigh},
		{input: "Medium", expected: schema.PriorityMedium},
		{input: "LOW", expected: schema.PriorityLow},
		{input: "urgent", err: true},
		{input: "", err: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := parsePriority(tc.input)
			assert.Equal(t, err != nil, tc.err, "error mismatch")
			assert.Equal(t, got, tc.expected, "priority mismatch")
		})
	}
}

func TestParseStatus(t *testing.T) {
	got, err := parseStatus("inprogress")
	assert.NoError(t, err, "parsing")
	assert.Equal(t, got, schema.StatusInProgress, "status mismatch")

	_, err = parseStatus("finished")
	assert.NotEqual(t, err, nil, "expected an error")
}

func TestAddTask(t *testing.T) {
	tasks := []schema.RoutineTask{{ID: "a", Title: "Check weather"}}
	got := addTask(tasks, schema.RoutineTask{ID: "b", Title: "Load van"})

	assert.Equal(t, len(got), 2, "length mismatch")
	assert.Equal(t, got[1].ID, "b", "appended id mismatch")
	assert.Equal(t, len(tasks), 1, "input mutated")
}

func TestSetStatus(t *testing.T) {
	tasks := []schema.RoutineTask{
		{ID: "abc123", Title: "Check weather", Status: schema.StatusTodo},
		{ID: "abd456", Title: "Load van", Status: schema.StatusTodo},
	}

	t.Run("exact id", func(t *testing.T) {
		got, task, err := setStatus(tasks, "abd456", schema.StatusDone)
		assert.NoError(t, err, "setting status")
		assert.Equal(t, task.Title, "Load van", "task mismatch")
		assert.Equal(t, got[1].Status, schema.StatusDone, "status mismatch")
		assert.Equal(t, got[1].Completed, true, "completed mismatch")
		assert.Equal(t, tasks[1].Status, schema.StatusTodo, "input mutated")
	})

	t.Run("prefix", func(t *testing.T) {
		got, _, err := setStatus(tasks, "abc", schema.StatusInProgress)
		assert.NoError(t, err, "setting status")
		assert.Equal(t, got[0].Status, schema.StatusInProgress, "status mismatch")
		assert.Equal(t, got[0].Completed, false, "completed mismatch")
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		_, _, err := setStatus(tasks, "ab", schema.StatusDone)
		assert.NotEqual(t, err, nil, "expected an error")
	})

	t.Run("not found", func(t *testing.T) {
		_, _, err := setStatus(tasks, "zzz", schema.StatusDone)
		assert.Equal(t, err, ErrTaskNotFound, "error mismatch")
	})
}
