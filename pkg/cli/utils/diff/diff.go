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

// Package diff provides line-by-line diff feature by wrapping
// a package github.com/sergi/go-diff/diffmatchpatch
package diff

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
)

const (
	// DiffEqual represents an equal diff
	DiffEqual = diffmatchpatch.DiffEqual
	// DiffInsert represents an insert diff
	DiffInsert = diffmatchpatch.DiffInsert
	// DiffDelete represents a delete diff
	DiffDelete = diffmatchpatch.DiffDelete
)

// Do computes line-by-line diff between two strings
func Do(s1, s2 string) (diffs []diffmatchpatch.Diff) {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = time.Hour

	s1Chars, s2Chars, arr := dmp.DiffLinesToRunes(s1, s2)
	diffs = dmp.DiffMainRunes(s1Chars, s2Chars, false)
	diffs = dmp.DiffCharsToLines(diffs, arr)

	return diffs
}

func render(s schema.ApplicationState) (string, error) {
	s = schema.Normalize(s)
	s.LastSaved = time.Time{}

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshalling the state")
	}

	return string(b) + "\n", nil
}

// States computes the line diff from one state to another. The save
// timestamps are not compared.
func States(from, to schema.ApplicationState) ([]diffmatchpatch.Diff, error) {
	a, err := render(from)
	if err != nil {
		return nil, errors.Wrap(err, "rendering the old state")
	}
	b, err := render(to)
	if err != nil {
		return nil, errors.Wrap(err, "rendering the new state")
	}

	return Do(a, b), nil
}

// Changed reports whether the diffs contain any change
func Changed(diffs []diffmatchpatch.Diff) bool {
	for _, d := range diffs {
		if d.Type != DiffEqual {
			return true
		}
	}

	return false
}

// Line is a line of a diff
type Line struct {
	Type diffmatchpatch.Operation
	Text string
}

// Lines splits the diffs into lines. Unchanged lines further than context
// lines from a change are dropped.
func Lines(diffs []diffmatchpatch.Diff, context int) []Line {
	all := []Line{}
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		for _, l := range strings.Split(text, "\n") {
			all = append(all, Line{Type: d.Type, Text: l})
		}
	}

	keep := make([]bool, len(all))
	for i, l := range all {
		if l.Type == DiffEqual {
			continue
		}

		for j := i - context; j <= i+context; j++ {
			if j >= 0 && j < len(all) {
				keep[j] = true
			}
		}
	}

	ret := []Line{}
	for i, l := range all {
		if keep[i] {
			ret = append(ret, l)
		}
	}

	return ret
}
