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

package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/solarcareer/solarcareer/pkg/assert"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
)

func TestGetTmpContentPath(t *testing.T) {
	testCases := []struct {
		existing int
		expected string
	}{
		{existing: 0, expected: "SOLARCAREER_TMPCONTENT_0.md"},
		{existing: 1, expected: "SOLARCAREER_TMPCONTENT_1.md"},
		{existing: 2, expected: "SOLARCAREER_TMPCONTENT_2.md"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			ctx := context.InitTestCtx(t)
			for i := 0; i < tc.existing; i++ {
				p := filepath.Join(ctx.Paths.CacheDir(), fmt.Sprintf("SOLARCAREER_TMPCONTENT_%d.md", i))
				assert.NoError(t, os.MkdirAll(filepath.Dir(p), 0755), "creating the cache dir")
				assert.NoError(t, os.WriteFile(p, nil, 0600), "preparing the conflicting file")
			}

			res, err := GetTmpContentPath(ctx)
			assert.NoError(t, err, "executing")
			assert.Equal(t, res, filepath.Join(ctx.Paths.CacheDir(), tc.expected), "filename did not match")
		})
	}
}

func TestGetEditorInput(t *testing.T) {
	t.Run("unchanged", func(t *testing.T) {
		ctx := context.InitTestCtx(t)
		ctx.Editor = "true"

		res, err := GetEditorInput(ctx, "  installed 12 panels\n")
		assert.NoError(t, err, "executing")
		assert.Equal(t, res, "installed 12 panels", "content mismatch")

		entries, err := os.ReadDir(ctx.Paths.CacheDir())
		assert.NoError(t, err, "reading the cache dir")
		assert.Equal(t, len(entries), 0, "temporary file should be removed")
	})

	t.Run("edited", func(t *testing.T) {
		ctx := context.InitTestCtx(t)
		ctx.Editor = "sed -i s/draft/final/"

		res, err := GetEditorInput(ctx, "draft entry")
		assert.NoError(t, err, "executing")
		assert.Equal(t, res, "final entry", "content mismatch")
	})

	t.Run("empty", func(t *testing.T) {
		ctx := context.InitTestCtx(t)
		ctx.Editor = "true"

		_, err := GetEditorInput(ctx, "")
		assert.Equal(t, err, ErrEmptyInput, "error mismatch")
	})

	t.Run("editor failure", func(t *testing.T) {
		ctx := context.InitTestCtx(t)
		ctx.Editor = "false"

		_, err := GetEditorInput(ctx, "entry")
		assert.NotEqual(t, err, nil, "expected an error")
		assert.Equal(t, strings.Contains(err.Error(), "running the editor"), true, "error message mismatch")
	})
}

func TestReadLines(t *testing.T) {
	res, err := readLines(strings.NewReader("first\nsecond\n"))
	assert.NoError(t, err, "reading")
	assert.Equal(t, res, "first\nsecond", "content mismatch")
}
