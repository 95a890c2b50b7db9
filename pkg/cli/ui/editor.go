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

// Package ui provides the user interface for the program
package ui

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/consts"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/utils"
)

// ErrEmptyInput is returned when the editor is closed without content
var ErrEmptyInput = errors.New("empty content")

// GetTmpContentPath returns the path to an unused temporary file for
// the content being written
func GetTmpContentPath(ctx context.SolarCtx) (string, error) {
	for i := 0; ; i++ {
		filename := fmt.Sprintf("%s_%d.%s", consts.TmpContentFileBase, i, consts.TmpContentFileExt)
		candidate := filepath.Join(ctx.Paths.CacheDir(), filename)

		ok, err := utils.FileExists(candidate)
		if err != nil {
			return "", errors.Wrapf(err, "checking if file exists at %s", candidate)
		}
		if !ok {
			return candidate, nil
		}
	}
}

func newEditorCmd(editor, fpath string) *exec.Cmd {
	args := strings.Fields(editor)
	if len(args) == 0 {
		args = []string{"vi"}
	}
	args = append(args, fpath)

	return exec.Command(args[0], args[1:]...)
}

// GetEditorInput writes the initial content to a temporary file, launches
// the editor on it and returns the trimmed content once the editor exits
func GetEditorInput(ctx context.SolarCtx, initial string) (string, error) {
	if err := utils.EnsureDir(ctx.Paths.CacheDir()); err != nil {
		return "", errors.Wrap(err, "creating the cache dir")
	}

	fpath, err := GetTmpContentPath(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting the temporary content path")
	}
	if err := os.WriteFile(fpath, []byte(initial), 0600); err != nil {
		return "", errors.Wrap(err, "creating the temporary content file")
	}
	defer os.Remove(fpath)

	cmd := newEditorCmd(ctx.Editor, fpath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(err, "running the editor")
	}

	b, err := os.ReadFile(fpath)
	if err != nil {
		return "", errors.Wrap(err, "reading the temporary content file")
	}

	content := strings.TrimSpace(string(b))
	if content == "" {
		return "", ErrEmptyInput
	}

	return content, nil
}

// GetContent returns the given content if it is not empty, the piped
// stdin if any, and the editor input otherwise
func GetContent(ctx context.SolarCtx, content string) (string, error) {
	if c := strings.TrimSpace(content); c != "" {
		return c, nil
	}

	if IsPiped() {
		c, err := ReadStdInput()
		if err != nil {
			return "", errors.Wrap(err, "getting piped input")
		}
		if c = strings.TrimSpace(c); c == "" {
			return "", ErrEmptyInput
		}

		return c, nil
	}

	c, err := GetEditorInput(ctx, "")
	if err != nil {
		return "", errors.Wrap(err, "getting editor input")
	}

	return c, nil
}
