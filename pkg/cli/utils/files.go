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

package utils

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// FileExists checks if the file exists at the given path
func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}

	return false, errors.Wrap(err, "getting file info")
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	ok, err := FileExists(path)
	if err != nil {
		return errors.Wrapf(err, "checking if dir exists at %s", path)
	}
	if ok {
		return nil
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, "creating directory at %s", path)
	}

	return nil
}

// WriteFile writes data to the path, creating the parent directory if needed
func WriteFile(path string, data []byte) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return errors.Wrap(err, "preparing the parent dir")
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	return nil
}

// ListFiles returns the names of the regular files in a directory that match
// the glob pattern, sorted by name
func ListFiles(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	ret := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		ok, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "matching %s", pattern)
		}
		if ok {
			ret = append(ret, e.Name())
		}
	}

	sort.Strings(ret)

	return ret, nil
}
