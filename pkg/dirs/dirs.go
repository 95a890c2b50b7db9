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

// Package dirs resolves the XDG base directories of the user
package dirs

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// The environment variable names for the XDG base directory specification
var (
	envConfigHome = "XDG_CONFIG_HOME"
	envDataHome   = "XDG_DATA_HOME"
	envCacheHome  = "XDG_CACHE_HOME"
)

// Base holds the base directories
type Base struct {
	// Home is the home directory of the user
	Home string
	// Config is where user-specific configurations are written
	Config string
	// Data is where user-specific data files are written
	Data string
	// Cache is where user-specific non-essential data is written
	Cache string
}

func readPath(envName, defaultPath string) string {
	if dir := os.Getenv(envName); dir != "" {
		return dir
	}

	return defaultPath
}

// Resolve reads the base directories from the environment, falling back to
// the XDG defaults under the home directory
func Resolve() (Base, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Base{}, errors.Wrap(err, "getting home dir")
	}

	return Base{
		Home:   home,
		Config: readPath(envConfigHome, filepath.Join(home, ".config")),
		Data:   readPath(envDataHome, filepath.Join(home, ".local", "share")),
		Cache:  readPath(envCacheHome, filepath.Join(home, ".cache")),
	}, nil
}
