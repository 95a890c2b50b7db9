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

package context

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/consts"
	"github.com/solarcareer/solarcareer/pkg/cli/utils"
)

// ConfigDir returns the directory holding the config file
func (p Paths) ConfigDir() string {
	return filepath.Join(p.Config, consts.DirName)
}

// DataDir returns the directory holding the database and backups
func (p Paths) DataDir() string {
	return filepath.Join(p.Data, consts.DirName)
}

// CacheDir returns the directory holding non-essential data
func (p Paths) CacheDir() string {
	return filepath.Join(p.Cache, consts.DirName)
}

// InitDirs creates the solarcareer directories if they don't already exist
func InitDirs(paths Paths) error {
	if paths.Config != "" {
		if err := utils.EnsureDir(paths.ConfigDir()); err != nil {
			return errors.Wrap(err, "initializing config dir")
		}
	}
	if paths.Data != "" {
		if err := utils.EnsureDir(paths.DataDir()); err != nil {
			return errors.Wrap(err, "initializing data dir")
		}
	}
	if paths.Cache != "" {
		if err := utils.EnsureDir(paths.CacheDir()); err != nil {
			return errors.Wrap(err, "initializing cache dir")
		}
	}

	return nil
}
