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

// Package backup stores exported state files in a destination and runs
// exports on a schedule
package backup

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/utils"
)

// ErrNotFound is returned when a destination has no backup by the name
var ErrNotFound = errors.New("backup not found")

// Destination is a place where backups are kept
type Destination interface {
	Name() string
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

// DirDestination keeps backups as files in a local directory
type DirDestination struct {
	Dir string
}

// NewDir returns a destination rooted at dir
func NewDir(dir string) *DirDestination {
	return &DirDestination{Dir: dir}
}

// Name returns the name of the destination
func (d *DirDestination) Name() string {
	return "dir:" + d.Dir
}

func (d *DirDestination) path(name string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", errors.Errorf("invalid backup name %q", name)
	}

	return filepath.Join(d.Dir, name), nil
}

// Put writes a backup file, replacing any with the same name
func (d *DirDestination) Put(ctx context.Context, name string, data []byte) error {
	p, err := d.path(name)
	if err != nil {
		return err
	}

	return utils.WriteFile(p, data)
}

// Get reads a backup file
func (d *DirDestination) Get(ctx context.Context, name string) ([]byte, error) {
	p, err := d.path(name)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", p)
	}

	return b, nil
}

// List returns the names of the json files in the directory
func (d *DirDestination) List(ctx context.Context) ([]string, error) {
	ok, err := utils.FileExists(d.Dir)
	if err != nil {
		return nil, errors.Wrap(err, "checking the backup dir")
	}
	if !ok {
		return []string{}, nil
	}

	return utils.ListFiles(d.Dir, "*.json")
}
