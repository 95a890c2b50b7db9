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

package backup

import (
	"context"
	"os"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/transfer"
)

var jsonFile = regexp.MustCompile(`\.json$`)

// ImportResult is the outcome of importing a file dropped into a watched directory
type ImportResult struct {
	Path     string
	Imported bool
	Err      error
}

// Watcher imports the backup files that appear in a directory
type Watcher struct {
	dir     string
	updater transfer.Updater
	w       *watcher.Watcher

	// OnImport is called after every import attempt
	OnImport func(ImportResult)
}

// NewWatcher returns a watcher importing the json files created in dir
func NewWatcher(dir string, u transfer.Updater) (*Watcher, error) {
	w := watcher.New()
	w.FilterOps(watcher.Create, watcher.Write, watcher.Rename, watcher.Move)
	w.AddFilterHook(watcher.RegexFilterHook(jsonFile, false))

	if err := w.Add(dir); err != nil {
		return nil, errors.Wrapf(err, "watching %s", dir)
	}

	return &Watcher{dir: dir, updater: u, w: w}, nil
}

func (w *Watcher) importFile(ctx context.Context, path string) ImportResult {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{Path: path, Err: errors.Wrapf(err, "opening %s", path)}
	}
	defer f.Close()

	ok, err := transfer.Import(ctx, w.updater, f)

	return ImportResult{Path: path, Imported: ok, Err: err}
}

func (w *Watcher) handle(ctx context.Context, e watcher.Event) {
	if e.IsDir() || !jsonFile.MatchString(e.Path) {
		return
	}

	res := w.importFile(ctx, e.Path)
	switch {
	case res.Err != nil:
		log.Errorf("importing %s: %s\n", e.Path, res.Err.Error())
	case !res.Imported:
		log.Warnf("%s is not a valid backup\n", e.Path)
	default:
		log.Successf("imported %s\n", e.Path)
	}

	if w.OnImport != nil {
		w.OnImport(res)
	}
}

// ErrIntervalTooShort is returned for a polling interval under a millisecond
var ErrIntervalTooShort = errors.New("the watch interval must be at least a millisecond")

// Run polls the directory at the given interval until the context is done
func (w *Watcher) Run(ctx context.Context, interval time.Duration) error {
	if interval < time.Millisecond {
		return ErrIntervalTooShort
	}

	stop := make(chan struct{})
	defer close(stop)

	go func() {
		w.w.Wait()
		select {
		case <-ctx.Done():
			w.w.Close()
		case <-stop:
		}
	}()

	go func() {
		for {
			select {
			case e := <-w.w.Event:
				w.handle(ctx, e)
			case err := <-w.w.Error:
				log.Errorf("watching %s: %s\n", w.dir, err.Error())
			case <-w.w.Closed:
				return
			case <-stop:
				return
			}
		}
	}()

	if err := w.w.Start(interval); err != nil {
		w.w.Close()
		return errors.Wrap(err, "running the watcher")
	}

	return nil
}
