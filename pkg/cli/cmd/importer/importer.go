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

// Package importer implements the import command
package importer

import (
	"bytes"
	stdctx "context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/backup"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/transfer"
	"github.com/spf13/cobra"
)

// ErrInvalidBackup is returned for a file that is not a backup
var ErrInvalidBackup = errors.New("not a valid backup file: it must be JSON with routineTasks or certifications")

var watchFlag string
var s3Flag bool
var intervalFlag time.Duration

var example = `
 * Restore a backup file
 solarcareer import solarcareer_backup_2024-03-04.json

 * Restore a backup stored in the configured S3 bucket
 solarcareer import --s3 solarcareer_backup_2024-03-04.json

 * Import every backup dropped into a directory
 solarcareer import --watch ~/Downloads`

// NewCmd returns a new import command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "import [file]",
		Short:   "Restore the data from a backup file",
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&watchFlag, "watch", "", "import the backup files that appear in the directory")
	f.BoolVar(&s3Flag, "s3", false, "read the file from the configured S3 bucket")
	f.DurationVar(&intervalFlag, "interval", time.Second, "how often the watched directory is scanned")

	return cmd
}

func preRun(cmd *cobra.Command, args []string) error {
	if watchFlag != "" {
		if len(args) != 0 {
			return errors.New("a file cannot be given with --watch")
		}
		return nil
	}
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

func open(c stdctx.Context, ctx context.SolarCtx, name string) (io.ReadCloser, error) {
	if !s3Flag {
		f, err := os.Open(name)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", name)
		}

		return f, nil
	}

	d, err := infra.Destination(c, ctx, true)
	if err != nil {
		return nil, err
	}
	b, err := d.Get(c, name)
	if err != nil {
		return nil, errors.Wrapf(err, "downloading %s", name)
	}

	return io.NopCloser(bytes.NewReader(b)), nil
}

func importFile(c stdctx.Context, ctx context.SolarCtx, u transfer.Updater, name string) error {
	r, err := open(c, ctx, name)
	if err != nil {
		return err
	}
	defer r.Close()

	ok, err := transfer.Import(c, u, r)
	if err != nil {
		return errors.Wrap(err, "importing")
	}
	if !ok {
		return ErrInvalidBackup
	}

	return nil
}

func watch(c stdctx.Context, i *appstate.Instance) error {
	w, err := backup.NewWatcher(watchFlag, i)
	if err != nil {
		return err
	}
	w.OnImport = func(r backup.ImportResult) {
		switch {
		case r.Err != nil:
			log.Errorf("%s: %s\n", r.Path, r.Err.Error())
		case !r.Imported:
			log.Warnf("%s: skipped, not a backup file\n", r.Path)
		default:
			log.Successf("imported %s\n", r.Path)
		}
	}

	log.Infof("watching %s, press Ctrl+C to stop\n", watchFlag)

	return w.Run(c, intervalFlag)
}

func newRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			if watchFlag != "" {
				return watch(c, i)
			}

			if err := importFile(c, ctx, i, args[0]); err != nil {
				return err
			}

			log.Successf("imported %s\n", args[0])
			return nil
		})
	}
}
