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

package export

import (
	stdctx "context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/cli/transfer"
	"github.com/solarcareer/solarcareer/pkg/cli/utils"
	"github.com/spf13/cobra"
)

var templateFlag bool
var s3Flag bool
var outFlag string

var example = `
 * Export a dated backup to the current directory
 solarcareer export

 * Export a template without personal data
 solarcareer export --template

 * Upload the backup to the configured S3 bucket
 solarcareer export --s3`

// NewCmd returns a new export command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export the data to a JSON file",
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&templateFlag, "template", false, "strip investors, journal, recaps, field logs and sync settings")
	f.BoolVar(&s3Flag, "s3", false, "upload to the configured S3 bucket")
	f.StringVarP(&outFlag, "output", "o", ".", "directory the file is written to")

	return cmd
}

func render(state schema.ApplicationState, template bool, ctx context.SolarCtx) (string, []byte, error) {
	if template {
		return transfer.ExportSanitizedTemplate(state)
	}

	return transfer.Export(state, ctx.Clock.Now())
}

func newRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			name, b, err := render(i.State(), templateFlag, ctx)
			if err != nil {
				return errors.Wrap(err, "exporting")
			}

			if s3Flag {
				d, err := infra.Destination(c, ctx, true)
				if err != nil {
					return err
				}
				if err := d.Put(c, name, b); err != nil {
					return errors.Wrapf(err, "uploading %s", name)
				}

				log.Successf("uploaded %s to %s\n", name, d.Name())
				return nil
			}

			if err := utils.EnsureDir(outFlag); err != nil {
				return errors.Wrap(err, "creating the output directory")
			}
			path := filepath.Join(outFlag, name)
			if err := os.WriteFile(path, b, 0644); err != nil {
				return errors.Wrapf(err, "writing %s", path)
			}

			log.Successf("exported to %s\n", path)
			return nil
		})
	}
}
