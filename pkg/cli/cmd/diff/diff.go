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

package diff

import (
	stdctx "context"
	"os"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/output"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/cli/transfer"
	statediff "github.com/solarcareer/solarcareer/pkg/cli/utils/diff"
	"github.com/spf13/cobra"
)

var contextFlag int

var example = `
 * Show what restoring a backup would change
 solarcareer diff solarcareer_backup_2024-03-04.json`

// NewCmd returns a new diff command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "diff <file>",
		Short:   "Compare the current data with a backup file",
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    newRun(ctx),
	}

	cmd.Flags().IntVarP(&contextFlag, "context", "U", 3, "number of unchanged lines around each change")

	return cmd
}

// readBackup reads a backup file the way an import would
func readBackup(path string) (schema.ApplicationState, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return schema.ApplicationState{}, errors.Wrapf(err, "reading %s", path)
	}
	if !transfer.Validate(b) {
		return schema.ApplicationState{}, errors.Errorf("%s is not a backup file", path)
	}

	return schema.MergeWithDefaults(b), nil
}

func newRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		backup, err := readBackup(args[0])
		if err != nil {
			return err
		}

		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			diffs, err := statediff.States(i.State(), backup)
			if err != nil {
				return errors.Wrap(err, "comparing")
			}
			if !statediff.Changed(diffs) {
				log.Info("no difference\n")
				return nil
			}

			output.Diff(statediff.Lines(diffs, contextFlag))
			return nil
		})
	}
}
