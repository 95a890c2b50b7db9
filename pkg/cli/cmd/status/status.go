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

package status

import (
	stdctx "context"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/output"
	"github.com/solarcareer/solarcareer/pkg/cli/ui"
	"github.com/solarcareer/solarcareer/pkg/cli/upgrade"
	"github.com/spf13/cobra"
)

// NewCmd returns a new status command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Print an overview of the data and its synchronization",
		Aliases: []string{"s"},
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	return cmd
}

func newRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			output.Status(i.State(), output.Sync{
				Remote:   i.Remote(),
				UserID:   ctx.UserID,
				Status:   i.SyncStatus(),
				Diverged: i.Diverged(),
			})

			if !ctx.EnableUpgradeCheck || ui.IsPiped() {
				return nil
			}
			if err := upgrade.Check(ctx, ui.Confirmer{}, upgrade.NewGithubClient(ctx.HTTPClient)); err != nil {
				log.Error(errors.Wrap(err, "automatically checking updates").Error())
			}

			return nil
		})
	}
}
