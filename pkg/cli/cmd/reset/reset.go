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

package reset

import (
	stdctx "context"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/ui"
	"github.com/solarcareer/solarcareer/pkg/prompt"
	"github.com/spf13/cobra"
)

var yesFlag bool

var example = `
 * Reset every field to the defaults
 solarcareer reset

 * Reset without asking for confirmation
 solarcareer reset --yes`

// NewCmd returns a new reset command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reset",
		Short:   "Reset the data to the defaults",
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "skip the confirmation")

	return cmd
}

func confirmer() prompt.Confirmer {
	if yesFlag {
		return prompt.Static(true)
	}

	return ui.Confirmer{}
}

func newRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return infra.WithState(ctx, confirmer(), func(c stdctx.Context, i *appstate.Instance) error {
			ok, err := i.ResetAll(c)
			if err != nil {
				return errors.Wrap(err, "resetting")
			}
			if !ok {
				log.Plainf("aborted by the user\n")
				return nil
			}

			if i.Remote() {
				log.Successf("reset the local data and reseeded the certifications on the server\n")
				return nil
			}

			log.Successf("reset to the defaults\n")
			return nil
		})
	}
}
