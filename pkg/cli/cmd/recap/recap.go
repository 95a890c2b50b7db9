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

package recap

import (
	stdctx "context"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/insight"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/output"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/spf13/cobra"
)

var lastFlag bool

var example = `
 * Generate the recap of the current week
 solarcareer recap

 * Print the most recent recap without generating one
 solarcareer recap --last`

// NewCmd returns a new recap command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recap",
		Short:   "Generate a weekly recap",
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	cmd.Flags().BoolVar(&lastFlag, "last", false, "print the most recent recap")

	return cmd
}

// latest returns the recap generated last
func latest(recaps []schema.WeeklyRecap) (schema.WeeklyRecap, bool) {
	var ret schema.WeeklyRecap
	found := false
	for _, r := range recaps {
		if !found || r.GeneratedAt > ret.GeneratedAt {
			ret = r
			found = true
		}
	}

	return ret, found
}

func newRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			if lastFlag {
				r, ok := latest(i.State().WeeklyRecaps)
				if !ok {
					log.Info("no recap yet\n")
					return nil
				}

				output.Recap(r)
				return nil
			}

			g, err := infra.Generator(c, ctx)
			if err != nil {
				return err
			}

			r, err := insight.GenerateRecap(c, g, i, i.State(), ctx.Clock.Now())
			if err != nil {
				return errors.Wrap(err, "generating the recap")
			}

			output.Recap(r)
			return nil
		})
	}
}
