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

package role

import (
	stdctx "context"
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/spf13/cobra"
)

var example = `
 * Print the current role
 solarcareer role

 * Switch to the investor view
 solarcareer role investor`

// NewCmd returns a new role command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "role [Admin|Investor]",
		Short:   "Print or change the role viewing the data",
		Example: example,
		Args:    cobra.MaximumNArgs(1),
		RunE:    newRun(ctx),
	}

	return cmd
}

func parseRole(s string) (schema.UserRole, error) {
	for _, r := range []schema.UserRole{schema.RoleAdmin, schema.RoleInvestor} {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}

	return "", errors.Errorf("invalid role %q", s)
}

func newRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			if len(args) == 0 {
				log.Infof("role: %s\n", i.State().UserRole)
				return nil
			}

			r, err := parseRole(args[0])
			if err != nil {
				return err
			}
			if err := i.UpdateData(c, schema.Partial{UserRole: &r}); err != nil {
				return errors.Wrap(err, "updating the role")
			}

			log.Successf("role is %s\n", r)
			return nil
		})
	}
}
