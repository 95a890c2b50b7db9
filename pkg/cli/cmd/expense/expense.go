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

package expense

import (
	stdctx "context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/output"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/cli/utils"
	"github.com/solarcareer/solarcareer/pkg/cli/validate"
	"github.com/spf13/cobra"
)

var categoryFlag string

var example = `
 * Add a recurring monthly expense
 solarcareer expense add "Van lease" 420 --category Vehicle

 * List the expenses and the monthly burn
 solarcareer expense ls`

// NewCmd returns a new expense command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Short:   "Manage recurring monthly expenses",
		Example: example,
	}

	add := &cobra.Command{
		Use:   "add <name> <amount>",
		Short: "Add a recurring monthly expense",
		Args:  cobra.ExactArgs(2),
		RunE:  newAddRun(ctx),
	}
	add.Flags().StringVar(&categoryFlag, "category", "Other", "category of the expense")

	ls := &cobra.Command{
		Use:     "ls",
		Short:   "List the expenses",
		Aliases: []string{"list"},
		Args:    cobra.NoArgs,
		RunE:    newLsRun(ctx),
	}

	cmd.AddCommand(add, ls)

	return cmd
}

// parseAmount parses a positive amount, allowing a leading dollar sign
// and thousands separators
func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Errorf("invalid amount %q", s)
	}
	if err := validate.Amount(v); err != nil {
		return 0, err
	}

	return v, nil
}

func newAddRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if err := validate.Name(name); err != nil {
			return err
		}
		if err := validate.Category(categoryFlag); err != nil {
			return err
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}

		e := schema.Expense{
			ID:       utils.NewID(),
			Name:     name,
			Category: categoryFlag,
			Amount:   amount,
		}

		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			expenses := append(i.State().Expenses, e)
			if err := i.UpdateData(c, schema.Partial{Expenses: expenses}); err != nil {
				return errors.Wrap(err, "adding the expense")
			}

			log.Successf("added %s %s\n", e.Name, output.Money(e.Amount))
			log.Infof("monthly burn: %s\n", output.Money(schema.MonthlyBurn(expenses)))
			return nil
		})
	}
}

func newLsRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			output.Expenses(i.State().Expenses)
			return nil
		})
	}
}
