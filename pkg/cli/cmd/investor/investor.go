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

package investor

import (
	stdctx "context"
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/mailer"
	"github.com/solarcareer/solarcareer/pkg/cli/output"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/cli/ui"
	"github.com/solarcareer/solarcareer/pkg/cli/utils"
	"github.com/solarcareer/solarcareer/pkg/cli/validate"
	"github.com/spf13/cobra"
)

// DefaultStage is the stage of a new investor
const DefaultStage = "Lead"

var (
	firmFlag       string
	emailFlag      string
	stageFlag      string
	commitmentFlag float64
	notesFlag      string

	subjectFlag string
	contentFlag string
	senderFlag  string
	toFlag      []string
	dryRunFlag  bool
)

var example = `
 * Add an investor
 solarcareer investor add "Ada Lovelace" --firm "Analytical Capital" --email ada@example.com --commitment 25000

 * Email an update to every investor
 solarcareer investor notify --subject "March update" -c "Crew certified for battery installs."

 * Preview an update without sending it
 solarcareer investor notify --subject "March update" --dry-run`

// NewCmd returns a new investor command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "investor",
		Short:   "Manage investors and send them updates",
		Aliases: []string{"inv"},
		Example: example,
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an investor",
		Args:  cobra.MinimumNArgs(1),
		RunE:  newAddRun(ctx),
	}
	f := add.Flags()
	f.StringVar(&firmFlag, "firm", "", "firm of the investor")
	f.StringVar(&emailFlag, "email", "", "email address updates are sent to")
	f.StringVar(&stageFlag, "stage", DefaultStage, "stage of the relationship")
	f.Float64Var(&commitmentFlag, "commitment", 0, "committed capital in dollars")
	f.StringVar(&notesFlag, "notes", "", "free-form notes")

	ls := &cobra.Command{
		Use:     "ls",
		Short:   "List the investors",
		Aliases: []string{"list"},
		Args:    cobra.NoArgs,
		RunE:    newLsRun(ctx),
	}

	notify := &cobra.Command{
		Use:   "notify",
		Short: "Email an update to investors",
		Args:  cobra.NoArgs,
		RunE:  newNotifyRun(ctx),
	}
	nf := notify.Flags()
	nf.StringVarP(&subjectFlag, "subject", "s", "", "subject of the update")
	nf.StringVarP(&contentFlag, "content", "c", "", "body of the update")
	nf.StringVar(&senderFlag, "sender", "", "name signing the update")
	nf.StringSliceVar(&toFlag, "to", nil, "ids of the recipients (defaults to every investor with an email)")
	nf.BoolVar(&dryRunFlag, "dry-run", false, "print the emails instead of sending them")

	cmd.AddCommand(add, ls, notify)

	return cmd
}

func newInvestor(name string) (schema.Investor, error) {
	name = strings.TrimSpace(name)
	if err := validate.Name(name); err != nil {
		return schema.Investor{}, err
	}
	if err := validate.Amount(commitmentFlag); err != nil {
		return schema.Investor{}, err
	}
	email := strings.TrimSpace(emailFlag)
	if err := validate.Email(email); err != nil {
		return schema.Investor{}, errors.Wrapf(err, "checking %q", email)
	}

	return schema.Investor{
		ID:         utils.NewID(),
		Name:       name,
		Firm:       firmFlag,
		Email:      email,
		Stage:      stageFlag,
		Commitment: commitmentFlag,
		Notes:      notesFlag,
	}, nil
}

func newAddRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		inv, err := newInvestor(strings.Join(args, " "))
		if err != nil {
			return err
		}

		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			investors := append(i.State().Investors, inv)
			if err := i.UpdateData(c, schema.Partial{Investors: investors}); err != nil {
				return errors.Wrap(err, "adding the investor")
			}

			log.Successf("added %s (%s)\n", inv.Name, inv.ID)
			log.Infof("total committed: %s\n", output.Money(schema.TotalCommitted(investors)))
			return nil
		})
	}
}

func newLsRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			output.Investors(i.State().Investors)
			return nil
		})
	}
}

// newBackend returns the SMTP backend of the context, or the stdout
// backend for a dry run or when SMTP is not configured
func newBackend(ctx context.SolarCtx, dryRun bool) (mailer.Backend, error) {
	if dryRun {
		return mailer.NewStdoutBackend(), nil
	}

	b, err := mailer.NewSMTPBackend(mailer.SMTPParams{
		Host:     ctx.SMTP.Host,
		Port:     ctx.SMTP.Port,
		Username: ctx.SMTP.Username,
		Password: ctx.SMTP.Password,
	})
	if err == mailer.ErrSMTPNotConfigured {
		log.Warnf("SMTP is not configured, printing the emails instead\n")
		return mailer.NewStdoutBackend(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "configuring SMTP")
	}

	return b, nil
}

func newNotifyRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(subjectFlag) == "" {
			return errors.New("a subject is required")
		}

		body, err := ui.GetContent(ctx, contentFlag)
		if err != nil {
			return errors.Wrap(err, "getting the body")
		}

		backend, err := newBackend(ctx, dryRunFlag)
		if err != nil {
			return err
		}

		n := &mailer.Notifier{
			Backend:    backend,
			Templates:  mailer.NewTemplates(),
			From:       ctx.SMTP.From,
			SenderName: senderFlag,
			Clock:      ctx.Clock,
		}

		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			n.Updater = i

			rec, err := n.Notify(c, i.State(), mailer.Update{
				Subject:     subjectFlag,
				Body:        body,
				InvestorIDs: toFlag,
			})
			if err != nil {
				return errors.Wrap(err, "notifying investors")
			}

			log.Successf("sent %q to %d investors via %s\n", rec.Subject, len(rec.InvestorIDs), rec.Channel)
			return nil
		})
	}
}
