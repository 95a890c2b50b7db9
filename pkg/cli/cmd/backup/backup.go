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
	stdctx "context"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	backups "github.com/solarcareer/solarcareer/pkg/cli/backup"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/output"
	"github.com/spf13/cobra"
)

var s3Flag bool
var scheduleFlag string
var limitFlag int

var example = `
 * Back up to the backup directory now
 solarcareer backup run

 * Back up to the configured S3 bucket on the configured schedule
 solarcareer backup schedule --s3

 * Back up every hour
 solarcareer backup schedule --schedule "@hourly"

 * List the recent backups
 solarcareer backup ls`

// NewCmd returns a new backup command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup",
		Short:   "Back up the data",
		Example: example,
	}
	cmd.PersistentFlags().BoolVar(&s3Flag, "s3", false, "back up to the configured S3 bucket")

	run := &cobra.Command{
		Use:   "run",
		Short: "Make a backup now",
		Args:  cobra.NoArgs,
		RunE:  newRunRun(ctx),
	}

	schedule := &cobra.Command{
		Use:   "schedule",
		Short: "Make backups on a schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE:  newScheduleRun(ctx),
	}
	schedule.Flags().StringVar(&scheduleFlag, "schedule", "", "cron spec of the backups (defaults to backupSchedule in the config)")

	ls := &cobra.Command{
		Use:     "ls",
		Short:   "List the recent backups",
		Aliases: []string{"list"},
		Args:    cobra.NoArgs,
		RunE:    newLsRun(ctx),
	}
	ls.Flags().IntVarP(&limitFlag, "limit", "n", 10, "number of backups to list")

	cmd.AddCommand(run, schedule, ls)

	return cmd
}

func newRunner(c stdctx.Context, ctx context.SolarCtx, i *appstate.Instance) (*backups.Runner, error) {
	d, err := infra.Destination(c, ctx, s3Flag)
	if err != nil {
		return nil, err
	}

	return &backups.Runner{
		Source:      i,
		Destination: d,
		DB:          ctx.DB,
		Clock:       ctx.Clock,
	}, nil
}

func newRunRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			r, err := newRunner(c, ctx, i)
			if err != nil {
				return err
			}

			rec, err := r.Run(c)
			if err != nil {
				return errors.Wrap(err, "backing up")
			}

			log.Successf("backed up %s to %s\n", rec.Name, rec.Destination)
			return nil
		})
	}
}

func newScheduleRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		spec := scheduleFlag
		if spec == "" {
			spec = ctx.BackupSchedule
		}

		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			r, err := newRunner(c, ctx, i)
			if err != nil {
				return err
			}

			s := backups.NewScheduler(r)
			s.OnRun = func(res backups.Result) {
				if res.Err == nil {
					log.Successf("backed up %s\n", res.Name)
				}
			}
			if err := s.Start(spec); err != nil {
				return errors.Wrapf(err, "scheduling backups with %q", spec)
			}
			defer s.Stop()

			log.Infof("backing up to %s on %q, press Ctrl+C to stop\n", r.Destination.Name(), spec)
			<-c.Done()

			return nil
		})
	}
}

func newLsRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		list, err := database.ListBackups(ctx.DB, limitFlag)
		if err != nil {
			return errors.Wrap(err, "listing backups")
		}
		if len(list) == 0 {
			log.Info("no backup yet\n")
			return nil
		}

		output.Backups(list)
		return nil
	}
}
