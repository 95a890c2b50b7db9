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

package journal

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
	"github.com/solarcareer/solarcareer/pkg/cli/ui"
	"github.com/solarcareer/solarcareer/pkg/cli/utils"
	"github.com/spf13/cobra"
)

var contentFlag string
var moodFlag string
var analyzeFlag bool

var example = `
 * Open an editor to write an entry
 solarcareer journal add

 * Skip the editor by providing content directly
 solarcareer journal add -c "First solo rooftop install" --mood proud

 * Send stdin content to an entry and analyze it
 echo "Failed the NABCEP practice exam" | solarcareer journal add --analyze`

// NewCmd returns a new journal command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "journal",
		Short:   "Write and analyze journal entries",
		Aliases: []string{"j"},
		Example: example,
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a journal entry",
		Args:  cobra.NoArgs,
		RunE:  newAddRun(ctx),
	}
	f := add.Flags()
	f.StringVarP(&contentFlag, "content", "c", "", "content of the entry")
	f.StringVar(&moodFlag, "mood", "", "mood of the day")
	f.BoolVar(&analyzeFlag, "analyze", false, "analyze the entry with the text-generation service")

	analyze := &cobra.Command{
		Use:   "analyze <id>",
		Short: "Analyze a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE:  newAnalyzeRun(ctx),
	}

	cmd.AddCommand(add, analyze)

	return cmd
}

func analyzeEntry(c stdctx.Context, ctx context.SolarCtx, i *appstate.Instance, id string) error {
	g, err := infra.Generator(c, ctx)
	if err != nil {
		return err
	}

	e, err := insight.AnalyzeEntry(c, g, i, i.State(), id)
	if err != nil {
		return errors.Wrap(err, "analyzing the entry")
	}

	output.Analysis(e)
	return nil
}

func newAddRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		content, err := ui.GetContent(ctx, contentFlag)
		if err != nil {
			return errors.Wrap(err, "getting content")
		}

		e := schema.JournalEntry{
			ID:      utils.NewID(),
			Date:    ctx.Clock.Now().Format("2006-01-02"),
			Content: content,
			Mood:    moodFlag,
		}

		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			entries := append(i.State().Journal, e)
			if err := i.UpdateData(c, schema.Partial{Journal: entries}); err != nil {
				return errors.Wrap(err, "adding the entry")
			}
			log.Successf("added entry %s\n", e.ID)

			if !analyzeFlag {
				return nil
			}
			if i.Remote() {
				if err := i.Settle(c); err != nil {
					return errors.Wrap(err, "waiting for the entry to sync")
				}
			}

			return analyzeEntry(c, ctx, i, e.ID)
		})
	}
}

func newAnalyzeRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return infra.WithState(ctx, nil, func(c stdctx.Context, i *appstate.Instance) error {
			return analyzeEntry(c, ctx, i, args[0])
		})
	}
}
