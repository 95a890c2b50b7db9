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

// Package output provides functions to print informations on the terminal
// in a consistent manner
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/solarcareer/solarcareer/pkg/cli/appstate"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/cli/insight"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/cli/utils/diff"
)

const timeLayout = "Jan 2, 2006 3:04pm (MST)"

// Sync is the synchronization summary of an instance
type Sync struct {
	Remote   bool
	UserID   string
	Status   map[schema.Field]appstate.FieldStatus
	Diverged bool
}

// Status prints an overview of the state
func Status(s schema.ApplicationState, sync Sync) {
	done, total := schema.TaskProgress(s.RoutineTasks)
	certsDone := 0
	for _, c := range s.Certifications {
		if c.Status == schema.CertCompleted {
			certsDone++
		}
	}

	log.Infof("role: %s\n", s.UserRole)
	log.Infof("routine: %d/%d tasks done\n", done, total)
	log.Infof("certifications: %d/%d completed\n", certsDone, len(s.Certifications))
	log.Infof("investors: %d, %s committed\n", len(s.Investors), Money(schema.TotalCommitted(s.Investors)))
	log.Infof("monthly burn: %s\n", Money(schema.MonthlyBurn(s.Expenses)))
	if runway := schema.RunwayMonths(s); runway >= 0 {
		log.Infof("runway: %.1f months\n", runway)
	}
	log.Infof("journal entries: %d, recaps: %d, field logs: %d\n", len(s.Journal), len(s.WeeklyRecaps), len(s.FieldLogs))
	if !s.LastSaved.IsZero() {
		log.Infof("last saved: %s\n", s.LastSaved.Local().Format(timeLayout))
	}

	if !sync.Remote {
		log.Infof("sync: local only\n")
		return
	}

	log.Infof("sync: remote as %s\n", sync.UserID)
	fields := make([]string, 0, len(sync.Status))
	for f := range sync.Status {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, f := range fields {
		st := sync.Status[schema.Field(f)]
		switch st.State {
		case appstate.SyncError:
			log.Plainf("  %s %s: %s\n", log.ColorRed.Sprint(st.State), f, st.Err)
		case appstate.SyncPending:
			log.Plainf("  %s %s\n", log.ColorYellow.Sprint(st.State), f)
		default:
			log.Plainf("  %s %s\n", log.ColorGreen.Sprint(st.State), f)
		}
	}
	if sync.Diverged {
		log.Warnf("local changes have not been confirmed by the server\n")
	}
}

// Money formats an amount of dollars
func Money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// Tasks prints the routine tasks
func Tasks(tasks []schema.RoutineTask) {
	for _, t := range tasks {
		mark := " "
		c := log.ColorGray
		switch t.Status {
		case schema.StatusDone:
			mark = "x"
			c = log.ColorGreen
		case schema.StatusInProgress:
			mark = "~"
			c = log.ColorYellow
		}

		fmt.Fprintf(color.Output, "[%s] %s %s %s\n", c.Sprint(mark), t.Title, log.ColorGray.Sprintf("(%s, %s)", t.Category, t.Priority), log.ColorGray.Sprint(t.ID))
	}
}

// Investors prints the investors
func Investors(investors []schema.Investor) {
	for _, i := range investors {
		name := i.Name
		if i.Firm != "" {
			name = fmt.Sprintf("%s, %s", i.Name, i.Firm)
		}

		fmt.Fprintf(color.Output, "%s %s %s %s\n", name, log.ColorBlue.Sprint(i.Stage), Money(i.Commitment), log.ColorGray.Sprint(i.ID))
	}
	log.Infof("total committed: %s\n", Money(schema.TotalCommitted(investors)))
}

// Expenses prints the expenses and the monthly burn
func Expenses(expenses []schema.Expense) {
	for _, e := range expenses {
		fmt.Fprintf(color.Output, "%s %s %s %s\n", e.Name, log.ColorGray.Sprintf("(%s)", e.Category), Money(e.Amount), log.ColorGray.Sprint(e.ID))
	}
	log.Infof("monthly burn: %s\n", Money(schema.MonthlyBurn(expenses)))
}

// Backups prints the recorded backups
func Backups(backups []database.Backup) {
	for _, b := range backups {
		ts := time.Unix(0, b.CreatedAt).Local().Format(timeLayout)
		fmt.Fprintf(color.Output, "%s %s %s %s\n", ts, b.Name, log.ColorGray.Sprintf("%dB", b.Size), log.ColorBlue.Sprint(b.Destination))
	}
}

func bullets(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

// Recap prints a weekly recap
func Recap(r schema.WeeklyRecap) {
	log.Infof("week of %s\n", r.WeekOf)

	p := insight.ParseRecap(r.Content)
	fmt.Fprintf(color.Output, "\n%s\n", p.Summary)
	bullets(color.Output, "Wins", p.Wins)
	bullets(color.Output, "Risks", p.Risks)
	bullets(color.Output, "Focus", p.Focus)
}

// Analysis prints the analysis of a journal entry
func Analysis(e schema.JournalEntry) {
	a := insight.ParseAnalysis(e.Analysis)

	if a.Sentiment != "" {
		log.Infof("sentiment: %s\n", a.Sentiment)
	}
	if len(a.Themes) > 0 {
		log.Infof("themes: %s\n", strings.Join(a.Themes, ", "))
	}
	if a.Advice != "" {
		log.Infof("advice: %s\n", a.Advice)
	}
}

// Diff prints a line diff
func Diff(lines []diff.Line) {
	for _, l := range lines {
		switch l.Type {
		case diff.DiffInsert:
			log.ColorGreen.Fprintf(color.Output, "+ %s\n", l.Text)
		case diff.DiffDelete:
			log.ColorRed.Fprintf(color.Output, "- %s\n", l.Text)
		default:
			fmt.Fprintf(color.Output, "  %s\n", l.Text)
		}
	}
}
