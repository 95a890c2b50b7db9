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

package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/cli/utils"
)

// Updater applies a partial update to the state
type Updater interface {
	UpdateData(ctx context.Context, p schema.Partial) error
}

// Recap is the structured form of a weekly recap
type Recap struct {
	Summary string   `json:"summary"`
	Wins    []string `json:"wins,omitempty"`
	Risks   []string `json:"risks,omitempty"`
	Focus   []string `json:"focus,omitempty"`
}

// Analysis is the structured form of a journal analysis
type Analysis struct {
	Sentiment string   `json:"sentiment"`
	Themes    []string `json:"themes,omitempty"`
	Advice    string   `json:"advice,omitempty"`
}

// stripFence removes a markdown code fence around the content
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}

	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// ParseRecap reads a stored recap. Content that is not a JSON recap is
// returned as the summary.
func ParseRecap(content string) Recap {
	var r Recap
	if err := json.Unmarshal([]byte(stripFence(content)), &r); err != nil || r.Summary == "" {
		return Recap{Summary: strings.TrimSpace(content)}
	}

	return r
}

// ParseAnalysis reads a stored journal analysis. Content that is not a
// JSON analysis is returned as the advice.
func ParseAnalysis(content string) Analysis {
	var a Analysis
	if err := json.Unmarshal([]byte(stripFence(content)), &a); err != nil || a.Sentiment == "" {
		return Analysis{Advice: strings.TrimSpace(content)}
	}

	return a
}

// WeekOf returns the date of the monday of the week of t
func WeekOf(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format("2006-01-02")
}

func inWeek(date, weekOf string) bool {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}

	return WeekOf(d) == weekOf
}

// RecapPrompt builds the prompt for the recap of the week starting weekOf
func RecapPrompt(state schema.ApplicationState, weekOf string) string {
	var b strings.Builder

	b.WriteString("You are a career coach for someone entering the solar industry. ")
	fmt.Fprintf(&b, "Write a recap of the week of %s as JSON with the keys summary, wins, risks and focus.\n\n", weekOf)

	b.WriteString("Certifications:\n")
	for _, c := range state.Certifications {
		fmt.Fprintf(&b, "- %s: %s (%d%%)\n", c.Name, c.Status, c.Progress)
	}

	done, total := schema.TaskProgress(state.RoutineTasks)
	fmt.Fprintf(&b, "\nRoutine: %d of %d tasks done\n", done, total)

	b.WriteString("\nJournal:\n")
	for _, e := range state.Journal {
		if inWeek(e.Date, weekOf) {
			fmt.Fprintf(&b, "- %s: %s\n", e.Date, e.Content)
		}
	}

	b.WriteString("\nField work:\n")
	for _, l := range state.FieldLogs {
		if inWeek(l.Date, weekOf) {
			fmt.Fprintf(&b, "- %s at %s, %.1fh\n", l.Date, l.Location, l.Hours)
		}
	}

	fmt.Fprintf(&b, "\nMonthly burn: %.2f, committed capital: %.2f\n", schema.MonthlyBurn(state.Expenses), schema.TotalCommitted(state.Investors))

	return b.String()
}

// GenerateRecap generates the recap of the week of now and appends it to
// the weekly recaps
func GenerateRecap(ctx context.Context, g Generator, u Updater, state schema.ApplicationState, now time.Time) (schema.WeeklyRecap, error) {
	weekOf := WeekOf(now)

	content, err := g.Generate(ctx, RecapPrompt(state, weekOf))
	if err != nil {
		return schema.WeeklyRecap{}, errors.Wrap(err, "generating the recap")
	}

	rec := schema.WeeklyRecap{
		ID:          utils.NewID(),
		WeekOf:      weekOf,
		Content:     content,
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}

	p := schema.Partial{WeeklyRecaps: append(state.Clone().WeeklyRecaps, rec)}
	if err := u.UpdateData(ctx, p); err != nil {
		return rec, errors.Wrap(err, "saving the recap")
	}

	return rec, nil
}

// AnalyzeEntry generates an analysis of a journal entry and stores it on
// the entry
func AnalyzeEntry(ctx context.Context, g Generator, u Updater, state schema.ApplicationState, entryID string) (schema.JournalEntry, error) {
	journal := state.Clone().Journal

	idx := -1
	for i, e := range journal {
		if e.ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return schema.JournalEntry{}, errors.Errorf("journal entry %s not found", entryID)
	}

	prompt := "Analyze this journal entry of someone training for a solar career. " +
		"Answer as JSON with the keys sentiment, themes and advice.\n\n" + journal[idx].Content

	content, err := g.Generate(ctx, prompt)
	if err != nil {
		return schema.JournalEntry{}, errors.Wrap(err, "generating the analysis")
	}

	journal[idx].Analysis = content
	if err := u.UpdateData(ctx, schema.Partial{Journal: journal}); err != nil {
		return journal[idx], errors.Wrap(err, "saving the analysis")
	}

	return journal[idx], nil
}
