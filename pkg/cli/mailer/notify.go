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

package mailer

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/cli/utils"
	"github.com/solarcareer/solarcareer/pkg/clock"
)

// ErrNoRecipients is returned when none of the selected investors has an email
var ErrNoRecipients = errors.New("no investor with an email address")

// Updater applies a partial update to the state
type Updater interface {
	UpdateData(ctx context.Context, p schema.Partial) error
}

// Update is an update to send
type Update struct {
	Subject string
	Body    string
	// InvestorIDs selects the recipients. Empty means every investor.
	InvestorIDs []string
}

// Notifier emails updates to investors and records them in the state
type Notifier struct {
	Backend    Backend
	Templates  Templates
	From       string
	SenderName string
	Updater    Updater
	Clock      clock.Clock
}

func recipients(state schema.ApplicationState, ids []string) []schema.Investor {
	selected := map[string]bool{}
	for _, id := range ids {
		selected[id] = true
	}

	ret := []schema.Investor{}
	for _, inv := range state.Investors {
		if len(ids) > 0 && !selected[inv.ID] {
			continue
		}
		if strings.TrimSpace(inv.Email) == "" {
			log.Warnf("skipping %s without an email address\n", inv.Name)
			continue
		}

		ret = append(ret, inv)
	}

	return ret
}

func tmplData(state schema.ApplicationState, sender, body string) InvestorUpdateTmplData {
	certsDone := 0
	for _, c := range state.Certifications {
		if c.Status == schema.CertCompleted {
			certsDone++
		}
	}
	tasksDone, tasksTotal := schema.TaskProgress(state.RoutineTasks)

	return InvestorUpdateTmplData{
		SenderName:          sender,
		Body:                body,
		CertificationsDone:  certsDone,
		CertificationsTotal: len(state.Certifications),
		TasksDone:           tasksDone,
		TasksTotal:          tasksTotal,
		MonthlyBurn:         schema.MonthlyBurn(state.Expenses),
	}
}

// Notify sends the update to the selected investors, then appends it to the
// investor updates and stamps the last contact of each recipient
func (n *Notifier) Notify(ctx context.Context, state schema.ApplicationState, u Update) (schema.InvestorUpdate, error) {
	if strings.TrimSpace(u.Subject) == "" {
		return schema.InvestorUpdate{}, errors.New("subject is empty")
	}

	to := recipients(state, u.InvestorIDs)
	if len(to) == 0 {
		return schema.InvestorUpdate{}, ErrNoRecipients
	}

	c := n.Clock
	if c == nil {
		c = clock.New()
	}
	now := c.Now().UTC()

	data := tmplData(state, n.SenderName, u.Body)
	ids := []string{}
	for _, inv := range to {
		data.InvestorName = inv.Name

		body, err := n.Templates.Execute(EmailTypeInvestorUpdate, EmailKindText, data)
		if err != nil {
			return schema.InvestorUpdate{}, errors.Wrap(err, "rendering the update")
		}

		msg := Message{From: n.From, To: []string{inv.Email}, Subject: u.Subject, Body: body}
		if err := n.Backend.Send(msg); err != nil {
			return schema.InvestorUpdate{}, errors.Wrapf(err, "sending the update to %s", inv.Email)
		}

		ids = append(ids, inv.ID)
	}

	rec := schema.InvestorUpdate{
		ID:          utils.NewID(),
		Subject:     u.Subject,
		Body:        u.Body,
		InvestorIDs: ids,
		SentAt:      now.Format(time.RFC3339),
		Channel:     n.Backend.Channel(),
	}

	contacted := map[string]bool{}
	for _, id := range ids {
		contacted[id] = true
	}
	investors := state.Clone().Investors
	for i := range investors {
		if contacted[investors[i].ID] {
			investors[i].LastContact = now.Format("2006-01-02")
		}
	}

	p := schema.Partial{
		Investors:       investors,
		InvestorUpdates: append(state.Clone().InvestorUpdates, rec),
	}
	if err := n.Updater.UpdateData(ctx, p); err != nil {
		return rec, errors.Wrap(err, "recording the update")
	}

	return rec, nil
}
