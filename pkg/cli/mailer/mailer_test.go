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
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/assert"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/clock"
	"gopkg.in/gomail.v2"
)

type mockDialer struct {
	sentMessages []*gomail.Message
	err          error
}

func (m *mockDialer) DialAndSend(msgs ...*gomail.Message) error {
	m.sentMessages = append(m.sentMessages, msgs...)
	return m.err
}

type recordingBackend struct {
	sent []Message
	err  error
}

func (b *recordingBackend) Send(m Message) error {
	if b.err != nil {
		return b.err
	}

	b.sent = append(b.sent, m)
	return nil
}

func (b *recordingBackend) Channel() string {
	return "test"
}

type recordingUpdater struct {
	partials []schema.Partial
	err      error
}

func (u *recordingUpdater) UpdateData(ctx context.Context, p schema.Partial) error {
	u.partials = append(u.partials, p)
	return u.err
}

func testState() schema.ApplicationState {
	s := schema.DefaultState()
	s.Certifications[0].Status = schema.CertCompleted
	s.Expenses[0].Amount = 120.5
	s.Investors = []schema.Investor{
		{ID: "i1", Name: "Ada", Email: "ada@example.com", Stage: "Committed"},
		{ID: "i2", Name: "Grace", Stage: "Lead"},
		{ID: "i3", Name: "Linus", Email: "linus@example.com", Stage: "Pitched"},
	}

	return s
}

func TestTemplates(t *testing.T) {
	body, err := NewTemplates().Execute(EmailTypeInvestorUpdate, EmailKindText, InvestorUpdateTmplData{
		InvestorName:        "Ada",
		SenderName:          "Sam",
		Body:                "Passed the OSHA exam.",
		CertificationsDone:  1,
		CertificationsTotal: 4,
		TasksDone:           2,
		TasksTotal:          3,
		MonthlyBurn:         120.5,
	})
	assert.NoError(t, err, "executing")

	for _, want := range []string{"Hi Ada,", "Passed the OSHA exam.", "1 of 4", "2 of 3", "$120.50", "Sam"} {
		assert.Equal(t, strings.Contains(body, want), true, "body should contain "+want)
	}

	_, err = NewTemplates().Execute("unknown", EmailKindText, nil)
	assert.NotEqual(t, err, nil, "should fail for an unknown template")
}

func TestSMTPBackend(t *testing.T) {
	_, err := NewSMTPBackend(SMTPParams{})
	assert.Equal(t, err, ErrSMTPNotConfigured, "error mismatch")

	d := &mockDialer{}
	b := &SMTPBackend{Dialer: d}
	assert.NoError(t, b.Send(Message{From: "me@example.com", To: []string{"ada@example.com"}, Subject: "Hi", Body: "Body"}), "sending")
	assert.Equal(t, len(d.sentMessages), 1, "sent count mismatch")
	assert.DeepEqual(t, d.sentMessages[0].GetHeader("To"), []string{"ada@example.com"}, "to mismatch")

	d.err = errors.New("connection refused")
	assert.NotEqual(t, b.Send(Message{To: []string{"ada@example.com"}}), nil, "should fail when dialing fails")
}

func TestStdoutBackend(t *testing.T) {
	var buf bytes.Buffer
	b := &StdoutBackend{Out: &buf}
	assert.NoError(t, b.Send(Message{From: "me@example.com", To: []string{"a@example.com", "b@example.com"}, Subject: "Hi", Body: "Body"}), "sending")
	assert.Equal(t, buf.String(), "From: me@example.com\nTo: a@example.com, b@example.com\nSubject: Hi\n\nBody\n", "output mismatch")
}

func TestNotify(t *testing.T) {
	testCases := []struct {
		name        string
		investorIDs []string
		expectedTo  []string
		expectedIDs []string
	}{
		{
			name:        "all investors",
			expectedTo:  []string{"ada@example.com", "linus@example.com"},
			expectedIDs: []string{"i1", "i3"},
		},
		{
			name:        "selected investors",
			investorIDs: []string{"i3", "i2"},
			expectedTo:  []string{"linus@example.com"},
			expectedIDs: []string{"i3"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := &recordingBackend{}
			u := &recordingUpdater{}
			n := Notifier{Backend: b, Templates: NewTemplates(), From: "me@example.com", SenderName: "Sam", Updater: u, Clock: clock.NewMock()}
			state := testState()

			rec, err := n.Notify(context.Background(), state, Update{Subject: "March", Body: "Passed OSHA", InvestorIDs: tc.investorIDs})
			assert.NoError(t, err, "notifying")

			to := []string{}
			for _, m := range b.sent {
				to = append(to, m.To...)
				assert.Equal(t, m.Subject, "March", "subject mismatch")
			}
			assert.DeepEqual(t, to, tc.expectedTo, "recipients mismatch")

			assert.DeepEqual(t, rec.InvestorIDs, tc.expectedIDs, "record ids mismatch")
			assert.Equal(t, rec.SentAt, "2024-03-04T09:00:00Z", "sentAt mismatch")
			assert.Equal(t, rec.Channel, "test", "channel mismatch")

			assert.Equal(t, len(u.partials), 1, "update count mismatch")
			p := u.partials[0]
			assert.DeepEqual(t, p.InvestorUpdates, []schema.InvestorUpdate{rec}, "investor updates mismatch")
			for _, inv := range p.Investors {
				contacted := false
				for _, id := range tc.expectedIDs {
					contacted = contacted || id == inv.ID
				}
				if contacted {
					assert.Equal(t, inv.LastContact, "2024-03-04", "last contact of "+inv.ID)
				} else {
					assert.Equal(t, inv.LastContact, "", "last contact of "+inv.ID)
				}
			}
			assert.Equal(t, state.Investors[0].LastContact, "", "input state should not be modified")
		})
	}
}

func TestNotify_Errors(t *testing.T) {
	state := testState()

	t.Run("no recipients", func(t *testing.T) {
		u := &recordingUpdater{}
		n := Notifier{Backend: &recordingBackend{}, Templates: NewTemplates(), Updater: u}
		_, err := n.Notify(context.Background(), state, Update{Subject: "March", InvestorIDs: []string{"i2"}})
		assert.Equal(t, err, ErrNoRecipients, "error mismatch")
		assert.Equal(t, len(u.partials), 0, "should not update")
	})

	t.Run("empty subject", func(t *testing.T) {
		n := Notifier{Backend: &recordingBackend{}, Templates: NewTemplates(), Updater: &recordingUpdater{}}
		_, err := n.Notify(context.Background(), state, Update{})
		assert.NotEqual(t, err, nil, "should fail")
	})

	t.Run("send failure", func(t *testing.T) {
		u := &recordingUpdater{}
		n := Notifier{Backend: &recordingBackend{err: errors.New("boom")}, Templates: NewTemplates(), Updater: u}
		_, err := n.Notify(context.Background(), state, Update{Subject: "March"})
		assert.NotEqual(t, err, nil, "should fail")
		assert.Equal(t, len(u.partials), 0, "should not record an unsent update")
	})
}
