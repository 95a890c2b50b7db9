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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// ErrSMTPNotConfigured is an error indicating that SMTP is not configured
var ErrSMTPNotConfigured = errors.New("SMTP is not configured")

// Message is a rendered email
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Backend delivers rendered emails
type Backend interface {
	Send(m Message) error
	// Channel names the delivery channel recorded on sent updates
	Channel() string
}

// EmailDialer is an interface for sending email messages
type EmailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPParams are the settings of the SMTP server
type SMTPParams struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPBackend sends emails over SMTP
type SMTPBackend struct {
	Dialer EmailDialer
}

// NewSMTPBackend returns a backend dialing the given server
func NewSMTPBackend(p SMTPParams) (*SMTPBackend, error) {
	if p.Host == "" || p.Port == 0 {
		return nil, ErrSMTPNotConfigured
	}

	return &SMTPBackend{
		Dialer: gomail.NewDialer(p.Host, p.Port, p.Username, p.Password),
	}, nil
}

// Send sends the email immediately
func (b *SMTPBackend) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody(EmailKindText, msg.Body)

	if err := b.Dialer.DialAndSend(m); err != nil {
		return errors.Wrap(err, "dialing and sending email")
	}

	return nil
}

// Channel returns the delivery channel
func (b *SMTPBackend) Channel() string {
	return "email"
}

// StdoutBackend prints emails instead of sending them
type StdoutBackend struct {
	Out io.Writer
}

// NewStdoutBackend returns a backend printing to stdout
func NewStdoutBackend() *StdoutBackend {
	return &StdoutBackend{Out: os.Stdout}
}

// Send prints the email
func (b *StdoutBackend) Send(m Message) error {
	_, err := fmt.Fprintf(b.Out, "From: %s\nTo: %s\nSubject: %s\n\n%s\n", m.From, strings.Join(m.To, ", "), m.Subject, m.Body)
	if err != nil {
		return errors.Wrap(err, "printing email")
	}

	return nil
}

// Channel returns the delivery channel
func (b *StdoutBackend) Channel() string {
	return "stdout"
}
