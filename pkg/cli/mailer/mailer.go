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

// Package mailer sends updates to investors
package mailer

import (
	"bytes"
	"fmt"
	"io"
	ttemplate "text/template"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/mailer/templates"
)

var (
	// EmailTypeInvestorUpdate is a progress update sent to an investor
	EmailTypeInvestorUpdate = "investor_update"
)

var (
	// EmailKindText is the type of text email
	EmailKindText = "text/plain"
)

type tmpl interface {
	Execute(wr io.Writer, data interface{}) error
}

type template struct {
	tmpl tmpl
}

// Templates holds the parsed email templates
type Templates map[string]template

func getTemplateKey(name, kind string) string {
	return fmt.Sprintf("%s.%s", name, kind)
}

func (tmpl Templates) get(name, kind string) (template, error) {
	t := tmpl[getTemplateKey(name, kind)]
	if t.tmpl == nil {
		return template{}, errors.Errorf("unsupported template '%s' with type '%s'", name, kind)
	}

	return t, nil
}

// NewTemplates parses the embedded templates
func NewTemplates() Templates {
	investorUpdateText, err := initTextTmpl(EmailTypeInvestorUpdate)
	if err != nil {
		panic(errors.Wrap(err, "initializing investor update template"))
	}

	T := Templates{}
	T[getTemplateKey(EmailTypeInvestorUpdate, EmailKindText)] = template{tmpl: investorUpdateText}

	return T
}

func initTextTmpl(templateName string) (tmpl, error) {
	content, err := templates.Files.ReadFile(fmt.Sprintf("%s.txt", templateName))
	if err != nil {
		return nil, errors.Wrap(err, "reading template")
	}

	t := ttemplate.New(templateName)
	if _, err = t.Parse(string(content)); err != nil {
		return nil, errors.Wrap(err, "parsing template")
	}

	return t, nil
}

// Execute renders a template
func (tmpl Templates) Execute(name, kind string, data interface{}) (string, error) {
	t, err := tmpl.get(name, kind)
	if err != nil {
		return "", errors.Wrap(err, "getting template")
	}

	buf := new(bytes.Buffer)
	if err := t.tmpl.Execute(buf, data); err != nil {
		return "", errors.Wrap(err, "executing the template")
	}

	return buf.String(), nil
}

// InvestorUpdateTmplData is the data of an investor update email
type InvestorUpdateTmplData struct {
	InvestorName        string
	SenderName          string
	Body                string
	CertificationsDone  int
	CertificationsTotal int
	TasksDone           int
	TasksTotal          int
	MonthlyBurn         float64
}
