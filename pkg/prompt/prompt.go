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

// Package prompt implements the interactive yes/no confirmation used before
// destructive operations such as a full reset.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Confirmer asks the operator to confirm a question
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// FormatQuestion formats a yes/no question with the appropriate choice indicator
func FormatQuestion(question string, optimistic bool) string {
	choices := "(y/N)"
	if optimistic {
		choices = "(Y/n)"
	}
	return fmt.Sprintf("%s %s", question, choices)
}

// ReadYesNo reads and parses a yes/no response from the given reader.
// In optimistic mode, empty input is treated as confirmation.
func ReadYesNo(r io.Reader, optimistic bool) (bool, error) {
	reader := bufio.NewReader(r)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}

	input = strings.ToLower(strings.TrimSpace(input))
	confirmed := input == "y" || input == "yes"

	if optimistic {
		confirmed = confirmed || input == ""
	}

	return confirmed, nil
}

// ReaderConfirmer writes the question to Out and reads the answer from In
type ReaderConfirmer struct {
	In         io.Reader
	Out        io.Writer
	Optimistic bool
}

// Confirm implements Confirmer
func (c ReaderConfirmer) Confirm(question string) (bool, error) {
	if c.Out != nil {
		if _, err := fmt.Fprintf(c.Out, "%s ", FormatQuestion(question, c.Optimistic)); err != nil {
			return false, errors.Wrap(err, "writing question")
		}
	}

	ok, err := ReadYesNo(c.In, c.Optimistic)
	if err != nil {
		return false, errors.Wrap(err, "reading answer")
	}

	return ok, nil
}

// Static is a Confirmer that always gives the same answer. It backs the
// --yes flag and tests.
type Static bool

// Confirm implements Confirmer
func (s Static) Confirm(question string) (bool, error) {
	return bool(s), nil
}
