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

// Package validate checks user input before it becomes a record
package validate

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrNameEmpty is an error for an empty name or title
var ErrNameEmpty = errors.New("The name is empty")

// ErrNameMultiline is an error for a name that has linebreaks
var ErrNameMultiline = errors.New("The name contains multiple lines")

// ErrCategoryNumeric is an error for a category that only contains numbers
var ErrCategoryNumeric = errors.New("The category cannot contain only numbers")

// ErrAmountNegative is an error for a negative amount of money
var ErrAmountNegative = errors.New("The amount must not be negative")

// ErrEmailInvalid is an error for an email address without a domain
var ErrEmailInvalid = errors.New("The email is invalid")

func isNumber(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil && !strings.HasPrefix(s, "+") && !strings.HasPrefix(s, "-")
}

// Name validates the name of a record such as a task title or an investor
func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameEmpty
	}

	if strings.Contains(name, "\n") || strings.Contains(name, "\r") {
		return ErrNameMultiline
	}

	return nil
}

// Category validates a task or expense category
func Category(category string) error {
	if err := Name(category); err != nil {
		return err
	}

	if isNumber(category) {
		return ErrCategoryNumeric
	}

	return nil
}

// Amount validates an amount of money
func Amount(v float64) error {
	if v < 0 {
		return ErrAmountNegative
	}

	return nil
}

// Email validates an optional email address
func Email(email string) error {
	if email == "" {
		return nil
	}

	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \n") {
		return ErrEmailInvalid
	}

	return nil
}
