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

package app

import "github.com/pkg/errors"

var (
	// ErrNotFound an error that indicates that the given resource is not found
	ErrNotFound = errors.New("not found")
	// ErrLoginInvalid is an error for mismatching login credentials
	ErrLoginInvalid = errors.New("wrong credentials")
	// ErrEmailRequired is an error for a missing email
	ErrEmailRequired = errors.New("email is required")
	// ErrPasswordTooShort is an error for a password shorter than the minimum
	ErrPasswordTooShort = errors.New("password should be longer than 8 characters")
	// ErrPasswordConfirmationMismatch is an error for a mismatching password confirmation
	ErrPasswordConfirmationMismatch = errors.New("password confirmation does not match password")
	// ErrDuplicateEmail is an error for an email that is already taken
	ErrDuplicateEmail = errors.New("duplicate email")

	// ErrInvalidPath is an error for a malformed document or collection path
	ErrInvalidPath = errors.New("invalid path")
	// ErrForbidden is an error for a path owned by another user
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidData is an error for a document body that is not a JSON object
	ErrInvalidData = errors.New("document data must be a JSON object")
	// ErrBatchTooLarge is an error for a batch exceeding MaxBatchSize writes
	ErrBatchTooLarge = errors.New("too many writes in a batch")
)
