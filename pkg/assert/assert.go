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

// Package assert provides functions to assert a condition in tests
package assert

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func getErrorMessage(m string, a, b interface{}) string {
	return fmt.Sprintf(`%s.
Actual:
========================
%+v
========================

Expected:
========================
%+v
========================

%s`, m, a, b, string(debug.Stack()))
}

func checkEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return reflect.DeepEqual(a, b)
	}

	return a == b
}

// Equal errors a test if the actual does not match the expected
func Equal(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if !checkEqual(a, b) {
		t.Error(getErrorMessage(message, a, b))
	}
}

// Equalf fails a test if the actual does not match the expected
func Equalf(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if !checkEqual(a, b) {
		t.Fatal(getErrorMessage(message, a, b))
	}
}

// NotEqual fails a test if the actual matches the expected
func NotEqual(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if checkEqual(a, b) {
		t.Error(getErrorMessage(message, a, b))
	}
}

// DeepEqual fails a test if the actual does not deeply equal the expected
func DeepEqual(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if !cmp.Equal(a, b) {
		t.Errorf("%s.\nDiff (-actual +expected):\n%s", message, cmp.Diff(a, b))
	}
}

// NoError fails a test immediately if the given error is not nil
func NoError(t *testing.T, err error, message string) {
	t.Helper()

	if err != nil {
		t.Fatalf("%s: %+v", message, err)
	}
}
