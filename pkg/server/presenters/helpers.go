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

// Package presenters shapes database models into API responses
package presenters

import (
	"time"
)

// presentTime normalizes a timestamp to UTC at the microsecond precision
// postgres stores, so that a response reads the same from either database
func presentTime(ts time.Time) time.Time {
	return ts.UTC().Round(time.Microsecond)
}

// latestVersion returns the highest USN among the documents, or the given
// floor if it is higher
func latestVersion(docs []Document, floor int) int {
	ret := floor
	for _, d := range docs {
		if d.Version > ret {
			ret = d.Version
		}
	}

	return ret
}
