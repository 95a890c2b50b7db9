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

package schema

// MonthlyBurn returns the total of the recurring monthly expenses
func MonthlyBurn(expenses []Expense) float64 {
	var ret float64
	for _, e := range expenses {
		ret += e.Amount
	}

	return ret
}

// TotalCommitted returns the capital committed by all investors
func TotalCommitted(investors []Investor) float64 {
	var ret float64
	for _, i := range investors {
		ret += i.Commitment
	}

	return ret
}

// RunwayMonths returns how many months the committed capital covers at the
// current burn. It returns -1 when there is no burn.
func RunwayMonths(s ApplicationState) float64 {
	burn := MonthlyBurn(s.Expenses)
	if burn <= 0 {
		return -1
	}

	return TotalCommitted(s.Investors) / burn
}

// TaskProgress returns the number of done tasks and the total
func TaskProgress(tasks []RoutineTask) (int, int) {
	done := 0
	for _, t := range tasks {
		if migrateTask(t).Status == StatusDone {
			done++
		}
	}

	return done, len(tasks)
}
