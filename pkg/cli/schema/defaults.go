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

// defaultCertifications is the seed list of certifications
var defaultCertifications = []Certification{
	{ID: "cert-osha-10", Name: "OSHA 10-Hour Construction", Issuer: "OSHA", Status: CertNotStarted, Cost: 89},
	{ID: "cert-nabcep-pva", Name: "PV Associate", Issuer: "NABCEP", Status: CertNotStarted, Cost: 150},
	{ID: "cert-nabcep-pvip", Name: "PV Installation Professional", Issuer: "NABCEP", Status: CertNotStarted, Cost: 600},
	{ID: "cert-nfpa-70e", Name: "NFPA 70E Electrical Safety", Issuer: "NFPA", Status: CertNotStarted, Cost: 250},
}

var defaultRoutineTasks = []RoutineTask{
	{ID: "task-study", Title: "Study for certification (1h)", Status: StatusTodo, Priority: PriorityHigh, Category: "Learning"},
	{ID: "task-outreach", Title: "Reach out to one installer", Status: StatusTodo, Priority: PriorityMedium, Category: "Networking"},
	{ID: "task-journal", Title: "Write journal entry", Status: StatusTodo, Priority: PriorityLow, Category: DefaultCategory},
}

var defaultExpenses = []Expense{
	{ID: "exp-training", Name: "Training & Exams", Category: "Education", Amount: 0},
	{ID: "exp-tools", Name: "Tools & PPE", Category: "Equipment", Amount: 0},
	{ID: "exp-transport", Name: "Transport", Category: "Operations", Amount: 0},
	{ID: "exp-insurance", Name: "Insurance", Category: "Operations", Amount: 0},
}

// DefaultCertifications returns a fresh copy of the seed certifications
func DefaultCertifications() []Certification {
	return cloneSlice(defaultCertifications)
}

// DefaultSyncSettings returns the settings of a disconnected instance
func DefaultSyncSettings() SyncSettings {
	return SyncSettings{}
}

// DefaultState returns a fresh copy of the state of a first run
func DefaultState() ApplicationState {
	return ApplicationState{
		UserRole:        RoleAdmin,
		Certifications:  DefaultCertifications(),
		Investors:       []Investor{},
		InvestorUpdates: []InvestorUpdate{},
		RoutineTasks:    cloneSlice(defaultRoutineTasks),
		Journal:         []JournalEntry{},
		WeeklyRecaps:    []WeeklyRecap{},
		FieldLogs:       []FieldLog{},
		Expenses:        cloneSlice(defaultExpenses),
		SyncSettings:    DefaultSyncSettings(),
	}
}
