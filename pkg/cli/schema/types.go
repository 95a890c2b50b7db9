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

// Package schema defines the canonical shape of the application state and
// upgrades records persisted by older versions to it.
package schema

import (
	"time"
)

// UserRole is who is viewing the data
type UserRole string

const (
	// RoleAdmin is the owner of the data
	RoleAdmin UserRole = "Admin"
	// RoleInvestor is a read-mostly investor view
	RoleInvestor UserRole = "Investor"
)

// Valid reports whether the role is one of the known roles
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleInvestor
}

// TaskStatus is the progress of a routine task
type TaskStatus string

const (
	// StatusTodo is a task that has not been started
	StatusTodo TaskStatus = "Todo"
	// StatusInProgress is a task that has been started
	StatusInProgress TaskStatus = "InProgress"
	// StatusDone is a completed task
	StatusDone TaskStatus = "Done"
)

// Priority is the priority of a routine task
type Priority string

const (
	// PriorityLow is a low priority
	PriorityLow Priority = "Low"
	// PriorityMedium is the default priority
	PriorityMedium Priority = "Medium"
	// PriorityHigh is a high priority
	PriorityHigh Priority = "High"
)

// DefaultCategory is the category of a routine task that has none
const DefaultCategory = "General"

// CertificationStatus is the progress of a certification
type CertificationStatus string

const (
	// CertNotStarted is a certification that has not been started
	CertNotStarted CertificationStatus = "Not Started"
	// CertInProgress is a certification being studied for
	CertInProgress CertificationStatus = "In Progress"
	// CertCompleted is an obtained certification
	CertCompleted CertificationStatus = "Completed"
)

// Certification is a credential the user is working towards
type Certification struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Issuer        string              `json:"issuer"`
	Status        CertificationStatus `json:"status"`
	Progress      int                 `json:"progress"`
	Cost          float64             `json:"cost"`
	TargetDate    string              `json:"targetDate"`
	CompletedDate string              `json:"completedDate"`
	Notes         string              `json:"notes"`
}

// Investor is a CRM entry
type Investor struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Firm        string  `json:"firm"`
	Email       string  `json:"email"`
	Stage       string  `json:"stage"`
	Commitment  float64 `json:"commitment"`
	LastContact string  `json:"lastContact"`
	Notes       string  `json:"notes"`
}

// InvestorUpdate is a communication sent to investors
type InvestorUpdate struct {
	ID          string   `json:"id"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	InvestorIDs []string `json:"investorIds"`
	SentAt      string   `json:"sentAt"`
	Channel     string   `json:"channel"`
}

// RoutineTask is an item of the daily checklist. Label and Completed are
// fields of the older schema; they are kept as-is on migrated records.
type RoutineTask struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Label     string     `json:"label"`
	Status    TaskStatus `json:"status"`
	Completed bool       `json:"completed"`
	Priority  Priority   `json:"priority"`
	Category  string     `json:"category"`
}

// JournalEntry is a free-text reflection. Analysis holds the raw text
// returned by the text-generation service.
type JournalEntry struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Content  string `json:"content"`
	Mood     string `json:"mood"`
	Analysis string `json:"aiAnalysis"`
}

// WeeklyRecap is a generated weekly summary stored as opaque text
type WeeklyRecap struct {
	ID          string `json:"id"`
	WeekOf      string `json:"weekOf"`
	Content     string `json:"content"`
	GeneratedAt string `json:"generatedAt"`
}

// FieldLog is a location-stamped work log
type FieldLog struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Hours     float64 `json:"hours"`
	Notes     string  `json:"notes"`
}

// Expense is a recurring monthly cost
type Expense struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// SyncSettings configures bridging to an external application
type SyncSettings struct {
	ExternalAppURL    string `json:"externalAppUrl"`
	IsConnected       bool   `json:"isConnected"`
	LastSync          string `json:"lastSync"`
	RemoteCredentials string `json:"remoteCredentials"`
}

// ApplicationState is the aggregate root of all persisted user data
type ApplicationState struct {
	UserRole        UserRole         `json:"userRole"`
	Certifications  []Certification  `json:"certifications"`
	Investors       []Investor       `json:"investors"`
	InvestorUpdates []InvestorUpdate `json:"investorUpdates"`
	RoutineTasks    []RoutineTask    `json:"routineTasks"`
	Journal         []JournalEntry   `json:"journal"`
	WeeklyRecaps    []WeeklyRecap    `json:"weeklyRecaps"`
	FieldLogs       []FieldLog       `json:"fieldLogs"`
	Expenses        []Expense        `json:"expenses"`
	SyncSettings    SyncSettings     `json:"syncSettings"`
	LastSaved       time.Time        `json:"lastSaved"`
}

// Clone returns a deep copy of the state
func (s ApplicationState) Clone() ApplicationState {
	ret := s

	ret.Certifications = cloneSlice(s.Certifications)
	ret.Investors = cloneSlice(s.Investors)
	ret.InvestorUpdates = cloneUpdates(s.InvestorUpdates)
	ret.RoutineTasks = cloneSlice(s.RoutineTasks)
	ret.Journal = cloneSlice(s.Journal)
	ret.WeeklyRecaps = cloneSlice(s.WeeklyRecaps)
	ret.FieldLogs = cloneSlice(s.FieldLogs)
	ret.Expenses = cloneSlice(s.Expenses)

	return ret
}

// cloneUpdates copies investor updates along with their recipient lists
func cloneUpdates(in []InvestorUpdate) []InvestorUpdate {
	ret := make([]InvestorUpdate, 0, len(in))
	for _, u := range in {
		if u.InvestorIDs != nil {
			u.InvestorIDs = cloneSlice(u.InvestorIDs)
		}
		ret = append(ret, u)
	}

	return ret
}

// cloneSlice copies a slice and never returns nil
func cloneSlice[T any](in []T) []T {
	ret := make([]T, len(in))
	copy(ret, in)

	return ret
}
