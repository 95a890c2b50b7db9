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

// Field is a top-level key of the application state
type Field string

const (
	// FieldUserRole is the userRole key
	FieldUserRole Field = "userRole"
	// FieldCertifications is the certifications key
	FieldCertifications Field = "certifications"
	// FieldInvestors is the investors key
	FieldInvestors Field = "investors"
	// FieldInvestorUpdates is the investorUpdates key
	FieldInvestorUpdates Field = "investorUpdates"
	// FieldRoutineTasks is the routineTasks key
	FieldRoutineTasks Field = "routineTasks"
	// FieldJournal is the journal key
	FieldJournal Field = "journal"
	// FieldWeeklyRecaps is the weeklyRecaps key
	FieldWeeklyRecaps Field = "weeklyRecaps"
	// FieldFieldLogs is the fieldLogs key
	FieldFieldLogs Field = "fieldLogs"
	// FieldExpenses is the expenses key
	FieldExpenses Field = "expenses"
	// FieldSyncSettings is the syncSettings key
	FieldSyncSettings Field = "syncSettings"
	// FieldLastSaved is the lastSaved key
	FieldLastSaved Field = "lastSaved"
)

// ListFields are the fields stored as one remote collection each
var ListFields = []Field{
	FieldCertifications,
	FieldInvestors,
	FieldInvestorUpdates,
	FieldRoutineTasks,
	FieldJournal,
	FieldWeeklyRecaps,
	FieldFieldLogs,
	FieldExpenses,
}

// ScalarFields are the fields stored on the root user document
var ScalarFields = []Field{
	FieldUserRole,
	FieldSyncSettings,
}

// IsList reports whether the field is a list field
func (f Field) IsList() bool {
	for _, l := range ListFields {
		if l == f {
			return true
		}
	}

	return false
}

// Partial is a partial update of the application state. A nil slice or a nil
// pointer means the key is absent. A non-nil slice, even an empty one,
// replaces the whole list.
type Partial struct {
	UserRole        *UserRole
	Certifications  []Certification
	Investors       []Investor
	InvestorUpdates []InvestorUpdate
	RoutineTasks    []RoutineTask
	Journal         []JournalEntry
	WeeklyRecaps    []WeeklyRecap
	FieldLogs       []FieldLog
	Expenses        []Expense
	SyncSettings    *SyncSettings
}

// Fields returns the keys present in the partial, in a stable order
func (p Partial) Fields() []Field {
	var ret []Field

	if p.UserRole != nil {
		ret = append(ret, FieldUserRole)
	}
	if p.Certifications != nil {
		ret = append(ret, FieldCertifications)
	}
	if p.Investors != nil {
		ret = append(ret, FieldInvestors)
	}
	if p.InvestorUpdates != nil {
		ret = append(ret, FieldInvestorUpdates)
	}
	if p.RoutineTasks != nil {
		ret = append(ret, FieldRoutineTasks)
	}
	if p.Journal != nil {
		ret = append(ret, FieldJournal)
	}
	if p.WeeklyRecaps != nil {
		ret = append(ret, FieldWeeklyRecaps)
	}
	if p.FieldLogs != nil {
		ret = append(ret, FieldFieldLogs)
	}
	if p.Expenses != nil {
		ret = append(ret, FieldExpenses)
	}
	if p.SyncSettings != nil {
		ret = append(ret, FieldSyncSettings)
	}

	return ret
}

// Empty reports whether the partial carries no key
func (p Partial) Empty() bool {
	return len(p.Fields()) == 0
}

// Apply returns a copy of the state with the keys present in the partial
// replaced. Keys that are absent are left unchanged.
func (p Partial) Apply(s ApplicationState) ApplicationState {
	ret := s.Clone()

	if p.UserRole != nil {
		ret.UserRole = *p.UserRole
	}
	if p.Certifications != nil {
		ret.Certifications = cloneSlice(p.Certifications)
	}
	if p.Investors != nil {
		ret.Investors = cloneSlice(p.Investors)
	}
	if p.InvestorUpdates != nil {
		ret.InvestorUpdates = cloneUpdates(p.InvestorUpdates)
	}
	if p.RoutineTasks != nil {
		ret.RoutineTasks = MigrateRoutineTasks(p.RoutineTasks)
	}
	if p.Journal != nil {
		ret.Journal = cloneSlice(p.Journal)
	}
	if p.WeeklyRecaps != nil {
		ret.WeeklyRecaps = cloneSlice(p.WeeklyRecaps)
	}
	if p.FieldLogs != nil {
		ret.FieldLogs = cloneSlice(p.FieldLogs)
	}
	if p.Expenses != nil {
		ret.Expenses = cloneSlice(p.Expenses)
	}
	if p.SyncSettings != nil {
		ret.SyncSettings = *p.SyncSettings
	}

	return ret
}

// FullPartial returns a partial carrying every key of the state
func FullPartial(s ApplicationState) Partial {
	n := Normalize(s)
	role := n.UserRole
	settings := n.SyncSettings

	return Partial{
		UserRole:        &role,
		Certifications:  n.Certifications,
		Investors:       n.Investors,
		InvestorUpdates: n.InvestorUpdates,
		RoutineTasks:    n.RoutineTasks,
		Journal:         n.Journal,
		WeeklyRecaps:    n.WeeklyRecaps,
		FieldLogs:       n.FieldLogs,
		Expenses:        n.Expenses,
		SyncSettings:    &settings,
	}
}

// Value returns the value of a present key
func (p Partial) Value(f Field) (interface{}, bool) {
	switch f {
	case FieldUserRole:
		if p.UserRole != nil {
			return *p.UserRole, true
		}
	case FieldCertifications:
		return p.Certifications, p.Certifications != nil
	case FieldInvestors:
		return p.Investors, p.Investors != nil
	case FieldInvestorUpdates:
		return p.InvestorUpdates, p.InvestorUpdates != nil
	case FieldRoutineTasks:
		return p.RoutineTasks, p.RoutineTasks != nil
	case FieldJournal:
		return p.Journal, p.Journal != nil
	case FieldWeeklyRecaps:
		return p.WeeklyRecaps, p.WeeklyRecaps != nil
	case FieldFieldLogs:
		return p.FieldLogs, p.FieldLogs != nil
	case FieldExpenses:
		return p.Expenses, p.Expenses != nil
	case FieldSyncSettings:
		if p.SyncSettings != nil {
			return *p.SyncSettings, true
		}
	}

	return nil, false
}

// Only returns a partial carrying the given keys of the state
func Only(s ApplicationState, fields ...Field) Partial {
	full := FullPartial(s)

	var ret Partial
	for _, f := range fields {
		switch f {
		case FieldUserRole:
			ret.UserRole = full.UserRole
		case FieldCertifications:
			ret.Certifications = full.Certifications
		case FieldInvestors:
			ret.Investors = full.Investors
		case FieldInvestorUpdates:
			ret.InvestorUpdates = full.InvestorUpdates
		case FieldRoutineTasks:
			ret.RoutineTasks = full.RoutineTasks
		case FieldJournal:
			ret.Journal = full.Journal
		case FieldWeeklyRecaps:
			ret.WeeklyRecaps = full.WeeklyRecaps
		case FieldFieldLogs:
			ret.FieldLogs = full.FieldLogs
		case FieldExpenses:
			ret.Expenses = full.Expenses
		case FieldSyncSettings:
			ret.SyncSettings = full.SyncSettings
		}
	}

	return ret
}
