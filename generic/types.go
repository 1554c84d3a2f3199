/*
Package generic provides the core types of the staffing allocation engine.

PURPOSE:
  Everything the engine components share lives here: calendar days and
  ranges, typed identifiers, the master-data records the engine reads,
  the allocation ledger entry, the error taxonomy and the storage
  interfaces. Nothing in this package computes capacity or cost.

KEY CONCEPTS IN THIS FILE (types.go):
  - Percentage: share of one person's working day, 0..100
  - Resource / Role / Project: versioned master data (see versioned.go)
  - Assignment: the unique (resource, project) link allocations hang off
  - AllocationEntry: one day of one assignment; 0% is never stored
  - RoleCostInterval: one effective-dated daily cost of a role
  - CalendarEvent: a holiday or closure that removes a working day

USAGE:
  entry := generic.AllocationEntry{
      AssignmentID: "asg-1",
      Date:         generic.NewDate(2024, time.March, 4),
      Percentage:   50,
  }

SEE ALSO:
  - time.go: Date and Month
  - store.go: persistence interfaces
  - staffing/: the engine components built on these types
*/
package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ResourceID string
type ProjectID string
type AssignmentID string
type RoleID string
type SkillID string
type CalendarEventID string

// Location scopes LOCAL_HOLIDAY events (a site, office or region code).
type Location string

// =============================================================================
// PERCENTAGE
// =============================================================================

// DefaultMaxStaffing is the daily load ceiling of a resource without an override.
const DefaultMaxStaffing = 100

// Percentage is the share of one working day committed to an assignment.
type Percentage int

func (p Percentage) Valid() bool { return p >= 0 && p <= 100 }

// Fraction returns p/100.
func (p Percentage) Fraction() decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Div(decimal.NewFromInt(100))
}

// =============================================================================
// MASTER DATA
// =============================================================================

type Resource struct {
	ID                    ResourceID
	Name                  string
	RoleID                RoleID
	Location              Location
	MaxStaffingPercentage int // <= 0 means DefaultMaxStaffing
	Resigned              bool
	Version               int64
}

// MaxStaffing returns the effective daily ceiling.
func (r Resource) MaxStaffing() int {
	if r.MaxStaffingPercentage <= 0 {
		return DefaultMaxStaffing
	}
	return r.MaxStaffingPercentage
}

type Role struct {
	ID             RoleID
	Name           string
	DailyCost      decimal.Decimal // current rate, fallback when no interval applies
	SeniorityLevel int
	Version        int64
}

type Project struct {
	ID      ProjectID
	Name    string
	Version int64
}

// Assignment links one resource to one project. It is never edited, only
// deleted, and deleting it deletes its allocations.
type Assignment struct {
	ID         AssignmentID
	ResourceID ResourceID
	ProjectID  ProjectID
	CreatedAt  time.Time
}

// =============================================================================
// LEDGER
// =============================================================================

// AllocationEntry is one (assignment, date) cell of the ledger.
type AllocationEntry struct {
	AssignmentID AssignmentID
	Date         Date
	Percentage   Percentage
}

// RoleCostInterval is one effective-dated daily cost. A nil EndDate is open.
type RoleCostInterval struct {
	RoleID    RoleID
	StartDate Date
	EndDate   *Date
	DailyCost decimal.Decimal
}

// Covers reports whether date falls inside the interval.
func (i RoleCostInterval) Covers(date Date) bool {
	if date.Before(i.StartDate) {
		return false
	}
	return i.EndDate == nil || date.BeforeOrEqual(*i.EndDate)
}

// IsOpen reports whether the interval has no end date.
func (i RoleCostInterval) IsOpen() bool { return i.EndDate == nil }

// =============================================================================
// CALENDAR
// =============================================================================

type CalendarEventType string

const (
	NationalHoliday CalendarEventType = "NATIONAL_HOLIDAY"
	CompanyClosure  CalendarEventType = "COMPANY_CLOSURE"
	LocalHoliday    CalendarEventType = "LOCAL_HOLIDAY"
)

func (t CalendarEventType) Valid() bool {
	switch t {
	case NationalHoliday, CompanyClosure, LocalHoliday:
		return true
	}
	return false
}

type CalendarEvent struct {
	ID       CalendarEventID
	Date     Date
	Type     CalendarEventType
	Location Location // only meaningful for LOCAL_HOLIDAY
	Name     string
}

// AppliesTo reports whether the event removes date's working status at loc.
func (e CalendarEvent) AppliesTo(loc Location) bool {
	if e.Type == LocalHoliday {
		return e.Location == loc
	}
	return true
}
