/*
Package factory turns YAML seed documents into engine records.

PURPOSE:
  A seed describes a staffing setup (roles with cost history, people,
  projects, calendar events, assignments with booked ranges) in one
  file. The factory parses it strictly, validates it, and applies it
  through the engine so every write goes through the same rules as the
  API.

YAML SCHEMA:
  roles:
    - id: dev
      name: Developer
      daily_cost: "550"
      seniority: 2
      cost_history:
        - {start: 2024-01-01, end: 2024-06-30, daily_cost: "500"}
        - {start: 2024-07-01, daily_cost: "550"}
  resources:
    - {id: ada, name: Ada, role: dev, location: milan, skills: [go, sql]}
  projects:
    - {id: apollo, name: Apollo}
  calendar:
    - {date: 2024-12-25, type: NATIONAL_HOLIDAY, name: Christmas}
    - {date: 2024-12-07, type: LOCAL_HOLIDAY, location: milan, name: Sant'Ambrogio}
  assignments:
    - resource: ada
      project: apollo
      allocations:
        - {start: 2024-03-01, end: 2024-03-31, percentage: 60}

  Unknown keys are rejected. Money is written as a quoted decimal.

ORDER OF APPLICATION:
  roles -> cost history -> projects -> resources (+skills) -> calendar ->
  assignments -> allocations. Calendar events land before allocations so
  range writes skip the seeded holidays.

SEE ALSO:
  - api/scenarios.go: embedded demo seeds
  - cmd/server: `load` command
*/
package factory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/staffing"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// YAML SCHEMA TYPES
// =============================================================================

type Seed struct {
	Roles       []RoleSeed       `yaml:"roles"`
	Resources   []ResourceSeed   `yaml:"resources"`
	Projects    []ProjectSeed    `yaml:"projects"`
	Calendar    []EventSeed      `yaml:"calendar"`
	Assignments []AssignmentSeed `yaml:"assignments"`
}

type RoleSeed struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	DailyCost   decimal.Decimal `yaml:"daily_cost"`
	Seniority   int             `yaml:"seniority"`
	CostHistory []IntervalSeed  `yaml:"cost_history"`
}

type IntervalSeed struct {
	Start     generic.Date    `yaml:"start"`
	End       *generic.Date   `yaml:"end"`
	DailyCost decimal.Decimal `yaml:"daily_cost"`
}

type ResourceSeed struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Role        string   `yaml:"role"`
	Location    string   `yaml:"location"`
	MaxStaffing int      `yaml:"max_staffing"`
	Resigned    bool     `yaml:"resigned"`
	Skills      []string `yaml:"skills"`
}

type ProjectSeed struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type EventSeed struct {
	Date     generic.Date `yaml:"date"`
	Type     string       `yaml:"type"`
	Location string       `yaml:"location"`
	Name     string       `yaml:"name"`
}

type AssignmentSeed struct {
	Resource    string           `yaml:"resource"`
	Project     string           `yaml:"project"`
	Allocations []AllocationSeed `yaml:"allocations"`
}

// AllocationSeed books Percentage on every working day of [Start, End].
type AllocationSeed struct {
	Start      generic.Date `yaml:"start"`
	End        generic.Date `yaml:"end"`
	Percentage int          `yaml:"percentage"`
}

// =============================================================================
// PARSING
// =============================================================================

// Parse decodes a single seed document and validates it.
func Parse(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("seed document is empty")
		}
		return nil, fmt.Errorf("decoding seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func ParseBytes(b []byte) (*Seed, error) {
	return Parse(bytes.NewReader(b))
}

func LoadFile(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	seed, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seed, nil
}

// Validate checks what can be checked without a store: required ids,
// duplicates, percentages, ranges, event types and cost histories.
// References to ids not in the document are left to Apply.
func (s *Seed) Validate() error {
	var errs []error

	roles := make(map[string]bool)
	for i, r := range s.Roles {
		if r.ID == "" {
			errs = append(errs, fmt.Errorf("roles[%d]: id is required", i))
			continue
		}
		if roles[r.ID] {
			errs = append(errs, fmt.Errorf("roles[%d]: duplicate id %q", i, r.ID))
		}
		roles[r.ID] = true
		if r.DailyCost.IsNegative() {
			errs = append(errs, fmt.Errorf("role %s: daily_cost must not be negative", r.ID))
		}
		if err := staffing.ValidateHistory(r.history()); err != nil {
			errs = append(errs, fmt.Errorf("role %s: %w", r.ID, err))
		}
	}

	resources := make(map[string]bool)
	for i, r := range s.Resources {
		switch {
		case r.ID == "":
			errs = append(errs, fmt.Errorf("resources[%d]: id is required", i))
		case resources[r.ID]:
			errs = append(errs, fmt.Errorf("resources[%d]: duplicate id %q", i, r.ID))
		case r.Role == "":
			errs = append(errs, fmt.Errorf("resource %s: role is required", r.ID))
		case r.MaxStaffing < 0:
			errs = append(errs, fmt.Errorf("resource %s: max_staffing must not be negative", r.ID))
		}
		resources[r.ID] = true
	}

	projects := make(map[string]bool)
	for i, p := range s.Projects {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("projects[%d]: id is required", i))
			continue
		}
		if projects[p.ID] {
			errs = append(errs, fmt.Errorf("projects[%d]: duplicate id %q", i, p.ID))
		}
		projects[p.ID] = true
	}

	for i, e := range s.Calendar {
		if err := staffing.ValidateCalendarEvent(e.event()); err != nil {
			errs = append(errs, fmt.Errorf("calendar[%d]: %w", i, err))
		}
	}

	pairs := make(map[[2]string]bool)
	for i, a := range s.Assignments {
		key := [2]string{a.Resource, a.Project}
		if a.Resource == "" || a.Project == "" {
			errs = append(errs, fmt.Errorf("assignments[%d]: resource and project are required", i))
			continue
		}
		if pairs[key] {
			errs = append(errs, fmt.Errorf("assignments[%d]: %w (%s on %s)", i, generic.ErrDuplicateAssignment, a.Resource, a.Project))
		}
		pairs[key] = true
		for j, al := range a.Allocations {
			if err := generic.NewDateRange(al.Start, al.End).Validate(); err != nil {
				errs = append(errs, fmt.Errorf("assignments[%d].allocations[%d]: %w", i, j, err))
			}
			if !generic.Percentage(al.Percentage).Valid() {
				errs = append(errs, fmt.Errorf("assignments[%d].allocations[%d]: %w",
					i, j, &generic.InvalidPercentageError{Value: al.Percentage}))
			}
		}
	}

	return errors.Join(errs...)
}

func (r RoleSeed) history() []generic.RoleCostInterval {
	out := make([]generic.RoleCostInterval, len(r.CostHistory))
	for i, h := range r.CostHistory {
		out[i] = generic.RoleCostInterval{
			RoleID:    generic.RoleID(r.ID),
			StartDate: h.Start,
			EndDate:   h.End,
			DailyCost: h.DailyCost,
		}
	}
	return out
}

func (e EventSeed) event() generic.CalendarEvent {
	return generic.CalendarEvent{
		Date:     e.Date,
		Type:     generic.CalendarEventType(e.Type),
		Location: generic.Location(e.Location),
		Name:     e.Name,
	}
}

// =============================================================================
// APPLY
// =============================================================================

// Summary counts what Apply created.
type Summary struct {
	Roles          int `json:"roles"`
	Resources      int `json:"resources"`
	Projects       int `json:"projects"`
	CalendarEvents int `json:"calendar_events"`
	Assignments    int `json:"assignments"`
	AllocatedDays  int `json:"allocated_days"`
}

// Apply creates every record of the seed through the engine. Records are
// created, not updated: an id that already exists is a conflict. Apply
// stops at the first failure; what was written before it stays.
func (s *Seed) Apply(ctx context.Context, e *staffing.Engine) (Summary, error) {
	var sum Summary

	for _, r := range s.Roles {
		if _, err := e.Directory.SaveRole(ctx, generic.Role{
			ID:             generic.RoleID(r.ID),
			Name:           r.Name,
			DailyCost:      r.DailyCost,
			SeniorityLevel: r.Seniority,
		}); err != nil {
			return sum, fmt.Errorf("role %s: %w", r.ID, err)
		}
		if len(r.CostHistory) > 0 {
			if err := e.Rates.RecordHistory(ctx, generic.RoleID(r.ID), r.history()); err != nil {
				return sum, fmt.Errorf("role %s cost history: %w", r.ID, err)
			}
		}
		sum.Roles++
	}

	for _, p := range s.Projects {
		if _, err := e.Directory.SaveProject(ctx, generic.Project{ID: generic.ProjectID(p.ID), Name: p.Name}); err != nil {
			return sum, fmt.Errorf("project %s: %w", p.ID, err)
		}
		sum.Projects++
	}

	for _, r := range s.Resources {
		id := generic.ResourceID(r.ID)
		if _, err := e.Directory.SaveResource(ctx, generic.Resource{
			ID:                    id,
			Name:                  r.Name,
			RoleID:                generic.RoleID(r.Role),
			Location:              generic.Location(r.Location),
			MaxStaffingPercentage: r.MaxStaffing,
			Resigned:              r.Resigned,
		}); err != nil {
			return sum, fmt.Errorf("resource %s: %w", r.ID, err)
		}
		if len(r.Skills) > 0 {
			skills := make([]generic.SkillID, len(r.Skills))
			for i, sk := range r.Skills {
				skills[i] = generic.SkillID(sk)
			}
			if err := e.Directory.SetSkills(ctx, id, skills); err != nil {
				return sum, fmt.Errorf("resource %s skills: %w", r.ID, err)
			}
		}
		sum.Resources++
	}

	for _, ev := range s.Calendar {
		if _, err := e.Directory.AddCalendarEvent(ctx, ev.event()); err != nil {
			return sum, fmt.Errorf("calendar %s: %w", ev.Date, err)
		}
		sum.CalendarEvents++
	}

	for _, a := range s.Assignments {
		created, err := e.Allocations.CreateAssignment(ctx, generic.ResourceID(a.Resource), generic.ProjectID(a.Project))
		if err != nil {
			return sum, fmt.Errorf("assignment %s/%s: %w", a.Resource, a.Project, err)
		}
		sum.Assignments++
		for _, al := range a.Allocations {
			res, err := e.Allocations.BulkSetRange(ctx, created.ID, al.Start, al.End, generic.Percentage(al.Percentage))
			if err != nil {
				return sum, fmt.Errorf("assignment %s/%s %s..%s: %w", a.Resource, a.Project, al.Start, al.End, err)
			}
			sum.AllocatedDays += res.Written
		}
	}

	return sum, nil
}
