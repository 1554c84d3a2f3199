/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes of the HTTP API, kept apart from the engine types so the
  wire contract can evolve on its own.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

FORMATS:
  Dates are "YYYY-MM-DD", months "YYYY-MM". Money is a decimal string
  ("512.50") so no precision is lost in JavaScript clients.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// MASTER DATA
// =============================================================================

type RoleDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	DailyCost      decimal.Decimal `json:"daily_cost"`
	SeniorityLevel int             `json:"seniority_level"`
	Version        int64           `json:"version"`
}

type ResourceDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	RoleID      string   `json:"role_id"`
	Location    string   `json:"location"`
	MaxStaffing int      `json:"max_staffing"`
	Resigned    bool     `json:"resigned"`
	Skills      []string `json:"skills,omitempty"`
	Version     int64    `json:"version"`
}

type ProjectDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version int64  `json:"version"`
}

type SkillsRequest struct {
	Skills []string `json:"skills"`
}

// ChangeCostRequest moves a role's daily cost from EffectiveFrom onward.
// Version is the role version the client last read.
type ChangeCostRequest struct {
	EffectiveFrom generic.Date    `json:"effective_from"`
	DailyCost     decimal.Decimal `json:"daily_cost"`
	Version       int64           `json:"version"`
}

type RateDTO struct {
	RoleID    string          `json:"role_id"`
	Date      generic.Date    `json:"date"`
	DailyCost decimal.Decimal `json:"daily_cost"`
}

// =============================================================================
// ASSIGNMENTS AND ALLOCATIONS
// =============================================================================

type AssignmentDTO struct {
	ID         string `json:"id"`
	ResourceID string `json:"resource_id"`
	ProjectID  string `json:"project_id"`
	CreatedAt  string `json:"created_at"`
}

type CreateAssignmentRequest struct {
	ResourceID string `json:"resource_id"`
	ProjectID  string `json:"project_id"`
}

type AllocationDTO struct {
	Date       generic.Date `json:"date"`
	Percentage int          `json:"percentage"`
}

type SetAllocationRequest struct {
	Percentage int `json:"percentage"`
}

type BulkAllocationRequest struct {
	Start      generic.Date `json:"start"`
	End        generic.Date `json:"end"`
	Percentage int          `json:"percentage"`
}

type BulkResultDTO struct {
	Written int            `json:"written"`
	Skipped []generic.Date `json:"skipped"`
}

type CostDTO struct {
	AssignmentID string          `json:"assignment_id"`
	Start        generic.Date    `json:"start"`
	End          generic.Date    `json:"end"`
	Cost         decimal.Decimal `json:"cost"`
}

// =============================================================================
// CAPACITY
// =============================================================================

type LoadDTO struct {
	ResourceID string       `json:"resource_id"`
	Date       generic.Date `json:"date"`
	Load       int          `json:"load"`
	Max        int          `json:"max"`
	Status     string       `json:"status"`
	WorkingDay bool         `json:"working_day"`
}

type UtilizationDTO struct {
	ResourceID  string  `json:"resource_id"`
	Month       string  `json:"month"`
	Average     float64 `json:"average_percentage"`
	WorkingDays int     `json:"working_days"`
}

type FTEDTO struct {
	ProjectID string  `json:"project_id"`
	Month     string  `json:"month"`
	FTE       float64 `json:"fte"`
}

// =============================================================================
// BEST FIT
// =============================================================================

type MatchRequestDTO struct {
	RoleID        string       `json:"role_id"`
	Start         generic.Date `json:"start"`
	End           generic.Date `json:"end"`
	Commitment    int          `json:"commitment_percentage"`
	DesiredSkills []string     `json:"desired_skills,omitempty"`
	Seniority     *int         `json:"seniority,omitempty"`
}

type MatchDTO struct {
	ResourceID   string  `json:"resource_id"`
	Name         string  `json:"name"`
	RoleID       string  `json:"role_id"`
	Score        float64 `json:"score"`
	AverageLoad  float64 `json:"average_load"`
	Availability float64 `json:"availability"`
	SkillMatch   float64 `json:"skill_match"`
	SeniorityFit float64 `json:"seniority_fit"`
	CanAbsorb    bool    `json:"can_absorb"`
}

// =============================================================================
// CALENDAR AND SCENARIOS
// =============================================================================

type CalendarEventDTO struct {
	ID       string       `json:"id,omitempty"`
	Date     generic.Date `json:"date"`
	Type     string       `json:"type"`
	Location string       `json:"location,omitempty"`
	Name     string       `json:"name"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`

	// Retryable is set when re-reading and resubmitting may succeed.
	Retryable bool `json:"retryable,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toRoleDTO(r generic.Role) RoleDTO {
	return RoleDTO{
		ID:             string(r.ID),
		Name:           r.Name,
		DailyCost:      r.DailyCost,
		SeniorityLevel: r.SeniorityLevel,
		Version:        r.Version,
	}
}

func (d RoleDTO) toRole() generic.Role {
	return generic.Role{
		ID:             generic.RoleID(d.ID),
		Name:           d.Name,
		DailyCost:      d.DailyCost,
		SeniorityLevel: d.SeniorityLevel,
		Version:        d.Version,
	}
}

func toResourceDTO(r generic.Resource, skills []generic.SkillID) ResourceDTO {
	dto := ResourceDTO{
		ID:          string(r.ID),
		Name:        r.Name,
		RoleID:      string(r.RoleID),
		Location:    string(r.Location),
		MaxStaffing: r.MaxStaffing(),
		Resigned:    r.Resigned,
		Version:     r.Version,
	}
	for _, s := range skills {
		dto.Skills = append(dto.Skills, string(s))
	}
	return dto
}

func (d ResourceDTO) toResource() generic.Resource {
	return generic.Resource{
		ID:                    generic.ResourceID(d.ID),
		Name:                  d.Name,
		RoleID:                generic.RoleID(d.RoleID),
		Location:              generic.Location(d.Location),
		MaxStaffingPercentage: d.MaxStaffing,
		Resigned:              d.Resigned,
		Version:               d.Version,
	}
}

func toProjectDTO(p generic.Project) ProjectDTO {
	return ProjectDTO{ID: string(p.ID), Name: p.Name, Version: p.Version}
}

func toAssignmentDTO(a generic.Assignment) AssignmentDTO {
	return AssignmentDTO{
		ID:         string(a.ID),
		ResourceID: string(a.ResourceID),
		ProjectID:  string(a.ProjectID),
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
}

func toLoadDTO(s staffing.CapacitySnapshot) LoadDTO {
	return LoadDTO{
		ResourceID: string(s.ResourceID),
		Date:       s.Date,
		Load:       s.Load,
		Max:        s.Max,
		Status:     string(s.Status),
		WorkingDay: s.WorkingDay,
	}
}

func toLoadDTOs(snaps []staffing.CapacitySnapshot) []LoadDTO {
	dtos := make([]LoadDTO, len(snaps))
	for i, s := range snaps {
		dtos[i] = toLoadDTO(s)
	}
	return dtos
}

func toMatchDTO(m staffing.Match) MatchDTO {
	return MatchDTO{
		ResourceID:   string(m.ResourceID),
		Name:         m.Name,
		RoleID:       string(m.RoleID),
		Score:        m.Score,
		AverageLoad:  m.AverageLoad,
		Availability: m.Availability,
		SkillMatch:   m.SkillMatch,
		SeniorityFit: m.SeniorityFit,
		CanAbsorb:    m.CanAbsorb,
	}
}

func toCalendarEventDTO(e generic.CalendarEvent) CalendarEventDTO {
	return CalendarEventDTO{
		ID:       string(e.ID),
		Date:     e.Date,
		Type:     string(e.Type),
		Location: string(e.Location),
		Name:     e.Name,
	}
}

func (d CalendarEventDTO) toEvent() generic.CalendarEvent {
	return generic.CalendarEvent{
		ID:       generic.CalendarEventID(d.ID),
		Date:     d.Date,
		Type:     generic.CalendarEventType(d.Type),
		Location: generic.Location(d.Location),
		Name:     d.Name,
	}
}

func toSkillIDs(skills []string) []generic.SkillID {
	out := make([]generic.SkillID, len(skills))
	for i, s := range skills {
		out[i] = generic.SkillID(s)
	}
	return out
}
