/*
handlers.go - HTTP API handlers for the staffing engine

PURPOSE:
  Exposes the staffing engine via REST API. Handlers parse the request,
  call one engine component and serialize the answer; no staffing rule
  lives here.

ENDPOINTS:
  Master data:
    GET/POST /api/roles, GET /api/roles/{id}
    GET      /api/roles/{id}/rate?date=         Effective daily cost
    POST     /api/roles/{id}/cost               Change cost from a date
    GET/POST /api/resources, GET/PUT/DELETE /api/resources/{id}
    PUT      /api/resources/{id}/skills
    GET/POST /api/projects, DELETE /api/projects/{id}?version=

  Ledger:
    POST   /api/assignments, DELETE /api/assignments/{id}
    GET    /api/assignments/{id}/allocations[?from=&to=]
    PUT    /api/assignments/{id}/allocations/{date}
    POST   /api/assignments/{id}/allocations/bulk
    DELETE /api/assignments/{id}/allocations
    GET    /api/assignments/{id}/cost?start=&end=

  Capacity:
    GET /api/resources/{id}/load?date=, /status?date=
    GET /api/resources/{id}/utilization?month=, /capacity?from=&to=
    GET /api/projects/{id}/fte?month=
    GET /api/reports/over-allocation?from=&to=
    POST /api/matches

  Calendar:
    GET/POST /api/calendar, DELETE /api/calendar/{id}

ERROR HANDLING:
  Errors are returned as JSON {"error","code","details"}:
  - 400: Validation errors (percentage, range, non-working day, bad input)
  - 404: Unknown assignment, resource, role, project or event
  - 409: Version conflict or duplicate assignment
  - 500: Everything else, including rolled-back transactions

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter clears every record. Stores that support it enable scenario
// loading.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine   *staffing.Engine
	resetter Resetter // nil disables scenario loading
	logger   *slog.Logger

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

func NewHandler(engine *staffing.Engine, resetter Resetter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Engine: engine, resetter: resetter, logger: logger.With("component", "api")}
}

// =============================================================================
// ROLES
// =============================================================================

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Engine.Store.ListRoles(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	dtos := make([]RoleDTO, len(roles))
	for i, role := range roles {
		dtos[i] = toRoleDTO(role)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.Engine.Store.GetRole(r.Context(), generic.RoleID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoleDTO(role))
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req RoleDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Version = 0
	role, err := h.Engine.Directory.SaveRole(r.Context(), req.toRole())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoleDTO(role))
}

func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	roleID := chi.URLParam(r, "id")
	rate, err := h.Engine.Rates.RateFor(r.Context(), generic.RoleID(roleID), date)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RateDTO{RoleID: roleID, Date: date, DailyCost: rate})
}

func (h *Handler) ChangeRoleCost(w http.ResponseWriter, r *http.Request) {
	var req ChangeCostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EffectiveFrom.IsZero() {
		writeError(w, http.StatusBadRequest, "effective_from is required", nil)
		return
	}
	role, err := h.Engine.Rates.ChangeRoleCost(r.Context(),
		generic.RoleID(chi.URLParam(r, "id")), req.EffectiveFrom, req.DailyCost, req.Version)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoleDTO(role))
}

// =============================================================================
// RESOURCES
// =============================================================================

func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resources, err := h.Engine.Store.ListResources(ctx)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	dtos := make([]ResourceDTO, 0, len(resources))
	for _, res := range resources {
		skills, err := h.Engine.Store.SkillsOf(ctx, res.ID)
		if err != nil {
			h.writeEngineError(w, err)
			return
		}
		dtos = append(dtos, toResourceDTO(res, skills))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.ResourceID(chi.URLParam(r, "id"))
	res, err := h.Engine.Store.GetResource(ctx, id)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	skills, err := h.Engine.Store.SkillsOf(ctx, id)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResourceDTO(res, skills))
}

func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req ResourceDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Version = 0
	h.saveResource(w, r, req, http.StatusCreated)
}

// UpdateResource requires the version the client last read.
func (h *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	var req ResourceDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	h.saveResource(w, r, req, http.StatusOK)
}

func (h *Handler) saveResource(w http.ResponseWriter, r *http.Request, req ResourceDTO, status int) {
	ctx := r.Context()
	res, err := h.Engine.Directory.SaveResource(ctx, req.toResource())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if req.Skills != nil {
		if err := h.Engine.Directory.SetSkills(ctx, res.ID, toSkillIDs(req.Skills)); err != nil {
			h.writeEngineError(w, err)
			return
		}
	}
	skills, err := h.Engine.Store.SkillsOf(ctx, res.ID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, status, toResourceDTO(res, skills))
}

func (h *Handler) SetSkills(w http.ResponseWriter, r *http.Request) {
	var req SkillsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := generic.ResourceID(chi.URLParam(r, "id"))
	if err := h.Engine.Directory.SetSkills(r.Context(), id, toSkillIDs(req.Skills)); err != nil {
		h.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	version, ok := versionParam(w, r)
	if !ok {
		return
	}
	if err := h.Engine.Allocations.DeleteResource(r.Context(), generic.ResourceID(chi.URLParam(r, "id")), version); err != nil {
		h.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListResourceAssignments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.ResourceID(chi.URLParam(r, "id"))
	if _, err := h.Engine.Store.GetResource(ctx, id); err != nil {
		h.writeEngineError(w, err)
		return
	}
	assignments, err := h.Engine.Store.ListAssignmentsByResource(ctx, id)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	dtos := make([]AssignmentDTO, len(assignments))
	for i, a := range assignments {
		dtos[i] = toAssignmentDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CAPACITY
// =============================================================================

// GetLoad returns the resource's load, ceiling and status on one day.
func (h *Handler) GetLoad(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	snaps, err := h.Engine.Capacity.Snapshot(r.Context(), generic.ResourceID(chi.URLParam(r, "id")), date, date)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoadDTO(snaps[0]))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	status, err := h.Engine.Capacity.LoadStatus(r.Context(), generic.ResourceID(chi.URLParam(r, "id")), date)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"date": date.String(), "status": string(status)})
}

func (h *Handler) GetUtilization(w http.ResponseWriter, r *http.Request) {
	month, err := generic.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM", err)
		return
	}
	u, err := h.Engine.Capacity.MonthlyUtilization(r.Context(), generic.ResourceID(chi.URLParam(r, "id")), month)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UtilizationDTO{
		ResourceID:  string(u.ResourceID),
		Month:       u.Month.String(),
		Average:     u.AveragePercentage,
		WorkingDays: u.WorkingDays,
	})
}

func (h *Handler) GetCapacity(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rangeParams(w, r, "from", "to")
	if !ok {
		return
	}
	snaps, err := h.Engine.Capacity.Snapshot(r.Context(), generic.ResourceID(chi.URLParam(r, "id")), from, to)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoadDTOs(snaps))
}

func (h *Handler) OverAllocationReport(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rangeParams(w, r, "from", "to")
	if !ok {
		return
	}
	over, err := h.Engine.Capacity.OverAllocations(r.Context(), from, to)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoadDTOs(over))
}

// =============================================================================
// PROJECTS
// =============================================================================

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Engine.Store.ListProjects(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Engine.Directory.SaveProject(r.Context(), generic.Project{ID: generic.ProjectID(req.ID), Name: req.Name})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(p))
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	version, ok := versionParam(w, r)
	if !ok {
		return
	}
	if err := h.Engine.Allocations.DeleteProject(r.Context(), generic.ProjectID(chi.URLParam(r, "id")), version); err != nil {
		h.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetFTE(w http.ResponseWriter, r *http.Request) {
	month, err := generic.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM", err)
		return
	}
	projectID := chi.URLParam(r, "id")
	fte, err := h.Engine.Capacity.FTEForProject(r.Context(), generic.ProjectID(projectID), month)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FTEDTO{ProjectID: projectID, Month: month.String(), FTE: fte})
}

// =============================================================================
// ASSIGNMENTS AND ALLOCATIONS
// =============================================================================

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.Engine.Allocations.CreateAssignment(r.Context(),
		generic.ResourceID(req.ResourceID), generic.ProjectID(req.ProjectID))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssignmentDTO(a))
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Allocations.DeleteAssignment(r.Context(), assignmentID(r)); err != nil {
		h.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAllocations returns stored days in date order; from/to narrow it.
func (h *Handler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		days map[generic.Date]generic.Percentage
		err  error
	)
	q := r.URL.Query()
	if q.Get("from") != "" || q.Get("to") != "" {
		from, to, ok := rangeParams(w, r, "from", "to")
		if !ok {
			return
		}
		days, err = h.Engine.Allocations.GetAllocationsInRange(ctx, assignmentID(r), from, to)
	} else {
		days, err = h.Engine.Allocations.GetAllocations(ctx, assignmentID(r))
	}
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	dtos := make([]AllocationDTO, 0, len(days))
	for d, pct := range days {
		dtos = append(dtos, AllocationDTO{Date: d, Percentage: int(pct)})
	}
	sortAllocations(dtos)
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SetAllocation(w http.ResponseWriter, r *http.Request) {
	date, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
		return
	}
	var req SetAllocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Engine.Allocations.SetAllocation(r.Context(), assignmentID(r), date, generic.Percentage(req.Percentage)); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AllocationDTO{Date: date, Percentage: req.Percentage})
}

func (h *Handler) BulkSetAllocations(w http.ResponseWriter, r *http.Request) {
	var req BulkAllocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Start.IsZero() || req.End.IsZero() {
		writeError(w, http.StatusBadRequest, "start and end are required", nil)
		return
	}
	if !spanAllowed(w, req.Start, req.End) {
		return
	}
	result, err := h.Engine.Allocations.BulkSetRange(r.Context(), assignmentID(r), req.Start, req.End, generic.Percentage(req.Percentage))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	skipped := result.Skipped
	if skipped == nil {
		skipped = []generic.Date{}
	}
	writeJSON(w, http.StatusOK, BulkResultDTO{Written: result.Written, Skipped: skipped})
}

func (h *Handler) ClearAllocations(w http.ResponseWriter, r *http.Request) {
	n, err := h.Engine.Allocations.DeleteAssignmentAllocations(r.Context(), assignmentID(r))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (h *Handler) GetCost(w http.ResponseWriter, r *http.Request) {
	start, end, ok := rangeParams(w, r, "start", "end")
	if !ok {
		return
	}
	id := assignmentID(r)
	cost, err := h.Engine.Capacity.EstimatedCost(r.Context(), id, start, end)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CostDTO{AssignmentID: string(id), Start: start, End: end, Cost: cost})
}

// =============================================================================
// BEST FIT
// =============================================================================

func (h *Handler) RankCandidates(w http.ResponseWriter, r *http.Request) {
	var req MatchRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RoleID == "" || req.Start.IsZero() || req.End.IsZero() {
		writeError(w, http.StatusBadRequest, "role_id, start and end are required", nil)
		return
	}
	if !spanAllowed(w, req.Start, req.End) {
		return
	}
	matches, err := h.Engine.Matcher.Rank(r.Context(), staffing.MatchRequest{
		RoleID:               generic.RoleID(req.RoleID),
		Start:                req.Start,
		End:                  req.End,
		CommitmentPercentage: generic.Percentage(req.Commitment),
		DesiredSkills:        toSkillIDs(req.DesiredSkills),
		Seniority:            req.Seniority,
	})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	dtos := make([]MatchDTO, len(matches))
	for i, m := range matches {
		dtos[i] = toMatchDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CALENDAR
// =============================================================================

func (h *Handler) ListCalendar(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rangeParams(w, r, "from", "to")
	if !ok {
		return
	}
	events, err := h.Engine.Directory.CalendarEvents(r.Context(), from, to)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	dtos := make([]CalendarEventDTO, len(events))
	for i, e := range events {
		dtos[i] = toCalendarEventDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateCalendarEvent(w http.ResponseWriter, r *http.Request) {
	var req CalendarEventDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.Engine.Directory.AddCalendarEvent(r.Context(), req.toEvent())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCalendarEventDTO(e))
}

func (h *Handler) DeleteCalendarEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Directory.RemoveCalendarEvent(r.Context(), generic.CalendarEventID(chi.URLParam(r, "id"))); err != nil {
		h.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if status == http.StatusBadRequest {
		resp.Code = "bad_request"
	}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// errorCodes maps sentinels to the stable codes clients switch on.
var errorCodes = []struct {
	err  error
	code string
}{
	{generic.ErrInvalidPercentage, "invalid_percentage"},
	{generic.ErrInvalidRange, "invalid_range"},
	{generic.ErrNonWorkingDay, "non_working_day"},
	{generic.ErrAssignmentNotFound, "assignment_not_found"},
	{generic.ErrResourceNotFound, "resource_not_found"},
	{generic.ErrRoleNotFound, "role_not_found"},
	{generic.ErrProjectNotFound, "project_not_found"},
	{generic.ErrEventNotFound, "event_not_found"},
	{generic.ErrConcurrencyConflict, "concurrency_conflict"},
	{generic.ErrDuplicateAssignment, "duplicate_assignment"},
	{generic.ErrInvalidCostHistory, "invalid_cost_history"},
	{generic.ErrInvalidCalendarEvent, "invalid_calendar_event"},
	{generic.ErrMissingID, "missing_id"},
	{generic.ErrTransactionFailed, "transaction_failed"},
}

func errorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// writeEngineError maps engine errors to a status and a structured body.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case generic.IsNotFound(err):
		status = http.StatusNotFound
	case generic.IsConflict(err):
		status = http.StatusConflict
	case generic.IsClientError(err):
		status = http.StatusBadRequest
	}

	resp := ErrorResponse{Error: err.Error(), Code: errorCode(err), Retryable: generic.IsRetryable(err)}
	var nwd *generic.NonWorkingDayError
	var conflict *generic.ConcurrencyConflictError
	switch {
	case errors.As(err, &nwd):
		resp.Details = map[string]string{"date": nwd.Date.String(), "reason": nwd.Reason, "location": string(nwd.Location)}
	case errors.As(err, &conflict):
		resp.Details = map[string]any{"kind": conflict.Kind, "key": conflict.Key, "expected": conflict.Expected, "actual": conflict.Actual}
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func dateParam(w http.ResponseWriter, r *http.Request, name string) (generic.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", name), nil)
		return generic.Date{}, false
	}
	d, err := generic.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be YYYY-MM-DD", name), err)
		return generic.Date{}, false
	}
	return d, true
}

func rangeParams(w http.ResponseWriter, r *http.Request, startName, endName string) (generic.Date, generic.Date, bool) {
	start, ok := dateParam(w, r, startName)
	if !ok {
		return generic.Date{}, generic.Date{}, false
	}
	end, ok := dateParam(w, r, endName)
	if !ok {
		return generic.Date{}, generic.Date{}, false
	}
	if !spanAllowed(w, start, end) {
		return generic.Date{}, generic.Date{}, false
	}
	return start, end, true
}

// maxRangeDays caps how many days one request may expand.
const maxRangeDays = 3660

// spanAllowed rejects ranges longer than maxRangeDays. Inverted ranges pass
// through so the engine reports them as invalid_range.
func spanAllowed(w http.ResponseWriter, start, end generic.Date) bool {
	if end.After(start.AddDays(maxRangeDays - 1)) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   fmt.Sprintf("range %s..%s spans more than %d days", start, end, maxRangeDays),
			Code:    "range_too_long",
			Details: map[string]any{"max_days": maxRangeDays},
		})
		return false
	}
	return true
}

func versionParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	v, err := strconv.ParseInt(r.URL.Query().Get("version"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "version is required", err)
		return 0, false
	}
	return v, true
}

func assignmentID(r *http.Request) generic.AssignmentID {
	return generic.AssignmentID(chi.URLParam(r, "id"))
}

func sortAllocations(dtos []AllocationDTO) {
	slices.SortFunc(dtos, func(a, b AllocationDTO) int {
		return a.Date.Time().Compare(b.Date.Time())
	})
}
