// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/staffing-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory guards a memoryData with a RWMutex. Every method locks and
// delegates; transactional views call memoryData directly under the
// lock held by WithTx.
type Memory struct {
	mu   sync.RWMutex
	data *memoryData
}

func NewMemory() *Memory {
	return &Memory{data: newMemoryData()}
}

// Reset clears all data (for testing/demo).
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = newMemoryData()
	return nil
}

// Ledger

func (m *Memory) UpsertEntry(ctx context.Context, e generic.AllocationEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.UpsertEntry(ctx, e)
}

func (m *Memory) DeleteEntry(ctx context.Context, id generic.AssignmentID, d generic.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.DeleteEntry(ctx, id, d)
}

func (m *Memory) LoadEntries(ctx context.Context, id generic.AssignmentID) ([]generic.AllocationEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.LoadEntries(ctx, id)
}

func (m *Memory) LoadEntriesInRange(ctx context.Context, id generic.AssignmentID, r generic.DateRange) ([]generic.AllocationEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.LoadEntriesInRange(ctx, id, r)
}

func (m *Memory) DeleteEntries(ctx context.Context, id generic.AssignmentID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.DeleteEntries(ctx, id)
}

// Assignments

func (m *Memory) SaveAssignment(ctx context.Context, a generic.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.SaveAssignment(ctx, a)
}

func (m *Memory) GetAssignment(ctx context.Context, id generic.AssignmentID) (generic.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.GetAssignment(ctx, id)
}

func (m *Memory) ListAssignmentsByResource(ctx context.Context, id generic.ResourceID) ([]generic.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.ListAssignmentsByResource(ctx, id)
}

func (m *Memory) ListAssignmentsByProject(ctx context.Context, id generic.ProjectID) ([]generic.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.ListAssignmentsByProject(ctx, id)
}

func (m *Memory) DeleteAssignment(ctx context.Context, id generic.AssignmentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.DeleteAssignment(ctx, id)
}

// Master data

func (m *Memory) GetResource(ctx context.Context, id generic.ResourceID) (generic.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.GetResource(ctx, id)
}

func (m *Memory) ListResources(ctx context.Context) ([]generic.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.ListResources(ctx)
}

func (m *Memory) SaveResource(ctx context.Context, r generic.Resource) (generic.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.SaveResource(ctx, r)
}

func (m *Memory) DeleteResource(ctx context.Context, id generic.ResourceID, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.DeleteResource(ctx, id, version)
}

func (m *Memory) GetRole(ctx context.Context, id generic.RoleID) (generic.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.GetRole(ctx, id)
}

func (m *Memory) ListRoles(ctx context.Context) ([]generic.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.ListRoles(ctx)
}

func (m *Memory) SaveRole(ctx context.Context, r generic.Role) (generic.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.SaveRole(ctx, r)
}

func (m *Memory) GetProject(ctx context.Context, id generic.ProjectID) (generic.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.GetProject(ctx, id)
}

func (m *Memory) ListProjects(ctx context.Context) ([]generic.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.ListProjects(ctx)
}

func (m *Memory) SaveProject(ctx context.Context, p generic.Project) (generic.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.SaveProject(ctx, p)
}

func (m *Memory) DeleteProject(ctx context.Context, id generic.ProjectID, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.DeleteProject(ctx, id, version)
}

// Cost history, calendar, skills

func (m *Memory) ListCostHistory(ctx context.Context, id generic.RoleID) ([]generic.RoleCostInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.ListCostHistory(ctx, id)
}

func (m *Memory) SaveCostInterval(ctx context.Context, i generic.RoleCostInterval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.SaveCostInterval(ctx, i)
}

func (m *Memory) ListCalendarEvents(ctx context.Context, r generic.DateRange) ([]generic.CalendarEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.ListCalendarEvents(ctx, r)
}

func (m *Memory) SaveCalendarEvent(ctx context.Context, e generic.CalendarEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.SaveCalendarEvent(ctx, e)
}

func (m *Memory) DeleteCalendarEvent(ctx context.Context, id generic.CalendarEventID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.DeleteCalendarEvent(ctx, id)
}

func (m *Memory) SkillsOf(ctx context.Context, id generic.ResourceID) ([]generic.SkillID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.SkillsOf(ctx, id)
}

func (m *Memory) SetSkills(ctx context.Context, id generic.ResourceID, skills []generic.SkillID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.SetSkills(ctx, id, skills)
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(generic.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.data.clone()
	if err := fn(tm.data); err != nil {
		tm.data = snapshot
		return err
	}
	return nil
}

// =============================================================================
// MEMORY DATA - Unlocked maps implementing generic.Store
// =============================================================================

type memoryData struct {
	entries     map[generic.AssignmentID]map[generic.Date]generic.Percentage
	assignments map[generic.AssignmentID]generic.Assignment
	resources   map[generic.ResourceID]generic.Resource
	roles       map[generic.RoleID]generic.Role
	projects    map[generic.ProjectID]generic.Project
	costHistory map[generic.RoleID][]generic.RoleCostInterval
	events      map[generic.CalendarEventID]generic.CalendarEvent
	skills      map[generic.ResourceID][]generic.SkillID
}

func newMemoryData() *memoryData {
	return &memoryData{
		entries:     make(map[generic.AssignmentID]map[generic.Date]generic.Percentage),
		assignments: make(map[generic.AssignmentID]generic.Assignment),
		resources:   make(map[generic.ResourceID]generic.Resource),
		roles:       make(map[generic.RoleID]generic.Role),
		projects:    make(map[generic.ProjectID]generic.Project),
		costHistory: make(map[generic.RoleID][]generic.RoleCostInterval),
		events:      make(map[generic.CalendarEventID]generic.CalendarEvent),
		skills:      make(map[generic.ResourceID][]generic.SkillID),
	}
}

func (d *memoryData) clone() *memoryData {
	c := newMemoryData()
	for id, days := range d.entries {
		cp := make(map[generic.Date]generic.Percentage, len(days))
		for day, pct := range days {
			cp[day] = pct
		}
		c.entries[id] = cp
	}
	for k, v := range d.assignments {
		c.assignments[k] = v
	}
	for k, v := range d.resources {
		c.resources[k] = v
	}
	for k, v := range d.roles {
		c.roles[k] = v
	}
	for k, v := range d.projects {
		c.projects[k] = v
	}
	for k, v := range d.costHistory {
		c.costHistory[k] = append([]generic.RoleCostInterval(nil), v...)
	}
	for k, v := range d.events {
		c.events[k] = v
	}
	for k, v := range d.skills {
		c.skills[k] = append([]generic.SkillID(nil), v...)
	}
	return c
}

func (d *memoryData) UpsertEntry(ctx context.Context, e generic.AllocationEntry) error {
	if e.Percentage == 0 {
		return d.DeleteEntry(ctx, e.AssignmentID, e.Date)
	}
	if _, ok := d.assignments[e.AssignmentID]; !ok {
		return generic.ErrAssignmentNotFound
	}
	days, ok := d.entries[e.AssignmentID]
	if !ok {
		days = make(map[generic.Date]generic.Percentage)
		d.entries[e.AssignmentID] = days
	}
	days[e.Date] = e.Percentage
	return nil
}

func (d *memoryData) DeleteEntry(_ context.Context, id generic.AssignmentID, date generic.Date) error {
	if days, ok := d.entries[id]; ok {
		delete(days, date)
		if len(days) == 0 {
			delete(d.entries, id)
		}
	}
	return nil
}

func (d *memoryData) LoadEntries(_ context.Context, id generic.AssignmentID) ([]generic.AllocationEntry, error) {
	return d.collect(id, nil), nil
}

func (d *memoryData) LoadEntriesInRange(_ context.Context, id generic.AssignmentID, r generic.DateRange) ([]generic.AllocationEntry, error) {
	return d.collect(id, &r), nil
}

func (d *memoryData) collect(id generic.AssignmentID, within *generic.DateRange) []generic.AllocationEntry {
	var result []generic.AllocationEntry
	for day, pct := range d.entries[id] {
		if within != nil && !within.Contains(day) {
			continue
		}
		result = append(result, generic.AllocationEntry{AssignmentID: id, Date: day, Percentage: pct})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result
}

func (d *memoryData) DeleteEntries(_ context.Context, id generic.AssignmentID) (int, error) {
	n := len(d.entries[id])
	delete(d.entries, id)
	return n, nil
}

func (d *memoryData) SaveAssignment(_ context.Context, a generic.Assignment) error {
	for _, existing := range d.assignments {
		if existing.ResourceID == a.ResourceID && existing.ProjectID == a.ProjectID {
			return generic.ErrDuplicateAssignment
		}
	}
	d.assignments[a.ID] = a
	return nil
}

func (d *memoryData) GetAssignment(_ context.Context, id generic.AssignmentID) (generic.Assignment, error) {
	a, ok := d.assignments[id]
	if !ok {
		return generic.Assignment{}, generic.ErrAssignmentNotFound
	}
	return a, nil
}

func (d *memoryData) ListAssignmentsByResource(_ context.Context, id generic.ResourceID) ([]generic.Assignment, error) {
	return d.filterAssignments(func(a generic.Assignment) bool { return a.ResourceID == id }), nil
}

func (d *memoryData) ListAssignmentsByProject(_ context.Context, id generic.ProjectID) ([]generic.Assignment, error) {
	return d.filterAssignments(func(a generic.Assignment) bool { return a.ProjectID == id }), nil
}

func (d *memoryData) filterAssignments(keep func(generic.Assignment) bool) []generic.Assignment {
	var result []generic.Assignment
	for _, a := range d.assignments {
		if keep(a) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (d *memoryData) DeleteAssignment(_ context.Context, id generic.AssignmentID) error {
	if _, ok := d.assignments[id]; !ok {
		return generic.ErrAssignmentNotFound
	}
	delete(d.assignments, id)
	return nil
}

func (d *memoryData) GetResource(_ context.Context, id generic.ResourceID) (generic.Resource, error) {
	r, ok := d.resources[id]
	if !ok {
		return generic.Resource{}, generic.ErrResourceNotFound
	}
	return r, nil
}

func (d *memoryData) ListResources(_ context.Context) ([]generic.Resource, error) {
	result := make([]generic.Resource, 0, len(d.resources))
	for _, r := range d.resources {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (d *memoryData) SaveResource(_ context.Context, r generic.Resource) (generic.Resource, error) {
	var stored *generic.Resource
	if existing, ok := d.resources[r.ID]; ok {
		stored = &existing
	}
	next, err := generic.NextVersion(stored, r)
	if err != nil {
		return generic.Resource{}, err
	}
	r.Version = next
	d.resources[r.ID] = r
	return r, nil
}

func (d *memoryData) DeleteResource(_ context.Context, id generic.ResourceID, version int64) error {
	r, ok := d.resources[id]
	if !ok {
		return generic.ErrResourceNotFound
	}
	if err := generic.CheckVersion(r, version); err != nil {
		return err
	}
	delete(d.resources, id)
	delete(d.skills, id)
	return nil
}

func (d *memoryData) GetRole(_ context.Context, id generic.RoleID) (generic.Role, error) {
	r, ok := d.roles[id]
	if !ok {
		return generic.Role{}, generic.ErrRoleNotFound
	}
	return r, nil
}

func (d *memoryData) ListRoles(_ context.Context) ([]generic.Role, error) {
	result := make([]generic.Role, 0, len(d.roles))
	for _, r := range d.roles {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (d *memoryData) SaveRole(_ context.Context, r generic.Role) (generic.Role, error) {
	var stored *generic.Role
	if existing, ok := d.roles[r.ID]; ok {
		stored = &existing
	}
	next, err := generic.NextVersion(stored, r)
	if err != nil {
		return generic.Role{}, err
	}
	r.Version = next
	d.roles[r.ID] = r
	return r, nil
}

func (d *memoryData) GetProject(_ context.Context, id generic.ProjectID) (generic.Project, error) {
	p, ok := d.projects[id]
	if !ok {
		return generic.Project{}, generic.ErrProjectNotFound
	}
	return p, nil
}

func (d *memoryData) ListProjects(_ context.Context) ([]generic.Project, error) {
	result := make([]generic.Project, 0, len(d.projects))
	for _, p := range d.projects {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (d *memoryData) SaveProject(_ context.Context, p generic.Project) (generic.Project, error) {
	var stored *generic.Project
	if existing, ok := d.projects[p.ID]; ok {
		stored = &existing
	}
	next, err := generic.NextVersion(stored, p)
	if err != nil {
		return generic.Project{}, err
	}
	p.Version = next
	d.projects[p.ID] = p
	return p, nil
}

func (d *memoryData) DeleteProject(_ context.Context, id generic.ProjectID, version int64) error {
	p, ok := d.projects[id]
	if !ok {
		return generic.ErrProjectNotFound
	}
	if err := generic.CheckVersion(p, version); err != nil {
		return err
	}
	delete(d.projects, id)
	return nil
}

func (d *memoryData) ListCostHistory(_ context.Context, id generic.RoleID) ([]generic.RoleCostInterval, error) {
	return append([]generic.RoleCostInterval(nil), d.costHistory[id]...), nil
}

func (d *memoryData) SaveCostInterval(_ context.Context, interval generic.RoleCostInterval) error {
	history := d.costHistory[interval.RoleID]
	for i := range history {
		if history[i].StartDate.Equal(interval.StartDate) {
			history[i] = interval
			return nil
		}
	}
	history = append(history, interval)
	sort.Slice(history, func(i, j int) bool { return history[i].StartDate.Before(history[j].StartDate) })
	d.costHistory[interval.RoleID] = history
	return nil
}

func (d *memoryData) ListCalendarEvents(_ context.Context, r generic.DateRange) ([]generic.CalendarEvent, error) {
	var result []generic.CalendarEvent
	for _, e := range d.events {
		if r.Contains(e.Date) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (d *memoryData) SaveCalendarEvent(_ context.Context, e generic.CalendarEvent) error {
	d.events[e.ID] = e
	return nil
}

func (d *memoryData) DeleteCalendarEvent(_ context.Context, id generic.CalendarEventID) error {
	if _, ok := d.events[id]; !ok {
		return generic.ErrEventNotFound
	}
	delete(d.events, id)
	return nil
}

func (d *memoryData) SkillsOf(_ context.Context, id generic.ResourceID) ([]generic.SkillID, error) {
	return append([]generic.SkillID(nil), d.skills[id]...), nil
}

func (d *memoryData) SetSkills(_ context.Context, id generic.ResourceID, skills []generic.SkillID) error {
	if len(skills) == 0 {
		delete(d.skills, id)
		return nil
	}
	d.skills[id] = append([]generic.SkillID(nil), skills...)
	return nil
}
