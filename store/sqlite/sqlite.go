/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements generic.TxStore (ledger, assignments, versioned master data,
  role cost history, calendar, skills) on a single SQLite database.

KEY TABLES:
  allocation_entries: Sparse ledger, PRIMARY KEY (assignment_id, date)
  assignments:        UNIQUE (resource_id, project_id)
  resources/roles/projects: Versioned rows, compare-and-swap on version
  role_cost_history:  PRIMARY KEY (role_id, start_date), NULL end_date = open
  calendar_events:    Holidays and closures by date
  resource_skills:    Skill tags per resource

CASCADES:
  Foreign keys are on. Deleting a resource or project removes its
  assignments, and deleting an assignment removes its ledger entries.
  The engine still deletes entries explicitly so the in-memory store
  behaves the same.

CONNECTIONS:
  The pool is capped at one connection. An in-memory database only exists
  on the connection that created it, and SQLite allows a single writer
  anyway. Inside WithTx only the transaction-bound Store may be used.

USAGE:
  store, err := sqlite.New("./data/staffing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/staffing-engine/generic"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements all storage interfaces using SQLite.
type Store struct {
	queries
	db *sql.DB
}

// queries holds every statement; it runs on the pool or on one transaction.
type queries struct {
	q querier
}

var _ generic.TxStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{queries: queries{q: db}, db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS roles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		daily_cost TEXT NOT NULL,
		seniority_level INTEGER NOT NULL DEFAULT 0,
		version INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role_id TEXT NOT NULL REFERENCES roles(id),
		location TEXT NOT NULL DEFAULT '',
		max_staffing INTEGER NOT NULL DEFAULT 0,
		resigned INTEGER NOT NULL DEFAULT 0,
		version INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_resources_role ON resources(role_id);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		version INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		created_at TEXT NOT NULL,
		UNIQUE (resource_id, project_id)
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_project ON assignments(project_id);

	-- Sparse: a missing row means 0%
	CREATE TABLE IF NOT EXISTS allocation_entries (
		assignment_id TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		percentage INTEGER NOT NULL CHECK (percentage BETWEEN 1 AND 100),
		PRIMARY KEY (assignment_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_allocation_entries_date ON allocation_entries(date);

	CREATE TABLE IF NOT EXISTS role_cost_history (
		role_id TEXT NOT NULL REFERENCES roles(id),
		start_date TEXT NOT NULL,
		end_date TEXT,
		daily_cost TEXT NOT NULL,
		PRIMARY KEY (role_id, start_date)
	);

	CREATE TABLE IF NOT EXISTS calendar_events (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('NATIONAL_HOLIDAY', 'COMPANY_CLOSURE', 'LOCAL_HOLIDAY')),
		location TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_calendar_events_date ON calendar_events(date);

	CREATE TABLE IF NOT EXISTS resource_skills (
		resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
		skill_id TEXT NOT NULL,
		PRIMARY KEY (resource_id, skill_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store generic.Store) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&queries{q: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	tables := []string{
		"allocation_entries", "assignments", "resource_skills", "resources",
		"projects", "role_cost_history", "roles", "calendar_events",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// LEDGER
// =============================================================================

func (qs *queries) UpsertEntry(ctx context.Context, e generic.AllocationEntry) error {
	if e.Percentage == 0 {
		return qs.DeleteEntry(ctx, e.AssignmentID, e.Date)
	}
	_, err := qs.q.ExecContext(ctx, `
		INSERT INTO allocation_entries (assignment_id, date, percentage)
		VALUES (?, ?, ?)
		ON CONFLICT(assignment_id, date) DO UPDATE SET percentage = excluded.percentage
	`, e.AssignmentID, e.Date.String(), int(e.Percentage))
	if isForeignKeyError(err) {
		return generic.ErrAssignmentNotFound
	}
	return err
}

func (qs *queries) DeleteEntry(ctx context.Context, id generic.AssignmentID, date generic.Date) error {
	_, err := qs.q.ExecContext(ctx,
		"DELETE FROM allocation_entries WHERE assignment_id = ? AND date = ?",
		id, date.String(),
	)
	return err
}

func (qs *queries) LoadEntries(ctx context.Context, id generic.AssignmentID) ([]generic.AllocationEntry, error) {
	return qs.queryEntries(ctx,
		"SELECT assignment_id, date, percentage FROM allocation_entries WHERE assignment_id = ? ORDER BY date",
		id,
	)
}

func (qs *queries) LoadEntriesInRange(ctx context.Context, id generic.AssignmentID, r generic.DateRange) ([]generic.AllocationEntry, error) {
	return qs.queryEntries(ctx, `
		SELECT assignment_id, date, percentage FROM allocation_entries
		WHERE assignment_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`, id, r.Start.String(), r.End.String())
}

func (qs *queries) queryEntries(ctx context.Context, query string, args ...any) ([]generic.AllocationEntry, error) {
	rows, err := qs.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []generic.AllocationEntry
	for rows.Next() {
		var e generic.AllocationEntry
		var date string
		var pct int
		if err := rows.Scan(&e.AssignmentID, &date, &pct); err != nil {
			return nil, err
		}
		if e.Date, err = generic.ParseDate(date); err != nil {
			return nil, err
		}
		e.Percentage = generic.Percentage(pct)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (qs *queries) DeleteEntries(ctx context.Context, id generic.AssignmentID) (int, error) {
	res, err := qs.q.ExecContext(ctx, "DELETE FROM allocation_entries WHERE assignment_id = ?", id)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (qs *queries) SaveAssignment(ctx context.Context, a generic.Assignment) error {
	_, err := qs.q.ExecContext(ctx,
		"INSERT INTO assignments (id, resource_id, project_id, created_at) VALUES (?, ?, ?, ?)",
		a.ID, a.ResourceID, a.ProjectID, a.CreatedAt.UTC().Format(time.RFC3339),
	)
	if isUniqueConstraintError(err) {
		return generic.ErrDuplicateAssignment
	}
	return err
}

func (qs *queries) GetAssignment(ctx context.Context, id generic.AssignmentID) (generic.Assignment, error) {
	var a generic.Assignment
	var createdAt string
	err := qs.q.QueryRowContext(ctx,
		"SELECT id, resource_id, project_id, created_at FROM assignments WHERE id = ?", id,
	).Scan(&a.ID, &a.ResourceID, &a.ProjectID, &createdAt)
	if err == sql.ErrNoRows {
		return generic.Assignment{}, generic.ErrAssignmentNotFound
	}
	if err != nil {
		return generic.Assignment{}, err
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return a, nil
}

func (qs *queries) ListAssignmentsByResource(ctx context.Context, id generic.ResourceID) ([]generic.Assignment, error) {
	return qs.queryAssignments(ctx,
		"SELECT id, resource_id, project_id, created_at FROM assignments WHERE resource_id = ? ORDER BY id", id)
}

func (qs *queries) ListAssignmentsByProject(ctx context.Context, id generic.ProjectID) ([]generic.Assignment, error) {
	return qs.queryAssignments(ctx,
		"SELECT id, resource_id, project_id, created_at FROM assignments WHERE project_id = ? ORDER BY id", id)
}

func (qs *queries) queryAssignments(ctx context.Context, query string, args ...any) ([]generic.Assignment, error) {
	rows, err := qs.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []generic.Assignment
	for rows.Next() {
		var a generic.Assignment
		var createdAt string
		if err := rows.Scan(&a.ID, &a.ResourceID, &a.ProjectID, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (qs *queries) DeleteAssignment(ctx context.Context, id generic.AssignmentID) error {
	res, err := qs.q.ExecContext(ctx, "DELETE FROM assignments WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrAssignmentNotFound
	}
	return nil
}

// =============================================================================
// VERSIONED WRITES - Shared compare-and-swap for master data tables
// =============================================================================

// saveVersioned inserts when e carries version 0, otherwise updates the row
// only if its version still matches. Returns the stored version.
func (qs *queries) saveVersioned(ctx context.Context, table string, e generic.VersionedEntity, cols []string, vals []any) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	if e.EntityVersion() == 0 {
		placeholders := strings.Repeat("?, ", len(cols))
		query := fmt.Sprintf("INSERT INTO %s (id, %s, version, updated_at) VALUES (?, %s1, ?)",
			table, strings.Join(cols, ", "), placeholders)
		args := append([]any{e.EntityKey()}, vals...)
		args = append(args, now)
		_, err := qs.q.ExecContext(ctx, query, args...)
		if isUniqueConstraintError(err) {
			return 0, qs.conflict(ctx, table, e)
		}
		if err != nil {
			return 0, err
		}
		return 1, nil
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s, version = version + 1, updated_at = ? WHERE id = ? AND version = ?",
		table, strings.Join(sets, ", "))
	args := append(append([]any{}, vals...), now, e.EntityKey(), e.EntityVersion())
	res, err := qs.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, qs.conflict(ctx, table, e)
	}
	return e.EntityVersion() + 1, nil
}

// deleteVersioned removes the row only at the expected version.
func (qs *queries) deleteVersioned(ctx context.Context, table, id string, version int64, kind string, notFound error) error {
	res, err := qs.q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ? AND version = ?", table), id, version)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	actual, found, err := qs.currentVersion(ctx, table, id)
	if err != nil {
		return err
	}
	if !found {
		return notFound
	}
	return &generic.ConcurrencyConflictError{Kind: kind, Key: id, Expected: version, Actual: actual}
}

func (qs *queries) conflict(ctx context.Context, table string, e generic.VersionedEntity) error {
	actual, _, err := qs.currentVersion(ctx, table, e.EntityKey())
	if err != nil {
		return err
	}
	return generic.NewConflict(e, actual)
}

func (qs *queries) currentVersion(ctx context.Context, table, id string) (int64, bool, error) {
	var v int64
	err := qs.q.QueryRowContext(ctx, fmt.Sprintf("SELECT version FROM %s WHERE id = ?", table), id).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// =============================================================================
// MASTER DATA
// =============================================================================

const resourceColumns = "id, name, role_id, location, max_staffing, resigned, version"

func (qs *queries) GetResource(ctx context.Context, id generic.ResourceID) (generic.Resource, error) {
	r, err := scanResource(qs.q.QueryRowContext(ctx, "SELECT "+resourceColumns+" FROM resources WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return generic.Resource{}, generic.ErrResourceNotFound
	}
	return r, err
}

func (qs *queries) ListResources(ctx context.Context) ([]generic.Resource, error) {
	rows, err := qs.q.QueryContext(ctx, "SELECT "+resourceColumns+" FROM resources ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []generic.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

func (qs *queries) SaveResource(ctx context.Context, r generic.Resource) (generic.Resource, error) {
	version, err := qs.saveVersioned(ctx, "resources", r,
		[]string{"name", "role_id", "location", "max_staffing", "resigned"},
		[]any{r.Name, r.RoleID, r.Location, r.MaxStaffingPercentage, r.Resigned},
	)
	if err != nil {
		if isForeignKeyError(err) {
			return generic.Resource{}, fmt.Errorf("resource %s: %w", r.ID, generic.ErrRoleNotFound)
		}
		return generic.Resource{}, err
	}
	r.Version = version
	return r, nil
}

func (qs *queries) DeleteResource(ctx context.Context, id generic.ResourceID, version int64) error {
	return qs.deleteVersioned(ctx, "resources", string(id), version, "resource", generic.ErrResourceNotFound)
}

func (qs *queries) GetRole(ctx context.Context, id generic.RoleID) (generic.Role, error) {
	r, err := scanRole(qs.q.QueryRowContext(ctx,
		"SELECT id, name, daily_cost, seniority_level, version FROM roles WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return generic.Role{}, generic.ErrRoleNotFound
	}
	return r, err
}

func (qs *queries) ListRoles(ctx context.Context) ([]generic.Role, error) {
	rows, err := qs.q.QueryContext(ctx, "SELECT id, name, daily_cost, seniority_level, version FROM roles ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []generic.Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func (qs *queries) SaveRole(ctx context.Context, r generic.Role) (generic.Role, error) {
	version, err := qs.saveVersioned(ctx, "roles", r,
		[]string{"name", "daily_cost", "seniority_level"},
		[]any{r.Name, r.DailyCost.String(), r.SeniorityLevel},
	)
	if err != nil {
		return generic.Role{}, err
	}
	r.Version = version
	return r, nil
}

func (qs *queries) GetProject(ctx context.Context, id generic.ProjectID) (generic.Project, error) {
	var p generic.Project
	err := qs.q.QueryRowContext(ctx, "SELECT id, name, version FROM projects WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &p.Version)
	if err == sql.ErrNoRows {
		return generic.Project{}, generic.ErrProjectNotFound
	}
	return p, err
}

func (qs *queries) ListProjects(ctx context.Context) ([]generic.Project, error) {
	rows, err := qs.q.QueryContext(ctx, "SELECT id, name, version FROM projects ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []generic.Project
	for rows.Next() {
		var p generic.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Version); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (qs *queries) SaveProject(ctx context.Context, p generic.Project) (generic.Project, error) {
	version, err := qs.saveVersioned(ctx, "projects", p, []string{"name"}, []any{p.Name})
	if err != nil {
		return generic.Project{}, err
	}
	p.Version = version
	return p, nil
}

func (qs *queries) DeleteProject(ctx context.Context, id generic.ProjectID, version int64) error {
	return qs.deleteVersioned(ctx, "projects", string(id), version, "project", generic.ErrProjectNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (generic.Resource, error) {
	var r generic.Resource
	err := row.Scan(&r.ID, &r.Name, &r.RoleID, &r.Location, &r.MaxStaffingPercentage, &r.Resigned, &r.Version)
	return r, err
}

func scanRole(row rowScanner) (generic.Role, error) {
	var r generic.Role
	var cost string
	if err := row.Scan(&r.ID, &r.Name, &cost, &r.SeniorityLevel, &r.Version); err != nil {
		return generic.Role{}, err
	}
	d, err := decimal.NewFromString(cost)
	if err != nil {
		return generic.Role{}, fmt.Errorf("role %s: bad daily_cost %q: %w", r.ID, cost, err)
	}
	r.DailyCost = d
	return r, nil
}

// =============================================================================
// COST HISTORY
// =============================================================================

func (qs *queries) ListCostHistory(ctx context.Context, id generic.RoleID) ([]generic.RoleCostInterval, error) {
	rows, err := qs.q.QueryContext(ctx,
		"SELECT role_id, start_date, end_date, daily_cost FROM role_cost_history WHERE role_id = ? ORDER BY start_date",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []generic.RoleCostInterval
	for rows.Next() {
		var i generic.RoleCostInterval
		var start, cost string
		var end sql.NullString
		if err := rows.Scan(&i.RoleID, &start, &end, &cost); err != nil {
			return nil, err
		}
		if i.StartDate, err = generic.ParseDate(start); err != nil {
			return nil, err
		}
		if end.Valid {
			e, err := generic.ParseDate(end.String)
			if err != nil {
				return nil, err
			}
			i.EndDate = &e
		}
		if i.DailyCost, err = decimal.NewFromString(cost); err != nil {
			return nil, err
		}
		history = append(history, i)
	}
	return history, rows.Err()
}

func (qs *queries) SaveCostInterval(ctx context.Context, i generic.RoleCostInterval) error {
	var end sql.NullString
	if i.EndDate != nil {
		end = nullString(i.EndDate.String())
	}
	_, err := qs.q.ExecContext(ctx, `
		INSERT INTO role_cost_history (role_id, start_date, end_date, daily_cost)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(role_id, start_date) DO UPDATE SET
			end_date = excluded.end_date,
			daily_cost = excluded.daily_cost
	`, i.RoleID, i.StartDate.String(), end, i.DailyCost.String())
	if isForeignKeyError(err) {
		return generic.ErrRoleNotFound
	}
	return err
}

// =============================================================================
// CALENDAR
// =============================================================================

func (qs *queries) ListCalendarEvents(ctx context.Context, r generic.DateRange) ([]generic.CalendarEvent, error) {
	rows, err := qs.q.QueryContext(ctx, `
		SELECT id, date, type, location, name FROM calendar_events
		WHERE date >= ? AND date <= ?
		ORDER BY date, id
	`, r.Start.String(), r.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []generic.CalendarEvent
	for rows.Next() {
		var e generic.CalendarEvent
		var date string
		if err := rows.Scan(&e.ID, &date, &e.Type, &e.Location, &e.Name); err != nil {
			return nil, err
		}
		if e.Date, err = generic.ParseDate(date); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (qs *queries) SaveCalendarEvent(ctx context.Context, e generic.CalendarEvent) error {
	_, err := qs.q.ExecContext(ctx, `
		INSERT INTO calendar_events (id, date, type, location, name)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			type = excluded.type,
			location = excluded.location,
			name = excluded.name
	`, e.ID, e.Date.String(), e.Type, e.Location, e.Name)
	return err
}

func (qs *queries) DeleteCalendarEvent(ctx context.Context, id generic.CalendarEventID) error {
	res, err := qs.q.ExecContext(ctx, "DELETE FROM calendar_events WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrEventNotFound
	}
	return nil
}

// =============================================================================
// SKILLS
// =============================================================================

func (qs *queries) SkillsOf(ctx context.Context, id generic.ResourceID) ([]generic.SkillID, error) {
	rows, err := qs.q.QueryContext(ctx,
		"SELECT skill_id FROM resource_skills WHERE resource_id = ? ORDER BY skill_id", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []generic.SkillID
	for rows.Next() {
		var s generic.SkillID
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// SetSkills replaces the resource's skill set.
func (qs *queries) SetSkills(ctx context.Context, id generic.ResourceID, skills []generic.SkillID) error {
	if _, err := qs.q.ExecContext(ctx, "DELETE FROM resource_skills WHERE resource_id = ?", id); err != nil {
		return err
	}
	for _, s := range skills {
		_, err := qs.q.ExecContext(ctx,
			"INSERT OR IGNORE INTO resource_skills (resource_id, skill_id) VALUES (?, ?)", id, s)
		if isForeignKeyError(err) {
			return generic.ErrResourceNotFound
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
		se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func isForeignKeyError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
