/*
store.go - Persistence interfaces for the ledger and the data it depends on

PURPOSE:
  Defines the boundary between the engine components and the database.
  Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  LedgerStore:      Allocation entries keyed by (assignment, date)
  AssignmentStore:  Resource-to-project links
  MasterDataStore:  Versioned resources, roles and projects
  CostHistoryStore: Effective-dated role costs
  CalendarStore:    Holidays and closures
  SkillStore:       Skills held by a resource
  TxStore:          All of the above plus atomic WithTx

SPARSE LEDGER:
  A zero percentage is never stored. Writing 0 is DeleteEntry; reading a
  missing (assignment, date) means 0.

ATOMIC WRITES:
  WithTx runs fn against a Store bound to one transaction. When fn returns
  an error every write made through that Store is discarded. Bulk range
  writes and cascading deletes go through WithTx.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - versioned.go: CAS contract for the master-data Save/Delete methods
*/
package generic

import "context"

// =============================================================================
// LEDGER
// =============================================================================

type LedgerStore interface {
	// UpsertEntry stores a non-zero entry, replacing any previous value.
	UpsertEntry(ctx context.Context, entry AllocationEntry) error

	// DeleteEntry removes one cell. Deleting a missing cell is not an error.
	DeleteEntry(ctx context.Context, assignmentID AssignmentID, date Date) error

	// LoadEntries returns every entry of the assignment ordered by date.
	LoadEntries(ctx context.Context, assignmentID AssignmentID) ([]AllocationEntry, error)

	// LoadEntriesInRange returns entries in [r.Start, r.End] ordered by date.
	LoadEntriesInRange(ctx context.Context, assignmentID AssignmentID, r DateRange) ([]AllocationEntry, error)

	// DeleteEntries removes every entry of the assignment and returns how many.
	DeleteEntries(ctx context.Context, assignmentID AssignmentID) (int, error)
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

type AssignmentStore interface {
	// SaveAssignment inserts a new assignment. Fails with
	// ErrDuplicateAssignment when the pair already exists.
	SaveAssignment(ctx context.Context, a Assignment) error

	// GetAssignment fails with ErrAssignmentNotFound.
	GetAssignment(ctx context.Context, id AssignmentID) (Assignment, error)

	ListAssignmentsByResource(ctx context.Context, resourceID ResourceID) ([]Assignment, error)
	ListAssignmentsByProject(ctx context.Context, projectID ProjectID) ([]Assignment, error)

	// DeleteAssignment removes the assignment only; callers cascade entries.
	DeleteAssignment(ctx context.Context, id AssignmentID) error
}

// =============================================================================
// MASTER DATA - Versioned, compare-and-swap on write
// =============================================================================

type MasterDataStore interface {
	GetResource(ctx context.Context, id ResourceID) (Resource, error)
	ListResources(ctx context.Context) ([]Resource, error)
	// SaveResource applies NextVersion and returns the stored record.
	SaveResource(ctx context.Context, r Resource) (Resource, error)
	DeleteResource(ctx context.Context, id ResourceID, version int64) error

	GetRole(ctx context.Context, id RoleID) (Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	SaveRole(ctx context.Context, r Role) (Role, error)

	GetProject(ctx context.Context, id ProjectID) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	SaveProject(ctx context.Context, p Project) (Project, error)
	DeleteProject(ctx context.Context, id ProjectID, version int64) error
}

// =============================================================================
// COST HISTORY
// =============================================================================

type CostHistoryStore interface {
	// ListCostHistory returns the role's intervals ordered by StartDate.
	ListCostHistory(ctx context.Context, roleID RoleID) ([]RoleCostInterval, error)

	// SaveCostInterval upserts by (RoleID, StartDate).
	SaveCostInterval(ctx context.Context, interval RoleCostInterval) error
}

// =============================================================================
// CALENDAR AND SKILLS
// =============================================================================

type CalendarStore interface {
	// ListCalendarEvents returns events dated inside r, ordered by date.
	ListCalendarEvents(ctx context.Context, r DateRange) ([]CalendarEvent, error)
	SaveCalendarEvent(ctx context.Context, e CalendarEvent) error
	// DeleteCalendarEvent fails with ErrEventNotFound.
	DeleteCalendarEvent(ctx context.Context, id CalendarEventID) error
}

type SkillStore interface {
	SkillsOf(ctx context.Context, resourceID ResourceID) ([]SkillID, error)
	SetSkills(ctx context.Context, resourceID ResourceID, skills []SkillID) error
}

// =============================================================================
// STORE
// =============================================================================

type Store interface {
	LedgerStore
	AssignmentStore
	MasterDataStore
	CostHistoryStore
	CalendarStore
	SkillStore
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
