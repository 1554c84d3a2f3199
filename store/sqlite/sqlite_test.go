package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// seedAssignment creates role dev, resource r1, project p1 and assignment a1.
func seedAssignment(t *testing.T, store *sqlite.Store) {
	ctx := context.Background()
	_, err := store.SaveRole(ctx, generic.Role{ID: "dev", Name: "Developer", DailyCost: decimal.NewFromInt(500)})
	require.NoError(t, err)
	_, err = store.SaveResource(ctx, generic.Resource{ID: "r1", Name: "Ada", RoleID: "dev", Location: "milan"})
	require.NoError(t, err)
	_, err = store.SaveProject(ctx, generic.Project{ID: "p1", Name: "Apollo"})
	require.NoError(t, err)
	require.NoError(t, store.SaveAssignment(ctx, generic.Assignment{
		ID: "a1", ResourceID: "r1", ProjectID: "p1", CreatedAt: time.Now(),
	}))
}

func entry(date string, pct int) generic.AllocationEntry {
	return generic.AllocationEntry{AssignmentID: "a1", Date: generic.MustParseDate(date), Percentage: generic.Percentage(pct)}
}

// =============================================================================
// LEDGER
// =============================================================================

func TestStore_UpsertEntryReplacesValue(t *testing.T) {
	store := newTestStore(t)
	seedAssignment(t, store)
	ctx := context.Background()

	require.NoError(t, store.UpsertEntry(ctx, entry("2024-03-04", 50)))
	require.NoError(t, store.UpsertEntry(ctx, entry("2024-03-04", 70)))

	entries, err := store.LoadEntries(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, generic.Percentage(70), entries[0].Percentage)
}

func TestStore_UpsertZeroDeletesRow(t *testing.T) {
	store := newTestStore(t)
	seedAssignment(t, store)
	ctx := context.Background()

	require.NoError(t, store.UpsertEntry(ctx, entry("2024-03-04", 50)))
	require.NoError(t, store.UpsertEntry(ctx, entry("2024-03-04", 0)))

	entries, err := store.LoadEntries(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_UpsertUnknownAssignment(t *testing.T) {
	store := newTestStore(t)

	err := store.UpsertEntry(context.Background(), generic.AllocationEntry{
		AssignmentID: "ghost", Date: generic.MustParseDate("2024-03-04"), Percentage: 10,
	})

	assert.ErrorIs(t, err, generic.ErrAssignmentNotFound)
}

func TestStore_LoadEntriesInRange(t *testing.T) {
	store := newTestStore(t)
	seedAssignment(t, store)
	ctx := context.Background()

	for _, d := range []string{"2024-02-29", "2024-03-04", "2024-03-05", "2024-04-01"} {
		require.NoError(t, store.UpsertEntry(ctx, entry(d, 40)))
	}

	entries, err := store.LoadEntriesInRange(ctx, "a1", generic.Month{Year: 2024, Month: time.March}.Range())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2024-03-04", entries[0].Date.String())
}

func TestStore_WithTx_RollbackLeavesNoWrites(t *testing.T) {
	// GIVEN: An assignment with no entries
	store := newTestStore(t)
	seedAssignment(t, store)
	ctx := context.Background()

	// WHEN: The transaction writes two days and then fails
	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx generic.Store) error {
		require.NoError(t, tx.UpsertEntry(ctx, entry("2024-03-04", 50)))
		require.NoError(t, tx.UpsertEntry(ctx, entry("2024-03-05", 50)))
		return boom
	})

	// THEN: Nothing was persisted
	assert.ErrorIs(t, err, boom)
	entries, err := store.LoadEntries(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_DeleteAssignmentCascadesEntries(t *testing.T) {
	store := newTestStore(t)
	seedAssignment(t, store)
	ctx := context.Background()
	require.NoError(t, store.UpsertEntry(ctx, entry("2024-03-04", 50)))

	require.NoError(t, store.DeleteAssignment(ctx, "a1"))

	entries, err := store.LoadEntries(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = store.GetAssignment(ctx, "a1")
	assert.ErrorIs(t, err, generic.ErrAssignmentNotFound)
}

func TestStore_DuplicateAssignment(t *testing.T) {
	store := newTestStore(t)
	seedAssignment(t, store)

	err := store.SaveAssignment(context.Background(), generic.Assignment{
		ID: "a2", ResourceID: "r1", ProjectID: "p1", CreatedAt: time.Now(),
	})

	assert.ErrorIs(t, err, generic.ErrDuplicateAssignment)
}

// =============================================================================
// VERSIONED MASTER DATA
// =============================================================================

func TestStore_SaveResource_CompareAndSwap(t *testing.T) {
	// GIVEN: Two clients that both read resource r1 at version 1
	store := newTestStore(t)
	seedAssignment(t, store)
	ctx := context.Background()

	first, err := store.GetResource(ctx, "r1")
	require.NoError(t, err)
	second := first

	// WHEN: Both write
	first.MaxStaffingPercentage = 80
	saved, err := store.SaveResource(ctx, first)
	require.NoError(t, err)

	second.Resigned = true
	_, err = store.SaveResource(ctx, second)

	// THEN: The second write loses with the current version reported
	assert.Equal(t, int64(2), saved.Version)
	var conflict *generic.ConcurrencyConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(1), conflict.Expected)
	assert.Equal(t, int64(2), conflict.Actual)

	current, err := store.GetResource(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 80, current.MaxStaffingPercentage)
	assert.False(t, current.Resigned)
}

func TestStore_CreateExistingRoleConflicts(t *testing.T) {
	store := newTestStore(t)
	seedAssignment(t, store)

	_, err := store.SaveRole(context.Background(), generic.Role{ID: "dev", Name: "Again", DailyCost: decimal.Zero})

	assert.ErrorIs(t, err, generic.ErrConcurrencyConflict)
}

func TestStore_SaveResourceUnknownRole(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveResource(context.Background(), generic.Resource{ID: "r9", RoleID: "nope"})

	assert.ErrorIs(t, err, generic.ErrRoleNotFound)
}

func TestStore_DeleteProjectChecksVersion(t *testing.T) {
	store := newTestStore(t)
	seedAssignment(t, store)
	ctx := context.Background()

	err := store.DeleteProject(ctx, "p1", 7)
	assert.ErrorIs(t, err, generic.ErrConcurrencyConflict)

	require.NoError(t, store.DeleteProject(ctx, "p1", 1))
	assignments, err := store.ListAssignmentsByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, assignments)

	err = store.DeleteProject(ctx, "p1", 1)
	assert.ErrorIs(t, err, generic.ErrProjectNotFound)
}

func TestStore_RoleDailyCostKeepsPrecision(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveRole(ctx, generic.Role{ID: "pm", Name: "PM", DailyCost: decimal.RequireFromString("612.345"), SeniorityLevel: 3})
	require.NoError(t, err)

	role, err := store.GetRole(ctx, "pm")
	require.NoError(t, err)
	assert.True(t, role.DailyCost.Equal(decimal.RequireFromString("612.345")))
	assert.Equal(t, 3, role.SeniorityLevel)
}

// =============================================================================
// COST HISTORY, CALENDAR, SKILLS
// =============================================================================

func TestStore_CostHistoryOpenInterval(t *testing.T) {
	store := newTestStore(t)
	seedAssignment(t, store)
	ctx := context.Background()

	end := generic.MustParseDate("2024-06-30")
	require.NoError(t, store.SaveCostInterval(ctx, generic.RoleCostInterval{
		RoleID: "dev", StartDate: generic.MustParseDate("2024-07-01"), DailyCost: decimal.NewFromInt(550),
	}))
	require.NoError(t, store.SaveCostInterval(ctx, generic.RoleCostInterval{
		RoleID: "dev", StartDate: generic.MustParseDate("2024-01-01"), EndDate: &end, DailyCost: decimal.NewFromInt(500),
	}))

	history, err := store.ListCostHistory(ctx, "dev")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[0].EndDate)
	assert.Equal(t, "2024-06-30", history[0].EndDate.String())
	assert.Nil(t, history[1].EndDate)
	assert.True(t, history[1].DailyCost.Equal(decimal.NewFromInt(550)))
}

func TestStore_CalendarEventsByRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCalendarEvent(ctx, generic.CalendarEvent{
		ID: "e1", Date: generic.MustParseDate("2024-04-25"), Type: generic.NationalHoliday, Name: "Liberation Day",
	}))
	require.NoError(t, store.SaveCalendarEvent(ctx, generic.CalendarEvent{
		ID: "e2", Date: generic.MustParseDate("2024-12-07"), Type: generic.LocalHoliday, Location: "milan",
	}))

	events, err := store.ListCalendarEvents(ctx, generic.Month{Year: 2024, Month: time.April}.Range())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, generic.NationalHoliday, events[0].Type)

	require.NoError(t, store.DeleteCalendarEvent(ctx, "e1"))
	assert.ErrorIs(t, store.DeleteCalendarEvent(ctx, "e1"), generic.ErrEventNotFound)
}

func TestStore_SetSkillsReplaces(t *testing.T) {
	store := newTestStore(t)
	seedAssignment(t, store)
	ctx := context.Background()

	require.NoError(t, store.SetSkills(ctx, "r1", []generic.SkillID{"go", "sql"}))
	require.NoError(t, store.SetSkills(ctx, "r1", []generic.SkillID{"k8s", "go"}))

	skills, err := store.SkillsOf(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []generic.SkillID{"go", "k8s"}, skills)
}

func TestStore_ResetClearsEverything(t *testing.T) {
	store := newTestStore(t)
	seedAssignment(t, store)
	ctx := context.Background()
	require.NoError(t, store.UpsertEntry(ctx, entry("2024-03-04", 50)))

	require.NoError(t, store.Reset(ctx))

	roles, err := store.ListRoles(ctx)
	require.NoError(t, err)
	assert.Empty(t, roles)
	_, err = store.GetAssignment(ctx, "a1")
	assert.True(t, errors.Is(err, generic.ErrAssignmentNotFound))

	// The schema survives
	seedAssignment(t, store)
}
