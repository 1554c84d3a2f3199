package staffing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/generic/store"
	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(s string) generic.Date {
	return generic.MustParseDate(s)
}

func month(s string) generic.Month {
	m, err := generic.ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

// newTestEngine returns an engine over a fresh memory store with its own
// metrics registry.
func newTestEngine(t *testing.T, opts ...func(*staffing.Config)) (*staffing.Engine, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	cfg := staffing.DefaultConfig()
	cfg.Registerer = reg
	for _, opt := range opts {
		opt(&cfg)
	}
	engine, err := staffing.New(store.NewTxMemory(), cfg)
	require.NoError(t, err)
	t.Cleanup(engine.Stop)
	return engine, reg
}

// fixture is the standard cast: role dev (500/day, level 2), resources
// r1 (milan) and r2 (rome) on dev, and projects p1 and p2.
type fixture struct {
	engine *staffing.Engine
	reg    *prometheus.Registry
	ctx    context.Context
}

func newFixture(t *testing.T, opts ...func(*staffing.Config)) *fixture {
	t.Helper()
	engine, reg := newTestEngine(t, opts...)
	f := &fixture{engine: engine, reg: reg, ctx: context.Background()}
	f.role(t, "dev", 500, 2)
	f.resource(t, "r1", "dev", "milan")
	f.resource(t, "r2", "dev", "rome")
	f.project(t, "p1")
	f.project(t, "p2")
	return f
}

func (f *fixture) role(t *testing.T, id string, cost int64, level int) generic.Role {
	t.Helper()
	r, err := f.engine.Directory.SaveRole(f.ctx, generic.Role{
		ID:             generic.RoleID(id),
		Name:           id,
		DailyCost:      decimal.NewFromInt(cost),
		SeniorityLevel: level,
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) resource(t *testing.T, id, role, location string) generic.Resource {
	t.Helper()
	r, err := f.engine.Directory.SaveResource(f.ctx, generic.Resource{
		ID:       generic.ResourceID(id),
		Name:     id,
		RoleID:   generic.RoleID(role),
		Location: generic.Location(location),
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) project(t *testing.T, id string) {
	t.Helper()
	_, err := f.engine.Directory.SaveProject(f.ctx, generic.Project{ID: generic.ProjectID(id), Name: id})
	require.NoError(t, err)
}

func (f *fixture) assign(t *testing.T, resource, project string) generic.AssignmentID {
	t.Helper()
	a, err := f.engine.Allocations.CreateAssignment(f.ctx, generic.ResourceID(resource), generic.ProjectID(project))
	require.NoError(t, err)
	return a.ID
}

func (f *fixture) set(t *testing.T, id generic.AssignmentID, day string, pct int) {
	t.Helper()
	require.NoError(t, f.engine.Allocations.SetAllocation(f.ctx, id, date(day), generic.Percentage(pct)))
}

func (f *fixture) holiday(t *testing.T, day string, typ generic.CalendarEventType, location string) {
	t.Helper()
	_, err := f.engine.Directory.AddCalendarEvent(f.ctx, generic.CalendarEvent{
		Date:     date(day),
		Type:     typ,
		Location: generic.Location(location),
		Name:     string(typ),
	})
	require.NoError(t, err)
}

// failingTxStore fails the nth ledger write made inside a transaction.
type failingTxStore struct {
	*store.TxMemory
	failAt int
}

var errInjected = errors.New("injected write failure")

func (s *failingTxStore) WithTx(ctx context.Context, fn func(generic.Store) error) error {
	return s.TxMemory.WithTx(ctx, func(tx generic.Store) error {
		return fn(&failingTx{Store: tx, failAt: s.failAt})
	})
}

type failingTx struct {
	generic.Store
	failAt int
	writes int
}

func (tx *failingTx) UpsertEntry(ctx context.Context, e generic.AllocationEntry) error {
	tx.writes++
	if tx.writes == tx.failAt {
		return errInjected
	}
	return tx.Store.UpsertEntry(ctx, e)
}
