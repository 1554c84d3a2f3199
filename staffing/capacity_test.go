package staffing_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/staffing"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, staffing.StatusUnder, staffing.StatusFor(80, 100))
	assert.Equal(t, staffing.StatusFull, staffing.StatusFor(100, 100))
	assert.Equal(t, staffing.StatusOver, staffing.StatusFor(120, 100))
	assert.Equal(t, staffing.StatusFull, staffing.StatusFor(80, 80))
}

func TestDailyLoad_SumsAssignments(t *testing.T) {
	// GIVEN: 50% and 30% on two projects on Monday 2024-03-04
	f := newFixture(t)
	a1 := f.assign(t, "r1", "p1")
	a2 := f.assign(t, "r1", "p2")
	f.set(t, a1, "2024-03-04", 50)
	f.set(t, a2, "2024-03-04", 30)

	// THEN: The day carries 80% and is UNDER
	load, err := f.engine.Capacity.DailyLoad(f.ctx, "r1", date("2024-03-04"))
	require.NoError(t, err)
	assert.Equal(t, 80, load)

	status, err := f.engine.Capacity.LoadStatus(f.ctx, "r1", date("2024-03-04"))
	require.NoError(t, err)
	assert.Equal(t, staffing.StatusUnder, status)

	// AND: An empty day is 0
	load, err = f.engine.Capacity.DailyLoad(f.ctx, "r1", date("2024-03-05"))
	require.NoError(t, err)
	assert.Zero(t, load)
}

func TestLoadStatus_UsesResourceCeiling(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Directory.SaveResource(f.ctx, generic.Resource{
		ID: "r3", Name: "Part-timer", RoleID: "dev", Location: "milan", MaxStaffingPercentage: 80,
	})
	require.NoError(t, err)
	a := f.assign(t, "r3", "p1")
	f.set(t, a, "2024-03-04", 80)
	f.set(t, a, "2024-03-05", 90)

	full, err := f.engine.Capacity.LoadStatus(f.ctx, "r3", date("2024-03-04"))
	require.NoError(t, err)
	over, err := f.engine.Capacity.LoadStatus(f.ctx, "r3", date("2024-03-05"))
	require.NoError(t, err)

	assert.Equal(t, staffing.StatusFull, full)
	assert.Equal(t, staffing.StatusOver, over)
}

func TestDailyLoad_UnknownResource(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Capacity.DailyLoad(f.ctx, "ghost", date("2024-03-04"))

	assert.True(t, errors.Is(err, generic.ErrResourceNotFound))
}

func TestMonthlyUtilization_AveragesOverWorkingDays(t *testing.T) {
	// GIVEN: March 2024 has 21 weekdays, one of them a national holiday
	f := newFixture(t)
	f.holiday(t, "2024-03-29", generic.NationalHoliday, "")
	a := f.assign(t, "r1", "p1")

	// WHEN: 100% is booked over ten working days
	result, err := f.engine.Allocations.BulkSetRange(f.ctx, a, date("2024-03-04"), date("2024-03-15"), 100)
	require.NoError(t, err)
	require.Equal(t, 10, result.Written)

	// THEN: Utilization is 1000 / 20 working days
	u, err := f.engine.Capacity.MonthlyUtilization(f.ctx, "r1", month("2024-03"))
	require.NoError(t, err)
	assert.Equal(t, 20, u.WorkingDays)
	assert.InDelta(t, 50.0, u.AveragePercentage, 1e-9)
}

func TestMonthlyUtilization_EmptyMonth(t *testing.T) {
	f := newFixture(t)

	u, err := f.engine.Capacity.MonthlyUtilization(f.ctx, "r1", month("2024-03"))

	require.NoError(t, err)
	assert.Zero(t, u.AveragePercentage)
}

func TestAverageLoad_NoWorkingDaysIsZero(t *testing.T) {
	f := newFixture(t)

	avg, days, err := f.engine.Capacity.AverageLoad(f.ctx, "r1", date("2024-03-02"), date("2024-03-03"))

	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, days)
}

func TestFTEForProject(t *testing.T) {
	// GIVEN: r1 at 50% and r2 at 100% for all of March on p1
	f := newFixture(t)
	a1 := f.assign(t, "r1", "p1")
	a2 := f.assign(t, "r2", "p1")
	_, err := f.engine.Allocations.BulkSetRange(f.ctx, a1, date("2024-03-01"), date("2024-03-31"), 50)
	require.NoError(t, err)
	_, err = f.engine.Allocations.BulkSetRange(f.ctx, a2, date("2024-03-01"), date("2024-03-31"), 100)
	require.NoError(t, err)

	// THEN
	fte, err := f.engine.Capacity.FTEForProject(f.ctx, "p1", month("2024-03"))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, fte, 1e-9)

	fte, err = f.engine.Capacity.FTEForProject(f.ctx, "p2", month("2024-03"))
	require.NoError(t, err)
	assert.Zero(t, fte)
}

func TestFTEForProject_UnknownProject(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Capacity.FTEForProject(f.ctx, "ghost", month("2024-03"))

	assert.True(t, errors.Is(err, generic.ErrProjectNotFound))
}

func TestEstimatedCost_AcrossRateChange(t *testing.T) {
	// GIVEN: 500/day until June, 550/day from July, 50% on each side
	f := newFixture(t)
	require.NoError(t, f.engine.Rates.RecordHistory(f.ctx, "dev", devHistory()))
	a := f.assign(t, "r1", "p1")
	f.set(t, a, "2024-06-28", 50)
	f.set(t, a, "2024-07-01", 50)

	// WHEN
	cost, err := f.engine.Capacity.EstimatedCost(f.ctx, a, date("2024-06-01"), date("2024-07-31"))

	// THEN: 500*0.5 + 550*0.5
	require.NoError(t, err)
	assert.True(t, dec(525).Equal(cost), "got %s", cost)

	// AND: Narrowing the range prices only the covered day
	cost, err = f.engine.Capacity.EstimatedCost(f.ctx, a, date("2024-07-01"), date("2024-07-31"))
	require.NoError(t, err)
	assert.True(t, dec(275).Equal(cost), "got %s", cost)
}

func TestEstimatedCost_InvalidInput(t *testing.T) {
	f := newFixture(t)
	a := f.assign(t, "r1", "p1")

	_, err := f.engine.Capacity.EstimatedCost(f.ctx, a, date("2024-07-31"), date("2024-07-01"))
	assert.True(t, errors.Is(err, generic.ErrInvalidRange))

	_, err = f.engine.Capacity.EstimatedCost(f.ctx, "missing", date("2024-07-01"), date("2024-07-31"))
	assert.True(t, errors.Is(err, generic.ErrAssignmentNotFound))
}

func TestSnapshot_OneRowPerDay(t *testing.T) {
	f := newFixture(t)
	a := f.assign(t, "r1", "p1")
	f.set(t, a, "2024-03-04", 100)

	snaps, err := f.engine.Capacity.Snapshot(f.ctx, "r1", date("2024-03-02"), date("2024-03-05"))

	require.NoError(t, err)
	require.Len(t, snaps, 4)
	assert.False(t, snaps[0].WorkingDay)
	assert.Equal(t, staffing.StatusUnder, snaps[0].Status)
	assert.Equal(t, 100, snaps[2].Load)
	assert.Equal(t, staffing.StatusFull, snaps[2].Status)
	assert.True(t, snaps[3].WorkingDay)
	assert.Zero(t, snaps[3].Load)
}

func TestOverAllocations(t *testing.T) {
	// GIVEN: r1 booked 60% + 60% on 2024-03-05, r2 at exactly 100%
	f := newFixture(t)
	a1 := f.assign(t, "r1", "p1")
	a2 := f.assign(t, "r1", "p2")
	a3 := f.assign(t, "r2", "p1")
	f.set(t, a1, "2024-03-05", 60)
	f.set(t, a2, "2024-03-05", 60)
	f.set(t, a3, "2024-03-05", 100)

	// WHEN
	over, err := f.engine.Capacity.OverAllocations(f.ctx, date("2024-03-01"), date("2024-03-31"))

	// THEN: Only r1's day is reported
	require.NoError(t, err)
	require.Len(t, over, 1)
	assert.Equal(t, generic.ResourceID("r1"), over[0].ResourceID)
	assert.Equal(t, date("2024-03-05"), over[0].Date)
	assert.Equal(t, 120, over[0].Load)
	assert.Equal(t, staffing.StatusOver, over[0].Status)
}
