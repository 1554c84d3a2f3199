/*
capacity.go - Read-side rollups over the allocation ledger

PURPOSE:
  CapacityAggregator answers the staffing questions the ledger exists for:
  how loaded is a person on a day, how utilized over a month, how many
  full-time equivalents a project consumes, and what an assignment costs.

LOAD STATUS:
  dailyLoad compares against the resource's ceiling (100 unless overridden):
    load <  max  -> UNDER
    load == max  -> FULL
    load >  max  -> OVER

AVERAGES:
  Monthly utilization and average load divide by the number of working
  days of the resource's location, not calendar days. A period without
  working days averages to 0.

CACHING:
  MonthlyUtilization, FTEForProject and AverageLoad go through
  AnalyticsCache; every ledger, calendar, cost or master-data write clears it.

SEE ALSO:
  - allocation.go: the writer
  - costrate.go: pricing for EstimatedCost
*/
package staffing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/warp/staffing-engine/generic"
)

type LoadStatus string

const (
	StatusUnder LoadStatus = "UNDER"
	StatusFull  LoadStatus = "FULL"
	StatusOver  LoadStatus = "OVER"
)

// StatusFor classifies load against ceiling.
func StatusFor(load, ceiling int) LoadStatus {
	switch {
	case load < ceiling:
		return StatusUnder
	case load == ceiling:
		return StatusFull
	default:
		return StatusOver
	}
}

// Utilization is a resource's average daily load over one month.
type Utilization struct {
	ResourceID        generic.ResourceID
	Month             generic.Month
	AveragePercentage float64
	WorkingDays       int
}

// CapacitySnapshot is the derived load of one resource on one day.
type CapacitySnapshot struct {
	ResourceID generic.ResourceID
	Date       generic.Date
	Load       int
	Max        int
	Status     LoadStatus
	WorkingDay bool
}

type CapacityAggregator struct {
	store  generic.Store
	cache  *AnalyticsCache
	logger *slog.Logger
}

func NewCapacityAggregator(store generic.Store, cache *AnalyticsCache, logger *slog.Logger) *CapacityAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CapacityAggregator{store: store, cache: cache, logger: logger.With("component", "capacity")}
}

// =============================================================================
// LEDGER ROLLUPS
// =============================================================================

// DailyLoad sums the resource's allocations on date across all assignments.
func (c *CapacityAggregator) DailyLoad(ctx context.Context, resourceID generic.ResourceID, date generic.Date) (int, error) {
	if _, err := c.store.GetResource(ctx, resourceID); err != nil {
		return 0, err
	}
	loads, err := c.loadsInRange(ctx, resourceID, generic.NewDateRange(date, date))
	if err != nil {
		return 0, err
	}
	return loads[date], nil
}

// MonthlyUtilization averages the daily load over the working days of month.
func (c *CapacityAggregator) MonthlyUtilization(ctx context.Context, resourceID generic.ResourceID, month generic.Month) (Utilization, error) {
	key := fmt.Sprintf("util:%s:%s", resourceID, month)
	return cached(c.cache, key, func() (Utilization, error) {
		avg, days, err := c.averageLoad(ctx, resourceID, month.Range())
		if err != nil {
			return Utilization{}, err
		}
		return Utilization{ResourceID: resourceID, Month: month, AveragePercentage: avg, WorkingDays: days}, nil
	})
}

// FTEForProject adds, per assignment on the project, the allocation summed
// over the month's working days divided by the number of those days.
func (c *CapacityAggregator) FTEForProject(ctx context.Context, projectID generic.ProjectID, month generic.Month) (float64, error) {
	key := fmt.Sprintf("fte:%s:%s", projectID, month)
	return cached(c.cache, key, func() (float64, error) {
		if _, err := c.store.GetProject(ctx, projectID); err != nil {
			return 0, err
		}
		assignments, err := c.store.ListAssignmentsByProject(ctx, projectID)
		if err != nil {
			return 0, err
		}
		r := month.Range()
		cal, err := LoadCalendar(ctx, c.store, r)
		if err != nil {
			return 0, err
		}

		fte := 0.0
		for _, a := range assignments {
			resource, err := c.store.GetResource(ctx, a.ResourceID)
			if err != nil {
				return 0, err
			}
			workingDays := cal.WorkingDays(r, resource.Location)
			if len(workingDays) == 0 {
				continue
			}
			entries, err := c.store.LoadEntriesInRange(ctx, a.ID, r)
			if err != nil {
				return 0, err
			}
			total := 0
			for _, e := range entries {
				if cal.IsWorkingDay(e.Date, resource.Location) {
					total += int(e.Percentage)
				}
			}
			fte += float64(total) / 100 / float64(len(workingDays))
		}
		return fte, nil
	})
}

// EstimatedCost prices every working day of the assignment in [start, end]
// at the role rate effective that day times the day's percentage.
func (c *CapacityAggregator) EstimatedCost(ctx context.Context, assignmentID generic.AssignmentID, start, end generic.Date) (decimal.Decimal, error) {
	r := generic.NewDateRange(start, end)
	if err := r.Validate(); err != nil {
		return decimal.Zero, err
	}
	a, err := c.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return decimal.Zero, err
	}
	resource, err := c.store.GetResource(ctx, a.ResourceID)
	if err != nil {
		return decimal.Zero, err
	}
	rates, err := loadRateTable(ctx, c.store, resource.RoleID)
	if err != nil {
		return decimal.Zero, err
	}
	cal, err := LoadCalendar(ctx, c.store, r)
	if err != nil {
		return decimal.Zero, err
	}
	entries, err := c.store.LoadEntriesInRange(ctx, assignmentID, r)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, e := range entries {
		if !cal.IsWorkingDay(e.Date, resource.Location) {
			continue
		}
		total = total.Add(rates.Rate(e.Date).Mul(e.Percentage.Fraction()))
	}
	return total, nil
}

// LoadStatus classifies the resource's load on date against its ceiling.
func (c *CapacityAggregator) LoadStatus(ctx context.Context, resourceID generic.ResourceID, date generic.Date) (LoadStatus, error) {
	resource, err := c.store.GetResource(ctx, resourceID)
	if err != nil {
		return "", err
	}
	load, err := c.DailyLoad(ctx, resourceID, date)
	if err != nil {
		return "", err
	}
	return StatusFor(load, resource.MaxStaffing()), nil
}

// =============================================================================
// DASHBOARD QUERIES
// =============================================================================

// Snapshot returns one CapacitySnapshot per calendar day of [start, end].
func (c *CapacityAggregator) Snapshot(ctx context.Context, resourceID generic.ResourceID, start, end generic.Date) ([]CapacitySnapshot, error) {
	r := generic.NewDateRange(start, end)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	resource, err := c.store.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	cal, err := LoadCalendar(ctx, c.store, r)
	if err != nil {
		return nil, err
	}
	return c.snapshot(ctx, resource, cal, r)
}

func (c *CapacityAggregator) snapshot(ctx context.Context, resource generic.Resource, cal *WorkingCalendar, r generic.DateRange) ([]CapacitySnapshot, error) {
	loads, err := c.loadsInRange(ctx, resource.ID, r)
	if err != nil {
		return nil, err
	}
	ceiling := resource.MaxStaffing()
	snapshots := make([]CapacitySnapshot, 0, r.Len())
	for _, d := range r.Days() {
		load := loads[d]
		snapshots = append(snapshots, CapacitySnapshot{
			ResourceID: resource.ID,
			Date:       d,
			Load:       load,
			Max:        ceiling,
			Status:     StatusFor(load, ceiling),
			WorkingDay: cal.IsWorkingDay(d, resource.Location),
		})
	}
	return snapshots, nil
}

// OverAllocations lists every OVER day in [start, end] across active resources.
func (c *CapacityAggregator) OverAllocations(ctx context.Context, start, end generic.Date) ([]CapacitySnapshot, error) {
	r := generic.NewDateRange(start, end)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	resources, err := c.store.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	cal, err := LoadCalendar(ctx, c.store, r)
	if err != nil {
		return nil, err
	}

	var over []CapacitySnapshot
	for _, resource := range resources {
		if resource.Resigned {
			continue
		}
		snapshots, err := c.snapshot(ctx, resource, cal, r)
		if err != nil {
			return nil, err
		}
		for _, s := range snapshots {
			if s.Status == StatusOver {
				over = append(over, s)
			}
		}
	}
	if len(over) > 0 {
		c.logger.Debug("over-allocation detected", "range", r.String(), "days", len(over))
	}
	return over, nil
}

// AverageLoad is the mean daily load over the working days of [start, end]
// and the number of those days.
func (c *CapacityAggregator) AverageLoad(ctx context.Context, resourceID generic.ResourceID, start, end generic.Date) (float64, int, error) {
	r := generic.NewDateRange(start, end)
	if err := r.Validate(); err != nil {
		return 0, 0, err
	}
	type avg struct {
		value float64
		days  int
	}
	key := fmt.Sprintf("avg:%s:%s", resourceID, r)
	v, err := cached(c.cache, key, func() (avg, error) {
		value, days, err := c.averageLoad(ctx, resourceID, r)
		return avg{value: value, days: days}, err
	})
	return v.value, v.days, err
}

func (c *CapacityAggregator) averageLoad(ctx context.Context, resourceID generic.ResourceID, r generic.DateRange) (float64, int, error) {
	resource, err := c.store.GetResource(ctx, resourceID)
	if err != nil {
		return 0, 0, err
	}
	cal, err := LoadCalendar(ctx, c.store, r)
	if err != nil {
		return 0, 0, err
	}
	workingDays := cal.WorkingDays(r, resource.Location)
	if len(workingDays) == 0 {
		return 0, 0, nil
	}
	loads, err := c.loadsInRange(ctx, resourceID, r)
	if err != nil {
		return 0, 0, err
	}
	total := 0
	for _, d := range workingDays {
		total += loads[d]
	}
	return float64(total) / float64(len(workingDays)), len(workingDays), nil
}

// loadsInRange sums every assignment of the resource per day.
func (c *CapacityAggregator) loadsInRange(ctx context.Context, resourceID generic.ResourceID, r generic.DateRange) (map[generic.Date]int, error) {
	assignments, err := c.store.ListAssignmentsByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	loads := make(map[generic.Date]int)
	for _, a := range assignments {
		entries, err := c.store.LoadEntriesInRange(ctx, a.ID, r)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			loads[e.Date] += int(e.Percentage)
		}
	}
	return loads, nil
}
