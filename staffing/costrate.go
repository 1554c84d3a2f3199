package staffing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/staffing-engine/generic"
)

// =============================================================================
// COST RATE RESOLVER - Effective-dated daily cost of a role
// =============================================================================

// CostRateResolver prices a role on a date from its RoleCostHistory,
// falling back to the role's current DailyCost when no interval covers it.
// Rates are returned unrounded.
type CostRateResolver struct {
	store    generic.TxStore
	notifier *Notifier
	logger   *slog.Logger
}

func NewCostRateResolver(store generic.TxStore, notifier *Notifier, logger *slog.Logger) *CostRateResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &CostRateResolver{store: store, notifier: notifier, logger: logger.With("component", "cost-rates")}
}

// RateFor returns the daily cost of roleID on date.
func (r *CostRateResolver) RateFor(ctx context.Context, roleID generic.RoleID, date generic.Date) (decimal.Decimal, error) {
	table, err := r.RateTable(ctx, roleID)
	if err != nil {
		return decimal.Zero, err
	}
	return table.Rate(date), nil
}

// RateTable loads roleID's history once for pricing many days.
func (r *CostRateResolver) RateTable(ctx context.Context, roleID generic.RoleID) (*RateTable, error) {
	return loadRateTable(ctx, r.store, roleID)
}

func loadRateTable(ctx context.Context, store generic.Store, roleID generic.RoleID) (*RateTable, error) {
	role, err := store.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	history, err := store.ListCostHistory(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("loading cost history for %s: %w", roleID, err)
	}
	return &RateTable{history: history, fallback: role.DailyCost}, nil
}

// historyOrigin opens the interval that carries a role's cost from before
// its first recorded change.
var historyOrigin = generic.NewDate(1, time.January, 1)

// RateTable is one role's cost history plus its fallback rate.
type RateTable struct {
	history  []generic.RoleCostInterval
	fallback decimal.Decimal
}

func NewRateTable(history []generic.RoleCostInterval, fallback decimal.Decimal) *RateTable {
	return &RateTable{history: history, fallback: fallback}
}

func (t *RateTable) Rate(date generic.Date) decimal.Decimal {
	return RateFromHistory(t.history, t.fallback, date)
}

// RateFromHistory scans intervals for the one covering date.
func RateFromHistory(history []generic.RoleCostInterval, fallback decimal.Decimal, date generic.Date) decimal.Decimal {
	for _, interval := range history {
		if interval.Covers(date) {
			return interval.DailyCost
		}
	}
	return fallback
}

// ValidateHistory rejects intervals that end before they start, overlap,
// leave a gap between them, or leave an open interval anywhere but last.
func ValidateHistory(history []generic.RoleCostInterval) error {
	sorted := append([]generic.RoleCostInterval(nil), history...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartDate.Before(sorted[j].StartDate) })

	for i, cur := range sorted {
		if cur.EndDate != nil && cur.EndDate.Before(cur.StartDate) {
			return fmt.Errorf("%w: interval starting %s ends %s", generic.ErrInvalidCostHistory, cur.StartDate, cur.EndDate)
		}
		if cur.DailyCost.IsNegative() {
			return fmt.Errorf("%w: negative daily cost from %s", generic.ErrInvalidCostHistory, cur.StartDate)
		}
		if i == len(sorted)-1 {
			break
		}
		next := sorted[i+1]
		if cur.EndDate == nil || !cur.EndDate.Before(next.StartDate) {
			return fmt.Errorf("%w: interval starting %s overlaps interval starting %s",
				generic.ErrInvalidCostHistory, cur.StartDate, next.StartDate)
		}
		if !cur.EndDate.AddDays(1).Equal(next.StartDate) {
			return fmt.Errorf("%w: gap between %s and %s",
				generic.ErrInvalidCostHistory, cur.EndDate, next.StartDate)
		}
	}
	return nil
}

// ChangeRoleCost makes dailyCost effective from effectiveFrom onward. The
// open interval is closed the day before, a new open interval starts, and
// the role's current cost moves, all in one transaction. Days before
// effectiveFrom that no interval covers are recorded at the old cost first.
// expectedVersion is the role version the caller read.
func (r *CostRateResolver) ChangeRoleCost(ctx context.Context, roleID generic.RoleID, effectiveFrom generic.Date, dailyCost decimal.Decimal, expectedVersion int64) (generic.Role, error) {
	if dailyCost.IsNegative() {
		return generic.Role{}, fmt.Errorf("%w: negative daily cost", generic.ErrInvalidCostHistory)
	}

	var updated generic.Role
	err := r.store.WithTx(ctx, func(tx generic.Store) error {
		role, err := tx.GetRole(ctx, roleID)
		if err != nil {
			return err
		}
		if err := generic.CheckVersion(role, expectedVersion); err != nil {
			return err
		}

		history, err := tx.ListCostHistory(ctx, roleID)
		if err != nil {
			return err
		}
		dayBefore := effectiveFrom.AddDays(-1)
		var lastEnd *generic.Date // latest end among intervals before effectiveFrom
		for _, interval := range history {
			if interval.StartDate.After(effectiveFrom) {
				return fmt.Errorf("%w: interval starting %s is after %s",
					generic.ErrInvalidCostHistory, interval.StartDate, effectiveFrom)
			}
			if interval.StartDate.Equal(effectiveFrom) {
				continue // replaced below
			}
			if interval.Covers(effectiveFrom) {
				interval.EndDate = &dayBefore
				if err := tx.SaveCostInterval(ctx, interval); err != nil {
					return err
				}
			}
			if lastEnd == nil || interval.EndDate.After(*lastEnd) {
				end := *interval.EndDate
				lastEnd = &end
			}
		}

		// Keep pricing the days before the change at the old cost.
		var carry *generic.RoleCostInterval
		switch {
		case lastEnd == nil && !role.DailyCost.Equal(dailyCost):
			carry = &generic.RoleCostInterval{StartDate: historyOrigin}
		case lastEnd != nil && lastEnd.Before(dayBefore):
			carry = &generic.RoleCostInterval{StartDate: lastEnd.AddDays(1)}
		}
		if carry != nil {
			carry.RoleID = roleID
			carry.EndDate = &dayBefore
			carry.DailyCost = role.DailyCost
			if err := tx.SaveCostInterval(ctx, *carry); err != nil {
				return err
			}
		}

		if err := tx.SaveCostInterval(ctx, generic.RoleCostInterval{
			RoleID:    roleID,
			StartDate: effectiveFrom,
			DailyCost: dailyCost,
		}); err != nil {
			return err
		}

		role.DailyCost = dailyCost
		updated, err = tx.SaveRole(ctx, role)
		return err
	})
	if err != nil {
		return generic.Role{}, err
	}

	r.logger.Info("role cost changed",
		"role", roleID,
		"effective_from", effectiveFrom.String(),
		"daily_cost", dailyCost.String(),
		"version", updated.Version,
	)
	r.notifier.Publish(ChangeEvent{Kind: CostHistoryChanged, RoleID: roleID})
	return updated, nil
}

// RecordHistory upserts intervals for roleID after checking that they stay
// consistent with the intervals already stored.
func (r *CostRateResolver) RecordHistory(ctx context.Context, roleID generic.RoleID, history []generic.RoleCostInterval) error {
	for i := range history {
		history[i].RoleID = roleID
	}
	if err := ValidateHistory(history); err != nil {
		return err
	}
	err := r.store.WithTx(ctx, func(tx generic.Store) error {
		existing, err := tx.ListCostHistory(ctx, roleID)
		if err != nil {
			return err
		}
		if err := ValidateHistory(mergeHistory(existing, history)); err != nil {
			return err
		}
		for _, interval := range history {
			if err := tx.SaveCostInterval(ctx, interval); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.notifier.Publish(ChangeEvent{Kind: CostHistoryChanged, RoleID: roleID})
	return nil
}

// mergeHistory overlays incoming on existing by start date.
func mergeHistory(existing, incoming []generic.RoleCostInterval) []generic.RoleCostInterval {
	byStart := make(map[generic.Date]generic.RoleCostInterval, len(existing)+len(incoming))
	for _, i := range existing {
		byStart[i.StartDate] = i
	}
	for _, i := range incoming {
		byStart[i.StartDate] = i
	}
	merged := make([]generic.RoleCostInterval, 0, len(byStart))
	for _, i := range byStart {
		merged = append(merged, i)
	}
	return merged
}
