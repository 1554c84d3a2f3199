/*
allocation.go - The per-day allocation ledger

PURPOSE:
  AllocationStore is the only writer of allocation entries. It enforces
  the ledger rules on every write:
  1. Percentages are whole numbers in [0, 100]
  2. Entries only exist on working days of the resource's location
  3. Writing 0 removes the entry (the ledger is sparse)
  4. Range writes are atomic: all days land or none do

OVER-ALLOCATION:
  Writes never look at other assignments. A resource may be booked above
  its ceiling; CapacityAggregator flags it as OVER when read.

LIFECYCLE:
  Assignments are created here and deleted here. Deleting an assignment,
  a resource or a project removes the affected entries in the same
  transaction.

SEE ALSO:
  - calendar.go: working-day rule
  - capacity.go: read-side aggregation
*/
package staffing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/warp/staffing-engine/generic"
)

// BulkResult reports what a range write touched.
type BulkResult struct {
	Written int            // working days set (or cleared when percentage is 0)
	Skipped []generic.Date // non-working days left untouched
}

type AllocationStore struct {
	store    generic.TxStore
	notifier *Notifier
	metrics  *engineMetrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewAllocationStore(store generic.TxStore, notifier *Notifier, metrics *engineMetrics, logger *slog.Logger) *AllocationStore {
	if metrics == nil {
		metrics = newEngineMetrics(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AllocationStore{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger.With("component", "allocations"),
		now:      time.Now,
	}
}

// =============================================================================
// WRITES
// =============================================================================

// SetAllocation sets one day of one assignment. A percentage of 0 deletes.
// The working-day check and the write share one transaction with the
// assignment lookup.
func (s *AllocationStore) SetAllocation(ctx context.Context, assignmentID generic.AssignmentID, date generic.Date, pct generic.Percentage) error {
	if !pct.Valid() {
		return &generic.InvalidPercentageError{Value: int(pct)}
	}

	var resource generic.Resource
	err := s.store.WithTx(ctx, func(tx generic.Store) error {
		var err error
		resource, err = resourceOf(ctx, tx, assignmentID)
		if err != nil {
			return err
		}
		cal, err := LoadCalendar(ctx, tx, generic.NewDateRange(date, date))
		if err != nil {
			return err
		}
		if reason := cal.NonWorkingReason(date, resource.Location); reason != "" {
			return &generic.NonWorkingDayError{
				AssignmentID: assignmentID,
				Date:         date,
				Location:     resource.Location,
				Reason:       reason,
			}
		}
		if pct == 0 {
			return tx.DeleteEntry(ctx, assignmentID, date)
		}
		return tx.UpsertEntry(ctx, generic.AllocationEntry{AssignmentID: assignmentID, Date: date, Percentage: pct})
	})
	if err != nil {
		return err
	}

	op := "set"
	if pct == 0 {
		op = "clear"
	}
	s.metrics.allocationWrites.WithLabelValues(op).Inc()
	s.logger.Debug("allocation written", "assignment", assignmentID, "date", date.String(), "percentage", int(pct))
	s.notifier.Publish(ChangeEvent{Kind: LedgerChanged, AssignmentID: assignmentID, ResourceID: resource.ID})
	return nil
}

// BulkSetRange sets every working day in [start, end] to pct in one
// transaction. Non-working days are skipped; a range with no working days
// succeeds without writing.
func (s *AllocationStore) BulkSetRange(ctx context.Context, assignmentID generic.AssignmentID, start, end generic.Date, pct generic.Percentage) (BulkResult, error) {
	r := generic.NewDateRange(start, end)
	if err := r.Validate(); err != nil {
		return BulkResult{}, err
	}
	if !pct.Valid() {
		return BulkResult{}, &generic.InvalidPercentageError{Value: int(pct)}
	}
	resource, err := resourceOf(ctx, s.store, assignmentID)
	if err != nil {
		return BulkResult{}, err
	}
	cal, err := LoadCalendar(ctx, s.store, r)
	if err != nil {
		return BulkResult{}, err
	}

	var result BulkResult
	err = s.store.WithTx(ctx, func(tx generic.Store) error {
		result = BulkResult{}
		for _, day := range r.Days() {
			if !cal.IsWorkingDay(day, resource.Location) {
				result.Skipped = append(result.Skipped, day)
				continue
			}
			var err error
			if pct == 0 {
				err = tx.DeleteEntry(ctx, assignmentID, day)
			} else {
				err = tx.UpsertEntry(ctx, generic.AllocationEntry{AssignmentID: assignmentID, Date: day, Percentage: pct})
			}
			if err != nil {
				return err
			}
			result.Written++
		}
		return nil
	})
	if err != nil {
		s.metrics.bulkRollbacks.Inc()
		s.logger.Warn("bulk allocation rolled back",
			"assignment", assignmentID,
			"range", r.String(),
			"error", err,
		)
		return BulkResult{}, &generic.TransactionFailureError{Op: "bulk set range", Cause: err}
	}

	s.metrics.allocationWrites.WithLabelValues("bulk").Inc()
	s.logger.Debug("bulk allocation written",
		"assignment", assignmentID,
		"range", r.String(),
		"percentage", int(pct),
		"written", result.Written,
		"skipped", len(result.Skipped),
	)
	if result.Written > 0 {
		s.notifier.Publish(ChangeEvent{Kind: LedgerChanged, AssignmentID: assignmentID, ResourceID: resource.ID})
	}
	return result, nil
}

// DeleteAssignmentAllocations clears every entry of the assignment and
// returns how many were removed. An unknown assignment is not found.
func (s *AllocationStore) DeleteAssignmentAllocations(ctx context.Context, assignmentID generic.AssignmentID) (int, error) {
	var n int
	err := s.store.WithTx(ctx, func(tx generic.Store) error {
		if _, err := tx.GetAssignment(ctx, assignmentID); err != nil {
			return err
		}
		var err error
		n, err = tx.DeleteEntries(ctx, assignmentID)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.metrics.allocationWrites.WithLabelValues("purge").Inc()
	if n > 0 {
		s.notifier.Publish(ChangeEvent{Kind: LedgerChanged, AssignmentID: assignmentID})
	}
	return n, nil
}

// =============================================================================
// READS
// =============================================================================

// GetAllocations returns the stored days of the assignment. Days not in
// the map are 0%.
func (s *AllocationStore) GetAllocations(ctx context.Context, assignmentID generic.AssignmentID) (map[generic.Date]generic.Percentage, error) {
	if _, err := s.store.GetAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	entries, err := s.store.LoadEntries(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return toMap(entries), nil
}

// GetAllocationsInRange is GetAllocations restricted to [start, end].
func (s *AllocationStore) GetAllocationsInRange(ctx context.Context, assignmentID generic.AssignmentID, start, end generic.Date) (map[generic.Date]generic.Percentage, error) {
	r := generic.NewDateRange(start, end)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	entries, err := s.store.LoadEntriesInRange(ctx, assignmentID, r)
	if err != nil {
		return nil, err
	}
	return toMap(entries), nil
}

func toMap(entries []generic.AllocationEntry) map[generic.Date]generic.Percentage {
	m := make(map[generic.Date]generic.Percentage, len(entries))
	for _, e := range entries {
		m[e.Date] = e.Percentage
	}
	return m
}

func resourceOf(ctx context.Context, st generic.Store, assignmentID generic.AssignmentID) (generic.Resource, error) {
	a, err := st.GetAssignment(ctx, assignmentID)
	if err != nil {
		return generic.Resource{}, err
	}
	return st.GetResource(ctx, a.ResourceID)
}

// =============================================================================
// ASSIGNMENT LIFECYCLE
// =============================================================================

// CreateAssignment links a resource to a project. The pair must be new.
func (s *AllocationStore) CreateAssignment(ctx context.Context, resourceID generic.ResourceID, projectID generic.ProjectID) (generic.Assignment, error) {
	if _, err := s.store.GetResource(ctx, resourceID); err != nil {
		return generic.Assignment{}, err
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return generic.Assignment{}, err
	}
	a := generic.Assignment{
		ID:         generic.AssignmentID(uuid.NewString()),
		ResourceID: resourceID,
		ProjectID:  projectID,
		CreatedAt:  s.now().UTC().Truncate(time.Second),
	}
	if err := s.store.SaveAssignment(ctx, a); err != nil {
		return generic.Assignment{}, err
	}
	s.logger.Info("assignment created", "assignment", a.ID, "resource", resourceID, "project", projectID)
	return a, nil
}

// DeleteAssignment removes the assignment and its entries atomically.
func (s *AllocationStore) DeleteAssignment(ctx context.Context, assignmentID generic.AssignmentID) error {
	var resourceID generic.ResourceID
	err := s.store.WithTx(ctx, func(tx generic.Store) error {
		a, err := tx.GetAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		resourceID = a.ResourceID
		return deleteAssignments(ctx, tx, []generic.Assignment{a})
	})
	if err != nil {
		return err
	}
	s.logger.Info("assignment deleted", "assignment", assignmentID)
	s.notifier.Publish(ChangeEvent{Kind: LedgerChanged, AssignmentID: assignmentID, ResourceID: resourceID})
	return nil
}

// DeleteResource removes a resource at the expected version together with
// its assignments and their entries.
func (s *AllocationStore) DeleteResource(ctx context.Context, resourceID generic.ResourceID, version int64) error {
	err := s.store.WithTx(ctx, func(tx generic.Store) error {
		assignments, err := tx.ListAssignmentsByResource(ctx, resourceID)
		if err != nil {
			return err
		}
		if err := deleteAssignments(ctx, tx, assignments); err != nil {
			return err
		}
		return tx.DeleteResource(ctx, resourceID, version)
	})
	if err != nil {
		return err
	}
	s.logger.Info("resource deleted", "resource", resourceID)
	s.notifier.Publish(ChangeEvent{Kind: MasterDataChanged, ResourceID: resourceID})
	return nil
}

// DeleteProject removes a project at the expected version together with
// its assignments and their entries.
func (s *AllocationStore) DeleteProject(ctx context.Context, projectID generic.ProjectID, version int64) error {
	err := s.store.WithTx(ctx, func(tx generic.Store) error {
		assignments, err := tx.ListAssignmentsByProject(ctx, projectID)
		if err != nil {
			return err
		}
		if err := deleteAssignments(ctx, tx, assignments); err != nil {
			return err
		}
		return tx.DeleteProject(ctx, projectID, version)
	})
	if err != nil {
		return err
	}
	s.logger.Info("project deleted", "project", projectID)
	s.notifier.Publish(ChangeEvent{Kind: MasterDataChanged})
	return nil
}

func deleteAssignments(ctx context.Context, tx generic.Store, assignments []generic.Assignment) error {
	for _, a := range assignments {
		if _, err := tx.DeleteEntries(ctx, a.ID); err != nil {
			return err
		}
		if err := tx.DeleteAssignment(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}
