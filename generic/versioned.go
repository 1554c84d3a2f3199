package generic

// =============================================================================
// VERSIONED ENTITIES - One compare-and-swap rule for all master data
// =============================================================================

// VersionedEntity is implemented by every record updated with
// optimistic concurrency.
type VersionedEntity interface {
	EntityKind() string
	EntityKey() string
	EntityVersion() int64
}

func (r Resource) EntityKind() string   { return "resource" }
func (r Resource) EntityKey() string    { return string(r.ID) }
func (r Resource) EntityVersion() int64 { return r.Version }

func (r Role) EntityKind() string   { return "role" }
func (r Role) EntityKey() string    { return string(r.ID) }
func (r Role) EntityVersion() int64 { return r.Version }

func (p Project) EntityKind() string   { return "project" }
func (p Project) EntityKey() string    { return string(p.ID) }
func (p Project) EntityVersion() int64 { return p.Version }

// NextVersion returns the version to store for incoming given the currently
// stored record (nil when absent).
//
//	create: incoming version must be 0, result is 1
//	update: incoming version must equal stored, result is stored+1
func NextVersion[T VersionedEntity](stored *T, incoming T) (int64, error) {
	if stored == nil {
		if incoming.EntityVersion() != 0 {
			return 0, NewConflict(incoming, 0)
		}
		return 1, nil
	}
	current := (*stored).EntityVersion()
	if incoming.EntityVersion() != current {
		return 0, NewConflict(incoming, current)
	}
	return current + 1, nil
}

// CheckVersion guards a delete: expected must match the stored version.
func CheckVersion[T VersionedEntity](stored T, expected int64) error {
	if stored.EntityVersion() != expected {
		return &ConcurrencyConflictError{
			Kind:     stored.EntityKind(),
			Key:      stored.EntityKey(),
			Expected: expected,
			Actual:   stored.EntityVersion(),
		}
	}
	return nil
}

// NewConflict builds the error for an incoming write that carried a stale version.
func NewConflict(incoming VersionedEntity, actual int64) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{
		Kind:     incoming.EntityKind(),
		Key:      incoming.EntityKey(),
		Expected: incoming.EntityVersion(),
		Actual:   actual,
	}
}
