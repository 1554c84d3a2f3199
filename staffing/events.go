package staffing

import (
	"log/slog"
	"sync"
	"time"

	"github.com/warp/staffing-engine/generic"
)

// =============================================================================
// CHANGE NOTIFICATIONS - Push channel for cache invalidation
// =============================================================================

type ChangeKind string

const (
	LedgerChanged      ChangeKind = "ledger"
	CostHistoryChanged ChangeKind = "cost_history"
	CalendarChanged    ChangeKind = "calendar"
	MasterDataChanged  ChangeKind = "master_data"
)

// ChangeEvent describes a committed write. Only the ids relevant to the
// kind are set.
type ChangeEvent struct {
	Kind         ChangeKind
	At           time.Time
	AssignmentID generic.AssignmentID
	ResourceID   generic.ResourceID
	RoleID       generic.RoleID
}

type SubscriberID int

type ChangeHandler func(ChangeEvent)

// Notifier fans change events out to subscribers. Publish is synchronous:
// every handler has returned before Publish does, so a reader that starts
// after a write returns never sees state invalidated by that write.
type Notifier struct {
	mu          sync.RWMutex
	subscribers map[SubscriberID]ChangeHandler
	lastID      SubscriberID
	logger      *slog.Logger
}

func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		subscribers: make(map[SubscriberID]ChangeHandler),
		logger:      logger.With("component", "notifier"),
	}
}

func (n *Notifier) Subscribe(fn ChangeHandler) SubscriberID {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastID++
	n.subscribers[n.lastID] = fn
	return n.lastID
}

func (n *Notifier) Unsubscribe(id SubscriberID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subscribers, id)
}

// Publish delivers evt to every subscriber. A nil Notifier drops it.
func (n *Notifier) Publish(evt ChangeEvent) {
	if n == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	n.mu.RLock()
	handlers := make([]ChangeHandler, 0, len(n.subscribers))
	for _, h := range n.subscribers {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	n.logger.Debug("publishing change",
		"kind", evt.Kind,
		"assignment", evt.AssignmentID,
		"resource", evt.ResourceID,
		"role", evt.RoleID,
		"subscribers", len(handlers),
	)
	for _, h := range handlers {
		h(evt)
	}
}
