package cartstore

import (
	"sort"
	"sync"

	"storefront-checkout/internal/models"
)

// LockTable serializes mutations per row: a second mutation on a row whose
// first has not resolved is refused, never raced. The in-flight set doubles
// as the "pending" projection the UI renders disabled controls from.
type LockTable struct {
	mu   sync.Mutex
	rows map[string]map[string]struct{} // scope -> in-flight row ids
}

func NewLockTable() *LockTable {
	return &LockTable{rows: make(map[string]map[string]struct{})}
}

// Acquire marks a row in flight. Returns MutationConflictError if the row
// already has a mutation outstanding.
func (t *LockTable) Acquire(scope, rowID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	inFlight, ok := t.rows[scope]
	if !ok {
		inFlight = make(map[string]struct{})
		t.rows[scope] = inFlight
	}
	if _, busy := inFlight[rowID]; busy {
		return &models.MutationConflictError{RowID: rowID}
	}
	inFlight[rowID] = struct{}{}
	return nil
}

// AcquireAll atomically acquires a batch of rows, or none of them.
func (t *LockTable) AcquireAll(scope string, rowIDs []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	inFlight, ok := t.rows[scope]
	if !ok {
		inFlight = make(map[string]struct{})
		t.rows[scope] = inFlight
	}
	for _, id := range rowIDs {
		if _, busy := inFlight[id]; busy {
			return &models.MutationConflictError{RowID: id}
		}
	}
	for _, id := range rowIDs {
		inFlight[id] = struct{}{}
	}
	return nil
}

// Release clears a row's in-flight mark. Releasing an absent row is a no-op.
func (t *LockTable) Release(scope string, rowIDs ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	inFlight, ok := t.rows[scope]
	if !ok {
		return
	}
	for _, id := range rowIDs {
		delete(inFlight, id)
	}
	if len(inFlight) == 0 {
		delete(t.rows, scope)
	}
}

// Pending returns the sorted row ids currently in flight for a scope.
func (t *LockTable) Pending(scope string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	inFlight := t.rows[scope]
	out := make([]string, 0, len(inFlight))
	for id := range inFlight {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// InFlight reports whether a row currently has a mutation outstanding.
func (t *LockTable) InFlight(scope, rowID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, busy := t.rows[scope][rowID]
	return busy
}
