package cartstore

import (
	"context"
	"sync"

	"storefront-checkout/internal/cache"
	"storefront-checkout/internal/models"
	"storefront-checkout/internal/upstream"
	"storefront-checkout/internal/util"

	"go.uber.org/zap"
)

// Store is the sole mutation authority over the remote cart. Reads go
// through a read-through snapshot cache; every completed fetch is stamped
// with a generation so a superseded response can never overwrite fresher
// state. All other components only ever read the installed snapshot.
type Store struct {
	client *upstream.Client
	cache  cache.SnapshotCache
	locks  *LockTable
	logger *zap.Logger

	mu        sync.Mutex
	gens      map[string]uint64 // latest generation issued per session
	snapshots map[string][]models.CartItem
}

// NewStore creates a cart store backed by the marketplace client.
func NewStore(client *upstream.Client, snapshotCache cache.SnapshotCache) *Store {
	return &Store{
		client:    client,
		cache:     snapshotCache,
		locks:     NewLockTable(),
		logger:    util.GetLogger(),
		gens:      make(map[string]uint64),
		snapshots: make(map[string][]models.CartItem),
	}
}

// Forget releases everything retained for a session: its generation
// counter, its installed snapshot and its cache entry. Called by the
// session janitor; without it every expired session would keep its last
// snapshot reachable forever.
func (s *Store) Forget(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.gens, sessionID)
	delete(s.snapshots, sessionID)
	s.mu.Unlock()

	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to drop cart cache for expired session",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}

// Fetch returns the current cart, from cache when possible. On a miss the
// upstream is consulted with the client's bounded retry; the result is
// installed only if no newer fetch or invalidation happened meanwhile.
func (s *Store) Fetch(ctx context.Context, sessionID, token string) ([]models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartStore.Fetch")
	defer span.End()

	if items, err := s.cache.Get(ctx, sessionID); err == nil {
		util.CartFetchesTotal.WithLabelValues("hit").Inc()
		s.install(sessionID, items)
		return items, nil
	}

	gen := s.nextGen(sessionID)

	items, err := s.client.FetchCart(ctx, token)
	if err != nil {
		util.CartFetchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	util.CartFetchesTotal.WithLabelValues("miss").Inc()

	if !s.isCurrent(sessionID, gen) {
		// A newer fetch or an invalidation superseded this response.
		// Hand it to the caller but never install it.
		util.CartStaleResponsesDiscarded.Inc()
		s.logger.Debug("Discarding superseded cart fetch",
			zap.String("session_id", sessionID),
			zap.Uint64("generation", gen))
		return items, nil
	}

	s.install(sessionID, items)
	if err := s.cache.Set(ctx, sessionID, items); err != nil {
		s.logger.Warn("Failed to cache cart snapshot", zap.Error(err))
	}
	return items, nil
}

// Snapshot returns the last installed cart without I/O. The selection
// engine and submitter read this shared model; they never mutate it.
func (s *Store) Snapshot(sessionID string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.snapshots[sessionID]
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}

// Pending lists the rows with a mutation in flight, for the UI projection.
func (s *Store) Pending(sessionID string) []string {
	return s.locks.Pending(sessionID)
}

// Add appends or merges a product line into the remote cart.
func (s *Store) Add(ctx context.Context, sessionID, token, itemSlug string, quantity int) error {
	ctx, span := util.StartSpan(ctx, "CartStore.Add")
	defer span.End()

	if quantity < 1 {
		return &models.InvalidQuantityError{Quantity: quantity}
	}

	// Adds are serialized per slug; the row has no uuid until the server
	// creates the line.
	rowID := "add:" + itemSlug
	if err := s.locks.Acquire(sessionID, rowID); err != nil {
		util.CartMutationConflictsTotal.Inc()
		return err
	}
	defer s.locks.Release(sessionID, rowID)

	if err := s.client.AddCartItem(ctx, token, itemSlug, quantity); err != nil {
		util.CartMutationsTotal.WithLabelValues("add", "error").Inc()
		return err
	}

	util.CartMutationsTotal.WithLabelValues("add", "ok").Inc()
	s.invalidate(ctx, sessionID)
	return nil
}

// UpdateQuantity sets a cart line's quantity. Quantities below 1 are
// rejected locally; removal is a separate operation.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID, token, itemUUID string, quantity int) error {
	ctx, span := util.StartSpan(ctx, "CartStore.UpdateQuantity")
	defer span.End()

	if quantity < 1 {
		return &models.InvalidQuantityError{Quantity: quantity}
	}

	if err := s.locks.Acquire(sessionID, itemUUID); err != nil {
		util.CartMutationConflictsTotal.Inc()
		return err
	}
	defer s.locks.Release(sessionID, itemUUID)

	if err := s.client.UpdateCartItemQuantity(ctx, token, itemUUID, quantity); err != nil {
		util.CartMutationsTotal.WithLabelValues("update", "error").Inc()
		return err
	}

	util.CartMutationsTotal.WithLabelValues("update", "ok").Inc()
	s.invalidate(ctx, sessionID)
	return nil
}

// Remove deletes a batch of cart lines. Removing an already-absent id is
// not an error.
func (s *Store) Remove(ctx context.Context, sessionID, token string, itemUUIDs []string) error {
	ctx, span := util.StartSpan(ctx, "CartStore.Remove")
	defer span.End()

	if len(itemUUIDs) == 0 {
		return nil
	}

	if err := s.locks.AcquireAll(sessionID, itemUUIDs); err != nil {
		util.CartMutationConflictsTotal.Inc()
		return err
	}
	defer s.locks.Release(sessionID, itemUUIDs...)

	if err := s.client.RemoveCartItems(ctx, token, itemUUIDs); err != nil {
		util.CartMutationsTotal.WithLabelValues("remove", "error").Inc()
		return err
	}

	util.CartMutationsTotal.WithLabelValues("remove", "ok").Inc()
	s.invalidate(ctx, sessionID)
	return nil
}

// Invalidate drops the cached snapshot and supersedes in-flight fetches,
// so the next read observes the server's state. Used after order placement:
// whether checkout cleared the cart is the server's call, not ours.
func (s *Store) Invalidate(ctx context.Context, sessionID string) {
	s.invalidate(ctx, sessionID)
}

func (s *Store) invalidate(ctx context.Context, sessionID string) {
	s.mu.Lock()
	s.gens[sessionID]++
	s.mu.Unlock()

	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to invalidate cart cache",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}

func (s *Store) nextGen(sessionID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[sessionID]++
	return s.gens[sessionID]
}

func (s *Store) isCurrent(sessionID string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[sessionID] == gen
}

func (s *Store) install(sessionID string, items []models.CartItem) {
	stored := make([]models.CartItem, len(items))
	copy(stored, items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[sessionID] = stored
}
