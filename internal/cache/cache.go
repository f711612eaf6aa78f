package cache

import (
	"context"
	"errors"

	"storefront-checkout/internal/models"
)

// SnapshotCache stores cart snapshots keyed by session. The cartstore is
// the only writer; invalidation after a mutation is mandatory.
type SnapshotCache interface {
	Get(ctx context.Context, sessionID string) ([]models.CartItem, error)
	Set(ctx context.Context, sessionID string, items []models.CartItem) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
