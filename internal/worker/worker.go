package worker

import (
	"context"
	"time"

	"storefront-checkout/internal/session"
	"storefront-checkout/internal/util"

	"go.uber.org/zap"
)

// SessionStateStore releases per-session state held outside the registry,
// such as cart snapshots and cache entries.
type SessionStateStore interface {
	Forget(ctx context.Context, sessionID string)
}

// SessionJanitor sweeps expired checkout sessions in the background.
// The durable cart and orders live on the marketplace side, so dropping
// an idle session loses nothing a fresh one cannot rebuild.
type SessionJanitor struct {
	registry *session.Registry
	store    SessionStateStore
	interval time.Duration
	logger   *zap.Logger
}

// NewSessionJanitor creates a janitor for the given registry. Swept
// session ids are also forgotten in the given store.
func NewSessionJanitor(registry *session.Registry, store SessionStateStore, interval time.Duration) *SessionJanitor {
	return &SessionJanitor{
		registry: registry,
		store:    store,
		interval: interval,
		logger:   util.GetLogger(),
	}
}

// Start runs the sweep loop until the context is cancelled.
func (j *SessionJanitor) Start(ctx context.Context) error {
	j.logger.Info("Starting session janitor",
		zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Session janitor stopping")
			return ctx.Err()
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *SessionJanitor) sweep(ctx context.Context) {
	removed := j.registry.SweepExpired(time.Now())
	if len(removed) == 0 {
		return
	}

	if j.store != nil {
		for _, id := range removed {
			j.store.Forget(ctx, id)
		}
	}

	util.SessionsExpiredTotal.Add(float64(len(removed)))
	j.logger.Info("Swept expired checkout sessions",
		zap.Int("removed", len(removed)),
		zap.Int("remaining", j.registry.Len()))
}
