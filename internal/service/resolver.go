package service

import (
	"context"

	"storefront-checkout/internal/models"
	"storefront-checkout/internal/session"
	"storefront-checkout/internal/upstream"
	"storefront-checkout/internal/util"

	"go.uber.org/zap"
)

// CheckoutResolver turns a checkout entry into an authoritative, freshly
// priced item list. Pricing always comes from the server, never from a
// stale cart snapshot: price and availability may have moved since the
// buyer selected.
type CheckoutResolver struct {
	client *upstream.Client
	logger *zap.Logger
}

func NewCheckoutResolver(client *upstream.Client) *CheckoutResolver {
	return &CheckoutResolver{
		client: client,
		logger: util.GetLogger(),
	}
}

// ResolveCart resolves the cart-checkout path from selected item ids.
// Re-invoking with the same input is safe; the result is parked on the
// session for the submitter.
func (r *CheckoutResolver) ResolveCart(ctx context.Context, sess *session.Checkout, token string, itemUUIDs []string) ([]models.CheckoutItem, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutResolver.ResolveCart")
	defer span.End()

	if len(itemUUIDs) == 0 {
		util.CheckoutResolutionsTotal.WithLabelValues("cart", "empty").Inc()
		return nil, models.ErrNoItemsSelected
	}

	items, err := r.client.ResolveCartItems(ctx, token, itemUUIDs)
	if err != nil {
		util.CheckoutResolutionsTotal.WithLabelValues("cart", "error").Inc()
		return nil, err
	}
	if len(items) == 0 {
		// Every requested line vanished between selection and resolution.
		util.CheckoutResolutionsTotal.WithLabelValues("cart", "empty").Inc()
		return nil, models.ErrNoItemsSelected
	}

	util.CheckoutResolutionsTotal.WithLabelValues("cart", "ok").Inc()
	sess.SetResolved(items)
	return items, nil
}

// ResolveBuyNow resolves the buy-now path: one item reference with a
// caller-supplied quantity, independent of cart contents.
func (r *CheckoutResolver) ResolveBuyNow(ctx context.Context, sess *session.Checkout, token, itemUUID string, quantity int) ([]models.CheckoutItem, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutResolver.ResolveBuyNow")
	defer span.End()

	if itemUUID == "" {
		util.CheckoutResolutionsTotal.WithLabelValues("buy_now", "empty").Inc()
		return nil, models.ErrNoItemsSelected
	}
	if quantity < 1 {
		quantity = 1
	}

	items, err := r.client.ResolveBuyNow(ctx, token, itemUUID, quantity)
	if err != nil {
		util.CheckoutResolutionsTotal.WithLabelValues("buy_now", "error").Inc()
		return nil, err
	}
	if len(items) == 0 {
		util.CheckoutResolutionsTotal.WithLabelValues("buy_now", "empty").Inc()
		return nil, models.ErrNoItemsSelected
	}

	util.CheckoutResolutionsTotal.WithLabelValues("buy_now", "ok").Inc()
	r.logger.Debug("Resolved buy-now checkout",
		zap.String("item_uuid", itemUUID),
		zap.Int("quantity", quantity))

	sess.SetResolved(items)
	return items, nil
}
