package service

import (
	"context"

	"storefront-checkout/internal/models"
	"storefront-checkout/internal/upstream"
	"storefront-checkout/internal/util"
)

// OrderHistory is the read-only view over past orders. Statuses are
// opaque here: this view renders them, it never transitions them.
type OrderHistory struct {
	client *upstream.Client
}

func NewOrderHistory(client *upstream.Client) *OrderHistory {
	return &OrderHistory{client: client}
}

// List returns one page of the caller's orders, newest first.
func (h *OrderHistory) List(ctx context.Context, token string, page, limit int) (*upstream.OrderPage, error) {
	ctx, span := util.StartSpan(ctx, "OrderHistory.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return h.client.ListOrders(ctx, token, page, limit)
}

// Get returns a single order by its code.
func (h *OrderHistory) Get(ctx context.Context, token, orderCode string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderHistory.Get")
	defer span.End()

	return h.client.GetOrder(ctx, token, orderCode)
}
