package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"storefront-checkout/internal/models"
)

// FetchCart retrieves the current cart snapshot.
func (c *Client) FetchCart(ctx context.Context, token string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := c.doRead(ctx, "cart_fetch", "/cart", token, "cart", &items); err != nil {
		return nil, err
	}
	return items, nil
}

type addItemRequest struct {
	Slug     string `json:"slug"`
	Quantity int    `json:"quantity"`
}

// AddCartItem appends or merges a line into the remote cart.
func (c *Client) AddCartItem(ctx context.Context, token, slug string, quantity int) error {
	req := addItemRequest{Slug: slug, Quantity: quantity}
	if err := c.do(ctx, "cart_add", http.MethodPost, "/cart/items", token, req, nil, nil); err != nil {
		return fmt.Errorf("failed to add %q to cart: %w", slug, err)
	}
	return nil
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItemQuantity sets the quantity of one cart line.
func (c *Client) UpdateCartItemQuantity(ctx context.Context, token, itemUUID string, quantity int) error {
	req := updateQuantityRequest{Quantity: quantity}
	path := "/cart/items/" + url.PathEscape(itemUUID)
	if err := c.do(ctx, "cart_update", http.MethodPatch, path, token, req, nil, nil); err != nil {
		return fmt.Errorf("failed to update quantity for %s: %w", itemUUID, err)
	}
	return nil
}

type removeItemsRequest struct {
	UUIDs []string `json:"uuids"`
}

// RemoveCartItems deletes a batch of cart lines. The marketplace treats
// already-absent ids as removed, so the call is idempotent.
func (c *Client) RemoveCartItems(ctx context.Context, token string, itemUUIDs []string) error {
	req := removeItemsRequest{UUIDs: itemUUIDs}
	if err := c.do(ctx, "cart_remove", http.MethodDelete, "/cart/items", token, req, nil, nil); err != nil {
		return fmt.Errorf("failed to remove %d item(s) from cart: %w", len(itemUUIDs), err)
	}
	return nil
}

// ResolveCartItems prices the given cart lines fresh for checkout.
func (c *Client) ResolveCartItems(ctx context.Context, token string, itemUUIDs []string) ([]models.CheckoutItem, error) {
	q := url.Values{}
	for _, id := range itemUUIDs {
		q.Add("items", id)
	}

	var items []models.CheckoutItem
	if err := c.doRead(ctx, "checkout_resolve", "/cart/details?"+q.Encode(), token, "checkout details", &items); err != nil {
		return nil, err
	}
	return items, nil
}

type buyNowLine struct {
	UUID     string `json:"uuid"`
	Quantity int    `json:"quantity"`
}

// ResolveBuyNow prices a single item with a caller-supplied quantity,
// bypassing the cart entirely.
func (c *Client) ResolveBuyNow(ctx context.Context, token, itemUUID string, quantity int) ([]models.CheckoutItem, error) {
	req := []buyNowLine{{UUID: itemUUID, Quantity: quantity}}

	var items []models.CheckoutItem
	if err := c.do(ctx, "checkout_resolve_buy_now", http.MethodPost, "/cart/details", token, req, &items, nil); err != nil {
		if se, ok := err.(*statusError); ok && se.Code >= 500 {
			return nil, &models.TransientFetchError{Resource: "checkout details", Err: err}
		}
		return nil, err
	}
	return items, nil
}
