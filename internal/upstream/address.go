package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"storefront-checkout/internal/models"
)

// ListAddresses retrieves the caller's saved delivery addresses.
func (c *Client) ListAddresses(ctx context.Context, token string) ([]models.Address, error) {
	var addrs []models.Address
	if err := c.doRead(ctx, "address_list", "/address", token, "addresses", &addrs); err != nil {
		return nil, err
	}
	return addrs, nil
}

// CreateAddress saves a new delivery address and returns it with its id.
func (c *Client) CreateAddress(ctx context.Context, token string, fields models.AddressFields) (*models.Address, error) {
	var addr models.Address
	if err := c.do(ctx, "address_create", http.MethodPost, "/address", token, fields, &addr, nil); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return &addr, nil
}

// UpdateAddress updates a saved address in place.
func (c *Client) UpdateAddress(ctx context.Context, token string, id int64, fields models.AddressFields) (*models.Address, error) {
	var addr models.Address
	path := "/address/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, "address_update", http.MethodPatch, path, token, fields, &addr, nil); err != nil {
		return nil, fmt.Errorf("failed to update address %d: %w", id, err)
	}
	return &addr, nil
}

// DeleteAddress removes a saved address. Past orders are unaffected: they
// hold a text snapshot, not a reference.
func (c *Client) DeleteAddress(ctx context.Context, token string, id int64) error {
	path := "/address/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, "address_delete", http.MethodDelete, path, token, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete address %d: %w", id, err)
	}
	return nil
}
