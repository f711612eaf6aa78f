package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"storefront-checkout/internal/models"
)

// CreateOrderRequest is the order-creation payload the marketplace accepts.
type CreateOrderRequest struct {
	Name          string             `json:"name"`
	Mobile        string             `json:"mobile"`
	Email         string             `json:"email"`
	Address       string             `json:"address"`
	Latitude      string             `json:"latitude,omitempty"`
	Longitude     string             `json:"longitude,omitempty"`
	Code          string             `json:"code,omitempty"`
	Products      []models.OrderLine `json:"products"`
	PaymentMethod string             `json:"payment_method"`
}

// CreateOrder submits an order. The idempotency key is unique per
// submission attempt so a user-driven resubmit after a transport timeout
// cannot create a second order.
func (c *Client) CreateOrder(ctx context.Context, token string, req CreateOrderRequest, idempotencyKey string) (*models.Order, error) {
	headers := map[string]string{"Idempotency-Key": idempotencyKey}

	var order models.Order
	if err := c.do(ctx, "order_create", http.MethodPost, "/order", token, req, &order, headers); err != nil {
		if se, ok := err.(*statusError); ok {
			return nil, &models.OrderSubmissionError{Reason: se.Message}
		}
		return nil, fmt.Errorf("order creation failed: %w", err)
	}
	return &order, nil
}

// OrderPage is one page of the caller's order history.
type OrderPage struct {
	Orders []models.Order `json:"orders"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Total  int            `json:"total"`
}

// ListOrders retrieves a page of past orders, newest first.
func (c *Client) ListOrders(ctx context.Context, token string, page, limit int) (*OrderPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out OrderPage
	if err := c.doRead(ctx, "order_list", "/order?"+q.Encode(), token, "orders", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrder retrieves a single order by its code.
func (c *Client) GetOrder(ctx context.Context, token, orderCode string) (*models.Order, error) {
	var order models.Order
	path := "/order/" + url.PathEscape(orderCode)
	if err := c.doRead(ctx, "order_get", path, token, "order", &order); err != nil {
		return nil, err
	}
	return &order, nil
}
