package api

import (
	"context"
	"net/http"
)

// statusUpdate is the admin order-status payload.
type statusUpdate struct {
	Status string `json:"status"`
}

// CreateOrder submits an order and returns the backend's record.
func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", input, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// MyOrders returns the logged-in user's order history.
func (c *Client) MyOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders/myorders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order by ID.
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+id, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns every order. Admin only.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus sets an order's fulfillment status. Admin only.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, http.MethodPut, "/orders/status/"+id, statusUpdate{Status: status}, nil)
}
