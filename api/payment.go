package api

import (
	"context"
	"net/http"
)

// createGatewayOrderRequest asks the backend to open a gateway order
// for an existing order record.
type createGatewayOrderRequest struct {
	OrderID string `json:"orderId"`
}

// createGatewayOrderResponse wraps the provider-side order.
type createGatewayOrderResponse struct {
	RazorOrder GatewayOrder `json:"razorOrder"`
}

// VerifyRequest forwards the hosted checkout's completion callback to
// the backend for signature verification.
type VerifyRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	GatewaySignature string `json:"razorpay_signature"`
	OrderID          string `json:"orderId"`
}

// VerifyResponse is the verification outcome.
type VerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CreateGatewayOrder opens a payment-provider order authorizing
// checkout for the given backend order.
func (c *Client) CreateGatewayOrder(ctx context.Context, orderID string) (*GatewayOrder, error) {
	var resp createGatewayOrderResponse
	if err := c.do(ctx, http.MethodPost, "/payment/create-order", createGatewayOrderRequest{OrderID: orderID}, &resp); err != nil {
		return nil, err
	}
	return &resp.RazorOrder, nil
}

// VerifyPayment asks the backend to verify a gateway completion.
func (c *Client) VerifyPayment(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	var resp VerifyResponse
	if err := c.do(ctx, http.MethodPost, "/payment/verify", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
