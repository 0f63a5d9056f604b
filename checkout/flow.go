// Package checkout drives the multi-step order flow: create the backend
// order, open a gateway order, collect the hosted checkout's completion,
// verify it, and persist the authoritative paid order.
//
// The flow is an explicit state machine persisted to the state
// directory after every transition, so a process exit mid-flow leaves a
// resumable record instead of silently inconsistent state. There is no
// compensating transaction: a step failure marks the flow Failed and
// leaves any partially created backend records for the operator.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/raynott/decmart/api"
	"github.com/raynott/decmart/cart"
	"github.com/raynott/decmart/pricing"
	"github.com/raynott/decmart/session"
)

// FileName is the persisted flow file within the state directory.
const FileName = "checkout.json"

// ErrNoFlow means no checkout is in progress.
var ErrNoFlow = errors.New("no checkout in progress")

// State names one step of the checkout state machine.
type State string

const (
	// StateCreated: the backend order record exists, no gateway order yet.
	StateCreated State = "created"
	// StatePaymentPending: the gateway order is open, awaiting the
	// hosted checkout's completion callback.
	StatePaymentPending State = "payment_pending"
	// StateVerified: the backend confirmed the payment signature.
	StateVerified State = "verified"
	// StateFailed: a step failed; terminal, start over to retry.
	StateFailed State = "failed"
)

// Flow is the persisted checkout in progress.
type Flow struct {
	AttemptID    string            `json:"attempt_id"`
	State        State             `json:"state"`
	OrderID      string            `json:"order_id,omitempty"`
	GatewayOrder *api.GatewayOrder `json:"gateway_order,omitempty"`
	Shipping     api.ShippingInfo  `json:"shipping"`
	Items        []api.OrderItem   `json:"items"`
	Total        decimal.Decimal   `json:"total"`
	Reason       string            `json:"reason,omitempty"`
	StartedAt    time.Time         `json:"started_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Completion carries the hosted checkout's callback payload.
type Completion struct {
	PaymentID string
	Signature string
}

// GatewayConfig is what the hosted checkout needs from configuration.
type GatewayConfig struct {
	KeyID        string
	Currency     string
	MerchantName string
	ThemeColor   string
}

// Options is the hosted payment UI's opening payload.
type Options struct {
	Key      string  `json:"key"`
	Amount   int64   `json:"amount"`
	Currency string  `json:"currency"`
	Name     string  `json:"name"`
	OrderID  string  `json:"order_id"`
	Prefill  Prefill `json:"prefill"`
	Theme    Theme   `json:"theme"`
}

// Prefill pre-populates the hosted checkout's contact fields.
type Prefill struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Theme styles the hosted checkout.
type Theme struct {
	Color string `json:"color"`
}

// Coordinator runs checkout flows against the backend and the local
// stores.
type Coordinator struct {
	dir      string
	client   *api.Client
	carts    *cart.Store
	sessions *session.Store
	rules    pricing.Rules
	gateway  GatewayConfig
	logger   *slog.Logger
}

// NewCoordinator wires a checkout coordinator.
func NewCoordinator(dir string, client *api.Client, carts *cart.Store, sessions *session.Store, rules pricing.Rules, gateway GatewayConfig, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		dir:      dir,
		client:   client,
		carts:    carts,
		sessions: sessions,
		rules:    rules,
		gateway:  gateway,
		logger:   logger,
	}
}

// Path returns the full path of the persisted flow file.
func (c *Coordinator) Path() string {
	return filepath.Join(c.dir, FileName)
}

// Begin validates the shipping details, derives the checkout total from
// the current cart, creates the backend order and opens a gateway order
// for it. The flow is persisted after every state transition.
//
// A Begin while another flow is pending replaces it: the shopper chose
// to start over, and last writer wins.
func (c *Coordinator) Begin(ctx context.Context, shipping api.ShippingInfo) (*Flow, error) {
	if err := ValidateShipping(shipping); err != nil {
		return nil, err
	}

	items := c.carts.Load()
	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	breakdown := pricing.Compute(cart.Lines(items), c.rules)

	orderItems := make([]api.OrderItem, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, api.OrderItem{
			Product: it.Product,
			Name:    it.Name,
			Image:   it.Image,
			Qty:     it.Qty,
			Price:   it.Price,
		})
	}

	flow := &Flow{
		AttemptID: uuid.New().String(),
		Shipping:  shipping,
		Items:     orderItems,
		Total:     breakdown.Total,
		StartedAt: time.Now(),
	}

	order, err := c.client.CreateOrder(ctx, api.OrderInput{
		OrderItems:   orderItems,
		ShippingInfo: shipping,
		TotalPrice:   breakdown.Total,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	flow.OrderID = order.ID
	flow.State = StateCreated
	if err := c.save(flow); err != nil {
		return nil, err
	}

	gatewayOrder, err := c.client.CreateGatewayOrder(ctx, order.ID)
	if err != nil {
		c.markFailed(flow, fmt.Sprintf("create gateway order: %v", err))
		return flow, fmt.Errorf("create gateway order: %w", err)
	}

	flow.GatewayOrder = gatewayOrder
	flow.State = StatePaymentPending
	if err := c.save(flow); err != nil {
		return nil, err
	}

	c.logger.Info("Checkout started",
		"attempt_id", flow.AttemptID,
		"order_id", flow.OrderID,
		"gateway_order_id", gatewayOrder.ID,
		"total", flow.Total)

	return flow, nil
}

// Options builds the hosted payment UI's opening payload for a pending
// flow, prefilled from the current session.
func (c *Coordinator) Options(flow *Flow) (*Options, error) {
	if flow.State != StatePaymentPending || flow.GatewayOrder == nil {
		return nil, fmt.Errorf("flow is %s, not awaiting payment", flow.State)
	}

	var prefill Prefill
	if sess := c.sessions.Current(); sess.LoggedIn() {
		prefill.Name = sess.User.Name
		prefill.Email = sess.User.Email
	}

	return &Options{
		Key:      c.gateway.KeyID,
		Amount:   flow.GatewayOrder.Amount,
		Currency: flow.GatewayOrder.Currency,
		Name:     c.gateway.MerchantName,
		OrderID:  flow.GatewayOrder.ID,
		Prefill:  prefill,
		Theme:    Theme{Color: c.gateway.ThemeColor},
	}, nil
}

// Confirm forwards the hosted checkout's completion to the backend for
// verification, then creates the authoritative paid order, clears the
// cart and retires the flow.
func (c *Coordinator) Confirm(ctx context.Context, completion Completion) (*api.Order, error) {
	flow, err := c.Resume()
	if err != nil {
		return nil, err
	}
	if flow.State != StatePaymentPending || flow.GatewayOrder == nil {
		return nil, fmt.Errorf("flow is %s, not awaiting payment", flow.State)
	}

	verification, err := c.client.VerifyPayment(ctx, api.VerifyRequest{
		GatewayOrderID:   flow.GatewayOrder.ID,
		GatewayPaymentID: completion.PaymentID,
		GatewaySignature: completion.Signature,
		OrderID:          flow.OrderID,
	})
	if err != nil {
		c.markFailed(flow, fmt.Sprintf("verify payment: %v", err))
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if !verification.Success {
		c.markFailed(flow, "payment signature rejected")
		return nil, fmt.Errorf("payment signature rejected: %s", verification.Message)
	}

	flow.State = StateVerified
	if err := c.save(flow); err != nil {
		return nil, err
	}

	order, err := c.client.CreateOrder(ctx, api.OrderInput{
		OrderItems:   flow.Items,
		ShippingInfo: flow.Shipping,
		TotalPrice:   flow.Total,
		PaymentInfo: &api.PaymentInfo{
			GatewayOrderID:   flow.GatewayOrder.ID,
			GatewayPaymentID: completion.PaymentID,
			GatewaySignature: completion.Signature,
			Status:           api.PaymentStatusPaid,
		},
	})
	if err != nil {
		c.markFailed(flow, fmt.Sprintf("persist paid order: %v", err))
		return nil, fmt.Errorf("persist paid order: %w", err)
	}

	if err := c.carts.Clear(); err != nil {
		// The order is placed; a leftover cart is an annoyance, not a
		// failure.
		c.logger.Warn("Failed to clear cart after checkout", "error", err)
	}
	if err := c.clear(); err != nil {
		c.logger.Warn("Failed to retire checkout flow", "error", err)
	}

	c.logger.Info("Checkout complete",
		"attempt_id", flow.AttemptID,
		"order_id", order.ID)

	return order, nil
}

// Resume loads the persisted in-progress flow.
func (c *Coordinator) Resume() (*Flow, error) {
	data, err := os.ReadFile(c.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoFlow
		}
		return nil, fmt.Errorf("read checkout flow: %w", err)
	}

	var flow Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("parse checkout flow: %w", err)
	}
	return &flow, nil
}

// Fail marks the in-progress flow as failed with the given reason.
func (c *Coordinator) Fail(reason string) error {
	flow, err := c.Resume()
	if err != nil {
		return err
	}
	c.markFailed(flow, reason)
	return nil
}

// Abandon discards the persisted flow without touching the backend.
func (c *Coordinator) Abandon() error {
	return c.clear()
}

func (c *Coordinator) markFailed(flow *Flow, reason string) {
	flow.State = StateFailed
	flow.Reason = reason
	if err := c.save(flow); err != nil {
		c.logger.Warn("Failed to persist failed checkout flow", "error", err)
	}
}

func (c *Coordinator) save(flow *Flow) error {
	flow.UpdatedAt = time.Now()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkout flow: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp flow file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write checkout flow: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp flow file: %w", err)
	}

	if err := os.Rename(tmpName, c.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace flow file: %w", err)
	}
	return nil
}

func (c *Coordinator) clear() error {
	if err := os.Remove(c.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove flow file: %w", err)
	}
	return nil
}
