package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account as the backend reports it.
type User struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

// AuthResponse is the login/register result: the user fields plus the
// bearer token for subsequent requests.
type AuthResponse struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

// User converts the auth response into a User.
func (a AuthResponse) User() User {
	return User{ID: a.ID, Name: a.Name, Email: a.Email, IsAdmin: a.IsAdmin}
}

// Review is a product review.
type Review struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Product is a catalog entry.
type Product struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	Description  string          `json:"description,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Category     string          `json:"category,omitempty"`
	CountInStock int             `json:"countInStock"`
	Rating       float64         `json:"rating,omitempty"`
	NumReviews   int             `json:"numReviews,omitempty"`
	Reviews      []Review        `json:"reviews,omitempty"`
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	Description  string          `json:"description,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Category     string          `json:"category,omitempty"`
	CountInStock int             `json:"countInStock"`
}

// OrderItem is one line of an order payload.
type OrderItem struct {
	Product string          `json:"product"`
	Name    string          `json:"name,omitempty"`
	Image   string          `json:"image,omitempty"`
	Qty     int             `json:"qty"`
	Price   decimal.Decimal `json:"price"`
}

// ShippingInfo is the delivery address attached to an order.
type ShippingInfo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// PaymentStatusPaid marks a completed gateway payment on an order.
const PaymentStatusPaid = "Paid"

// PaymentInfo records the gateway completion attached to an order.
type PaymentInfo struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	GatewaySignature string `json:"razorpay_signature"`
	Status           string `json:"status"`
}

// OrderInput is the order creation payload.
type OrderInput struct {
	OrderItems   []OrderItem     `json:"orderItems"`
	ShippingInfo ShippingInfo    `json:"shippingInfo"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	PaymentInfo  *PaymentInfo    `json:"paymentInfo,omitempty"`
}

// Order is an order record as the backend reports it.
type Order struct {
	ID           string          `json:"_id"`
	User         string          `json:"user,omitempty"`
	OrderItems   []OrderItem     `json:"orderItems"`
	ShippingInfo ShippingInfo    `json:"shippingInfo"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	PaymentInfo  *PaymentInfo    `json:"paymentInfo,omitempty"`
	Status       string          `json:"status,omitempty"`
	CreatedAt    time.Time       `json:"createdAt,omitempty"`
}

// GatewayOrder is the payment-provider-side object that authorizes a
// checkout transaction, distinct from the backend's own order record.
// Amount is in minor currency units, as gateways require.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
