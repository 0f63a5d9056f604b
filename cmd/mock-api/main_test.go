package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raynott/decmart/api"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// client builds a decmart API client against an in-memory backend.
func client(t *testing.T, s *store, token string) *api.Client {
	t.Helper()
	server := httptest.NewServer(newRouter(s))
	t.Cleanup(server.Close)
	return api.NewClient(server.URL+"/api", api.StaticToken(token))
}

func registerUser(t *testing.T, c *api.Client, name, email string) *api.AuthResponse {
	t.Helper()
	resp, err := c.Register(context.Background(), api.RegisterRequest{
		Name: name, Email: email, Password: "hunter22",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	s := newStore()
	c := client(t, s, "")

	resp := registerUser(t, c, "Alice", "alice@example.com")
	assert.Equal(t, "Alice", resp.Name)
	assert.NotEmpty(t, resp.Token)
	assert.False(t, resp.IsAdmin)

	login, err := c.Login(context.Background(), api.LoginRequest{
		Email: "alice@example.com", Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.ID, login.ID)

	_, err = c.Login(context.Background(), api.LoginRequest{
		Email: "alice@example.com", Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	s := newStore()
	c := client(t, s, "")
	registerUser(t, c, "Alice", "alice@example.com")

	_, err := c.Register(context.Background(), api.RegisterRequest{
		Name: "Imposter", Email: "alice@example.com", Password: "hunter22",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitialAdminBootstrapOnlyOnce(t *testing.T) {
	s := newStore()
	c := client(t, s, "")

	resp, err := c.RegisterInitialAdmin(context.Background(), api.RegisterRequest{
		Name: "Root", Email: "root@example.com", Password: "hunter22",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsAdmin)

	_, err = c.RegisterInitialAdmin(context.Background(), api.RegisterRequest{
		Name: "Second", Email: "second@example.com", Password: "hunter22",
	})
	require.Error(t, err)
	assert.True(t, api.IsStatus(err, 403))
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	s := newStore()
	c := client(t, s, "")

	_, err := c.GetProfile(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	s := newStore()
	anon := client(t, s, "")
	resp := registerUser(t, anon, "Alice", "alice@example.com")

	c := client(t, s, resp.Token)
	_, err := c.ListUsers(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsStatus(err, 403))
}

func TestProductCRUDAndFilters(t *testing.T) {
	s := newStore()
	s.seed()

	admin, err := client(t, s, "").Login(context.Background(), api.LoginRequest{
		Email: "admin@decmart.test", Password: "admin123",
	})
	require.NoError(t, err)
	c := client(t, s, admin.Token)

	created, err := c.CreateProduct(context.Background(), api.ProductInput{
		Name: "Oak Bookshelf", Price: dec("499.00"), Brand: "Raynott", Category: "Furniture", CountInStock: 3,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := c.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(dec("499.00")))

	brands, err := c.GetBrands(context.Background())
	require.NoError(t, err)
	assert.Contains(t, brands, "Raynott")
	assert.Contains(t, brands, "Lumo")

	categories, err := c.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Contains(t, categories, "Lighting")

	created.CountInStock = 0
	updated, err := c.UpdateProduct(context.Background(), created.ID, api.ProductInput{
		Name: created.Name, Price: created.Price, Brand: created.Brand,
		Category: created.Category, CountInStock: 0,
	})
	require.NoError(t, err)
	assert.Zero(t, updated.CountInStock)

	require.NoError(t, c.DeleteProduct(context.Background(), created.ID))
	_, err = c.GetProduct(context.Background(), created.ID)
	require.Error(t, err)
	assert.True(t, api.IsStatus(err, 404))
}

func TestReviewUpdatesAggregates(t *testing.T) {
	s := newStore()
	s.seed()
	anon := client(t, s, "")
	resp := registerUser(t, anon, "Alice", "alice@example.com")
	c := client(t, s, resp.Token)

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, products)
	id := products[0].ID

	require.NoError(t, c.AddReview(context.Background(), id, api.ReviewInput{Rating: 4, Comment: "Solid"}))
	require.NoError(t, c.AddReview(context.Background(), id, api.ReviewInput{Rating: 2, Comment: "Scratched"}))

	p, err := c.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumReviews)
	assert.InDelta(t, 3.0, p.Rating, 0.001)

	err = c.AddReview(context.Background(), id, api.ReviewInput{Rating: 9})
	require.Error(t, err)
}

func TestOrderAndPaymentFlow(t *testing.T) {
	s := newStore()
	anon := client(t, s, "")
	resp := registerUser(t, anon, "Alice", "alice@example.com")
	c := client(t, s, resp.Token)

	order, err := c.CreateOrder(context.Background(), api.OrderInput{
		OrderItems: []api.OrderItem{{Product: "p1", Name: "Walnut Desk", Qty: 2, Price: dec("100.00")}},
		ShippingInfo: api.ShippingInfo{
			Address: "1 Main St", City: "Pune", State: "MH", Pincode: "411001", Phone: "9876543210",
		},
		TotalPrice: dec("236.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Processing", order.Status)

	gw, err := c.CreateGatewayOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(23600), gw.Amount)
	assert.Equal(t, "INR", gw.Currency)

	// Wrong signature is rejected without an HTTP error.
	verify, err := c.VerifyPayment(context.Background(), api.VerifyRequest{
		GatewayOrderID: gw.ID, GatewayPaymentID: "pay_1", GatewaySignature: "nope", OrderID: order.ID,
	})
	require.NoError(t, err)
	assert.False(t, verify.Success)

	verify, err = c.VerifyPayment(context.Background(), api.VerifyRequest{
		GatewayOrderID:   gw.ID,
		GatewayPaymentID: "pay_1",
		GatewaySignature: signatureFor(gw.ID, "pay_1"),
		OrderID:          order.ID,
	})
	require.NoError(t, err)
	assert.True(t, verify.Success)

	mine, err := c.MyOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].ID)
}

func TestOrderStatusUpdate(t *testing.T) {
	s := newStore()
	s.seed()
	anon := client(t, s, "")

	user := registerUser(t, anon, "Alice", "alice@example.com")
	uc := client(t, s, user.Token)
	order, err := uc.CreateOrder(context.Background(), api.OrderInput{
		OrderItems: []api.OrderItem{{Product: "p1", Qty: 1, Price: dec("10.00")}},
		TotalPrice: dec("10.00"),
	})
	require.NoError(t, err)

	admin, err := anon.Login(context.Background(), api.LoginRequest{
		Email: "admin@decmart.test", Password: "admin123",
	})
	require.NoError(t, err)
	ac := client(t, s, admin.Token)

	require.NoError(t, ac.UpdateOrderStatus(context.Background(), order.ID, "Shipped"))

	got, err := ac.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shipped", got.Status)

	all, err := ac.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
