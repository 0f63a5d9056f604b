package commands_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raynott/decmart/api"
	"github.com/raynott/decmart/commands"
	"github.com/raynott/decmart/config"
)

// storefront is a scripted backend for command tests.
type storefront struct {
	mux      *http.ServeMux
	requests atomic.Int64

	products map[string]api.Product
	statuses map[string]string
}

func newStorefront() *storefront {
	s := &storefront{
		mux: http.NewServeMux(),
		products: map[string]api.Product{
			"p1": {ID: "p1", Name: "Walnut Desk", Price: dec("199.99"), Brand: "Oakline", Category: "Furniture", CountInStock: 4},
			"p2": {ID: "p2", Name: "Desk Lamp", Price: dec("25.00"), Brand: "Lumo", Category: "Lighting", CountInStock: 0},
		},
		statuses: map[string]string{},
	}

	s.mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid email or password"})
			return
		}
		isAdmin := req.Email == "admin@example.com"
		json.NewEncoder(w).Encode(api.AuthResponse{
			ID: "u1", Name: "Alice", Email: req.Email, IsAdmin: isAdmin, Token: "tok-1",
		})
	})
	s.mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		list := []api.Product{s.products["p1"], s.products["p2"]}
		json.NewEncoder(w).Encode(list)
	})
	s.mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		p, ok := s.products[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "Product not found"})
			return
		}
		json.NewEncoder(w).Encode(p)
	})
	s.mux.HandleFunc("GET /api/orders/myorders", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]api.Order{
			{ID: "o1", OrderItems: []api.OrderItem{{Product: "p1", Qty: 1, Price: dec("199.99")}},
				TotalPrice: dec("249.98"), Status: "Shipped", CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		})
	})
	s.mux.HandleFunc("GET /api/auth/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Not authorized"})
			return
		}
		json.NewEncoder(w).Encode([]api.User{
			{ID: "u1", Name: "Alice", Email: "admin@example.com", IsAdmin: true},
			{ID: "u2", Name: "Bob", Email: "bob@example.com"},
		})
	})
	s.mux.HandleFunc("PUT /api/orders/status/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		s.statuses[r.PathValue("id")] = body.Status
		json.NewEncoder(w).Encode(map[string]string{"message": "updated"})
	})

	return s
}

func (s *storefront) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	w.Header().Set("Content-Type", "application/json")
	s.mux.ServeHTTP(w, r)
}

type cli struct {
	app   *commands.App
	root  *cobra.Command
	store *storefront
}

func newCLI(t *testing.T) *cli {
	t.Helper()

	store := newStorefront()
	server := httptest.NewServer(store)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = server.URL + "/api"
	cfg.Payment.KeyID = "rzp_test_abc"
	cfg.State.Dir = t.TempDir()

	app, err := commands.NewApp(cfg, testLogger(t))
	require.NoError(t, err)

	root := &cobra.Command{Use: "decmart", SilenceUsage: true, SilenceErrors: true}
	commands.Register(root, app)

	return &cli{app: app, root: root, store: store}
}

// run executes one command line and returns its combined output.
func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	c.root.SetOut(&buf)
	c.root.SetErr(&buf)
	c.root.SetArgs(args)
	err := c.root.Execute()
	return buf.String(), err
}

func (c *cli) login(t *testing.T, email string) {
	t.Helper()
	_, err := c.run(t, "login", "--email", email, "--password", "hunter22")
	require.NoError(t, err)
}

func TestLoginPersistsSession(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(t, "login", "--email", "alice@example.com", "--password", "hunter22")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Alice")

	sess := c.app.Sessions.Current()
	require.True(t, sess.LoggedIn())
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, "alice@example.com", sess.User.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "login", "--email", "alice@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")
	assert.False(t, c.app.Sessions.Current().LoggedIn())
}

func TestLoginValidatesEmailLocally(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "login", "--email", "not-an-email", "--password", "hunter22")
	require.Error(t, err)
	assert.Zero(t, c.store.requests.Load(), "invalid input must not reach the backend")
}

func TestLogout(t *testing.T) {
	c := newCLI(t)
	c.login(t, "alice@example.com")

	_, err := c.run(t, "logout")
	require.NoError(t, err)
	assert.False(t, c.app.Sessions.Current().LoggedIn())

	// Logging out twice is fine.
	_, err = c.run(t, "logout")
	require.NoError(t, err)
}

func TestCartAddShowAndBreakdown(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(t, "cart", "add", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 1 × Walnut Desk")

	out, err = c.run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Walnut Desk")
	assert.Contains(t, out, "199.99")
	// Over the cart threshold, so shipping is free.
	assert.Contains(t, out, "FREE")
	assert.Contains(t, out, "16.00")  // 8% tax
	assert.Contains(t, out, "215.99") // total
}

func TestCartAddMergesDuplicates(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "cart", "add", "p1")
	require.NoError(t, err)
	_, err = c.run(t, "cart", "add", "p1", "--qty", "2")
	require.NoError(t, err)

	items := c.app.Carts.Load()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Qty)
}

func TestCartAddOutOfStock(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "cart", "add", "p2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of stock")
	assert.Empty(t, c.app.Carts.Load())
}

func TestCartQtyBelowOneIsIgnored(t *testing.T) {
	c := newCLI(t)
	_, err := c.run(t, "cart", "add", "p1")
	require.NoError(t, err)

	out, err := c.run(t, "cart", "qty", "1", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "cart unchanged")
	assert.Equal(t, 1, c.app.Carts.Load()[0].Qty)
}

func TestCartClear(t *testing.T) {
	c := newCLI(t)
	_, err := c.run(t, "cart", "add", "p1")
	require.NoError(t, err)

	_, err = c.run(t, "cart", "clear")
	require.NoError(t, err)
	assert.Empty(t, c.app.Carts.Load())

	out, err := c.run(t, "cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")
}

func TestOrdersRequireLogin(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "orders")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestOrdersHistory(t *testing.T) {
	c := newCLI(t)
	c.login(t, "alice@example.com")

	out, err := c.run(t, "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "o1")
	assert.Contains(t, out, "249.98")
	assert.Contains(t, out, "Shipped")
}

func TestCheckoutValidatesShippingLocally(t *testing.T) {
	c := newCLI(t)
	c.login(t, "alice@example.com")
	_, err := c.run(t, "cart", "add", "p1")
	require.NoError(t, err)

	before := c.store.requests.Load()
	_, err = c.run(t, "checkout",
		"--address", "1 Main St", "--city", "Pune", "--state", "MH",
		"--pincode", "41", "--phone", "9876543210")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pincode")
	assert.Equal(t, before, c.store.requests.Load())
}

func TestAdminCommandsNeedAdminRole(t *testing.T) {
	c := newCLI(t)
	c.login(t, "alice@example.com")

	_, err := c.run(t, "admin", "users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin account")
}

func TestAdminUsersList(t *testing.T) {
	c := newCLI(t)
	c.login(t, "admin@example.com")

	out, err := c.run(t, "admin", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "admin")
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "customer")
}

func TestAdminSetStatus(t *testing.T) {
	c := newCLI(t)
	c.login(t, "admin@example.com")

	out, err := c.run(t, "admin", "set-status", "o1", "Delivered")
	require.NoError(t, err)
	assert.Contains(t, out, "Delivered")
	assert.Equal(t, "Delivered", c.store.statuses["o1"])
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
