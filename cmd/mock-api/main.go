// Package main implements a mock Decmart backend for local development
// and e2e testing. It serves the full REST surface the decmart client
// consumes from in-memory stores, so the CLI can be exercised fast,
// deterministically and offline. Nothing survives a restart.
//
// Usage:
//
//	mock-api -port 5000 -seed
//
// Payment verification is deterministic: the expected signature for a
// completion is "sig:<gateway_order_id>:<payment_id>". Tests drive the
// happy path by computing it and the failure path by sending anything
// else.
package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/raynott/decmart/api"
)

func main() {
	port := flag.Int("port", 5000, "Port to listen on")
	seed := flag.Bool("seed", false, "Seed a demo catalog and admin account")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	store := newStore()
	if *seed {
		store.seed()
		logger.Info("Seeded demo data", "admin", "admin@decmart.test", "password", "admin123")
	}

	r := newRouter(store)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("Mock Decmart API listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// store is the in-memory backend state.
type store struct {
	mu sync.Mutex

	users    map[string]*account
	tokens   map[string]string // token -> user ID
	products map[string]*api.Product
	orders   map[string]*api.Order
	gateway  map[string]string // gateway order ID -> backend order ID
}

// account pairs the public user record with its password.
type account struct {
	api.User
	Password string
}

func newStore() *store {
	return &store{
		users:    map[string]*account{},
		tokens:   map[string]string{},
		products: map[string]*api.Product{},
		orders:   map[string]*api.Order{},
		gateway:  map[string]string{},
	}
}

func (s *store) seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin := &account{
		User:     api.User{ID: uuid.New().String(), Name: "Admin", Email: "admin@decmart.test", IsAdmin: true},
		Password: "admin123",
	}
	s.users[admin.ID] = admin

	for _, p := range []api.Product{
		{Name: "Teak Coffee Table", Price: decimal.RequireFromString("349.00"), Brand: "Raynott", Category: "Furniture", CountInStock: 12},
		{Name: "Linen Throw Pillow", Price: decimal.RequireFromString("24.50"), Brand: "Hearth", Category: "Decor", CountInStock: 40},
		{Name: "Brass Floor Lamp", Price: decimal.RequireFromString("129.99"), Brand: "Lumo", Category: "Lighting", CountInStock: 7},
	} {
		p := p
		p.ID = uuid.New().String()
		s.products[p.ID] = &p
	}
}

// signatureFor is the deterministic stand-in for the gateway's HMAC.
func signatureFor(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte("mock-secret"))
	fmt.Fprintf(mac, "%s|%s", gatewayOrderID, paymentID)
	return "sig:" + hex.EncodeToString(mac.Sum(nil))[:16]
}

func newRouter(s *store) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	apiGroup := r.Group("/api")

	auth := apiGroup.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.POST("/admin/register", s.registerInitialAdmin)
	auth.GET("/profile", s.authed(s.getProfile))
	auth.PUT("/profile", s.authed(s.updateProfile))
	auth.GET("/users", s.admin(s.listUsers))
	auth.PUT("/users/:id/role", s.admin(s.updateRole))
	auth.DELETE("/users/:id", s.admin(s.deleteUser))
	auth.POST("/create-admin", s.admin(s.createAdmin))

	products := apiGroup.Group("/products")
	products.GET("", s.listProducts)
	products.GET("/:id", s.getProduct)
	products.GET("/filters/brands", s.listBrands)
	products.GET("/categories", s.listCategories)
	products.POST("", s.admin(s.createProduct))
	products.PUT("/:id", s.admin(s.updateProduct))
	products.DELETE("/:id", s.admin(s.deleteProduct))
	products.POST("/:id/review", s.authed(s.addReview))

	orders := apiGroup.Group("/orders")
	orders.POST("", s.authed(s.createOrder))
	orders.GET("/myorders", s.authed(s.myOrders))
	orders.GET("", s.admin(s.listOrders))
	orders.GET("/:id", s.authed(s.getOrder))
	orders.PUT("/status/:id", s.admin(s.updateOrderStatus))

	payment := apiGroup.Group("/payment")
	payment.POST("/create-order", s.authed(s.createGatewayOrder))
	payment.POST("/verify", s.authed(s.verifyPayment))

	return r
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

// authed resolves the bearer token and stashes the account in the
// request context.
func (s *store) authed(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			fail(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		s.mu.Lock()
		userID, ok := s.tokens[token]
		acct := s.users[userID]
		s.mu.Unlock()
		if !ok || acct == nil {
			fail(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		c.Set("account", acct)
		h(c)
	}
}

func (s *store) admin(h gin.HandlerFunc) gin.HandlerFunc {
	return s.authed(func(c *gin.Context) {
		if !currentAccount(c).IsAdmin {
			fail(c, http.StatusForbidden, "Not authorized as admin")
			return
		}
		h(c)
	})
}

func currentAccount(c *gin.Context) *account {
	return c.MustGet("account").(*account)
}

func (s *store) issueToken(acct *account) string {
	token := "tok-" + uuid.New().String()
	s.tokens[token] = acct.ID
	return token
}

func (s *store) findByEmail(email string) *account {
	for _, a := range s.users {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func authResponse(acct *account, token string) api.AuthResponse {
	return api.AuthResponse{
		ID: acct.ID, Name: acct.Name, Email: acct.Email, IsAdmin: acct.IsAdmin, Token: token,
	}
}

// --- Auth handlers ---

func (s *store) register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		fail(c, http.StatusBadRequest, "Name, email and a 6+ character password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmail(req.Email) != nil {
		fail(c, http.StatusBadRequest, "User already exists")
		return
	}

	acct := &account{
		User:     api.User{ID: uuid.New().String(), Name: req.Name, Email: req.Email},
		Password: req.Password,
	}
	s.users[acct.ID] = acct
	c.JSON(http.StatusCreated, authResponse(acct, s.issueToken(acct)))
}

func (s *store) login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.findByEmail(req.Email)
	if acct == nil || acct.Password != req.Password {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	c.JSON(http.StatusOK, authResponse(acct, s.issueToken(acct)))
}

// registerInitialAdmin only works while no admin account exists.
func (s *store) registerInitialAdmin(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.users {
		if a.IsAdmin {
			fail(c, http.StatusForbidden, "An admin already exists")
			return
		}
	}
	if s.findByEmail(req.Email) != nil {
		fail(c, http.StatusBadRequest, "User already exists")
		return
	}

	acct := &account{
		User:     api.User{ID: uuid.New().String(), Name: req.Name, Email: req.Email, IsAdmin: true},
		Password: req.Password,
	}
	s.users[acct.ID] = acct
	c.JSON(http.StatusCreated, authResponse(acct, s.issueToken(acct)))
}

func (s *store) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, currentAccount(c).User)
}

func (s *store) updateProfile(c *gin.Context) {
	var update api.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := currentAccount(c)
	if update.Name != "" {
		acct.Name = update.Name
	}
	if update.Email != "" {
		acct.Email = update.Email
	}
	if update.Phone != "" {
		acct.Phone = update.Phone
	}
	if update.Password != "" {
		acct.Password = update.Password
	}
	c.JSON(http.StatusOK, acct.User)
}

func (s *store) listUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]api.User, 0, len(s.users))
	for _, a := range s.users {
		users = append(users, a.User)
	}
	c.JSON(http.StatusOK, users)
}

func (s *store) updateRole(c *gin.Context) {
	var req api.RoleUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.users[c.Param("id")]
	if !ok {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	acct.IsAdmin = req.IsAdmin
	c.JSON(http.StatusOK, acct.User)
}

func (s *store) deleteUser(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	if _, ok := s.users[id]; !ok {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	delete(s.users, id)
	c.JSON(http.StatusOK, gin.H{"message": "User removed"})
}

func (s *store) createAdmin(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmail(req.Email) != nil {
		fail(c, http.StatusBadRequest, "User already exists")
		return
	}
	acct := &account{
		User:     api.User{ID: uuid.New().String(), Name: req.Name, Email: req.Email, IsAdmin: true},
		Password: req.Password,
	}
	s.users[acct.ID] = acct
	c.JSON(http.StatusCreated, acct.User)
}

// --- Product handlers ---

func (s *store) listProducts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make([]api.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, *p)
	}
	c.JSON(http.StatusOK, products)
}

func (s *store) getProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[c.Param("id")]
	if !ok {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *store) listBrands(c *gin.Context) {
	c.JSON(http.StatusOK, s.distinct(func(p *api.Product) string { return p.Brand }))
}

func (s *store) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, s.distinct(func(p *api.Product) string { return p.Category }))
}

func (s *store) distinct(field func(*api.Product) string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	values := []string{}
	for _, p := range s.products {
		if v := field(p); v != "" && !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	return values
}

func (s *store) createProduct(c *gin.Context) {
	var input api.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := &api.Product{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Price:        input.Price,
		Image:        input.Image,
		Description:  input.Description,
		Brand:        input.Brand,
		Category:     input.Category,
		CountInStock: input.CountInStock,
	}
	s.products[p.ID] = p
	c.JSON(http.StatusCreated, p)
}

func (s *store) updateProduct(c *gin.Context) {
	var input api.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[c.Param("id")]
	if !ok {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	p.Name = input.Name
	p.Price = input.Price
	p.Image = input.Image
	p.Description = input.Description
	p.Brand = input.Brand
	p.Category = input.Category
	p.CountInStock = input.CountInStock
	c.JSON(http.StatusOK, p)
}

func (s *store) deleteProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	if _, ok := s.products[id]; !ok {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	delete(s.products, id)
	c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
}

func (s *store) addReview(c *gin.Context) {
	var input struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		fail(c, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[c.Param("id")]
	if !ok {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}

	p.Reviews = append(p.Reviews, api.Review{
		Name:    currentAccount(c).Name,
		Rating:  input.Rating,
		Comment: input.Comment,
	})
	total := 0
	for _, r := range p.Reviews {
		total += r.Rating
	}
	p.NumReviews = len(p.Reviews)
	p.Rating = float64(total) / float64(p.NumReviews)
	c.JSON(http.StatusCreated, gin.H{"message": "Review added"})
}

// --- Order handlers ---

func (s *store) createOrder(c *gin.Context) {
	var input api.OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(input.OrderItems) == 0 {
		fail(c, http.StatusBadRequest, "No order items")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order := &api.Order{
		ID:           uuid.New().String(),
		User:         currentAccount(c).ID,
		OrderItems:   input.OrderItems,
		ShippingInfo: input.ShippingInfo,
		TotalPrice:   input.TotalPrice,
		PaymentInfo:  input.PaymentInfo,
		Status:       "Processing",
		CreatedAt:    time.Now().UTC(),
	}
	s.orders[order.ID] = order
	c.JSON(http.StatusCreated, order)
}

func (s *store) myOrders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID := currentAccount(c).ID
	orders := []api.Order{}
	for _, o := range s.orders {
		if o.User == userID {
			orders = append(orders, *o)
		}
	}
	c.JSON(http.StatusOK, orders)
}

func (s *store) getOrder(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[c.Param("id")]
	if !ok {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	acct := currentAccount(c)
	if o.User != acct.ID && !acct.IsAdmin {
		fail(c, http.StatusForbidden, "Not your order")
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *store) listOrders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]api.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, *o)
	}
	c.JSON(http.StatusOK, orders)
}

func (s *store) updateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		fail(c, http.StatusBadRequest, "Status is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[c.Param("id")]
	if !ok {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	o.Status = req.Status
	c.JSON(http.StatusOK, o)
}

// --- Payment handlers ---

func (s *store) createGatewayOrder(c *gin.Context) {
	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[req.OrderID]
	if !ok {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}

	gw := api.GatewayOrder{
		ID:       "order_" + uuid.New().String()[:12],
		Amount:   order.TotalPrice.Shift(2).IntPart(),
		Currency: "INR",
	}
	s.gateway[gw.ID] = order.ID
	c.JSON(http.StatusOK, gin.H{"razorOrder": gw})
}

func (s *store) verifyPayment(c *gin.Context) {
	var req api.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gateway[req.GatewayOrderID]; !ok {
		c.JSON(http.StatusOK, api.VerifyResponse{Success: false, Message: "Unknown gateway order"})
		return
	}
	if req.GatewaySignature != signatureFor(req.GatewayOrderID, req.GatewayPaymentID) {
		c.JSON(http.StatusOK, api.VerifyResponse{Success: false, Message: "Invalid signature"})
		return
	}
	c.JSON(http.StatusOK, api.VerifyResponse{Success: true, Message: "Payment verified"})
}
