package api

import (
	"context"
	"net/http"
)

// RegisterRequest is the account creation payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries partial profile changes. Empty fields are
// omitted from the request so the backend leaves them alone.
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
}

// RoleUpdate sets a user's admin flag.
type RoleUpdate struct {
	IsAdmin bool `json:"isAdmin"`
}

// Register creates a new account and returns the identity plus token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates and returns the identity plus token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProfile fetches the logged-in user's profile.
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies partial profile changes and returns the updated
// profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, "/auth/profile", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all accounts. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/auth/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole grants or revokes admin for a user. Admin only.
func (c *Client) UpdateUserRole(ctx context.Context, userID string, isAdmin bool) error {
	return c.do(ctx, http.MethodPut, "/auth/users/"+userID+"/role", RoleUpdate{IsAdmin: isAdmin}, nil)
}

// DeleteUser removes an account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/auth/users/"+userID, nil, nil)
}

// CreateAdmin creates a new admin account. Admin only.
func (c *Client) CreateAdmin(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/create-admin", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterInitialAdmin bootstraps the first admin account on a fresh
// deployment.
func (c *Client) RegisterInitialAdmin(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/admin/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
