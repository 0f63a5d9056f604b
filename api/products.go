package api

import (
	"context"
	"net/http"
)

// ReviewInput is the review submission payload.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ListProducts returns the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product with its reviews.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetBrands returns the distinct brands for filtering.
func (c *Client) GetBrands(ctx context.Context) ([]string, error) {
	var brands []string
	if err := c.do(ctx, http.MethodGet, "/products/filters/brands", nil, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

// GetCategories returns the distinct categories for filtering.
func (c *Client) GetCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.do(ctx, http.MethodGet, "/products/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateProduct adds a catalog entry. Admin only.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodPost, "/products", input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces a catalog entry. Admin only.
func (c *Client) UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodPut, "/products/"+id, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a catalog entry. Admin only.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+id, nil, nil)
}

// AddReview attaches a review to a product.
func (c *Client) AddReview(ctx context.Context, productID string, review ReviewInput) error {
	return c.do(ctx, http.MethodPost, "/products/"+productID+"/review", review, nil)
}
