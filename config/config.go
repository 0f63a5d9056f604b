// Package config provides configuration loading and management for the
// Decmart client.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/raynott/decmart/pricing"
)

// Config represents the complete client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Payment PaymentConfig `yaml:"payment"`
	Pricing PricingConfig `yaml:"pricing"`
	State   StateConfig   `yaml:"state"`
}

// APIConfig configures the backend connection.
type APIConfig struct {
	// BaseURL is the REST backend root (e.g. "https://api.example.com/api").
	BaseURL string `yaml:"base_url"`
	// Timeout is the transport-level request timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// PaymentConfig configures the hosted payment checkout.
type PaymentConfig struct {
	// KeyID is the Razorpay publishable key presented to the hosted widget.
	KeyID string `yaml:"key_id"`
	// Currency is the ISO currency code for gateway orders.
	Currency string `yaml:"currency"`
	// MerchantName is shown in the hosted checkout header.
	MerchantName string `yaml:"merchant_name"`
	// ThemeColor is the hosted checkout accent color.
	ThemeColor string `yaml:"theme_color"`
}

// RulesConfig is the YAML shape of a pricing rule set. Values are
// decimal strings so money never round-trips through floats.
type RulesConfig struct {
	TaxRate           string `yaml:"tax_rate"`
	ShippingThreshold string `yaml:"shipping_threshold"`
	ShippingFee       string `yaml:"shipping_fee"`
}

// Rules converts the configured strings into pricing rules.
func (r RulesConfig) Rules() (pricing.Rules, error) {
	tax, err := decimal.NewFromString(r.TaxRate)
	if err != nil {
		return pricing.Rules{}, fmt.Errorf("parse tax_rate %q: %w", r.TaxRate, err)
	}
	threshold, err := decimal.NewFromString(r.ShippingThreshold)
	if err != nil {
		return pricing.Rules{}, fmt.Errorf("parse shipping_threshold %q: %w", r.ShippingThreshold, err)
	}
	fee, err := decimal.NewFromString(r.ShippingFee)
	if err != nil {
		return pricing.Rules{}, fmt.Errorf("parse shipping_fee %q: %w", r.ShippingFee, err)
	}

	rules := pricing.Rules{TaxRate: tax, ShippingThreshold: threshold, ShippingFee: fee}
	if err := rules.Validate(); err != nil {
		return pricing.Rules{}, err
	}
	return rules, nil
}

// PricingConfig holds the rule sets for the two pricing surfaces. The
// cart preview and the checkout flow intentionally charge differently.
type PricingConfig struct {
	Cart     RulesConfig `yaml:"cart"`
	Checkout RulesConfig `yaml:"checkout"`
}

// StateConfig configures local persistence.
type StateConfig struct {
	// Dir is where cart, session and checkout state live
	// (default: ~/.local/state/decmart).
	Dir string `yaml:"dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000/api",
			Timeout: 30 * time.Second,
		},
		Payment: PaymentConfig{
			Currency:     "INR",
			MerchantName: "Raynott Decmart",
			ThemeColor:   "#2563eb",
		},
		Pricing: PricingConfig{
			Cart: RulesConfig{
				TaxRate:           "0.08",
				ShippingThreshold: "50",
				ShippingFee:       "9.99",
			},
			Checkout: RulesConfig{
				TaxRate:           "0.18",
				ShippingThreshold: "500",
				ShippingFee:       "49",
			},
		},
		State: StateConfig{
			Dir: "", // Resolved by the loader
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Payment.Currency == "" {
		return fmt.Errorf("payment.currency is required")
	}
	if _, err := c.Pricing.Cart.Rules(); err != nil {
		return fmt.Errorf("pricing.cart: %w", err)
	}
	if _, err := c.Pricing.Checkout.Rules(); err != nil {
		return fmt.Errorf("pricing.checkout: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file, layered over defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.API.BaseURL != "" {
		c.API.BaseURL = other.API.BaseURL
	}
	if other.API.Timeout != 0 {
		c.API.Timeout = other.API.Timeout
	}

	if other.Payment.KeyID != "" {
		c.Payment.KeyID = other.Payment.KeyID
	}
	if other.Payment.Currency != "" {
		c.Payment.Currency = other.Payment.Currency
	}
	if other.Payment.MerchantName != "" {
		c.Payment.MerchantName = other.Payment.MerchantName
	}
	if other.Payment.ThemeColor != "" {
		c.Payment.ThemeColor = other.Payment.ThemeColor
	}

	mergeRules(&c.Pricing.Cart, other.Pricing.Cart)
	mergeRules(&c.Pricing.Checkout, other.Pricing.Checkout)

	if other.State.Dir != "" {
		c.State.Dir = other.State.Dir
	}
}

func mergeRules(dst *RulesConfig, src RulesConfig) {
	if src.TaxRate != "" {
		dst.TaxRate = src.TaxRate
	}
	if src.ShippingThreshold != "" {
		dst.ShippingThreshold = src.ShippingThreshold
	}
	if src.ShippingFee != "" {
		dst.ShippingFee = src.ShippingFee
	}
}
