package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Errorf("expected default base URL http://localhost:5000/api, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %s", cfg.API.Timeout)
	}
	if cfg.Payment.Currency != "INR" {
		t.Errorf("expected default currency INR, got %s", cfg.Payment.Currency)
	}

	cartRules, err := cfg.Pricing.Cart.Rules()
	if err != nil {
		t.Fatalf("cart rules failed to parse: %v", err)
	}
	if cartRules.TaxRate.String() != "0.08" {
		t.Errorf("expected cart tax rate 0.08, got %s", cartRules.TaxRate)
	}

	checkoutRules, err := cfg.Pricing.Checkout.Rules()
	if err != nil {
		t.Fatalf("checkout rules failed to parse: %v", err)
	}
	if checkoutRules.ShippingThreshold.String() != "500" {
		t.Errorf("expected checkout threshold 500, got %s", checkoutRules.ShippingThreshold)
	}
	if checkoutRules.ShippingFee.String() != "49" {
		t.Errorf("expected checkout fee 49, got %s", checkoutRules.ShippingFee)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing base URL",
			modify:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.API.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "missing currency",
			modify:  func(c *Config) { c.Payment.Currency = "" },
			wantErr: true,
		},
		{
			name:    "unparseable tax rate",
			modify:  func(c *Config) { c.Pricing.Cart.TaxRate = "eight percent" },
			wantErr: true,
		},
		{
			name:    "negative shipping fee",
			modify:  func(c *Config) { c.Pricing.Checkout.ShippingFee = "-49" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: https://shop.example.com/api
pricing:
  checkout:
    tax_rate: "0.05"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.API.BaseURL != "https://shop.example.com/api" {
		t.Errorf("base URL not loaded, got %s", cfg.API.BaseURL)
	}
	// Unset fields keep their defaults.
	if cfg.Payment.Currency != "INR" {
		t.Errorf("expected default currency, got %s", cfg.Payment.Currency)
	}
	if cfg.Pricing.Checkout.TaxRate != "0.05" {
		t.Errorf("expected overridden tax rate 0.05, got %s", cfg.Pricing.Checkout.TaxRate)
	}
	if cfg.Pricing.Checkout.ShippingFee != "49" {
		t.Errorf("expected default fee 49, got %s", cfg.Pricing.Checkout.ShippingFee)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	other := &Config{}
	other.API.BaseURL = "https://other.example.com/api"
	other.Payment.KeyID = "rzp_test_123"
	other.Pricing.Cart.ShippingFee = "4.99"

	base.Merge(other)

	if base.API.BaseURL != "https://other.example.com/api" {
		t.Errorf("base URL not merged, got %s", base.API.BaseURL)
	}
	if base.Payment.KeyID != "rzp_test_123" {
		t.Errorf("key ID not merged, got %s", base.Payment.KeyID)
	}
	if base.Pricing.Cart.ShippingFee != "4.99" {
		t.Errorf("cart fee not merged, got %s", base.Pricing.Cart.ShippingFee)
	}
	// Zero values in other leave base untouched.
	if base.API.Timeout != 30*time.Second {
		t.Errorf("timeout should keep default, got %s", base.API.Timeout)
	}
	if base.Pricing.Cart.TaxRate != "0.08" {
		t.Errorf("cart tax rate should keep default, got %s", base.Pricing.Cart.TaxRate)
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://roundtrip.example.com/api"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("base URL = %s, want %s", loaded.API.BaseURL, cfg.API.BaseURL)
	}
}

func TestLoaderEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "https://env.example.com/api")
	t.Setenv(EnvPaymentKeyID, "rzp_live_env")
	t.Setenv(EnvStateDir, t.TempDir())
	t.Setenv(EnvAPITimeout, "5s")

	cfg, err := NewLoader(nil).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://env.example.com/api" {
		t.Errorf("env base URL not applied, got %s", cfg.API.BaseURL)
	}
	if cfg.Payment.KeyID != "rzp_live_env" {
		t.Errorf("env key ID not applied, got %s", cfg.Payment.KeyID)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("env timeout not applied, got %s", cfg.API.Timeout)
	}
}

func TestLoaderDefaultStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	l := NewLoader(nil)
	got := l.defaultStateDir()
	want := filepath.Join("/tmp/xdg-state", StateDirName)
	if got != want {
		t.Errorf("defaultStateDir() = %s, want %s", got, want)
	}
}
