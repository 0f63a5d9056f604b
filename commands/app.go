// Package commands provides the decmart CLI commands. Each command is
// a thin page controller: it reads local state, calls the backend, and
// renders the loading → success/error transition as terminal output.
// No command retries a failed request; the shopper re-runs it.
package commands

import (
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/raynott/decmart/api"
	"github.com/raynott/decmart/cart"
	"github.com/raynott/decmart/checkout"
	"github.com/raynott/decmart/config"
	"github.com/raynott/decmart/pricing"
	"github.com/raynott/decmart/session"
)

// App wires the stores and the API client for the commands.
type App struct {
	Config   *config.Config
	Client   *api.Client
	Carts    *cart.Store
	Sessions *session.Store
	Checkout *checkout.Coordinator
	Logger   *slog.Logger
}

// NewApp builds the command dependencies from a loaded config.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	stateDir := cfg.State.Dir
	sessions := session.NewStore(stateDir, logger)
	carts := cart.NewStore(stateDir, logger)

	client := api.NewClient(cfg.API.BaseURL, sessions,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger))

	checkoutRules, err := cfg.Pricing.Checkout.Rules()
	if err != nil {
		return nil, err
	}

	coordinator := checkout.NewCoordinator(stateDir, client, carts, sessions, checkoutRules,
		checkout.GatewayConfig{
			KeyID:        cfg.Payment.KeyID,
			Currency:     cfg.Payment.Currency,
			MerchantName: cfg.Payment.MerchantName,
			ThemeColor:   cfg.Payment.ThemeColor,
		}, logger)

	return &App{
		Config:   cfg,
		Client:   client,
		Carts:    carts,
		Sessions: sessions,
		Checkout: coordinator,
		Logger:   logger,
	}, nil
}

// Register attaches every storefront command to the root.
func Register(root *cobra.Command, app *App) {
	root.AddCommand(
		newRegisterCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newProfileCmd(app),
		newProductsCmd(app),
		newProductCmd(app),
		newBrandsCmd(app),
		newCategoriesCmd(app),
		newReviewCmd(app),
		newCartCmd(app),
		newCheckoutCmd(app),
		newPayCmd(app),
		newOrdersCmd(app),
		newAdminCmd(app),
	)
}

// cartRules returns the cart-preview pricing rules.
func (a *App) cartRules() (pricing.Rules, error) {
	return a.Config.Pricing.Cart.Rules()
}

// money renders a decimal amount with two fraction digits.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// requireLogin fails fast when no session is active, before any
// request goes out.
func (a *App) requireLogin() (session.Session, error) {
	sess := a.Sessions.Current()
	if !sess.LoggedIn() {
		return session.Session{}, errNotLoggedIn
	}
	return sess, nil
}
